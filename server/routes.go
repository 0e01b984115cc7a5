package server

func (s *FiberServer) registerRoutes() {
	s.App.Get("/health", s.healthHandler)

	// Operator API
	api := s.App.Group("/api/v1")

	api.Post("/links", s.createLinkHandler)
	api.Get("/links", s.listLinksHandler)
	api.Get("/links/:id", s.getLinkHandler)
	api.Put("/links/:id", s.updateLinkHandler)
	api.Delete("/links/:id", s.deleteLinkHandler)

	api.Get("/outcomes/:paymentHash", s.getOutcomeHandler)
	api.Post("/outcomes/:paymentHash/resolve", s.resolveOutcomeHandler)

	api.Post("/coinflip/settings", s.createCoinflipSettingsHandler)
	api.Get("/coinflip/settings/:id", s.getCoinflipSettingsHandler)
	api.Put("/coinflip/settings/:id", s.updateCoinflipSettingsHandler)

	api.Post("/coinflip/games", s.createCoinflipGameHandler)
	api.Get("/coinflip/games/:id", s.getCoinflipGameHandler)
	api.Post("/coinflip/games/:id/join", s.joinCoinflipGameHandler)
	api.Post("/coinflip/games/:id/payout", s.retryPayoutHandler)

	// Player-facing LNURL endpoints
	s.App.Get("/lnurlp/:linkId", s.lnurlPayHandler)
	s.App.Get("/lnurlp/cb/:linkId", s.lnurlPayCallbackHandler)
	s.App.Get("/lnurlw/:uniqueHash", s.lnurlWithdrawHandler)
	s.App.Get("/lnurlw/cb/:uniqueHash", s.lnurlWithdrawCallbackHandler)
}
