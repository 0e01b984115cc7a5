package server

import (
	"satsdice/domain/entities"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Dice link handlers

type linkRequest struct {
	WalletID   string  `json:"wallet_id"`
	Title      string  `json:"title"`
	MinBet     int64   `json:"min_bet"`
	MaxBet     int64   `json:"max_bet"`
	Chance     float64 `json:"chance"`
	Multiplier float64 `json:"multiplier"`
	Haircut    float64 `json:"haircut"`
}

type linkResponse struct {
	ID             string  `json:"id"`
	WalletID       string  `json:"wallet_id"`
	Title          string  `json:"title"`
	MinBet         int64   `json:"min_bet"`
	MaxBet         int64   `json:"max_bet"`
	Chance         float64 `json:"chance"`
	Multiplier     float64 `json:"multiplier"`
	Haircut        float64 `json:"haircut"`
	TotalAmount    int64   `json:"total_amount"`
	ServedInvoices int64   `json:"served_invoices"`
	Lnurl          string  `json:"lnurl"`
}

func (s *FiberServer) linkToResponse(link *entities.DiceLink) linkResponse {
	return linkResponse{
		ID:             link.ID,
		WalletID:       link.WalletID,
		Title:          link.Title,
		MinBet:         link.MinBet,
		MaxBet:         link.MaxBet,
		Chance:         link.Chance,
		Multiplier:     link.Multiplier,
		Haircut:        link.Haircut,
		TotalAmount:    link.TotalAmount,
		ServedInvoices: link.ServedInvoices,
		Lnurl:          s.publicURL + "/lnurlp/" + link.ID,
	}
}

func (s *FiberServer) createLinkHandler(c *fiber.Ctx) error {
	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.WalletID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Wallet ID is required"})
	}

	link := &entities.DiceLink{
		ID:         uuid.NewString(),
		WalletID:   req.WalletID,
		Title:      req.Title,
		MinBet:     req.MinBet,
		MaxBet:     req.MaxBet,
		Chance:     req.Chance,
		Multiplier: req.Multiplier,
		Haircut:    req.Haircut,
	}

	created, err := s.dice.CreateLink(c.Context(), link)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(s.linkToResponse(created))
}

func (s *FiberServer) listLinksHandler(c *fiber.Ctx) error {
	walletID := c.Query("wallet_id")
	if walletID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "wallet_id query parameter is required"})
	}

	links, err := s.dice.ListLinks(c.Context(), walletID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	responses := make([]linkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, s.linkToResponse(link))
	}
	return c.JSON(responses)
}

func (s *FiberServer) getLinkHandler(c *fiber.Ctx) error {
	link, err := s.dice.GetLink(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if link == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Link not found"})
	}
	return c.JSON(s.linkToResponse(link))
}

func (s *FiberServer) updateLinkHandler(c *fiber.Ctx) error {
	var req linkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := s.dice.UpdateLink(c.Context(), c.Params("id"), entities.UpdateDiceLink{
		Title:      req.Title,
		MinBet:     req.MinBet,
		MaxBet:     req.MaxBet,
		Chance:     req.Chance,
		Multiplier: req.Multiplier,
		Haircut:    req.Haircut,
	})
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(s.linkToResponse(updated))
}

func (s *FiberServer) deleteLinkHandler(c *fiber.Ctx) error {
	if err := s.dice.DeleteLink(c.Context(), c.Params("id")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(204)
}

// Outcome handlers

func (s *FiberServer) getOutcomeHandler(c *fiber.Ctx) error {
	paymentHash := c.Params("paymentHash")

	// Fast path for players polling a result. The cache is optional; without
	// it every poll goes to the database.
	if s.cache != nil {
		if cached := s.cache.GetDiceOutcome(c.Context(), paymentHash); cached != "" {
			return c.JSON(fiber.Map{
				"payment_hash": paymentHash,
				"outcome":      cached,
			})
		}
	}

	outcome, err := s.dice.GetOutcome(c.Context(), paymentHash)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if outcome == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Bet not found"})
	}

	resp := fiber.Map{
		"payment_hash": paymentHash,
		"outcome":      string(outcome.Payment.Outcome),
		"value":        outcome.Payment.Value,
	}
	if outcome.Credential != nil {
		resp["payout"] = outcome.Credential.Value
		resp["lnurlw"] = s.publicURL + "/lnurlw/" + outcome.Credential.UniqueHash
	}
	return c.JSON(resp)
}

// resolveOutcomeHandler settles a bet synchronously, for players who paid the
// invoice out of band and are now asking for their roll. It funnels through
// the dispatcher so it cannot race a queued settlement for the same bet.
func (s *FiberServer) resolveOutcomeHandler(c *fiber.Ctx) error {
	payment, err := s.dispatcher.ResolveDice(c.Context(), c.Params("paymentHash"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"payment_hash": payment.PaymentHash,
		"outcome":      string(payment.Outcome),
	})
}

// Coinflip handlers

type coinflipSettingsRequest struct {
	WalletID   string  `json:"wallet_id"`
	MaxPlayers int     `json:"max_players"`
	MaxBet     int64   `json:"max_bet"`
	Enabled    bool    `json:"enabled"`
	Haircut    float64 `json:"haircut"`
}

func (s *FiberServer) createCoinflipSettingsHandler(c *fiber.Ctx) error {
	var req coinflipSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.WalletID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Wallet ID is required"})
	}

	settings, err := s.coinflip.CreateSettings(c.Context(), &entities.CoinflipSettings{
		WalletID:   req.WalletID,
		MaxPlayers: req.MaxPlayers,
		MaxBet:     req.MaxBet,
		Enabled:    req.Enabled,
		Haircut:    req.Haircut,
	})
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(settings)
}

func (s *FiberServer) getCoinflipSettingsHandler(c *fiber.Ctx) error {
	settings, err := s.coinflip.GetSettings(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if settings == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Settings not found"})
	}
	return c.JSON(settings)
}

func (s *FiberServer) updateCoinflipSettingsHandler(c *fiber.Ctx) error {
	var req coinflipSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	settings, err := s.coinflip.UpdateSettings(c.Context(), &entities.CoinflipSettings{
		ID:         c.Params("id"),
		WalletID:   req.WalletID,
		MaxPlayers: req.MaxPlayers,
		MaxBet:     req.MaxBet,
		Enabled:    req.Enabled,
		Haircut:    req.Haircut,
	})
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(settings)
}

type coinflipGameRequest struct {
	SettingsID      string `json:"settings_id"`
	Name            string `json:"name"`
	BuyIn           int64  `json:"buy_in"`
	NumberOfPlayers int    `json:"number_of_players"`
}

func (s *FiberServer) createCoinflipGameHandler(c *fiber.Ctx) error {
	var req coinflipGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.SettingsID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Settings ID is required"})
	}

	game, err := s.coinflip.CreateGame(c.Context(), req.SettingsID, req.Name, req.BuyIn, req.NumberOfPlayers)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(game)
}

func (s *FiberServer) getCoinflipGameHandler(c *fiber.Ctx) error {
	game, err := s.coinflip.GetGame(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if game == nil {
		return c.Status(404).JSON(fiber.Map{"error": "Game not found"})
	}

	resp := fiber.Map{
		"id":                game.ID,
		"name":              game.Name,
		"buy_in":            game.BuyIn,
		"number_of_players": game.NumberOfPlayers,
		"joined":            len(game.Players),
		"completed":         game.Completed,
	}
	if game.Completed && len(game.Players) == 1 {
		resp["winner"] = game.Players[0]
	}
	if s.cache != nil {
		if cached := s.cache.GetGameStatus(c.Context(), game.ID); cached != "" {
			resp["status"] = cached
		}
	}
	return c.JSON(resp)
}

type joinGameRequest struct {
	LnAddress string `json:"ln_address"`
}

func (s *FiberServer) joinCoinflipGameHandler(c *fiber.Ctx) error {
	var req joinGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.LnAddress == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Lightning address is required"})
	}

	invoice, err := s.coinflip.CreateJoinInvoice(c.Context(), c.Params("id"), req.LnAddress)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"payment_hash":    invoice.PaymentHash,
		"payment_request": invoice.Bolt11,
	})
}

func (s *FiberServer) retryPayoutHandler(c *fiber.Ctx) error {
	if err := s.dispatcher.RetryPayout(c.Context(), c.Params("id")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
