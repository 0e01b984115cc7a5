package server

import (
	"time"

	"satsdice/application"
	"satsdice/domain/interfaces"
	"satsdice/infrastructure"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

// FiberServer exposes the operator API and the player-facing LNURL endpoints
type FiberServer struct {
	*fiber.App

	dice       interfaces.DiceService
	coinflip   interfaces.CoinflipService
	withdraws  interfaces.WithdrawService
	dispatcher *application.Dispatcher
	cache      *infrastructure.OutcomeCache
	publicURL  string
}

// New creates the HTTP server with all routes registered
func New(
	dice interfaces.DiceService,
	coinflip interfaces.CoinflipService,
	withdraws interfaces.WithdrawService,
	dispatcher *application.Dispatcher,
	cache *infrastructure.OutcomeCache,
	publicURL string,
) *FiberServer {
	server := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "satsdice",
			AppName:      "satsdice",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}),

		dice:       dice,
		coinflip:   coinflip,
		withdraws:  withdraws,
		dispatcher: dispatcher,
		cache:      cache,
		publicURL:  publicURL,
	}

	server.App.Use(recover.New())
	server.App.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	server.registerRoutes()

	return server
}

// Start listens on the given address until Shutdown is called
func (s *FiberServer) Start(addr string) error {
	log.WithField("addr", addr).Info("HTTP server listening")
	return s.Listen(addr)
}
