package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/geoid-labs/geoid_api/services/handlers"
	"github.com/geoid-labs/geoid_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	monitoringSvc *MonitoringService
	gameSvc       *GameService
	ledgerSvc     *BadgeLedgerService
	settlementSvc *SettlementService
	roundSvc      *RoundService
	minioSvc      *MinIOService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	svc.ledgerSvc = svc.Service(BADGE_LEDGER_SVC).(*BadgeLedgerService)
	svc.settlementSvc = svc.Service(SETTLEMENT_SVC).(*SettlementService)
	svc.roundSvc = svc.Service(ROUND_SVC).(*RoundService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)

	gameHandler := handlers.NewGameHandler(svc.gameSvc)
	badgeHandler := handlers.NewBadgeHandler(svc.ledgerSvc, svc.settlementSvc)
	roundHandler := handlers.NewRoundHandler(svc.roundSvc)
	profileHandler := handlers.NewProfileHandler(svc.gameSvc)
	adminHandler := handlers.NewAdminHandler(svc.minioSvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	protected := v1.Group("", svc.authSvc.RequiredAuth())

	games := protected.Group("/games")
	games.Get("/today", gameHandler.GetTodayGame)
	games.Post("/save", gameHandler.SaveGame)
	games.Get("/history", gameHandler.GetHistory)

	rounds := protected.Group("/rounds")
	rounds.Post("/:gameId/start", roundHandler.StartRound)
	rounds.Post("/:gameId/guess", roundHandler.SubmitGuess)
	rounds.Post("/:gameId/lock", roundHandler.LockRound)
	rounds.Get("/:gameId", roundHandler.GetRoundState)

	badges := protected.Group("/badges")
	badges.Get("", badgeHandler.GetBadges)
	badges.Post("/:badgeId/claim", badgeHandler.ClaimBadge)

	protected.Get("/profile", profileHandler.GetProfile)

	admin := protected.Group("/admin")
	admin.Post("/badges/:badgeId/artwork", adminHandler.UploadBadgeArtwork)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseJSON(c, fiber.StatusNotFound, "Not Found", nil)
	})

	svc.server = app

	log.WithField("port", svc.port).Info("HTTP server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseOK(c, "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
