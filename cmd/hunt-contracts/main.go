package main

import (
	"fmt"
	"os"

	"github.com/nurpe/hunt-contracts/internal/auth"
	"github.com/nurpe/hunt-contracts/internal/config"
	"github.com/nurpe/hunt-contracts/internal/db"
	"github.com/nurpe/hunt-contracts/internal/excel"
	httphandler "github.com/nurpe/hunt-contracts/internal/http"
	"github.com/nurpe/hunt-contracts/internal/http/middleware"
	"github.com/nurpe/hunt-contracts/internal/logger"
	"github.com/nurpe/hunt-contracts/internal/pdf"
	"github.com/nurpe/hunt-contracts/internal/rabbitmq"
	"github.com/nurpe/hunt-contracts/internal/repository"
	"github.com/nurpe/hunt-contracts/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	huntRepo := repository.NewHuntRepository(database)
	contractRepo := repository.NewContractRepository(database)
	pricingRepo := repository.NewPricingRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	templateRepo := repository.NewTemplateRepository(database)
	scheduleRepo := repository.NewScheduleRepository(database)

	var events service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, workflow events are not published")
	}

	reconciler := service.NewReconciliationService(paymentRepo, contractRepo, huntRepo, pricingRepo, cfg, log)
	workflow := service.NewWorkflowService(database, huntRepo, contractRepo, pricingRepo, templateRepo, scheduleRepo, events, reconciler, cfg, log)
	catalog := service.NewCatalogService(pricingRepo, templateRepo, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(workflow, reconciler, catalog, pdf.NewGenerator(), excel.NewGenerator(), log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting hunt contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
