package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/praxis-payments/internal/config"
	"github.com/xavierca1/praxis-payments/internal/infra/database"
	"github.com/xavierca1/praxis-payments/internal/infra/http/handlers"
	"github.com/xavierca1/praxis-payments/internal/infra/http/middleware"
	"github.com/xavierca1/praxis-payments/internal/infra/mail"
	"github.com/xavierca1/praxis-payments/internal/infra/queue"
	"github.com/xavierca1/praxis-payments/internal/infra/worker"
	"github.com/xavierca1/praxis-payments/internal/logger"
	"github.com/xavierca1/praxis-payments/internal/notifier"
	"github.com/xavierca1/praxis-payments/internal/usecase"
)

func main() {
	godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// 1. Repositórios e store de métricas
	leadRepo := database.NewLeadRepository(db)
	clientRepo := database.NewClientRepository(db)
	metricsStore := database.NewMetricsStore(db)

	// 2. Canal de entrega + monitor + dispatcher
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)

	monitor := notifier.NewMonitor(notifier.Limits{
		Daily:   cfg.EmailDailyLimit,
		Monthly: cfg.EmailMonthlyLimit,
		LogSize: cfg.EmailLogSize,
	}, metricsStore, log)

	dispatcher := notifier.NewDispatcher(mailSender, monitor, cfg.MailFrom, log)

	// 3. Fila (opcional: sem broker o dispatch roda in-process)
	var producer queue.DispatchProducerInterface
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, dispatching in-process")
		} else {
			defer rabbitMQ.Conn.Close()
			defer rabbitMQ.Ch.Close()
			producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

			notificationWorker := queue.NewWorker(rabbitMQ.Ch, dispatcher, log)
			go notificationWorker.Start(queue.QueueName)
		}
	}

	// 4. Validador de configuração (resultado inicial vai pro log)
	validator := config.NewValidator(cfg, mailSender, log)
	if result := validator.Validate(); !result.Valid {
		log.Error().Strs("errors", result.Errors).Msg("⚠️ configuration is incomplete")
	} else if len(result.Warnings) > 0 {
		log.Warn().Strs("warnings", result.Warnings).Msg("configuration warnings")
	}

	// 5. UseCases
	notifierSvc := usecase.NewNotifier(producer, dispatcher, log)
	handleEventUC := usecase.NewHandleEventUseCase(leadRepo, clientRepo, notifierSvc, cfg.AdminEmail, log)
	captureLeadUC := usecase.NewCaptureLeadUseCase(leadRepo, notifierSvc, cfg.AdminEmail, log)

	// 6. Handlers
	webhookHandler := handlers.NewWebhookHandler(cfg.PayvaultWebhookSecret, handleEventUC, log)
	leadHandler := handlers.NewLeadHandler(captureLeadUC, log)
	validationHandler := handlers.NewValidationHandler(validator)
	reportHandler := handlers.NewReportHandler(monitor)

	var rabbitConn *amqp091.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, cfg.MailHost)

	// 7. Worker de relatório periódico
	reportWorker := worker.NewReportWorker(monitor, log)
	go reportWorker.Start(context.Background())

	// 8. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/webhook", webhookHandler.Handle)
	r.Post("/leads", leadHandler.CaptureLead)
	r.Get("/health", healthHandler.Handle)
	r.Get("/config/status", validationHandler.Handle)
	r.Get("/notifications/report", reportHandler.HandleReport)
	r.Get("/notifications/metrics", reportHandler.HandleMetrics)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("🔥 praxis-payments API listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
