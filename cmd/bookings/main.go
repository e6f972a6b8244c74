package main

import (
	"lodge/internal/bookings/events"
	"lodge/internal/bookings/handler"
	"lodge/internal/bookings/lifecycle"
	"lodge/internal/bookings/repository"
	"lodge/internal/bookings/service"
	"lodge/internal/bookings/validator"
	cabinsrepo "lodge/internal/cabins/repository"
	"lodge/internal/guests"
	reportshandler "lodge/internal/reports/handler"
	reportsservice "lodge/internal/reports/service"
	settingsrepo "lodge/internal/settings/repository"
	"lodge/pkg/app"
	"lodge/pkg/config"
	"lodge/pkg/kafka"
	kafka_config "lodge/pkg/kafka/config"
	kafka_middleware "lodge/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	publisher, publishMetrics := initPublisher(cfg)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := initServices(cfg, bookingRepo, publisher)
	reportService := reportsservice.NewReportService(bookingRepo, cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("booking events publisher", publisher.Close)
	if publishMetrics != nil {
		serverApp.ReadyStats("events", func() any { return publishMetrics.Snapshot() })
	}
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		reportshandler.NewReportHandler(reportService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, bookingRepo repository.BookingRepository, publisher events.Publisher) service.BookingService {
	bookingService := service.NewBookingService(
		bookingRepo,
		repository.NewBookingLockRepository(cfg),
		cabinsrepo.NewMongoCabinRepository(cfg),
		settingsrepo.NewMongoSettingsRepository(cfg),
		guests.NewResolver(cfg.IdentityBaseURL, cfg.IdentityAPIKey, cfg.IdentityTimeout, cfg.Log.Component("guests")),
		publisher,
		validator.NewBookingValidator(cfg.Log),
		lifecycle.NewManager(),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initPublisher(cfg *config.Config) (events.Publisher, *kafka_middleware.Metrics) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NoopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Booking events enabled", "topic", producer.Topic(), "dlq_topic", cfg.KafkaBookingsDLQTopic)
	return events.NewKafkaPublisher(producer, cfg.Log.Component("events")), metrics
}
