package main

import (
	"medibook/internal/appointments/handler"
	"medibook/internal/appointments/repository"
	"medibook/internal/appointments/service"
	"medibook/internal/appointments/validator"
	availabilityrepo "medibook/internal/availability/repository"
	"medibook/pkg/app"
	"medibook/pkg/config"
	"medibook/pkg/kafka"
	kafkaconfig "medibook/pkg/kafka/config"
	kafkamiddleware "medibook/pkg/kafka/middleware"
	"medibook/pkg/notify"
)

const ServiceName = "appointments"

// @title MediBook Appointments API
// @version 1.0
// @description Appointment booking and lifecycle management.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Appointments service")
	appointmentService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	calendarRepo := availabilityrepo.NewMongoCalendarRepository(cfg)

	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		calendarRepo,
		appointmentValidator,
		initNotifier(cfg),
		cfg,
	)

	cfg.Log.Info("Appointments service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}

func initNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.NotificationsEnabled {
		cfg.Log.Info("Notifications disabled, using noop notifier")
		return notify.NewNoopNotifier()
	}

	producer, err := kafka.NewProducer(kafkaconfig.Load(), cfg.NotificationTopic, cfg.NotificationDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware())
	producer.Use(kafkamiddleware.MetricsProducerMiddleware())

	cfg.Log.Info("Kafka notifier initialized", "topic", cfg.NotificationTopic)
	return notify.NewKafkaNotifier(producer, cfg.Log)
}
