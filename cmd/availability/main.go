package main

import (
	"time"

	"medibook/internal/availability/handler"
	"medibook/internal/availability/repository"
	"medibook/internal/availability/service"
	"medibook/internal/availability/validator"
	"medibook/pkg/app"
	"medibook/pkg/client"
	"medibook/pkg/config"
)

const ServiceName = "availability"

// @title MediBook Availability API
// @version 1.0
// @description Doctor availability calendars and slot publishing.
// @BasePath /
func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewCalendarHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	calendarValidator := validator.NewCalendarValidator(cfg.Log, cfg.MaxSlotsPerCalendar)
	calendarRepo := repository.NewMongoCalendarRepository(cfg)
	directory := client.NewDirectoryClient(cfg.DirectoryBaseURL)
	if err := directory.WaitForHealthy(30 * time.Second); err != nil {
		cfg.Log.Warn("Directory service not healthy at startup, affiliation checks may fail", "error", err)
	}
	availabilityService := service.NewAvailabilityService(
		calendarRepo,
		calendarValidator,
		directory,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
