package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "medibook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDirectoryBaseURL = "http://localhost:8081"

	DefaultNotificationsEnabled = false
	DefaultNotificationTopic    = "appointment-events"
	DefaultNotificationDLQTopic = "appointment-events-dlq"

	DefaultMaxSlotsPerCalendar  = 96
	DefaultSlotReleaseRetries   = 3
	DefaultSlotReleaseRetryWait = 100 * time.Millisecond

	DefaultPaginationLimit = 100
)
