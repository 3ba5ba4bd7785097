package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every runtime knob. Values come from the environment with
// working defaults for local development.
type Config struct {
	Port               string
	DatabasePath       string
	WebhookSecret      string
	SkewWindow         time.Duration
	ReconcileTolerance int64
	IntentTTL          time.Duration
	SweepInterval      time.Duration
	ProcessorBaseURL   string
	ProcessorKey       string
}

func Load() Config {
	return Config{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "settlement.db"),
		WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
		SkewWindow:         getDuration("WEBHOOK_SKEW_WINDOW", 5*time.Minute),
		ReconcileTolerance: getInt64("RECONCILE_TOLERANCE", 100),
		IntentTTL:          getDuration("INTENT_TTL", time.Hour),
		SweepInterval:      getDuration("SWEEP_INTERVAL", 5*time.Minute),
		ProcessorBaseURL:   getEnv("PROCESSOR_BASE_URL", ""),
		ProcessorKey:       getEnv("PROCESSOR_SECRET_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
