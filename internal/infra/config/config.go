package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"studyreserve/internal/domain/shared/civil"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config aggregates application configuration loaded from environment
// variables.
type Config struct {
	Env      string
	HTTPAddr string

	Storage  string
	MongoURI string
	MongoDB  string

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration

	DayOpen     civil.TimeOfDay
	DayClose    civil.TimeOfDay
	SlotMinutes int

	SpaceFixtures string
	AuthTokens    map[string]string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		Storage:          strings.ToLower(getEnv("STORAGE", StorageMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "studyreserve"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		SpaceFixtures:    getEnv("SPACE_FIXTURES", ""),
	}

	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	open, err := parseTimeEnv("DAY_OPEN", "08:00")
	if err != nil {
		return Config{}, err
	}
	cfg.DayOpen = open
	closeAt, err := parseTimeEnv("DAY_CLOSE", "20:00")
	if err != nil {
		return Config{}, err
	}
	cfg.DayClose = closeAt
	if !cfg.DayClose.After(cfg.DayOpen) {
		return Config{}, fmt.Errorf("DAY_CLOSE must be after DAY_OPEN")
	}

	slot, err := parseIntEnv("SLOT_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	if slot <= 0 {
		return Config{}, fmt.Errorf("SLOT_MINUTES must be positive")
	}
	cfg.SlotMinutes = slot

	cfg.AuthTokens = parseTokenPairs(getEnv("AUTH_TOKENS", ""))

	switch cfg.Storage {
	case StorageMemory:
	case StorageMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE mode %q", cfg.Storage)
	}
	return cfg, nil
}

// parseTokenPairs reads "token:userID,token:userID" into a lookup map. This
// is the stand-in principal provider; real identity is an external service.
func parseTokenPairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, ":")
		if !ok || token == "" || user == "" {
			continue
		}
		out[token] = user
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return v, nil
}

func parseTimeEnv(key, def string) (civil.TimeOfDay, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = def
	}
	t, err := civil.ParseTimeOfDay(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s time: %w", key, err)
	}
	return t, nil
}
