package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// ResolverOrder picks which identifier pattern wins when a query matches more
// than one. Fielded revisions of this tool disagree, so it is a policy knob.
type ResolverOrder string

const (
	ResolverNumericFirst ResolverOrder = "numeric-first"
	ResolverVanityFirst  ResolverOrder = "vanity-first"
)

// WatermarkScope controls whether an ingestion run derives one watermark from
// the whole store or one per monitored account.
type WatermarkScope string

const (
	WatermarkGlobal     WatermarkScope = "global"
	WatermarkPerAccount WatermarkScope = "per-account"
)

type Config struct {
	SteamAPIKey    string
	FaceitAPIKey   string
	LeetifyBaseURL string
	DBPath         string
	ServerPort     string
	LogLevel       string

	// TrackedSteamIDs is the fixed roster whose match history is ingested.
	TrackedSteamIDs []string

	ResolverOrder  ResolverOrder
	WatermarkScope WatermarkScope

	// IngestInterval drives the background poller; zero disables it and
	// leaves ingestion to the /api/ingest trigger.
	IngestInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	interval, err := time.ParseDuration(getEnv("INGEST_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_INTERVAL: %w", err)
	}

	cfg := &Config{
		SteamAPIKey:     getEnv("STEAM_API_KEY", ""),
		FaceitAPIKey:    getEnv("FACEIT_API_KEY", ""),
		LeetifyBaseURL:  getEnv("LEETIFY_BASE_URL", "https://api.leetify.com"),
		DBPath:          getEnv("DB_PATH", "tracker.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TrackedSteamIDs: splitList(getEnv("TRACKED_STEAM_IDS", "")),
		ResolverOrder:   ResolverOrder(getEnv("RESOLVER_ORDER", string(ResolverNumericFirst))),
		WatermarkScope:  WatermarkScope(getEnv("WATERMARK_SCOPE", string(WatermarkGlobal))),
		IngestInterval:  interval,
	}

	if cfg.SteamAPIKey == "" {
		return nil, fmt.Errorf("STEAM_API_KEY is required")
	}
	switch cfg.ResolverOrder {
	case ResolverNumericFirst, ResolverVanityFirst:
	default:
		return nil, fmt.Errorf("invalid RESOLVER_ORDER %q", cfg.ResolverOrder)
	}
	switch cfg.WatermarkScope {
	case WatermarkGlobal, WatermarkPerAccount:
	default:
		return nil, fmt.Errorf("invalid WATERMARK_SCOPE %q", cfg.WatermarkScope)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("tracked_accounts", len(cfg.TrackedSteamIDs)).
		Str("resolver_order", string(cfg.ResolverOrder)).
		Str("watermark_scope", string(cfg.WatermarkScope)).
		Dur("ingest_interval", cfg.IngestInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
