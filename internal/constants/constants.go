package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	RankingAPITimeout  = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// WatermarkSafetyMargin is subtracted from the newest stored match date
	// before asking the provider for summaries. Covers clock skew and
	// late-arriving provider data.
	WatermarkSafetyMargin = 1 * time.Hour

	// WatermarkBackstop bounds the first ingestion run on an empty store.
	WatermarkBackstop = 7 * 24 * time.Hour
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// GlobalFeedAccount is the pseudo-account for the provider's global
	// recent-activity feed, ingested alongside the tracked roster.
	GlobalFeedAccount = "global"
)
