package service

import (
	"context"
	"errors"
	"teammate-tracker/internal/api"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/constants"
	"teammate-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchHistoryStore is the slice of the store the services need. Implemented
// by repository.MatchRepository.
type MatchHistoryStore interface {
	Insert(ctx context.Context, match *domain.Match) error
	Exists(ctx context.Context, matchID string) (bool, error)
	LatestMatchDate(ctx context.Context) (*time.Time, error)
	LatestMatchDateForAccount(ctx context.Context, steamID string) (*time.Time, error)
	GetCorrelated(ctx context.Context, myID, targetID string) ([]domain.CorrelatedMatch, error)
}

// MatchHistoryProvider is the upstream match-history API. Implemented by
// api.LeetifyClient.
type MatchHistoryProvider interface {
	GetProfileGames(ctx context.Context, steamID string) ([]domain.MatchSummary, error)
	GetRecentGames(ctx context.Context) ([]domain.MatchSummary, error)
	GetGameDetail(ctx context.Context, matchID string) (*api.RawGameDetail, error)
}

// IngestService pulls recent match summaries for every monitored account,
// skips matches the store already knows, and persists the rest. Accounts are
// independent and fan out in parallel; within one account the per-match loop
// is sequential to bound concurrent load on the provider.
type IngestService struct {
	provider   MatchHistoryProvider
	store      MatchHistoryStore
	normalizer *Normalizer
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewIngestService(provider MatchHistoryProvider, store MatchHistoryStore, normalizer *Normalizer, cfg *config.Config, logger zerolog.Logger) *IngestService {
	return &IngestService{
		provider:   provider,
		store:      store,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Ingest runs one ingestion pass. Per-account and per-match failures are
// logged and skipped; an unlucky failure defers that match to the next run.
func (s *IngestService) Ingest(ctx context.Context) error {
	var globalWatermark time.Time
	if s.cfg.WatermarkScope == config.WatermarkGlobal {
		latest, err := s.store.LatestMatchDate(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to derive global watermark")
			return err
		}
		globalWatermark = watermarkFrom(latest, time.Now())
	}

	accounts := append([]string{}, s.cfg.TrackedSteamIDs...)
	accounts = append(accounts, constants.GlobalFeedAccount)

	g, gCtx := errgroup.WithContext(ctx)
	for _, account := range accounts {
		g.Go(func() error {
			watermark := globalWatermark
			if s.cfg.WatermarkScope == config.WatermarkPerAccount {
				latest, err := s.store.LatestMatchDateForAccount(gCtx, account)
				if err != nil {
					s.logger.Error().Err(err).Str("account", account).Msg("failed to derive account watermark")
					return nil
				}
				watermark = watermarkFrom(latest, time.Now())
			}

			if err := s.ingestAccount(gCtx, account, watermark); err != nil {
				s.logger.Error().Err(err).Str("account", account).Msg("account ingestion failed")
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *IngestService) ingestAccount(ctx context.Context, account string, watermark time.Time) error {
	var summaries []domain.MatchSummary
	var err error

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	if account == constants.GlobalFeedAccount {
		summaries, err = s.provider.GetRecentGames(apiCtx)
	} else {
		summaries, err = s.provider.GetProfileGames(apiCtx, account)
	}
	cancel()
	if err != nil {
		return err
	}

	var ingested, skipped int
	for _, summary := range summaries {
		if !summary.FinishedAt.After(watermark) {
			continue
		}
		switch err := s.ingestMatch(ctx, summary.MatchID); {
		case err == errAlreadyStored:
			skipped++
		case err != nil:
			s.logger.Warn().Err(err).Str("account", account).Str("match_id", summary.MatchID).Msg("skipping match")
		default:
			ingested++
		}
	}

	s.logger.Info().
		Str("account", account).
		Time("watermark", watermark).
		Int("ingested", ingested).
		Int("already_stored", skipped).
		Msg("account ingestion completed")
	return nil
}

// sentinel for the idempotent short-circuit, so known matches skip the detail
// fetch entirely
var errAlreadyStored = errors.New("match already stored")

func (s *IngestService) ingestMatch(ctx context.Context, matchID string) error {
	known, err := s.store.Exists(ctx, matchID)
	if err != nil {
		return err
	}
	if known {
		return errAlreadyStored
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	raw, err := s.provider.GetGameDetail(apiCtx, matchID)
	cancel()
	if err != nil {
		return err
	}

	match, err := s.normalizer.Normalize(raw)
	if err != nil {
		return err
	}

	return s.store.Insert(ctx, match)
}

// watermarkFrom derives the run's watermark: the newest stored match minus a
// safety margin, backstopped to a week ago on an empty store.
func watermarkFrom(latest *time.Time, now time.Time) time.Time {
	if latest == nil {
		return now.Add(-constants.WatermarkBackstop).Add(-constants.WatermarkSafetyMargin)
	}
	return latest.Add(-constants.WatermarkSafetyMargin)
}
