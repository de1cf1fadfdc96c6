package service

import (
	"context"
	"errors"
	"fmt"
	"teammate-tracker/internal/constants"
	"teammate-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Game labels the ranking provider knows. The legacy label is only consulted
// after a definitive "not found" on the primary one.
const (
	RankingGamePrimary = "cs2"
	RankingGameLegacy  = "csgo"
)

const queryMetric = "history_queries"

type IdentifierResolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// ProfileProvider is mandatory enrichment; its failure fails the query.
type ProfileProvider interface {
	GetPlayerSummaries(ctx context.Context, steamID string) (*domain.PlayerProfile, error)
}

type RankingProvider interface {
	GetRanking(ctx context.Context, steamID, game string) (*domain.RankingSnapshot, error)
}

type MetricsStore interface {
	Increment(ctx context.Context, name string) error
}

// HistoryService answers "did X play with or against Y" over the stored
// corpus, enriched with a live profile and ranking snapshot.
type HistoryService struct {
	resolver IdentifierResolver
	store    MatchHistoryStore
	profiles ProfileProvider
	rankings RankingProvider
	metrics  MetricsStore
	logger   zerolog.Logger
}

func NewHistoryService(resolver IdentifierResolver, store MatchHistoryStore, profiles ProfileProvider, rankings RankingProvider, metrics MetricsStore, logger zerolog.Logger) *HistoryService {
	return &HistoryService{
		resolver: resolver,
		store:    store,
		profiles: profiles,
		rankings: rankings,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *HistoryService) Query(ctx context.Context, myIDs []string, targetQuery string) (*domain.HistoryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	targetID, err := s.resolver.Resolve(ctx, targetQuery)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("target", targetID).Int("my_ids", len(myIDs)).Msg("querying match history")

	result := &domain.HistoryResult{ResolvedID: targetID}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		matches, err := s.correlate(gCtx, myIDs, targetID)
		if err != nil {
			s.logger.Warn().Err(err).Str("target", targetID).Msg("match correlation failed, returning empty history")
			matches = []domain.CorrelatedMatch{}
		}
		result.Matches = matches
		return nil
	})

	g.Go(func() error {
		apiCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
		defer cancel()

		profile, err := s.profiles.GetPlayerSummaries(apiCtx, targetID)
		if err != nil {
			return fmt.Errorf("profile lookup failed: %w", err)
		}
		result.Profile = *profile
		return nil
	})

	g.Go(func() error {
		result.Ranking = s.fetchRanking(gCtx, targetID)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.VsWinRate = winRate(result.Matches, myIDs, true)
	result.WithWinRate = winRate(result.Matches, myIDs, false)

	// fire-and-forget; never blocks or fails the response
	go func() {
		mCtx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()
		if err := s.metrics.Increment(mCtx, queryMetric); err != nil {
			s.logger.Warn().Err(err).Msg("metrics increment failed")
		}
	}()

	return result, nil
}

// correlate unions the with/against matches across all of the caller's ids,
// deduplicated per (match, side).
func (s *HistoryService) correlate(ctx context.Context, myIDs []string, targetID string) ([]domain.CorrelatedMatch, error) {
	type key struct {
		matchID string
		vs      bool
	}
	seen := make(map[key]bool)

	var all []domain.CorrelatedMatch
	for _, myID := range myIDs {
		matches, err := s.store.GetCorrelated(ctx, myID, targetID)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			k := key{m.MatchID, m.Vs}
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, m)
		}
	}
	return all, nil
}

// fetchRanking runs the two-step ranking lookup. A timeout on the primary
// attempt short-circuits the whole lookup; the legacy label is never tried.
// Other upstream failures degrade to "absent", they never fail the query.
func (s *HistoryService) fetchRanking(ctx context.Context, steamID string) domain.RankingSnapshot {
	for _, game := range []string{RankingGamePrimary, RankingGameLegacy} {
		apiCtx, cancel := context.WithTimeout(ctx, constants.RankingAPITimeout)
		snapshot, err := s.rankings.GetRanking(apiCtx, steamID, game)
		cancel()

		switch {
		case err == nil:
			return *snapshot
		case errors.Is(err, domain.ErrRankingTimeout):
			s.logger.Warn().Str("steam_id", steamID).Str("game", game).Msg("ranking lookup timed out")
			return domain.RankingSnapshot{Status: domain.RankingTimeout}
		case errors.Is(err, domain.ErrRankingNotFound):
			continue
		default:
			s.logger.Warn().Err(err).Str("steam_id", steamID).Str("game", game).Msg("ranking lookup failed")
			return domain.RankingSnapshot{Status: domain.RankingAbsent}
		}
	}
	return domain.RankingSnapshot{Status: domain.RankingAbsent}
}

// winRate is the share of scored matches in one partition that the caller's
// side won. Matches without a definitive score are left out of the
// denominator.
func winRate(matches []domain.CorrelatedMatch, myIDs []string, vs bool) float64 {
	mine := make(map[string]bool, len(myIDs))
	for _, id := range myIDs {
		mine[id] = true
	}

	var played, won int
	for _, m := range matches {
		if m.Vs != vs || m.RoundsTeam1 == nil || m.RoundsTeam2 == nil {
			continue
		}
		played++
		onTeam1 := false
		for _, id := range m.PlayersTeam1 {
			if mine[id] {
				onTeam1 = true
				break
			}
		}
		if onTeam1 && *m.RoundsTeam1 > *m.RoundsTeam2 {
			won++
		} else if !onTeam1 && *m.RoundsTeam2 > *m.RoundsTeam1 {
			won++
		}
	}
	if played == 0 {
		return 0
	}
	return float64(won) / float64(played)
}
