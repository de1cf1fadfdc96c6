package service

import (
	"context"
	"sort"
	"sync"
	"teammate-tracker/internal/api"
	"teammate-tracker/internal/domain"
	"time"
)

type fakeStore struct {
	mu            sync.Mutex
	matches       map[string]*domain.Match
	latest        *time.Time
	latestErr     error
	insertErrs    map[string]error
	correlated    map[string][]domain.CorrelatedMatch
	correlatedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:    make(map[string]*domain.Match),
		insertErrs: make(map[string]error),
		correlated: make(map[string][]domain.CorrelatedMatch),
	}
}

func (f *fakeStore) Insert(_ context.Context, match *domain.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertErrs[match.MatchID]; err != nil {
		return err
	}
	if _, ok := f.matches[match.MatchID]; ok {
		return nil
	}
	f.matches[match.MatchID] = match
	return nil
}

func (f *fakeStore) Exists(_ context.Context, matchID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.matches[matchID]
	return ok, nil
}

func (f *fakeStore) LatestMatchDate(context.Context) (*time.Time, error) {
	return f.latest, f.latestErr
}

func (f *fakeStore) LatestMatchDateForAccount(context.Context, string) (*time.Time, error) {
	return f.latest, f.latestErr
}

func (f *fakeStore) GetCorrelated(_ context.Context, myID, _ string) ([]domain.CorrelatedMatch, error) {
	if f.correlatedErr != nil {
		return nil, f.correlatedErr
	}
	return f.correlated[myID], nil
}

func (f *fakeStore) storedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.matches))
	for id := range f.matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeProvider struct {
	mu          sync.Mutex
	profiles    map[string][]domain.MatchSummary
	profileErrs map[string]error
	recent      []domain.MatchSummary
	details     map[string]*api.RawGameDetail
	detailErrs  map[string]error
	detailCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		profiles:    make(map[string][]domain.MatchSummary),
		profileErrs: make(map[string]error),
		details:     make(map[string]*api.RawGameDetail),
		detailErrs:  make(map[string]error),
	}
}

func (f *fakeProvider) GetProfileGames(_ context.Context, steamID string) ([]domain.MatchSummary, error) {
	if err := f.profileErrs[steamID]; err != nil {
		return nil, err
	}
	return f.profiles[steamID], nil
}

func (f *fakeProvider) GetRecentGames(context.Context) ([]domain.MatchSummary, error) {
	return f.recent, nil
}

func (f *fakeProvider) GetGameDetail(_ context.Context, matchID string) (*api.RawGameDetail, error) {
	f.mu.Lock()
	f.detailCalls++
	f.mu.Unlock()
	if err := f.detailErrs[matchID]; err != nil {
		return nil, err
	}
	if detail, ok := f.details[matchID]; ok {
		return detail, nil
	}
	return nil, &api.StatusError{Code: 404}
}

func (f *fakeProvider) detailCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls
}

type fakeResolver struct {
	id  string
	err error
}

func (f *fakeResolver) Resolve(context.Context, string) (string, error) {
	return f.id, f.err
}

type fakeProfiles struct {
	profile *domain.PlayerProfile
	err     error
}

func (f *fakeProfiles) GetPlayerSummaries(context.Context, string) (*domain.PlayerProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type rankingOutcome struct {
	snapshot *domain.RankingSnapshot
	err      error
}

type fakeRankings struct {
	mu       sync.Mutex
	outcomes map[string]rankingOutcome
	calls    []string
}

func (f *fakeRankings) GetRanking(_ context.Context, _, game string) (*domain.RankingSnapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, game)
	f.mu.Unlock()
	out := f.outcomes[game]
	return out.snapshot, out.err
}

func (f *fakeRankings) gamesCalled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeMetrics struct {
	incremented chan string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{incremented: make(chan string, 8)}
}

func (f *fakeMetrics) Increment(_ context.Context, name string) error {
	select {
	case f.incremented <- name:
	default:
	}
	return nil
}
