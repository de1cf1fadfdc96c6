package repository

import (
	"context"
	"teammate-tracker/internal/database"
	"teammate-tracker/internal/domain"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	idA = "76561198000000001"
	idB = "76561198000000002"
	idC = "76561198000000003"
	idD = "76561198000000004"
	idE = "76561198000000005"
)

func newTestRepo(t *testing.T) *MatchRepository {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// in-memory sqlite is per-connection
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewMatchRepository(db, zerolog.Nop())
}

func intp(v int) *int { return &v }

func testMatch(id string, finishedAt time.Time) *domain.Match {
	return &domain.Match{
		MatchID:      id,
		Map:          "de_mirage",
		MatchType:    "matchmaking",
		PlayersTeam1: []string{idA, idB},
		PlayersTeam2: []string{idC, idD},
		RoundsTeam1:  intp(16),
		RoundsTeam2:  intp(13),
		FinishedAt:   finishedAt,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestInsert_IsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	match := testMatch("m1", time.Now().UTC())
	if err := repo.Insert(ctx, match); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	// a second ingestion of the same match must not duplicate or overwrite
	changed := testMatch("m1", time.Now().UTC())
	changed.Map = "de_nuke"
	changed.RoundsTeam1 = intp(2)
	if err := repo.Insert(ctx, changed); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}

	matches, err := repo.GetCorrelated(ctx, idA, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Map != "de_mirage" {
		t.Fatalf("existing row was overwritten: map=%s", matches[0].Map)
	}
	if *matches[0].RoundsTeam1 != 16 {
		t.Fatalf("existing row was overwritten: rounds=%d", *matches[0].RoundsTeam1)
	}
}

func TestExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	known, err := repo.Exists(ctx, "m1")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if known {
		t.Fatal("expected m1 to be unknown")
	}

	if err := repo.Insert(ctx, testMatch("m1", time.Now().UTC())); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	known, err = repo.Exists(ctx, "m1")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !known {
		t.Fatal("expected m1 to be known")
	}
}

func TestGetCorrelated_SymmetricMatching(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testMatch("m1", time.Now().UTC())); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// opposite rosters
	vsMatches, err := repo.GetCorrelated(ctx, idA, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(vsMatches) != 1 || !vsMatches[0].Vs {
		t.Fatalf("expected one vs match, got %+v", vsMatches)
	}

	// same roster
	withMatches, err := repo.GetCorrelated(ctx, idA, idB)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(withMatches) != 1 || withMatches[0].Vs {
		t.Fatalf("expected one with match, got %+v", withMatches)
	}

	// uninvolved player
	none, err := repo.GetCorrelated(ctx, idE, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestGetCorrelated_PreservesRosterOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	match := testMatch("m1", time.Now().UTC())
	match.PlayersTeam1 = []string{idB, idA}
	match.PlayersTeam2 = []string{idD, idC}
	if err := repo.Insert(ctx, match); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	matches, err := repo.GetCorrelated(ctx, idA, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	got := matches[0]
	if got.PlayersTeam1[0] != idB || got.PlayersTeam1[1] != idA {
		t.Fatalf("team1 order lost: %v", got.PlayersTeam1)
	}
	if got.PlayersTeam2[0] != idD || got.PlayersTeam2[1] != idC {
		t.Fatalf("team2 order lost: %v", got.PlayersTeam2)
	}
}

func TestGetCorrelated_OrdersByDateDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, testMatch("older", base)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.Insert(ctx, testMatch("newer", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	matches, err := repo.GetCorrelated(ctx, idA, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 2 || matches[0].MatchID != "newer" {
		t.Fatalf("expected newest first, got %+v", matches)
	}
}

func TestInsert_AbsentScoreStaysAbsent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	match := testMatch("m1", time.Now().UTC())
	match.RoundsTeam1 = nil
	match.RoundsTeam2 = nil
	if err := repo.Insert(ctx, match); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	matches, err := repo.GetCorrelated(ctx, idA, idC)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].RoundsTeam1 != nil || matches[0].RoundsTeam2 != nil {
		t.Fatalf("expected absent rounds, got %v/%v", matches[0].RoundsTeam1, matches[0].RoundsTeam2)
	}
}

func TestLatestMatchDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	latest, err := repo.LatestMatchDate(ctx)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil on empty store, got %v", latest)
	}

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, testMatch("m1", base)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.Insert(ctx, testMatch("m2", base.Add(3*time.Hour))); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	latest, err = repo.LatestMatchDate(ctx)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if latest == nil || !latest.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("expected %v, got %v", base.Add(3*time.Hour), latest)
	}
}

func TestLatestMatchDateForAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, testMatch("m1", base)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	other := testMatch("m2", base.Add(5*time.Hour))
	other.PlayersTeam1 = []string{idE}
	other.PlayersTeam2 = []string{idD}
	if err := repo.Insert(ctx, other); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// idA only played m1; the newer m2 must not move idA's watermark
	latest, err := repo.LatestMatchDateForAccount(ctx, idA)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if latest == nil || !latest.Equal(base) {
		t.Fatalf("expected %v, got %v", base, latest)
	}
}
