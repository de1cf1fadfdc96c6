package repository

import (
	"context"
	"database/sql"
	"fmt"
	"teammate-tracker/internal/domain"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sqlx.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

type matchRow struct {
	MatchID     string        `db:"match_id"`
	Map         string        `db:"map"`
	MatchType   string        `db:"match_type"`
	RoundsTeam1 sql.NullInt64 `db:"rounds_team1"`
	RoundsTeam2 sql.NullInt64 `db:"rounds_team2"`
	FinishedAt  time.Time     `db:"finished_at"`
	CreatedAt   time.Time     `db:"created_at"`
}

type correlatedRow struct {
	matchRow
	Vs bool `db:"vs"`
}

// Insert writes a normalized match and its roster rows. INSERT OR IGNORE
// throughout: an existing row is authoritative and is never overwritten, so
// re-ingesting the same match is a no-op.
func (r *MatchRepository) Insert(ctx context.Context, match *domain.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO matches
			(match_id, map, match_type, rounds_team1, rounds_team2, finished_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		match.MatchID, match.Map, match.MatchType,
		nullInt(match.RoundsTeam1), nullInt(match.RoundsTeam2),
		match.FinishedAt, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", match.MatchID, err)
	}

	insertPlayer := func(steamID string, team, position int) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO match_players (match_id, steam_id, team, position)
			VALUES (?, ?, ?, ?)`,
			match.MatchID, steamID, team, position,
		)
		return err
	}

	for i, steamID := range match.PlayersTeam1 {
		if err := insertPlayer(steamID, 1, i); err != nil {
			return fmt.Errorf("failed to insert roster row %s/%s: %w", match.MatchID, steamID, err)
		}
	}
	for i, steamID := range match.PlayersTeam2 {
		if err := insertPlayer(steamID, 2, i); err != nil {
			return fmt.Errorf("failed to insert roster row %s/%s: %w", match.MatchID, steamID, err)
		}
	}

	return tx.Commit()
}

func (r *MatchRepository) Exists(ctx context.Context, matchID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM matches WHERE match_id = ?`, matchID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestMatchDate is the completion date of the most recently stored match,
// nil on an empty store.
func (r *MatchRepository) LatestMatchDate(ctx context.Context) (*time.Time, error) {
	var finishedAt time.Time
	err := r.db.GetContext(ctx, &finishedAt, `SELECT finished_at FROM matches ORDER BY finished_at DESC LIMIT 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &finishedAt, nil
}

// LatestMatchDateForAccount is the per-account variant, considering only
// matches the account took part in.
func (r *MatchRepository) LatestMatchDateForAccount(ctx context.Context, steamID string) (*time.Time, error) {
	var finishedAt time.Time
	err := r.db.GetContext(ctx, &finishedAt, `
		SELECT m.finished_at
		FROM matches m
		JOIN match_players mp ON mp.match_id = m.match_id AND mp.steam_id = ?
		ORDER BY m.finished_at DESC
		LIMIT 1`, steamID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &finishedAt, nil
}

// GetCorrelated returns every stored match where both ids appear, tagged with
// vs = true when they sat on opposite rosters. Rosters come back as ordered
// arrays reassembled from the roster rows.
func (r *MatchRepository) GetCorrelated(ctx context.Context, myID, targetID string) ([]domain.CorrelatedMatch, error) {
	var rows []correlatedRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT m.match_id, m.map, m.match_type, m.rounds_team1, m.rounds_team2,
		       m.finished_at, m.created_at,
		       (mine.team != target.team) AS vs
		FROM matches m
		JOIN match_players mine ON mine.match_id = m.match_id AND mine.steam_id = ?
		JOIN match_players target ON target.match_id = m.match_id AND target.steam_id = ?
		ORDER BY m.finished_at DESC`, myID, targetID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return []domain.CorrelatedMatch{}, nil
	}

	matchIDs := make([]string, len(rows))
	for i, row := range rows {
		matchIDs[i] = row.MatchID
	}

	rosters, err := r.getRosters(ctx, matchIDs)
	if err != nil {
		return nil, err
	}

	results := make([]domain.CorrelatedMatch, len(rows))
	for i, row := range rows {
		roster := rosters[row.MatchID]
		results[i] = domain.CorrelatedMatch{
			Match: domain.Match{
				MatchID:      row.MatchID,
				Map:          row.Map,
				MatchType:    row.MatchType,
				PlayersTeam1: roster[0],
				PlayersTeam2: roster[1],
				RoundsTeam1:  intPtr(row.RoundsTeam1),
				RoundsTeam2:  intPtr(row.RoundsTeam2),
				FinishedAt:   row.FinishedAt,
				CreatedAt:    row.CreatedAt,
			},
			Vs: row.Vs,
		}
	}
	return results, nil
}

type rosterRow struct {
	MatchID string `db:"match_id"`
	SteamID string `db:"steam_id"`
	Team    int    `db:"team"`
}

func (r *MatchRepository) getRosters(ctx context.Context, matchIDs []string) (map[string][2][]string, error) {
	query, args, err := sqlx.In(`
		SELECT match_id, steam_id, team
		FROM match_players
		WHERE match_id IN (?)
		ORDER BY match_id, team, position`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	var rows []rosterRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	rosters := make(map[string][2][]string, len(matchIDs))
	for _, row := range rows {
		roster := rosters[row.MatchID]
		roster[row.Team-1] = append(roster[row.Team-1], row.SteamID)
		rosters[row.MatchID] = roster
	}
	return rosters, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
