package service

import (
	"fmt"
	"math"
	"sort"
	"teammate-tracker/internal/api"
	"teammate-tracker/internal/domain"
	"time"
)

// Normalizer maps the provider's two match-detail shapes onto one normalized
// match. Shape dispatch is a tagged decision on the presence of per-player
// team tags, not scattered field-presence checks.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(raw *api.RawGameDetail) (*domain.Match, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("match detail has no id")
	}

	finishedAt, err := finishedAt(raw)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", raw.ID, err)
	}

	match := &domain.Match{
		MatchID:    raw.ID,
		Map:        mapName(raw),
		MatchType:  raw.DataSource,
		FinishedAt: finishedAt,
		CreatedAt:  time.Now(),
	}

	if isDetailed(raw) {
		err = n.normalizeDetailed(raw, match)
	} else {
		err = n.normalizeSkeleton(raw, match)
	}
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", raw.ID, err)
	}

	if len(match.PlayersTeam1) == 0 || len(match.PlayersTeam2) == 0 {
		return nil, fmt.Errorf("match %s: empty roster", raw.ID)
	}
	return match, nil
}

// isDetailed: the detailed shape carries an explicit initial-team tag on every
// per-player record.
func isDetailed(raw *api.RawGameDetail) bool {
	return len(raw.PlayerStats) > 0 && raw.PlayerStats[0].InitialTeamNumber != nil
}

// normalizeDetailed splits the roster by initial-team tag (exactly two
// distinct values, lower value is team 1) and derives each team's score by
// summing its two half-segment round counts.
func (n *Normalizer) normalizeDetailed(raw *api.RawGameDetail, match *domain.Match) error {
	teamValues := make([]int, 0, 2)
	byTeam := make(map[int][]api.RawPlayerStat)
	for _, p := range raw.PlayerStats {
		if p.InitialTeamNumber == nil {
			return fmt.Errorf("player %s has no team tag", p.Steam64ID)
		}
		team := *p.InitialTeamNumber
		if _, seen := byTeam[team]; !seen {
			teamValues = append(teamValues, team)
		}
		byTeam[team] = append(byTeam[team], p)
	}
	if len(teamValues) != 2 {
		return fmt.Errorf("expected 2 teams, got %d", len(teamValues))
	}
	sort.Ints(teamValues)

	for i, team := range teamValues {
		players := byTeam[team]
		roster := make([]string, len(players))
		for j, p := range players {
			roster[j] = p.Steam64ID
		}
		rounds := halfRoundTotal(players[0])
		if i == 0 {
			match.PlayersTeam1, match.RoundsTeam1 = roster, rounds
		} else {
			match.PlayersTeam2, match.RoundsTeam2 = roster, rounds
		}
	}
	return nil
}

// normalizeSkeleton splits the flat player sequence at the midpoint, ceiling
// division giving team 1 the extra player, and uses the provider's partial
// scores directly without summation.
func (n *Normalizer) normalizeSkeleton(raw *api.RawGameDetail, match *domain.Match) error {
	players := raw.PlayerSteam64IDs
	if len(players) == 0 {
		for _, p := range raw.PlayerStats {
			players = append(players, p.Steam64ID)
		}
	}
	if len(players) == 0 {
		return fmt.Errorf("no players")
	}

	mid := (len(players) + 1) / 2
	match.PlayersTeam1 = append([]string(nil), players[:mid]...)
	match.PlayersTeam2 = append([]string(nil), players[mid:]...)
	match.RoundsTeam1 = finiteScore(raw.Team1Score)
	match.RoundsTeam2 = finiteScore(raw.Team2Score)
	return nil
}

// halfRoundTotal sums the terrorist and counter-terrorist half counts. A
// total that cannot be computed as a finite number is absent, never zero.
func halfRoundTotal(p api.RawPlayerStat) *int {
	if p.TRoundsWon == nil || p.CTRoundsWon == nil {
		return nil
	}
	sum := *p.TRoundsWon + *p.CTRoundsWon
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil
	}
	total := int(sum)
	return &total
}

func finiteScore(v *float64) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	score := int(*v)
	return &score
}

// The two shapes name the same concepts differently; accept either name.

func mapName(raw *api.RawGameDetail) string {
	if raw.MapName != "" {
		return raw.MapName
	}
	return raw.Map
}

func finishedAt(raw *api.RawGameDetail) (time.Time, error) {
	if raw.FinishedAt != nil {
		return *raw.FinishedAt, nil
	}
	if raw.GameFinishedAt != nil {
		return *raw.GameFinishedAt, nil
	}
	return time.Time{}, fmt.Errorf("no completion timestamp")
}
