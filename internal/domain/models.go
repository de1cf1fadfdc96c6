package domain

import (
	"time"
)

// Match is the normalized unit of persisted history. A row is written once on
// first sight of a provider match id and never updated or deleted afterwards.
type Match struct {
	MatchID      string
	Map          string
	MatchType    string
	PlayersTeam1 []string
	PlayersTeam2 []string
	// RoundsTeam1/RoundsTeam2 are nil when the provider supplied no
	// definitive score. Zero is a valid completed-match score.
	RoundsTeam1 *int
	RoundsTeam2 *int
	FinishedAt  time.Time
	CreatedAt   time.Time
}

// CorrelatedMatch is a stored match tagged from the caller's perspective:
// Vs is true when the target sat on the opposing roster.
type CorrelatedMatch struct {
	Match
	Vs bool
}

// PlayerProfile is fetched live per query, never persisted.
type PlayerProfile struct {
	SteamID   string
	Name      string
	AvatarURL string
}

type RankingStatus string

const (
	RankingFound   RankingStatus = "found"
	RankingAbsent  RankingStatus = "absent"
	RankingTimeout RankingStatus = "timeout"
)

// RankingSnapshot is a live competitive-rating snapshot. Status distinguishes
// "player unranked" from "provider timed out".
type RankingSnapshot struct {
	Status     RankingStatus
	Elo        int
	SkillLevel int
	Game       string
}

type HistoryResult struct {
	ResolvedID string
	Profile    PlayerProfile
	Matches    []CorrelatedMatch
	Ranking    RankingSnapshot
	// Win rates over the vs / with partitions, from the caller's perspective.
	// Matches without a definitive score don't count toward the denominator.
	VsWinRate   float64
	WithWinRate float64
}

// MatchSummary is a provider match-list entry, enough to decide whether the
// full detail is worth fetching.
type MatchSummary struct {
	MatchID    string
	FinishedAt time.Time
}
