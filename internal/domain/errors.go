package domain

import "errors"

var (
	// ErrUnresolvable means the query matched none of the identifier
	// patterns and the vanity fallback (if reached) found nothing.
	ErrUnresolvable = errors.New("identifier did not resolve to a steam64 id")

	// ErrVanityNotFound is the vanity resolver's "no such alias" outcome.
	ErrVanityNotFound = errors.New("vanity alias not found")

	// ErrProfileNotFound means the profile provider has no record of the id.
	ErrProfileNotFound = errors.New("player profile not found")

	// ErrRankingNotFound is the ranking provider's 404 for a game label.
	// Legitimate "no data", not a failure.
	ErrRankingNotFound = errors.New("no ranking data for player")

	// ErrRankingTimeout marks a ranking lookup that hit the client-side
	// deadline. Distinct from ErrRankingNotFound.
	ErrRankingTimeout = errors.New("ranking provider timed out")
)
