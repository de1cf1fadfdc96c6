// Package steamid normalizes free-form user queries into canonical steam64
// ids. A query may be a bare 17-digit id, a community profile URL, a stats
// site profile URL, or a vanity URL whose alias needs one external lookup.
package steamid

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/domain"

	"github.com/rs/zerolog"
)

var (
	steam64Regex     = regexp.MustCompile(`\d{17}`)
	steam64URLRegex  = regexp.MustCompile(`https://steamcommunity\.com/profiles/(\d{17})`)
	leetifyURLRegex  = regexp.MustCompile(`https://leetify\.com/app/profile/(\d{17})`)
	steamVanityRegex = regexp.MustCompile(`https://steamcommunity\.com/id/([a-zA-Z0-9_-]+)/?`)
)

// VanityResolver is the external name-resolution endpoint for vanity aliases.
type VanityResolver interface {
	ResolveVanity(ctx context.Context, alias string) (string, error)
}

type pattern struct {
	name   string
	re     *regexp.Regexp
	group  int
	vanity bool
}

var (
	numericPattern = pattern{name: "steam64", re: steam64Regex, group: 0}
	profilePattern = pattern{name: "profile-url", re: steam64URLRegex, group: 1}
	leetifyPattern = pattern{name: "stats-url", re: leetifyURLRegex, group: 1}
	vanityPattern  = pattern{name: "vanity-url", re: steamVanityRegex, group: 1, vanity: true}
)

type Resolver struct {
	patterns []pattern
	vanity   VanityResolver
	logger   zerolog.Logger
}

func NewResolver(cfg *config.Config, vanity VanityResolver, logger zerolog.Logger) *Resolver {
	var patterns []pattern
	switch cfg.ResolverOrder {
	case config.ResolverVanityFirst:
		patterns = []pattern{vanityPattern, profilePattern, leetifyPattern, numericPattern}
	default:
		patterns = []pattern{numericPattern, profilePattern, leetifyPattern, vanityPattern}
	}
	return &Resolver{patterns: patterns, vanity: vanity, logger: logger}
}

// Resolve tries the configured patterns in priority order and returns on the
// first structural match. A vanity alias the provider cannot resolve is
// domain.ErrUnresolvable, not a reason to try lower-priority patterns.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	for _, p := range r.patterns {
		m := p.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if !p.vanity {
			r.logger.Debug().Str("pattern", p.name).Str("steam_id", m[p.group]).Msg("query resolved")
			return m[p.group], nil
		}

		steamID, err := r.vanity.ResolveVanity(ctx, m[p.group])
		if err != nil {
			if errors.Is(err, domain.ErrVanityNotFound) {
				return "", domain.ErrUnresolvable
			}
			return "", fmt.Errorf("vanity lookup failed: %w", err)
		}
		r.logger.Debug().Str("pattern", p.name).Str("steam_id", steamID).Msg("query resolved")
		return steamID, nil
	}
	return "", domain.ErrUnresolvable
}
