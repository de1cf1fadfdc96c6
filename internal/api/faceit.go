package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/domain"

	"github.com/valyala/fasthttp"
)

// FaceitClient looks up competitive-ranking snapshots per game label.
type FaceitClient struct {
	apiKey string
	client *fasthttp.Client
}

func NewFaceitClient(cfg *config.Config) *FaceitClient {
	return &FaceitClient{
		apiKey: cfg.FaceitAPIKey,
		client: newHTTPClient(),
	}
}

type faceitPlayerResponse struct {
	PlayerID string `json:"player_id"`
	Games    map[string]struct {
		FaceitElo  int `json:"faceit_elo"`
		SkillLevel int `json:"skill_level"`
	} `json:"games"`
}

// GetRanking fetches the player's rating for one game label. A provider 404
// surfaces as domain.ErrRankingNotFound; hitting the client-side deadline
// surfaces as domain.ErrRankingTimeout.
func (c *FaceitClient) GetRanking(ctx context.Context, steamID, game string) (*domain.RankingSnapshot, error) {
	u := fmt.Sprintf("https://open.faceit.com/data/v4/players?game=%s&game_player_id=%s",
		url.QueryEscape(game), url.QueryEscape(steamID))

	resp, err := doRequest[faceitPlayerResponse](ctx, c.client,
		u, header{"Authorization", "Bearer " + c.apiKey})
	if err != nil {
		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.Code == fasthttp.StatusNotFound:
			return nil, domain.ErrRankingNotFound
		case isTimeout(err):
			return nil, domain.ErrRankingTimeout
		}
		return nil, err
	}

	stats, ok := resp.Games[game]
	if !ok {
		return nil, domain.ErrRankingNotFound
	}

	return &domain.RankingSnapshot{
		Status:     domain.RankingFound,
		Elo:        stats.FaceitElo,
		SkillLevel: stats.SkillLevel,
		Game:       game,
	}, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		os.IsTimeout(err)
}
