package api

import (
	"context"
	"fmt"
	"net/url"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/domain"
	"time"

	"github.com/valyala/fasthttp"
)

// LeetifyClient talks to the match-history provider. Match details arrive in
// one of two shapes (see RawGameDetail); the client does no shape dispatch of
// its own.
type LeetifyClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewLeetifyClient(cfg *config.Config) *LeetifyClient {
	return &LeetifyClient{
		baseURL: cfg.LeetifyBaseURL,
		client:  newHTTPClient(),
	}
}

type profileResponse struct {
	Games []gameSummary `json:"games"`
}

type recentGamesResponse struct {
	Games []gameSummary `json:"games"`
}

type gameSummary struct {
	GameID         string    `json:"gameId"`
	GameFinishedAt time.Time `json:"gameFinishedAt"`
}

// RawGameDetail holds both provider shapes for one match. The detailed shape
// fills PlayerStats (with team tags and half-segment round counts), MapName
// and FinishedAt; the skeleton shape fills PlayerSteam64IDs, Team1Score,
// Team2Score, Map and GameFinishedAt.
type RawGameDetail struct {
	ID         string `json:"id"`
	DataSource string `json:"dataSource"`

	MapName string `json:"mapName"`
	Map     string `json:"map"`

	FinishedAt     *time.Time `json:"finishedAt"`
	GameFinishedAt *time.Time `json:"gameFinishedAt"`

	PlayerStats []RawPlayerStat `json:"playerStats"`

	PlayerSteam64IDs []string `json:"playerSteam64Ids"`
	Team1Score       *float64 `json:"team1Score"`
	Team2Score       *float64 `json:"team2Score"`
}

type RawPlayerStat struct {
	Steam64ID         string   `json:"steam64Id"`
	InitialTeamNumber *int     `json:"initialTeamNumber"`
	TRoundsWon        *float64 `json:"tRoundsWon"`
	CTRoundsWon       *float64 `json:"ctRoundsWon"`
}

func (c *LeetifyClient) GetProfileGames(ctx context.Context, steamID string) ([]domain.MatchSummary, error) {
	u := fmt.Sprintf("%s/api/profile/%s", c.baseURL, url.PathEscape(steamID))

	resp, err := doRequest[profileResponse](ctx, c.client, u)
	if err != nil {
		return nil, err
	}
	return toSummaries(resp.Games), nil
}

// GetRecentGames is the provider's global recent-activity feed.
func (c *LeetifyClient) GetRecentGames(ctx context.Context) ([]domain.MatchSummary, error) {
	u := fmt.Sprintf("%s/api/games/recent", c.baseURL)

	resp, err := doRequest[recentGamesResponse](ctx, c.client, u)
	if err != nil {
		return nil, err
	}
	return toSummaries(resp.Games), nil
}

func (c *LeetifyClient) GetGameDetail(ctx context.Context, matchID string) (*RawGameDetail, error) {
	u := fmt.Sprintf("%s/api/games/%s", c.baseURL, url.PathEscape(matchID))
	return doRequest[RawGameDetail](ctx, c.client, u)
}

func toSummaries(games []gameSummary) []domain.MatchSummary {
	summaries := make([]domain.MatchSummary, len(games))
	for i, g := range games {
		summaries[i] = domain.MatchSummary{
			MatchID:    g.GameID,
			FinishedAt: g.GameFinishedAt,
		}
	}
	return summaries
}
