package api

import (
	"context"
	"fmt"
	"net/url"
	"teammate-tracker/internal/config"
	"teammate-tracker/internal/domain"

	"github.com/valyala/fasthttp"
)

const steamBaseURL = "https://api.steampowered.com"

// vanity resolution success code per the Steam Web API
const vanitySuccess = 1

type SteamClient struct {
	apiKey string
	client *fasthttp.Client
}

func NewSteamClient(cfg *config.Config) *SteamClient {
	return &SteamClient{
		apiKey: cfg.SteamAPIKey,
		client: newHTTPClient(),
	}
}

type vanityResponse struct {
	Response struct {
		SteamID string `json:"steamid"`
		Success int    `json:"success"`
		Message string `json:"message"`
	} `json:"response"`
}

// ResolveVanity turns a human-chosen profile alias into a steam64 id.
// A provider "no match" comes back as domain.ErrVanityNotFound.
func (c *SteamClient) ResolveVanity(ctx context.Context, alias string) (string, error) {
	u := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v0001/?key=%s&vanityurl=%s",
		steamBaseURL, c.apiKey, url.QueryEscape(alias))

	resp, err := doRequest[vanityResponse](ctx, c.client, u)
	if err != nil {
		return "", err
	}
	if resp.Response.Success != vanitySuccess || resp.Response.SteamID == "" {
		return "", domain.ErrVanityNotFound
	}
	return resp.Response.SteamID, nil
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
			AvatarFull  string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}

// GetPlayerSummaries fetches name and avatar for a steam64 id. An unknown id
// yields domain.ErrProfileNotFound.
func (c *SteamClient) GetPlayerSummaries(ctx context.Context, steamID string) (*domain.PlayerProfile, error) {
	u := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v0002/?key=%s&steamids=%s",
		steamBaseURL, c.apiKey, url.QueryEscape(steamID))

	resp, err := doRequest[playerSummariesResponse](ctx, c.client, u)
	if err != nil {
		return nil, err
	}
	if len(resp.Response.Players) == 0 {
		return nil, domain.ErrProfileNotFound
	}

	p := resp.Response.Players[0]
	return &domain.PlayerProfile{
		SteamID:   p.SteamID,
		Name:      p.PersonaName,
		AvatarURL: p.AvatarFull,
	}, nil
}
