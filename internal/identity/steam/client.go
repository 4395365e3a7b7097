// Package steam reads a player's TF2 playtime from the Steam Web API.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NetroScript/tf2pickup-server/internal/identity"
)

const (
	// TF2AppID is Team Fortress 2's Steam application id
	TF2AppID = 440

	defaultBaseURL = "https://api.steampowered.com"
	defaultTimeout = 10 * time.Second
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config controls how the client reaches the Steam Web API
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client implements identity.HoursLookup against IPlayerService/GetOwnedGames
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
}

// Ensure Client implements HoursLookup
var _ identity.HoursLookup = (*Client)(nil)

// NewClient constructs a Steam client with the provided configuration
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		doer = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: doer,
	}
}

type ownedGamesResponse struct {
	Response struct {
		GameCount *int `json:"game_count"`
		Games     []struct {
			AppID           int `json:"appid"`
			PlaytimeForever int `json:"playtime_forever"` // minutes
		} `json:"games"`
	} `json:"response"`
}

// HoursInGame returns whole hours of TF2 played. A profile hiding its
// library yields identity.ErrPrivateProfile.
func (c *Client) HoursInGame(ctx context.Context, steamID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/IPlayerService/GetOwnedGames/v0001/", nil)
	if err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamid", steamID)
	q.Set("format", "json")
	q.Set("include_played_free_games", "1")
	q.Set("appids_filter[0]", fmt.Sprint(TF2AppID))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("steam: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload ownedGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("steam: decode owned games: %w", err)
	}

	if payload.Response.GameCount == nil {
		return 0, identity.ErrPrivateProfile
	}
	for _, g := range payload.Response.Games {
		if g.AppID == TF2AppID {
			return g.PlaytimeForever / 60, nil
		}
	}
	return 0, nil
}
