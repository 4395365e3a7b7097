// Package etf2l fetches player profiles from the ETF2L league API.
package etf2l

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
	defaultBaseURL = "https://api.etf2l.org"
	defaultTimeout = 10 * time.Second
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config controls how the client reaches the ETF2L API
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements identity.ProfileLookup
type Client struct {
	baseURL    string
	httpClient httpDoer
}

// Ensure Client implements ProfileLookup
var _ identity.ProfileLookup = (*Client)(nil)

// NewClient constructs an ETF2L client with the provided configuration
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
		httpClient: doer,
	}
}

type playerResponse struct {
	Player *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Bans []struct {
			Start  int64  `json:"start"`
			End    int64  `json:"end"`
			Reason string `json:"reason"`
		} `json:"bans"`
	} `json:"player"`
}

// ETF2LProfile returns the league profile registered for steamID, or
// identity.ErrProfileNotFound when there is none.
func (c *Client) ETF2LProfile(ctx context.Context, steamID string) (*identity.ETF2LProfile, error) {
	endpoint := fmt.Sprintf("%s/player/%s.json", c.baseURL, url.PathEscape(steamID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, identity.ErrProfileNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("etf2l: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("etf2l: decode player: %w", err)
	}
	if payload.Player == nil {
		return nil, identity.ErrProfileNotFound
	}

	profile := &identity.ETF2LProfile{
		ID:   payload.Player.ID,
		Name: payload.Player.Name,
	}
	for _, b := range payload.Player.Bans {
		profile.Bans = append(profile.Bans, identity.Ban{Start: b.Start, End: b.End, Reason: b.Reason})
	}
	return profile, nil
}
