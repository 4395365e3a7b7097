// Package identity verifies a player's third-party standing before they are
// allowed to register: in-game hours from Steam and league history from ETF2L.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrProfileNotFound means the league has no profile for the SteamID
	ErrProfileNotFound = errors.New("etf2l profile not found")
	// ErrPrivateProfile means Steam refused to disclose the player's game library
	ErrPrivateProfile = errors.New("steam profile is private")
)

// Ban is a league ban; Start and End are unix seconds
type Ban struct {
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
	Reason string `json:"reason"`
}

// ETF2LProfile is the subset of an ETF2L player record registration needs
type ETF2LProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bans []Ban  `json:"bans"`
}

// ActiveBans returns the bans that have not yet expired at now
func (p *ETF2LProfile) ActiveBans(now time.Time) []Ban {
	var active []Ban
	for _, b := range p.Bans {
		if b.End > now.Unix() {
			active = append(active, b)
		}
	}
	return active
}

// HoursLookup reports how long a player has played the game
type HoursLookup interface {
	HoursInGame(ctx context.Context, steamID string) (int, error)
}

// ProfileLookup fetches a player's league profile
type ProfileLookup interface {
	ETF2LProfile(ctx context.Context, steamID string) (*ETF2LProfile, error)
}

//go:generate go tool mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/NetroScript/tf2pickup-server/internal/identity Gateway

// Gateway combines both lookups. The two are independent and either may fail.
type Gateway interface {
	HoursLookup
	ProfileLookup
}
