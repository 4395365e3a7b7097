package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case PlayerStats:
		o.printStats(v)
	case Game:
		o.printGame(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// TwitchTVUser response type (matches API)
type TwitchTVUser struct {
	UserID          string `json:"user_id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Player response type
type Player struct {
	ID               string        `json:"id"`
	SteamID          string        `json:"steam_id"`
	Name             string        `json:"name"`
	AvatarURL        string        `json:"avatar_url,omitempty"`
	Role             string        `json:"role,omitempty"`
	ETF2LProfileID   *int          `json:"etf2l_profile_id,omitempty"`
	HasAcceptedRules bool          `json:"has_accepted_rules"`
	TwitchTVUser     *TwitchTVUser `json:"twitch_tv_user,omitempty"`
	JoinedAt         time.Time     `json:"joined_at"`
}

// PlayerStats response type
type PlayerStats struct {
	Player        string         `json:"player"`
	GamesPlayed   int            `json:"games_played"`
	ClassesPlayed map[string]int `json:"classes_played"`
}

// GameSlot response type
type GameSlot struct {
	PlayerID  string `json:"player_id"`
	GameClass string `json:"game_class"`
}

// Game response type
type Game struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	State      string     `json:"state"`
	Slots      []GameSlot `json:"slots"`
	LaunchedAt time.Time  `json:"launched_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printPlayer(p Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	_, _ = fmt.Fprintf(o.w, "SteamID: %s\n", p.SteamID)
	if p.Role != "" {
		_, _ = fmt.Fprintf(o.w, "Role: %s\n", p.Role)
	}
	if p.ETF2LProfileID != nil {
		_, _ = fmt.Fprintf(o.w, "ETF2L: %d\n", *p.ETF2LProfileID)
	}
	if p.TwitchTVUser != nil {
		_, _ = fmt.Fprintf(o.w, "Twitch: %s (%s)\n", p.TwitchTVUser.Login, p.TwitchTVUser.UserID)
	}
	rules := "no"
	if p.HasAcceptedRules {
		rules = "yes"
	}
	_, _ = fmt.Fprintf(o.w, "Accepted rules: %s\n", rules)
	_, _ = fmt.Fprintf(o.w, "Joined: %s\n", p.JoinedAt.Format(time.RFC3339))
}

func (o *Output) printPlayers(players []Player) {
	if len(players) == 0 {
		_, _ = fmt.Fprintln(o.w, "No players")
		return
	}
	for _, p := range players {
		role := ""
		if p.Role != "" {
			role = " [" + p.Role + "]"
		}
		_, _ = fmt.Fprintf(o.w, "%s  %s  %s%s\n", p.ID, p.SteamID, p.Name, role)
	}
}

func (o *Output) printStats(s PlayerStats) {
	_, _ = fmt.Fprintf(o.w, "Player: %s\n", s.Player)
	_, _ = fmt.Fprintf(o.w, "Games played: %d\n", s.GamesPlayed)

	classes := make([]string, 0, len(s.ClassesPlayed))
	for class := range s.ClassesPlayed {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		_, _ = fmt.Fprintf(o.w, "  %s: %d\n", class, s.ClassesPlayed[class])
	}
}

func (o *Output) printGame(g Game) {
	_, _ = fmt.Fprintf(o.w, "Game #%d (%s)\n", g.Number, g.ID)
	_, _ = fmt.Fprintf(o.w, "State: %s\n", g.State)
	_, _ = fmt.Fprintf(o.w, "Slots (%d):\n", len(g.Slots))
	for _, s := range g.Slots {
		_, _ = fmt.Fprintf(o.w, "  - %s: %s\n", s.GameClass, s.PlayerID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		_, _ = fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
