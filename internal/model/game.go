package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the lifecycle state of a game
type GameState string

const (
	GameStateLaunching   GameState = "launching"
	GameStateStarted     GameState = "started"
	GameStateEnded       GameState = "ended"
	GameStateInterrupted GameState = "interrupted"
)

// GameClass is a TF2 class a player can be slotted as
type GameClass string

const (
	ClassScout        GameClass = "scout"
	ClassSoldier      GameClass = "soldier"
	ClassPyro         GameClass = "pyro"
	ClassDemoman      GameClass = "demoman"
	ClassHeavyWeapons GameClass = "heavyweapons"
	ClassEngineer     GameClass = "engineer"
	ClassMedic        GameClass = "medic"
	ClassSniper       GameClass = "sniper"
	ClassSpy          GameClass = "spy"
)

// Valid reports whether c is one of the nine classes
func (c GameClass) Valid() bool {
	switch c {
	case ClassScout, ClassSoldier, ClassPyro, ClassDemoman, ClassHeavyWeapons,
		ClassEngineer, ClassMedic, ClassSniper, ClassSpy:
		return true
	}
	return false
}

// GameSlot assigns a player to a class within a game
type GameSlot struct {
	PlayerID  PlayerID  `json:"player"`
	GameClass GameClass `json:"gameClass"`
}

// Game is a record of a pickup game, as far as player statistics need it
type Game struct {
	ID         GameID     `json:"id"`
	Number     int        `json:"number"`
	State      GameState  `json:"state"`
	Slots      []GameSlot `json:"slots"`
	LaunchedAt time.Time  `json:"launchedAt"`
}

// SlotFor returns the slot occupied by the player, if any
func (g *Game) SlotFor(id PlayerID) (GameSlot, bool) {
	for _, s := range g.Slots {
		if s.PlayerID == id {
			return s, true
		}
	}
	return GameSlot{}, false
}
