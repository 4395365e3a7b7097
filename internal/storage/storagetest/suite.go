// Package storagetest holds the behavioural test suite every storage backend must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// Suite exercises a storage.Storage implementation. Backends run it with
// NewStorage set to build a fresh, empty store per test.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

var joined = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func newPlayer(id, steamID, name string, offset time.Duration) *model.Player {
	return &model.Player{
		ID:       model.PlayerID(id),
		SteamID:  steamID,
		Name:     name,
		JoinedAt: joined.Add(offset),
	}
}

func intPtr(i int) *int { return &i }

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	p := newPlayer("p1", "76561198000000001", "maly", 0)
	p.AvatarURL = "https://avatars.example/maly.jpg"
	p.Role = model.RoleAdmin
	p.ETF2LProfileID = intPtr(112758)

	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))

	got, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(p.SteamID, got.SteamID)
	s.Equal(p.Name, got.Name)
	s.Equal(p.AvatarURL, got.AvatarURL)
	s.Equal(model.RoleAdmin, got.Role)
	s.Require().NotNil(got.ETF2LProfileID)
	s.Equal(112758, *got.ETF2LProfileID)
	s.False(got.HasAcceptedRules)
	s.Nil(got.TwitchTVUser)
	s.True(p.JoinedAt.Equal(got.JoinedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestCreatePlayerRejectsDuplicateSteamID() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("p1", "76561198000000001", "first", 0)))

	err := s.Store.CreatePlayer(s.Ctx, newPlayer("p2", "76561198000000001", "second", time.Minute))
	s.ErrorIs(err, model.ErrPlayerAlreadyRegistered)

	_, err = s.Store.GetPlayer(s.Ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestConcurrentCreateAdmitsOnePlayerPerSteamID() {
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := newPlayer("p"+string(rune('a'+i)), "76561198000000001", "racer", 0)
			errs[i] = s.Store.CreatePlayer(s.Ctx, p)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrPlayerAlreadyRegistered)
		}
	}
	s.Equal(1, succeeded)
}

func (s *Suite) TestGetPlayerBySteamID() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("p1", "76561198000000001", "maly", 0)))

	got, err := s.Store.GetPlayerBySteamID(s.Ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.ID)

	_, err = s.Store.GetPlayerBySteamID(s.Ctx, "76561198000000002")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerByETF2LProfileID() {
	p := newPlayer("p1", "76561198000000001", "maly", 0)
	p.ETF2LProfileID = intPtr(42)
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))

	got, err := s.Store.GetPlayerByETF2LProfileID(s.Ctx, 42)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.ID)

	_, err = s.Store.GetPlayerByETF2LProfileID(s.Ctx, 43)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerOverwrites() {
	p := newPlayer("p1", "76561198000000001", "maly", 0)
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))

	p.Name = "maly2"
	p.HasAcceptedRules = true
	p.Role = model.RoleSuperUser
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, p))

	got, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("maly2", got.Name)
	s.True(got.HasAcceptedRules)
	s.Equal(model.RoleSuperUser, got.Role)
}

func (s *Suite) TestSavePlayerUnknown() {
	err := s.Store.SavePlayer(s.Ctx, newPlayer("ghost", "76561198000000009", "ghost", 0))
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayerIsACopy() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("p1", "76561198000000001", "maly", 0)))

	got, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("maly", again.Name)
}

func (s *Suite) TestTwitchAccountIndex() {
	p1 := newPlayer("p1", "76561198000000001", "maly", 0)
	p2 := newPlayer("p2", "76561198000000002", "niewiem", time.Minute)
	p3 := newPlayer("p3", "76561198000000003", "zoo", 2*time.Minute)
	for _, p := range []*model.Player{p1, p2, p3} {
		s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))
	}

	p1.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-1", Login: "maly_tv", DisplayName: "Maly"}
	p3.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-3", Login: "zoo_tv", DisplayName: "Zoo"}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, p1))
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, p3))

	streamers, err := s.Store.ListPlayersWithTwitchAccount(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(streamers, 2)
	s.Equal(model.PlayerID("p1"), streamers[0].ID)
	s.Equal(model.PlayerID("p3"), streamers[1].ID)
	s.Equal("maly_tv", streamers[0].TwitchTVUser.Login)

	got, err := s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-3")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p3"), got.ID)
}

func (s *Suite) TestRelinkingTwitchAccountDropsOldIndex() {
	p := newPlayer("p1", "76561198000000001", "maly", 0)
	p.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-old", Login: "old"}
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))

	p.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-new", Login: "new"}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, p))

	_, err := s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-old")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	got, err := s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-new")
	s.Require().NoError(err)
	s.Equal("new", got.TwitchTVUser.Login)

	streamers, err := s.Store.ListPlayersWithTwitchAccount(s.Ctx)
	s.Require().NoError(err)
	s.Len(streamers, 1)
}

func (s *Suite) TestSharedTwitchAccount() {
	a := newPlayer("a", "76561198000000001", "maly", 0)
	b := newPlayer("b", "76561198000000002", "niewiem", time.Minute)
	a.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-x", Login: "shared"}
	b.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-x", Login: "shared"}
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, a))
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, b))

	streamers, err := s.Store.ListPlayersWithTwitchAccount(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(streamers, 2)
	s.Equal(model.PlayerID("a"), streamers[0].ID)
	s.Equal(model.PlayerID("b"), streamers[1].ID)

	got, err := s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-x")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), got.ID, "earliest joined player wins the lookup")

	a.TwitchTVUser = &model.TwitchTVUser{UserID: "tw-y", Login: "own"}
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, a))

	got, err = s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-x")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("b"), got.ID)

	got, err = s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-y")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), got.ID)

	streamers, err = s.Store.ListPlayersWithTwitchAccount(s.Ctx)
	s.Require().NoError(err)
	s.Len(streamers, 2)

	b.TwitchTVUser = nil
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, b))

	_, err = s.Store.GetPlayerByTwitchUserID(s.Ctx, "tw-x")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	streamers, err = s.Store.ListPlayersWithTwitchAccount(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(streamers, 1)
	s.Equal(model.PlayerID("a"), streamers[0].ID)
}

func (s *Suite) TestSharedETF2LProfile() {
	a := newPlayer("a", "76561198000000001", "maly", 0)
	b := newPlayer("b", "76561198000000002", "niewiem", time.Minute)
	a.ETF2LProfileID = intPtr(42)
	b.ETF2LProfileID = intPtr(42)
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, a))
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, b))

	got, err := s.Store.GetPlayerByETF2LProfileID(s.Ctx, 42)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), got.ID)

	a.ETF2LProfileID = intPtr(43)
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, a))

	got, err = s.Store.GetPlayerByETF2LProfileID(s.Ctx, 42)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("b"), got.ID)

	got, err = s.Store.GetPlayerByETF2LProfileID(s.Ctx, 43)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("a"), got.ID)
}

func (s *Suite) TestListPlayersOrderedByJoinTime() {
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("late", "76561198000000003", "c", 2*time.Hour)))
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("early", "76561198000000001", "a", 0)))
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, newPlayer("middle", "76561198000000002", "b", time.Hour)))

	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("early"), players[0].ID)
	s.Equal(model.PlayerID("middle"), players[1].ID)
	s.Equal(model.PlayerID("late"), players[2].ID)
}

func (s *Suite) TestListPlayersEmpty() {
	players, err := s.Store.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:     "g1",
		Number: 1,
		State:  model.GameStateEnded,
		Slots: []model.GameSlot{
			{PlayerID: "p1", GameClass: model.ClassScout},
			{PlayerID: "p2", GameClass: model.ClassMedic},
		},
		LaunchedAt: joined,
	}
	s.Require().NoError(s.Store.SaveGame(s.Ctx, game))

	got, err := s.Store.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStateEnded, got.State)
	s.Equal(game.Slots, got.Slots)
	s.True(game.LaunchedAt.Equal(got.LaunchedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Store.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGetGamesForPlayer() {
	games := []*model.Game{
		{ID: "g1", Number: 1, State: model.GameStateEnded, Slots: []model.GameSlot{{PlayerID: "p1", GameClass: model.ClassSoldier}}},
		{ID: "g2", Number: 2, State: model.GameStateStarted, Slots: []model.GameSlot{{PlayerID: "p2", GameClass: model.ClassSoldier}}},
		{ID: "g3", Number: 3, State: model.GameStateInterrupted, Slots: []model.GameSlot{{PlayerID: "p1", GameClass: model.ClassMedic}}},
	}
	for _, g := range games {
		s.Require().NoError(s.Store.SaveGame(s.Ctx, g))
	}

	got, err := s.Store.GetGamesForPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(model.GameID("g1"), got[0].ID)
	s.Equal(model.GameID("g3"), got[1].ID)

	none, err := s.Store.GetGamesForPlayer(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestSaveGameUpdatesSlots() {
	game := &model.Game{ID: "g1", Number: 1, State: model.GameStateLaunching, Slots: []model.GameSlot{{PlayerID: "p1", GameClass: model.ClassScout}}}
	s.Require().NoError(s.Store.SaveGame(s.Ctx, game))

	// p1 was substituted by p2
	game.Slots = []model.GameSlot{{PlayerID: "p2", GameClass: model.ClassScout}}
	game.State = model.GameStateEnded
	s.Require().NoError(s.Store.SaveGame(s.Ctx, game))

	p1Games, err := s.Store.GetGamesForPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Empty(p1Games)

	p2Games, err := s.Store.GetGamesForPlayer(s.Ctx, "p2")
	s.Require().NoError(err)
	s.Require().Len(p2Games, 1)
	s.Equal(model.GameStateEnded, p2Games[0].State)
}
