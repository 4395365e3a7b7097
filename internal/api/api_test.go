package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NetroScript/tf2pickup-server/internal/api"
	"github.com/NetroScript/tf2pickup-server/internal/api/apierr"
	"github.com/NetroScript/tf2pickup-server/internal/api/response"
	"github.com/NetroScript/tf2pickup-server/internal/factory"
	"github.com/NetroScript/tf2pickup-server/internal/identity"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

const steamID = "76561198000000001"

// testServer wires the router to a TestApp
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp(gomock.NewController(t))
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		PlayersService: app.PlayersService,
		History:        app.History,
		HubManager:     app.HubManager,
		StorageType:    app.StorageType,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, actingPlayer string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if actingPlayer != "" {
		req.Header.Set("X-Player-ID", actingPlayer)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register registers a player through the API with eligible lookups
func (ts *testServer) register(t *testing.T, id, steamID, name string, etf2lID int) response.Player {
	t.Helper()

	ts.app.MockIDGen.Queue(id)
	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), steamID).Return(900, nil)
	ts.app.MockGateway.EXPECT().ETF2LProfile(gomock.Any(), steamID).Return(&identity.ETF2LProfile{ID: etf2lID, Name: name}, nil)
	ts.app.MockSink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]any{
		"steam_id":     steamID,
		"display_name": "steam-" + name,
		"photos":       []string{"https://avatars.test/a.jpg"},
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var player response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
	ts.app.Notifier.Wait()
	return player
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	assert.Contains(t, rr.Body.String(), `"storage":"memory"`)
}

func TestRegisterPlayer(t *testing.T) {
	ts := newTestServer(t)

	player := ts.register(t, "p1", steamID, "maly", 1000)

	assert.Equal(t, "p1", player.ID)
	assert.Equal(t, "maly", player.Name)
	assert.Equal(t, steamID, player.SteamID)
	assert.Equal(t, "https://avatars.test/a.jpg", player.AvatarURL)
	require.NotNil(t, player.ETF2LProfileID)
	assert.Equal(t, 1000, *player.ETF2LProfileID)
	assert.False(t, player.HasAcceptedRules)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"malformed", "{"},
		{"short steam id", map[string]string{"steam_id": "123", "display_name": "x"}},
		{"missing name", map[string]string{"steam_id": steamID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/players", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
		})
	}
}

func TestRegisterNotEligible(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), steamID).Return(10, nil)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"steam_id": steamID, "display_name": "newbie",
	}, "")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeNotEligible, apiErr.Code)
	assert.Contains(t, apiErr.Message, "insufficient hours")
}

func TestRegisterLookupFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), steamID).Return(0, identity.ErrPrivateProfile)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"steam_id": steamID, "display_name": "hidden",
	}, "")

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, apierr.CodeLookupFailed, decodeError(t, rr).Code)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), steamID).Return(900, nil)
	ts.app.MockGateway.EXPECT().ETF2LProfile(gomock.Any(), steamID).Return(&identity.ETF2LProfile{ID: 1000, Name: "maly"}, nil)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{
		"steam_id": steamID, "display_name": "maly",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetAndListPlayers(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)
	ts.app.MockClock.Advance(time.Minute)
	ts.register(t, "p2", "76561198000000002", "b4nny", 1001)

	rr := ts.request(http.MethodGet, "/api/v1/players/p2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"b4nny"`)

	rr = ts.request(http.MethodGet, "/api/v1/players", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all []response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)

	rr = ts.request(http.MethodGet, "/api/v1/players/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, decodeError(t, rr).Code)
}

func TestLookups(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	rr := ts.request(http.MethodGet, "/api/v1/players/steam/"+steamID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"p1"`)

	rr = ts.request(http.MethodGet, "/api/v1/players/etf2l/1000", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"p1"`)

	rr = ts.request(http.MethodGet, "/api/v1/players/etf2l/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/twitch/tw-1", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTwitchLinkAndStreamers(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	rr := ts.request(http.MethodPut, "/api/v1/players/p1/twitch", map[string]string{
		"user_id": "tw-1", "login": "maly_tv", "display_name": "Maly",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"login":"maly_tv"`)

	rr = ts.request(http.MethodGet, "/api/v1/players/twitch/tw-1", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/streamers", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var streamers []response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &streamers))
	require.Len(t, streamers, 1)

	rr = ts.request(http.MethodPut, "/api/v1/players/p1/twitch", map[string]string{"login": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAcceptRules(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	for i := 0; i < 2; i++ {
		rr := ts.request(http.MethodPost, "/api/v1/players/p1/accept-rules", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"has_accepted_rules":true`)
	}

	rr := ts.request(http.MethodPost, "/api/v1/players/ghost/accept-rules", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdatePlayer(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "admin", factory.TestSuperUser, "root", 1)
	ts.register(t, "p1", steamID, "maly", 1000)

	// Rename and promote
	ts.app.MockSink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	rr := ts.request(http.MethodPatch, "/api/v1/players/p1", `{"name":"maly2","role":"admin"}`, "admin")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	ts.app.Notifier.Wait()
	assert.Contains(t, rr.Body.String(), `"name":"maly2"`)
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)

	// Absent role leaves it alone
	rr = ts.request(http.MethodPatch, "/api/v1/players/p1", `{}`, "admin")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)

	// Null role clears it
	rr = ts.request(http.MethodPatch, "/api/v1/players/p1", `{"role":null}`, "admin")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"role"`)
}

func TestUpdatePlayerErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "admin", factory.TestSuperUser, "root", 1)
	ts.register(t, "p1", steamID, "maly", 1000)

	tests := []struct {
		name   string
		path   string
		body   string
		actor  string
		status int
		code   string
	}{
		{"no acting player", "/api/v1/players/p1", `{"name":"x"}`, "", http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"unknown admin", "/api/v1/players/p1", `{"name":"x"}`, "ghost", http.StatusNotFound, apierr.CodeAdminNotFound},
		{"unknown target", "/api/v1/players/ghost", `{"name":"x"}`, "admin", http.StatusNotFound, apierr.CodePlayerNotFound},
		{"invalid role", "/api/v1/players/p1", `{"role":"emperor"}`, "admin", http.StatusBadRequest, apierr.CodeInvalidRole},
		{"empty name", "/api/v1/players/p1", `{"name":""}`, "admin", http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"wrong type", "/api/v1/players/p1", `{"role":1}`, "admin", http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPatch, tt.path, tt.body, tt.actor)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestGamesAndStats(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	rr := ts.request(http.MethodPut, "/api/v1/games/g1", map[string]any{
		"number": 1,
		"state":  "ended",
		"slots":  []map[string]string{{"player_id": "p1", "game_class": "soldier"}},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPut, "/api/v1/games/g2", map[string]any{
		"number": 2,
		"state":  "ended",
		"slots":  []map[string]string{{"player_id": "p1", "game_class": "medic"}},
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/g1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"ended"`)

	rr = ts.request(http.MethodGet, "/api/v1/players/p1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats response.PlayerStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.GamesPlayed)
	assert.Equal(t, map[string]int{"soldier": 1, "medic": 1}, stats.ClassesPlayed)

	rr = ts.request(http.MethodPut, "/api/v1/games/g3", map[string]any{"state": "paused"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidGame, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPut, "/api/v1/games/g3", map[string]any{"id": "other", "state": "ended"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/ghost/stats", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventsStreamProfileUpdates(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "p1", steamID, "maly", 1000)

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/players/p1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool { return len(ts.app.HubManager.HandlesFor("p1")) == 1 }, time.Second, time.Millisecond)

	rr := ts.request(http.MethodPut, "/api/v1/players/p1/twitch", map[string]string{"user_id": "tw-1", "login": "maly_tv"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: profile update") {
			break
		}
	}
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"twitchTvUser"`)
	assert.Contains(t, line, `"login":"maly_tv"`)
}

func TestEventsUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/ghost/events", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
