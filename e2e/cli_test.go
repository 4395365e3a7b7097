package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NetroScript/tf2pickup-server/internal/api"
	"github.com/NetroScript/tf2pickup-server/internal/factory"
	"github.com/NetroScript/tf2pickup-server/internal/identity"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "pickupctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pickupctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runAs("", args...)
}

func (r *cliRunner) runAs(actingPlayer string, args ...string) (string, error) {
	fullArgs := []string{"--server", r.serverURL, "--output", "json"}
	if actingPlayer != "" {
		fullArgs = append(fullArgs, "--as", actingPlayer)
	}
	fullArgs = append(fullArgs, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "PICKUPCTL_SERVER=", "PICKUPCTL_AS=")
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server backed by a TestApp
type testServer struct {
	app      *factory.TestApp
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := factory.NewTestApp(gomock.NewController(t))

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		PlayersService: app.PlayersService,
		History:        app.History,
		HubManager:     app.HubManager,
		StorageType:    app.StorageType,
	})

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	server.RegisterOnShutdown(app.HubManager.Shutdown)

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// expectEligible primes the gateway for one successful registration
func (ts *testServer) expectEligible(id, steamID, name string, etf2lID int) {
	ts.app.MockIDGen.Queue(id)
	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), steamID).Return(1200, nil)
	ts.app.MockGateway.EXPECT().ETF2LProfile(gomock.Any(), steamID).Return(&identity.ETF2LProfile{ID: etf2lID, Name: name}, nil)
	ts.app.MockSink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
}

// Response types for JSON parsing
type playerResponse struct {
	ID               string `json:"id"`
	SteamID          string `json:"steam_id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	ETF2LProfileID   *int   `json:"etf2l_profile_id"`
	HasAcceptedRules bool   `json:"has_accepted_rules"`
	TwitchTVUser     *struct {
		UserID string `json:"user_id"`
		Login  string `json:"login"`
	} `json:"twitch_tv_user"`
}

type statsResponse struct {
	Player        string         `json:"player"`
	GamesPlayed   int            `json:"games_played"`
	ClassesPlayed map[string]int `json:"classes_played"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Storage)
}

func TestCLI_PlayerLifecycle(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register the super user and a regular player
	ts.expectEligible("root", factory.TestSuperUser, "root", 1)
	output, err := cli.run("player", "register", "--steam-id", factory.TestSuperUser, "--name", "root")
	require.NoError(t, err, "output: %s", output)

	var admin playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &admin))
	assert.Equal(t, "super-user", admin.Role)

	ts.app.MockClock.Advance(time.Minute)
	ts.expectEligible("p1", "76561198000000001", "maly", 1000)
	output, err = cli.run("player", "register", "--steam-id", "76561198000000001", "--name", "steam-maly")
	require.NoError(t, err, "output: %s", output)

	var player playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "maly", player.Name)
	assert.Empty(t, player.Role)

	// Lookups
	output, err = cli.run("player", "find", "--etf2l", "1000")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "p1", player.ID)

	// Rules
	output, err = cli.run("player", "accept-rules", "p1")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.True(t, player.HasAcceptedRules)

	// Admin edit without an acting player is refused by the CLI itself
	_, err = cli.run("player", "update", "p1", "--name", "maly2")
	require.Error(t, err)

	ts.app.MockSink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	output, err = cli.runAs("root", "player", "update", "p1", "--name", "maly2", "--role", "admin")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "maly2", player.Name)
	assert.Equal(t, "admin", player.Role)

	// Twitch
	output, err = cli.run("player", "link-twitch", "p1", "--user-id", "tw-1", "--login", "maly_tv")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("streamers")
	require.NoError(t, err, "output: %s", output)
	var streamers []playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &streamers))
	require.Len(t, streamers, 1)
	require.NotNil(t, streamers[0].TwitchTVUser)
	assert.Equal(t, "maly_tv", streamers[0].TwitchTVUser.Login)

	// Listing keeps join order
	output, err = cli.run("player", "list")
	require.NoError(t, err, "output: %s", output)
	var all []playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "root", all[0].ID)
	assert.Equal(t, "p1", all[1].ID)
}

func TestCLI_RegistrationRejected(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	ts.app.MockGateway.EXPECT().HoursInGame(gomock.Any(), "76561198000000009").Return(3, nil)

	_, err := cli.run("player", "register", "--steam-id", "76561198000000009", "--name", "fresh")
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, string(exitErr.Stderr), "NOT_ELIGIBLE")
}

func TestCLI_GamesAndStats(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	ts.expectEligible("p1", "76561198000000001", "maly", 1000)
	_, err := cli.run("player", "register", "--steam-id", "76561198000000001", "--name", "maly")
	require.NoError(t, err)

	for i, class := range []string{"soldier", "soldier", "medic"} {
		id := string(rune('a' + i))
		output, err := cli.run("game", "record", "g-"+id, "--number", "1", "--slot", "p1:"+class)
		require.NoError(t, err, "output: %s", output)
	}

	// Launched games do not count
	_, err = cli.run("game", "record", "g-live", "--number", "4", "--state", "launching", "--slot", "p1:scout")
	require.NoError(t, err)

	output, err := cli.run("player", "stats", "p1")
	require.NoError(t, err, "output: %s", output)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 3, stats.GamesPlayed)
	assert.Equal(t, map[string]int{"soldier": 2, "medic": 1}, stats.ClassesPlayed)
}
