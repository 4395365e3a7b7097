package factory

import (
	"time"

	"go.uber.org/mock/gomock"

	"github.com/NetroScript/tf2pickup-server/internal/dependencies/mocks"
	identitymocks "github.com/NetroScript/tf2pickup-server/internal/identity/mocks"
	notifymocks "github.com/NetroScript/tf2pickup-server/internal/notify/mocks"
	"github.com/NetroScript/tf2pickup-server/internal/services/players"
	"github.com/NetroScript/tf2pickup-server/internal/storage/memory"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

// Fixed values used by TestApp
const (
	TestClientURL      = "http://localhost:3000"
	TestSuperUser      = "76561198011558250"
	TestMinimumHours   = 500
	testNotifyDeadline = time.Second
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockIDGen   *mocks.MockIDGen
	MockGateway *identitymocks.MockGateway
	MockSink    *notifymocks.MockSink
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(ctrl *gomock.Controller) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDGen := mocks.NewMockIDGen()
	mockGateway := identitymocks.NewMockGateway(ctrl)
	mockSink := notifymocks.NewMockSink(ctrl)

	app := newWithDependencies(dependencies{
		store:       memory.New(),
		storageType: "memory",
		gateway:     mockGateway,
		sink:        mockSink,
		clock:       mockClock,
		idgen:       mockIDGen,
	}, players.Config{
		ClientURL:          TestClientURL,
		SuperUser:          TestSuperUser,
		MinimumInGameHours: TestMinimumHours,
	}, testNotifyDeadline, testutil.NopLogger())

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockIDGen:   mockIDGen,
		MockGateway: mockGateway,
		MockSink:    mockSink,
	}
}
