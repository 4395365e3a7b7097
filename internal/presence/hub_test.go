package presence

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	manager *HubManager
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.manager = NewHubManager(testutil.NopLogger())
}

func (s *HubSuite) TearDownTest() {
	s.manager.Shutdown()
}

func (s *HubSuite) connect(playerID model.PlayerID) *Client {
	hub := s.manager.GetOrCreateHub(playerID)
	client := NewClient(hub, playerID)
	s.Require().True(hub.Register(client))
	s.Require().Eventually(func() bool {
		for _, c := range hub.Clients() {
			if c == client {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)
	return client
}

func (s *HubSuite) receive(client *Client) string {
	select {
	case msg := <-client.send:
		return string(msg)
	case <-time.After(time.Second):
		s.FailNow("client did not receive message")
		return ""
	}
}

func (s *HubSuite) TestHandlesForUnknownPlayer() {
	s.Empty(s.manager.HandlesFor("nobody"))
}

func (s *HubSuite) TestHandlesForReturnsEveryConnection() {
	s.connect("p1")
	s.connect("p1")
	s.connect("p2")

	s.Len(s.manager.HandlesFor("p1"), 2)
	s.Len(s.manager.HandlesFor("p2"), 1)
}

func (s *HubSuite) TestPushDeliversJSONEvent() {
	client := s.connect("p1")
	name := "maly"

	handles := s.manager.HandlesFor("p1")
	s.Require().Len(handles, 1)
	s.Require().NoError(handles[0].Push(model.EventProfileUpdate, model.ProfileUpdatePayload{Name: &name}))

	msg := s.receive(client)
	s.Equal("event: profile update\ndata: {\"name\":\"maly\"}\n\n", msg)
}

func (s *HubSuite) TestPushOnlyReachesTargetConnection() {
	first := s.connect("p1")
	second := s.connect("p1")

	s.Require().NoError(first.Push(model.EventProfileUpdate, map[string]string{"k": "v"}))
	s.Contains(s.receive(first), `"k":"v"`)

	select {
	case msg := <-second.send:
		s.Failf("unexpected delivery", "got %q", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func (s *HubSuite) TestFullClientBufferDropsInsteadOfBlocking() {
	client := s.connect("p1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize*2; i++ {
			_ = client.Push(model.EventProfileUpdate, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("push blocked on a full client")
	}

	s.Eventually(func() bool { return len(client.send) == sendBufferSize }, time.Second, time.Millisecond)
}

func (s *HubSuite) TestUnregisterClosesSendChannel() {
	client := s.connect("p1")
	client.hub.Unregister(client)

	s.Eventually(func() bool {
		select {
		case _, ok := <-client.send:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	s.Empty(s.manager.HandlesFor("p1"))
}

func (s *HubSuite) TestCleanupEmptyHubs() {
	client := s.connect("p1")
	s.connect("p2")

	client.hub.Unregister(client)
	s.Eventually(func() bool { return client.hub.ClientCount() == 0 }, time.Second, time.Millisecond)

	s.manager.CleanupEmptyHubs()

	s.Nil(s.manager.GetHub("p1"))
	s.NotNil(s.manager.GetHub("p2"))
}

func (s *HubSuite) TestRegisterOnClosedHubFails() {
	hub := s.manager.GetOrCreateHub("p1")
	hub.Close()

	s.False(hub.Register(NewClient(hub, "p1")))
}

func (s *HubSuite) TestNopHasNoHandles() {
	s.Nil(Nop{}.HandlesFor("p1"))
}

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		data     string
		expected string
	}{
		{"single line", "profile update", `{"name":"a"}`, "event: profile update\ndata: {\"name\":\"a\"}\n\n"},
		{"multi line", "e", "a\nb", "event: e\ndata: a\ndata: b\n\n"},
		{"crlf", "e", "a\r\nb", "event: e\ndata: a\ndata: b\n\n"},
		{"empty", "e", "", "event: e\ndata: \n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(formatSSEMessage(tt.event, tt.data))
			if got != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q", tt.event, tt.data, got, tt.expected)
			}
		})
	}
}

func TestSplitLinesKeepsInnerBlankLines(t *testing.T) {
	got := splitLines("a\n\nb\n")
	if strings.Join(got, "|") != "a||b" {
		t.Errorf("splitLines = %q", got)
	}
}
