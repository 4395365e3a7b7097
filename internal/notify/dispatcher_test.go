package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/NetroScript/tf2pickup-server/internal/notify"
	"github.com/NetroScript/tf2pickup-server/internal/notify/mocks"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	sink *mocks.MockSink
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sink = mocks.NewMockSink(s.ctrl)
}

func (s *DispatcherSuite) TestDeliversMessage() {
	msg := notify.NewPlayer("maly", "https://tf2pickup.test/player/p1")
	s.sink.EXPECT().Send(gomock.Any(), msg).Return(nil)

	d := notify.NewDispatcher(s.sink, time.Second, testutil.NopLogger())
	d.Notify(context.Background(), msg)
	d.Wait()
}

func (s *DispatcherSuite) TestFailureIsLoggedNotReturned() {
	s.sink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("discord is down"))

	logger, logs := testutil.CaptureLogger()
	d := notify.NewDispatcher(s.sink, time.Second, logger)
	d.Notify(context.Background(), notify.NewPlayer("maly", "u"))
	d.Wait()

	s.Contains(logs.String(), "admin notification failed")
	s.Contains(logs.String(), "discord is down")
}

func (s *DispatcherSuite) TestSurvivesCallerCancellation() {
	ctx, cancel := context.WithCancel(context.Background())

	s.sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ notify.Message) error {
		return ctx.Err()
	})

	logger, logs := testutil.CaptureLogger()
	d := notify.NewDispatcher(s.sink, time.Second, logger)
	cancel()
	d.Notify(ctx, notify.NewPlayer("maly", "u"))
	d.Wait()

	s.NotContains(logs.String(), "admin notification failed")
}

func (s *DispatcherSuite) TestDeliveryIsBoundedByTimeout() {
	s.sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ notify.Message) error {
		<-ctx.Done()
		return ctx.Err()
	})

	d := notify.NewDispatcher(s.sink, 10*time.Millisecond, testutil.NopLogger())
	start := time.Now()
	d.Notify(context.Background(), notify.NewPlayer("maly", "u"))
	d.Wait()

	s.Less(time.Since(start), time.Second)
}

func (s *DispatcherSuite) TestNotifyDoesNotBlock() {
	release := make(chan struct{})
	s.sink.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, notify.Message) error {
		<-release
		return nil
	})

	d := notify.NewDispatcher(s.sink, time.Second, testutil.NopLogger())

	done := make(chan struct{})
	go func() {
		d.Notify(context.Background(), notify.NewPlayer("maly", "u"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Notify blocked on a slow sink")
	}
	close(release)
	d.Wait()
}

func (s *DispatcherSuite) TestNilSinkFallsBackToNop() {
	d := notify.NewDispatcher(nil, time.Second, testutil.NopLogger())
	d.Notify(context.Background(), notify.NewPlayer("maly", "u"))
	d.Wait()
}

type MessagesSuite struct {
	suite.Suite
}

func TestMessagesSuite(t *testing.T) {
	suite.Run(t, new(MessagesSuite))
}

func (s *MessagesSuite) TestNewPlayer() {
	msg := notify.NewPlayer("maly", "https://tf2pickup.test/player/p1")

	s.Equal(notify.KindNewPlayer, msg.Kind)
	s.Equal("https://tf2pickup.test/player/p1", msg.URL)
	s.Contains(msg.Description, "maly")
}

func (s *MessagesSuite) TestPlayerNameChanged() {
	msg := notify.PlayerNameChanged("old", "new", "https://tf2pickup.test/player/p1", "admin")

	s.Equal(notify.KindPlayerNameChanged, msg.Kind)
	s.Equal([]notify.Field{
		{Name: "Old name", Value: "old"},
		{Name: "New name", Value: "new"},
		{Name: "Admin responsible", Value: "admin"},
	}, msg.Fields)
}
