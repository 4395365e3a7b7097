package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/NetroScript/tf2pickup-server/internal/identity"
	"github.com/NetroScript/tf2pickup-server/internal/identity/mocks"
	"github.com/NetroScript/tf2pickup-server/internal/testutil"
)

type RetrySuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	inner   *mocks.MockGateway
	gateway *identity.Service
	ctx     context.Context
}

func TestRetrySuite(t *testing.T) {
	suite.Run(t, new(RetrySuite))
}

func (s *RetrySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.inner = mocks.NewMockGateway(s.ctrl)
	s.gateway = identity.New(s.inner, s.inner, identity.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RetrySuite) TestHoursSucceedsAfterTransientFailure() {
	gomock.InOrder(
		s.inner.EXPECT().HoursInGame(gomock.Any(), "76561198074409147").Return(0, errors.New("timeout")),
		s.inner.EXPECT().HoursInGame(gomock.Any(), "76561198074409147").Return(812, nil),
	)

	hours, err := s.gateway.HoursInGame(s.ctx, "76561198074409147")
	s.Require().NoError(err)
	s.Equal(812, hours)
}

func (s *RetrySuite) TestHoursGivesUpAfterMaxAttempts() {
	boom := errors.New("steam down")
	s.inner.EXPECT().HoursInGame(gomock.Any(), gomock.Any()).Return(0, boom).Times(3)

	_, err := s.gateway.HoursInGame(s.ctx, "76561198074409147")
	s.ErrorIs(err, boom)
}

func (s *RetrySuite) TestPrivateProfileIsNotRetried() {
	s.inner.EXPECT().HoursInGame(gomock.Any(), gomock.Any()).Return(0, identity.ErrPrivateProfile).Times(1)

	_, err := s.gateway.HoursInGame(s.ctx, "76561198074409147")
	s.ErrorIs(err, identity.ErrPrivateProfile)
}

func (s *RetrySuite) TestProfileNotFoundIsNotRetried() {
	s.inner.EXPECT().ETF2LProfile(gomock.Any(), gomock.Any()).Return(nil, identity.ErrProfileNotFound).Times(1)

	_, err := s.gateway.ETF2LProfile(s.ctx, "76561198074409147")
	s.ErrorIs(err, identity.ErrProfileNotFound)
}

func (s *RetrySuite) TestProfileSucceeds() {
	want := &identity.ETF2LProfile{ID: 7, Name: "maly"}
	s.inner.EXPECT().ETF2LProfile(gomock.Any(), "76561198074409147").Return(want, nil)

	got, err := s.gateway.ETF2LProfile(s.ctx, "76561198074409147")
	s.Require().NoError(err)
	s.Equal(want, got)
}

func TestActiveBans(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := &identity.ETF2LProfile{Bans: []identity.Ban{
		{Start: now.Add(-48 * time.Hour).Unix(), End: now.Add(-time.Hour).Unix(), Reason: "expired"},
		{Start: now.Add(-time.Hour).Unix(), End: now.Unix(), Reason: "ends now"},
		{Start: now.Add(-time.Hour).Unix(), End: now.Add(time.Hour).Unix(), Reason: "active"},
	}}

	active := profile.ActiveBans(now)
	if len(active) != 1 || active[0].Reason != "active" {
		t.Fatalf("expected only the active ban, got %+v", active)
	}
}
