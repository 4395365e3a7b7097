package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls how transient lookup failures are retried
type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used in production
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Service is a Gateway that retries transient failures of the underlying lookups
type Service struct {
	hours    HoursLookup
	profiles ProfileLookup
	cfg      RetryConfig
	logger   *slog.Logger
}

// Ensure Service implements Gateway
var _ Gateway = (*Service)(nil)

// New creates a retrying gateway over the given lookups
func New(hours HoursLookup, profiles ProfileLookup, cfg RetryConfig, logger *slog.Logger) *Service {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultRetryConfig().MaxAttempts
	}
	return &Service{
		hours:    hours,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "identity")),
	}
}

// HoursInGame returns the player's TF2 hours
func (s *Service) HoursInGame(ctx context.Context, steamID string) (int, error) {
	return backoff.Retry(ctx, func() (int, error) {
		hours, err := s.hours.HoursInGame(ctx, steamID)
		return hours, permanentIf(err, ErrPrivateProfile)
	}, s.options("steam", steamID)...)
}

// ETF2LProfile returns the player's ETF2L profile
func (s *Service) ETF2LProfile(ctx context.Context, steamID string) (*ETF2LProfile, error) {
	return backoff.Retry(ctx, func() (*ETF2LProfile, error) {
		profile, err := s.profiles.ETF2LProfile(ctx, steamID)
		return profile, permanentIf(err, ErrProfileNotFound)
	}, s.options("etf2l", steamID)...)
}

func (s *Service) options(service, steamID string) []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	if s.cfg.InitialInterval > 0 {
		b.InitialInterval = s.cfg.InitialInterval
	}
	if s.cfg.MaxInterval > 0 {
		b.MaxInterval = s.cfg.MaxInterval
	}
	return []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("identity lookup retry",
				slog.String("service", service),
				slog.String("steam_id", steamID),
				slog.Duration("next", next),
				slog.Any("error", err))
		}),
	}
}

// permanentIf stops retrying for answers that will not change on a second attempt
func permanentIf(err error, targets ...error) error {
	if err == nil {
		return nil
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return backoff.Permanent(err)
		}
	}
	return err
}
