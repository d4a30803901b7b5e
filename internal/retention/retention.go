// Package retention removes expired one-off bookings on a cron schedule.
// Recurring bookings have no end date and are never swept.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/workplace-booking/internal/timeutil"
)

// BookingPurger deletes one-off bookings dated strictly before a cutoff.
type BookingPurger interface {
	DeleteBookingsBefore(ctx context.Context, dateKey string) (int, error)
}

// Sweeper deletes bookings older than the retention window.
type Sweeper struct {
	bookings BookingPurger
	days     int
	now      func() time.Time
	logger   *slog.Logger
}

// NewSweeper builds a sweeper keeping bookings for the given number of
// days. A non-positive day count disables sweeping.
func NewSweeper(bookings BookingPurger, days int, now func() time.Time, logger *slog.Logger) *Sweeper {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{bookings: bookings, days: days, now: now, logger: logger}
}

// Enabled reports whether the sweeper deletes anything at all.
func (s *Sweeper) Enabled() bool {
	return s != nil && s.days > 0 && s.bookings != nil
}

// Run performs a single sweep. Bookings dated strictly before
// now minus the retention window are removed.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	cutoff := timeutil.DateKey(s.now().AddDate(0, 0, -s.days))
	deleted, err := s.bookings.DeleteBookingsBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "retention sweep failed", "cutoff", cutoff, "error", err)
		return fmt.Errorf("retention sweep before %s: %w", cutoff, err)
	}

	s.logger.InfoContext(ctx, "retention sweep finished", "cutoff", cutoff, "deleted", deleted)
	return nil
}

// Schedule registers the sweeper with a cron runner using the given
// standard five-field cron expression and starts it. The returned stop
// function blocks until a running sweep completes. When the sweeper is
// disabled no cron runner is started and stop is a no-op.
func (s *Sweeper) Schedule(spec string) (stop func(), err error) {
	if !s.Enabled() {
		return func() {}, nil
	}

	runner := cron.New()
	if _, err := runner.AddFunc(spec, func() {
		if err := s.Run(context.Background()); err != nil {
			s.logger.Error("scheduled retention sweep failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}

	runner.Start()
	return func() { <-runner.Stop().Done() }, nil
}
