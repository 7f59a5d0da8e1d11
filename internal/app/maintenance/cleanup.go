package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/pkg/logger"
)

const (
	defaultReadRetention = 30 * 24 * time.Hour
	defaultHardRetention = 180 * 24 * time.Hour
	defaultSchedule      = "@daily"
)

// Cleaner prunes the notification inbox in the background. Read notifications
// go first; anything older than the hard retention goes regardless of read
// state. Engagement records (projects, invitations, jobs) are never purged.
type Cleaner struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	readRetention time.Duration
	hardRetention time.Duration
	schedule      string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithReadRetention adjusts how long read notifications are kept.
func WithReadRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.readRetention = d
		}
	}
}

// WithHardRetention adjusts the upper bound on any notification's lifetime.
func WithHardRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.hardRetention = d
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:            db,
		now:           time.Now,
		readRetention: defaultReadRetention,
		hardRetention: defaultHardRetention,
		schedule:      defaultSchedule,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("notification cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// NotificationCleanupStats captures how many rows each pass removed.
type NotificationCleanupStats struct {
	Read  int64
	Stale int64
}

// RunOnce executes the cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	_, err := CleanupNotifications(ctx, c.db, c.now(), c.readRetention, c.hardRetention)
	return err
}

// CleanupNotifications removes read notifications past the read retention and
// any notification past the hard retention.
func CleanupNotifications(ctx context.Context, db *gorm.DB, now time.Time, readRetention, hardRetention time.Duration) (NotificationCleanupStats, error) {
	if db == nil {
		return NotificationCleanupStats{}, errors.New("cleanup notifications: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := NotificationCleanupStats{}
	var errs error

	if readRetention > 0 {
		result := db.WithContext(ctx).
			Where("is_read = ? AND created_at < ?", true, now.Add(-readRetention)).
			Delete(&models.Notification{})
		if result.Error != nil {
			errs = multierr.Append(errs, result.Error)
		} else {
			stats.Read = result.RowsAffected
		}
	}

	if hardRetention > 0 {
		result := db.WithContext(ctx).
			Where("created_at < ?", now.Add(-hardRetention)).
			Delete(&models.Notification{})
		if result.Error != nil {
			errs = multierr.Append(errs, result.Error)
		} else {
			stats.Stale = result.RowsAffected
		}
	}

	return stats, errs
}
