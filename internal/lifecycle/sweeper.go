package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"seatly/internal/events"
	"seatly/internal/shared/config"
	"seatly/internal/shared/constants"
	"seatly/pkg/cache"
	"seatly/pkg/logger"
)

// Store is the persistence surface the sweeper needs.
type Store interface {
	// AdvanceExpiredEvents marks every event dated before now as ENDED
	// and returns the ids of the events it changed. Safe to run
	// repeatedly.
	AdvanceExpiredEvents(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	// PurgeStale removes events dated before cutoff together with their
	// bookings, bookings first.
	PurgeStale(ctx context.Context, cutoff time.Time) (purgedEvents, purgedBookings int64, err error)
}

// SweepStats summarizes one pass.
type SweepStats struct {
	Ended          int64
	PurgedEvents   int64
	PurgedBookings int64
}

// ActivityPublisher receives lifecycle records, best effort.
type ActivityPublisher interface {
	EventEnded(ctx context.Context, eventID string)
}

// Sweeper runs the event lifecycle maintenance loop: advancing past
// events to ENDED and purging events outside the retention window.
type Sweeper struct {
	store    Store
	cache    cache.Service
	feed     ActivityPublisher
	cfg      config.SweeperConfig
	log      *logger.Logger
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(store Store, cacheSvc cache.Service, feed ActivityPublisher, cfg config.SweeperConfig, log *logger.Logger) *Sweeper {
	return &Sweeper{
		store: store,
		cache: cacheSvc,
		feed:  feed,
		cfg:   cfg,
		log:   log,
		done:  make(chan struct{}),
	}
}

// Start launches the loop. A pass runs immediately, then on every tick.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.runOnce()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.done:
				return
			}
		}
	}()
	s.log.Info("lifecycle sweeper started",
		"interval", s.cfg.Interval, "retention", s.cfg.RetentionWindow)
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	s.log.Info("lifecycle sweeper stopped")
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("lifecycle sweep failed", "error", err)
	}
}

// RunOnce executes a single sweep pass.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepStats, error) {
	now := time.Now()
	var stats SweepStats

	ended, err := s.store.AdvanceExpiredEvents(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.Ended = int64(len(ended))
	if s.feed != nil {
		for _, id := range ended {
			s.feed.EventEnded(ctx, id.String())
		}
	}

	purgedEvents, purgedBookings, err := s.store.PurgeStale(ctx, now.Add(-s.cfg.RetentionWindow))
	if err != nil {
		return stats, err
	}
	stats.PurgedEvents = purgedEvents
	stats.PurgedBookings = purgedBookings

	s.log.LogSweepResult(ctx, stats.Ended, stats.PurgedEvents, stats.PurgedBookings)

	if s.cache != nil && (stats.Ended > 0 || stats.PurgedEvents > 0) {
		if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_ALL); err != nil {
			s.log.Warn("sweep cache invalidation failed", "error", err)
		}
		if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
			s.log.Warn("sweep cache invalidation failed", "error", err)
		}
	}
	return stats, nil
}

// gormStore is the production Store.
type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (g *gormStore) AdvanceExpiredEvents(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ended []uuid.UUID
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&events.Event{}).
			Where("date < ? AND status <> ?", now, events.StatusEnded).
			Pluck("id", &ended).Error; err != nil {
			return err
		}
		if len(ended) == 0 {
			return nil
		}
		return tx.Model(&events.Event{}).
			Where("id IN ?", ended).
			Update("status", events.StatusEnded).Error
	})
	return ended, err
}

func (g *gormStore) PurgeStale(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	var purgedEvents, purgedBookings int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"DELETE FROM bookings WHERE event_id IN (SELECT id FROM events WHERE date < ?)",
			cutoff,
		)
		if res.Error != nil {
			return res.Error
		}
		purgedBookings = res.RowsAffected

		res = tx.Where("date < ?", cutoff).Delete(&events.Event{})
		if res.Error != nil {
			return res.Error
		}
		purgedEvents = res.RowsAffected
		return nil
	})
	return purgedEvents, purgedBookings, err
}
