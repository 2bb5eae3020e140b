package dashboard

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/logging"
	"github.com/dmitrijs2005/nsghealth/internal/sos"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

// SyncTick is the payload of a data-sync event.
type SyncTick struct {
	Type string
	At   time.Time
}

// Syncer periodically tells dashboards to reload their data. The
// nsg_last_sync marker throttles ticks to one per interval even when several
// syncers share a database.
type Syncer struct {
	store    storage.Store
	bus      *events.Bus
	logger   logging.Logger
	interval time.Duration
	now      func() time.Time
}

// DefaultSyncInterval is used when a non-positive interval is configured.
const DefaultSyncInterval = 30 * time.Second

// demoAppointments is how many mock appointments seed an empty store.
const demoAppointments = 8

func NewSyncer(store storage.Store, bus *events.Bus, logger logging.Logger, interval time.Duration) *Syncer {
	if interval <= 0 {
		logger.Warn(context.Background(), "invalid sync interval, using default", "interval", interval, "default", DefaultSyncInterval)
		interval = DefaultSyncInterval
	}
	return &Syncer{store: store, bus: bus, logger: logger, interval: interval, now: time.Now}
}

// Run checks on every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Warn(ctx, "data sync skipped", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Tick publishes a data-sync event when the last one is at least an
// interval old, and reports whether it did.
func (s *Syncer) Tick(ctx context.Context) (bool, error) {
	now := s.now()
	fired := false
	err := s.store.Batch(ctx, func(ctx context.Context, tx storage.Store) error {
		last, err := storage.Marker(ctx, tx, storage.KeyLastSync)
		if err != nil {
			return err
		}
		if !last.IsZero() && now.Sub(last) < s.interval {
			return nil
		}
		fired = true
		return storage.Touch(ctx, tx, storage.KeyLastSync, now)
	})
	if err != nil {
		return false, err
	}
	if fired {
		s.logger.Debug(ctx, "data sync", "at", now)
		s.bus.Publish(ctx, events.DataSync, SyncTick{Type: "appointments", At: now})
	}
	return fired, nil
}

// EmergencySource is the part of sos.Machine the syncer reads from.
type EmergencySource interface {
	History(ctx context.Context) ([]sos.Request, error)
}

// SyncEmergencies returns the emergency history and stamps the emergency
// sync marker.
func (s *Syncer) SyncEmergencies(ctx context.Context, src EmergencySource) ([]sos.Request, error) {
	list, err := src.History(ctx)
	if err != nil {
		return nil, err
	}
	if err := storage.Touch(ctx, s.store, storage.KeyLastEmergencySync, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to stamp emergency sync", "error", err)
	}
	return list, nil
}

// SyncAppointments returns the stored appointments and stamps the
// appointment sync marker. An empty store is seeded with demo bookings.
func (s *Syncer) SyncAppointments(ctx context.Context) ([]Appointment, error) {
	now := s.now()
	var list []Appointment
	err := s.store.Batch(ctx, func(ctx context.Context, tx storage.Store) error {
		found, err := storage.LoadJSON(ctx, tx, storage.KeyAppointments, &list)
		if err != nil {
			return err
		}
		if !found {
			list = MockAppointments(demoAppointments, now)
			if err := storage.SaveJSON(ctx, tx, storage.KeyAppointments, list); err != nil {
				return err
			}
		}
		return storage.Touch(ctx, tx, storage.KeyLastAppointmentSync, now)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ActivitySource is the part of auth.Manager the syncer reads from.
type ActivitySource interface {
	Activities(ctx context.Context, userID string, limit int) ([]auth.Activity, error)
}

// SyncActivities returns the recent activity of userID. It has no marker of
// its own.
func (s *Syncer) SyncActivities(ctx context.Context, src ActivitySource, userID string) ([]auth.Activity, error) {
	return src.Activities(ctx, userID, 0)
}
