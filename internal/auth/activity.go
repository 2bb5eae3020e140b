package auth

import (
	"context"

	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

const (
	maxActivitiesPerUser   = 100
	defaultActivitiesLimit = 50
	activitySource         = "cli"
)

// LogActivity records action for the session user. Without a session it
// does nothing.
func (m *Manager) LogActivity(ctx context.Context, action string, details map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logActivityLocked(ctx, action, details)
}

// logActivityLocked appends an entry newest-first and keeps at most
// maxActivitiesPerUser entries per user. Failures are logged only.
func (m *Manager) logActivityLocked(ctx context.Context, action string, details map[string]any) {
	if m.session == nil {
		return
	}
	u := m.session.User
	entry := Activity{
		ID:        m.newID(),
		UserID:    u.ID,
		UserEmail: u.Email,
		UserRole:  u.Role,
		Action:    action,
		Details:   details,
		Timestamp: m.now(),
		Source:    activitySource,
	}

	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		var all []Activity
		if _, err := storage.LoadJSON(ctx, s, storage.KeyActivities, &all); err != nil {
			return err
		}
		return storage.SaveJSON(ctx, s, storage.KeyActivities, capPerUser(append([]Activity{entry}, all...), maxActivitiesPerUser))
	})
	if err != nil {
		m.logger.Error(ctx, "failed to log activity", "action", action, "error", err)
	}
}

func capPerUser(list []Activity, limit int) []Activity {
	seen := make(map[string]int)
	out := list[:0]
	for _, a := range list {
		if seen[a.UserID] >= limit {
			continue
		}
		seen[a.UserID]++
		out = append(out, a)
	}
	return out
}

// Activities returns up to limit entries for userID, newest first. A
// non-positive limit means the default of 50.
func (m *Manager) Activities(ctx context.Context, userID string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = defaultActivitiesLimit
	}
	var all []Activity
	if _, err := storage.LoadJSON(ctx, m.store, storage.KeyActivities, &all); err != nil {
		return nil, err
	}

	out := make([]Activity, 0, limit)
	for _, a := range all {
		if a.UserID != userID {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
