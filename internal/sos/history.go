package sos

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/dmitrijs2005/nsghealth/internal/events"
	"github.com/dmitrijs2005/nsghealth/internal/storage"
)

func loadHistory(ctx context.Context, s storage.Store) ([]Request, error) {
	var list []Request
	if _, err := storage.LoadJSON(ctx, s, storage.KeyEmergencyRequests, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// upsertRequest replaces the entry with r.ID in place, or prepends r when
// absent, and stamps the last-update marker in the same transaction.
func upsertRequest(ctx context.Context, store storage.Store, r Request, now time.Time) error {
	return store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		list, err := loadHistory(ctx, s)
		if err != nil {
			return err
		}
		replaced := false
		for i := range list {
			if list[i].ID == r.ID {
				list[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			list = append([]Request{r}, list...)
		}
		if err := storage.SaveJSON(ctx, s, storage.KeyEmergencyRequests, list); err != nil {
			return err
		}
		return storage.Touch(ctx, s, storage.KeyLastEmergencyUpdate, now)
	})
}

// History returns every persisted request, newest first.
func (m *Machine) History(ctx context.Context) ([]Request, error) {
	return loadHistory(ctx, m.store)
}

// Active returns the requests still awaiting a provider or in progress.
func (m *Machine) Active(ctx context.Context) ([]Request, error) {
	list, err := loadHistory(ctx, m.store)
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0, len(list))
	for _, r := range list {
		if r.Status == StatusActive || r.Status == StatusConfirmed {
			out = append(out, r)
		}
	}
	return out, nil
}

// ForRequester returns the requests raised by the given user, newest first.
func (m *Machine) ForRequester(ctx context.Context, requesterID string) ([]Request, error) {
	list, err := loadHistory(ctx, m.store)
	if err != nil {
		return nil, err
	}
	var out []Request
	for _, r := range list {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Complete marks a confirmed request as completed.
func (m *Machine) Complete(ctx context.Context, id string) (*Request, error) {
	var done Request
	err := m.store.Batch(ctx, func(ctx context.Context, s storage.Store) error {
		list, err := loadHistory(ctx, s)
		if err != nil {
			return err
		}
		for i := range list {
			if list[i].ID != id {
				continue
			}
			if !list[i].Status.CanTransition(StatusCompleted) {
				return fmt.Errorf("%w: request is %s", common.ErrInvalidState, list[i].Status)
			}
			now := m.now()
			list[i].Status = StatusCompleted
			list[i].UpdatedAt = &now
			done = list[i]
			if err := storage.SaveJSON(ctx, s, storage.KeyEmergencyRequests, list); err != nil {
				return err
			}
			return storage.Touch(ctx, s, storage.KeyLastEmergencyUpdate, now)
		}
		return fmt.Errorf("%w: emergency request %s", common.ErrNotFound, id)
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.flow != nil && m.flow.request != nil && m.flow.request.ID == id {
		m.flow.request.Status = StatusCompleted
		m.flow.request.UpdatedAt = done.UpdatedAt
	}
	m.mu.Unlock()

	m.logger.Info(ctx, "emergency completed", "request_id", id)
	m.bus.Publish(ctx, events.EmergencyAlert, done)
	return &done, nil
}
