package storage

import "context"

// Well-known keys.
const (
	KeyUsers               = "nsg_users"
	KeySession             = "nsg_session"
	KeySessionSecret       = "nsg_session_secret"
	KeyActivities          = "nsg_activities"
	KeyEmergencyRequests   = "nsg_emergency_requests"
	KeyLastEmergencyUpdate = "nsg_last_emergency_update"
	KeyLastEmergencySync   = "nsg_last_emergency_sync"
	KeyLastSync            = "nsg_last_sync"
	KeyAppointments        = "nsg_appointments"
	KeyLastAppointmentSync = "nsg_last_appointment_sync"
)

// Store is a key-value store. Get returns (nil, nil) for a missing key.
// Every error returned by an implementation matches common.ErrStorage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Batch runs fn against a transactional view of the store. Writes made
	// through that view are committed together when fn returns nil.
	Batch(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
