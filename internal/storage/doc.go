// Package storage is the local key-value persistence used by the auth
// manager, the emergency flow and the dashboard syncer.
//
// Values are opaque bytes (JSON in practice) kept in a single SQLite table
// created by goose migrations embedded in the binary. Read-modify-write
// sequences run inside Store.Batch so they cannot interleave with other
// writers of the same database.
package storage
