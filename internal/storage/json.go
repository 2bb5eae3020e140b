package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LoadJSON decodes the value stored under key into v. It reports false
// when the key is absent, leaving v untouched.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode kv[%s]: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode kv[%s]: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// Touch stores t as an RFC 3339 marker under key.
func Touch(ctx context.Context, s Store, key string, t time.Time) error {
	return s.Set(ctx, key, []byte(t.UTC().Format(time.RFC3339Nano)))
}

// Marker reads a timestamp written by Touch. A missing or malformed marker
// yields the zero time.
func Marker(ctx context.Context, s Store, key string) (time.Time, error) {
	data, err := s.Get(ctx, key)
	if err != nil || data == nil {
		return time.Time{}, err
	}
	t, perr := time.Parse(time.RFC3339Nano, string(data))
	if perr != nil {
		return time.Time{}, nil
	}
	return t, nil
}
