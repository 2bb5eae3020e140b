package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
)

// Static reports a fixed position, as configured for a terminal session.
type Static struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Interval  time.Duration
	Now       func() time.Time
}

func NewStatic(lat, lon, accuracy float64) *Static {
	return &Static{Latitude: lat, Longitude: lon, Accuracy: accuracy, Interval: time.Minute, Now: time.Now}
}

func (s *Static) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Static) fix() Location {
	return Location{Latitude: s.Latitude, Longitude: s.Longitude, Accuracy: s.Accuracy, Timestamp: s.now()}
}

func (s *Static) CurrentPosition(ctx context.Context, _ Options) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, fmt.Errorf("%w: %v", common.ErrGeolocationUnavailable, err)
	}
	return s.fix(), nil
}

// Watch emits the fixed position immediately and then once per Interval.
func (s *Static) Watch(ctx context.Context, _ Options) (<-chan Location, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ch := make(chan Location, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ch <- s.fix()
		for {
			select {
			case <-ticker.C:
				select {
				case ch <- s.fix():
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Unavailable models a device without geolocation or a denied permission.
type Unavailable struct{}

func (Unavailable) CurrentPosition(context.Context, Options) (Location, error) {
	return Location{}, common.ErrGeolocationUnavailable
}

func (Unavailable) Watch(context.Context, Options) (<-chan Location, error) {
	return nil, common.ErrGeolocationUnavailable
}
