// Package geo models device geolocation: a one-shot position query with a
// bounded wait, a continuous watch, and the fixed fallback coordinate used
// when no fix can be obtained.
package geo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
)

// Fallback coordinate (Nairobi city centre).
const (
	FallbackLatitude  = -1.2921
	FallbackLongitude = 36.8219
	FallbackAccuracy  = 5000
)

type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Options mirror the usual device API knobs.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Locator answers a single position query.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Location, error)
}

// Watcher streams position updates until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, opts Options) (<-chan Location, error)
}

// FallbackLocation returns the approximate substitute position.
func FallbackLocation(now time.Time) Location {
	return Location{
		Latitude:  FallbackLatitude,
		Longitude: FallbackLongitude,
		Accuracy:  FallbackAccuracy,
		Timestamp: now,
		Fallback:  true,
	}
}

// MapsURL returns a link that opens loc in Google Maps.
func MapsURL(loc Location) string {
	return fmt.Sprintf("https://maps.google.com/?q=%s,%s",
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
}

// ParseCoordinates parses "lat,lon".
func ParseCoordinates(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: coordinates must be \"lat,lon\", got %q", common.ErrValidation, s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad latitude: %v", common.ErrValidation, err)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad longitude: %v", common.ErrValidation, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: coordinates out of range", common.ErrValidation)
	}
	return lat, lon, nil
}
