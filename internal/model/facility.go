// Package model holds the domain entities shared across the shelter pipeline.
package model

import (
	"math"
	"time"
)

// Category classifies a facility into the closed set of emergency-relevant types.
type Category string

const (
	CategoryHospital    Category = "hospital"
	CategoryPharmacy    Category = "pharmacy"
	CategoryFireStation Category = "fire_station"
	CategoryPolice      Category = "police"
	CategoryShelter     Category = "shelter"
	CategoryUnknown     Category = "unknown"
)

// Facility is a normalized emergency facility record. Every Facility held in
// a Snapshot or returned to a caller has finite, real-world coordinates;
// records lacking usable coordinates are dropped during normalization and
// never persisted.
type Facility struct {
	ID           string   `json:"id"`
	Category     Category `json:"category"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Name         string   `json:"name"`
	CapacityHint string   `json:"capacity_hint,omitempty"`
}

// HasValidCoordinates reports whether the facility's coordinates are finite
// and within real-world range.
func (f Facility) HasValidCoordinates() bool {
	if math.IsNaN(f.Lat) || math.IsInf(f.Lat, 0) || math.IsNaN(f.Lon) || math.IsInf(f.Lon, 0) {
		return false
	}
	return f.Lat >= -90 && f.Lat <= 90 && f.Lon >= -180 && f.Lon <= 180
}

// Snapshot is the cached last-known-good facility list plus the time it was
// written. It is overwritten in full on every successful remote fetch that
// yields at least one record, never merged field-by-field.
type Snapshot struct {
	Facilities []Facility `json:"facilities"`
	FetchedAt  int64      `json:"fetched_at"` // unix milliseconds
}

// Age returns how long ago the snapshot was written.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.FetchedAt))
}

// Source tags the provenance of an orchestrated result.
type Source string

const (
	SourceAPI      Source = "api"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Result is the outcome of one orchestrated request. It is the only shape
// exposed to callers; callers never see raw cache or raw API payloads.
// Degraded-data conditions are communicated through Source and Error, never
// through a returned error.
type Result struct {
	Shelters []Facility    `json:"shelters"`
	Source   Source        `json:"source"`
	Error    string        `json:"error,omitempty"`
	CacheAge time.Duration `json:"cache_age_ms,omitempty"` // informational, set when Source is cache
	Stale    bool          `json:"stale,omitempty"`        // cache older than the freshness window
}
