package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFacility_HasValidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		want bool
	}{
		{"valid city center", 44.8176, 20.4569, true},
		{"equator meridian", 0, 0, true},
		{"lat out of range", 91, 20, false},
		{"lon out of range", 44, 181, false},
		{"nan lat", math.NaN(), 20, false},
		{"inf lon", 44, math.Inf(1), false},
		{"boundary values", -90, 180, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Facility{Lat: tt.lat, Lon: tt.lon}
			assert.Equal(t, tt.want, f.HasValidCoordinates())
		})
	}
}

func TestSnapshot_Age(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := Snapshot{FetchedAt: now.Add(-3 * time.Hour).UnixMilli()}
	assert.Equal(t, 3*time.Hour, s.Age(now))
}

func TestSortByDistance(t *testing.T) {
	facilities := []Facility{
		{ID: "far", Lat: 45.5, Lon: 21.5},
		{ID: "near", Lat: 44.82, Lon: 20.46},
		{ID: "mid", Lat: 45.0, Lon: 20.9},
	}
	SortByDistance(facilities, 44.8176, 20.4569)

	assert.Equal(t, "near", facilities[0].ID)
	assert.Equal(t, "mid", facilities[1].ID)
	assert.Equal(t, "far", facilities[2].ID)
}
