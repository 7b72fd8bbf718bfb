// Package cache provides durable storage for the last-known-good facility
// snapshot. Exactly one snapshot is held, under two keys: the JSON-serialized
// facility list and the millisecond timestamp of the last successful save.
package cache

import (
	"context"

	"github.com/reliefmap/shelter-cli/internal/model"
)

// Durable keys. These mirror the mobile client's storage layout so a hosted
// deployment and the on-device cache stay interchangeable.
const (
	keyData      = "shelter_data"
	keyTimestamp = "shelter_data_timestamp"
)

// Store is the persistence interface for the shelter snapshot.
//
// Load treats a corrupted or unparseable payload as absent (ok=false), never
// as an error surfaced to the caller. Save persists only non-empty lists, so
// an API hiccup can never erase a good cache. Staleness is informational at
// this layer: the store reports the snapshot's age through its timestamp and
// never discards data past any threshold.
type Store interface {
	Load(ctx context.Context) (model.Snapshot, bool, error)
	Save(ctx context.Context, facilities []model.Facility) error
	Clear(ctx context.Context) error

	Migrate(ctx context.Context) error
	Close() error
}
