// Package shelter implements the cache-first freshness policy that reconciles
// the live Overpass source, the durable cache, and the bundled static
// dataset. A caller is never left without data: live beats cached, cached
// beats bundled, and the bundled dataset is reached only on a first run with
// no network.
package shelter

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/reliefmap/shelter-cli/internal/cache"
	"github.com/reliefmap/shelter-cli/internal/model"
	"github.com/reliefmap/shelter-cli/internal/overpass"
)

// Diagnostic strings surfaced to callers on degraded paths.
const (
	msgEmptyAPI       = "API returned empty results, using cached data"
	msgNoDataAtAll    = "No network connection and no cached data available"
	msgAPIUnavailable = "API unavailable: "
)

// Orchestrator decides, per request, whether to serve live, cached, or
// bundled data. It owns no state across requests beyond the injected store;
// concurrent calls to the same operation share a single flight, and an
// overlapping Get and Refresh keep last-write-wins semantics on the store.
type Orchestrator struct {
	store     cache.Store
	fetcher   overpass.Fetcher
	freshness time.Duration
	now       func() time.Time
	group     singleflight.Group
}

// New creates an Orchestrator. freshnessWindow is informational: results
// from cache are marked stale past it, but stale data is still served.
func New(store cache.Store, fetcher overpass.Fetcher, freshnessWindow time.Duration) *Orchestrator {
	return &Orchestrator{
		store:     store,
		fetcher:   fetcher,
		freshness: freshnessWindow,
		now:       time.Now,
	}
}

// Get serves the normal path: the cache is read up front as a safety net,
// a live refresh is always attempted, and the freshest usable tier wins.
// Get never returns an error; every failure degrades to a tagged Result.
func (o *Orchestrator) Get(ctx context.Context) model.Result {
	v, _, _ := o.group.Do("get", func() (any, error) {
		return o.get(ctx), nil
	})
	return v.(model.Result)
}

func (o *Orchestrator) get(ctx context.Context) model.Result {
	snap, cached := o.loadCache(ctx)

	facilities, err := o.fetcher.Fetch(ctx)
	switch {
	case err == nil && len(facilities) > 0:
		o.saveCache(ctx, facilities)
		return model.Result{Shelters: facilities, Source: model.SourceAPI}

	case err == nil:
		// Structurally valid but empty. This conflates "no facilities in the
		// region" with "query malfunctioned"; we keep the conservative
		// reading and fall back to cache when one exists.
		if cached && len(snap.Facilities) > 0 {
			return o.cacheResult(snap, msgEmptyAPI)
		}

	default:
		zap.L().Warn("shelter fetch failed", zap.Error(err))
		if cached && len(snap.Facilities) > 0 {
			return o.cacheResult(snap, msgAPIUnavailable+err.Error())
		}
	}

	return o.fallbackResult(msgNoDataAtAll)
}

// Refresh serves the forced path: the existing cache is ignored as an input,
// but still acts as a last-resort safety net when the fetch fails or comes
// back empty. Refresh never returns an error.
func (o *Orchestrator) Refresh(ctx context.Context) model.Result {
	v, _, _ := o.group.Do("refresh", func() (any, error) {
		return o.refresh(ctx), nil
	})
	return v.(model.Result)
}

func (o *Orchestrator) refresh(ctx context.Context) model.Result {
	facilities, err := o.fetcher.Fetch(ctx)
	if err == nil && len(facilities) > 0 {
		o.saveCache(ctx, facilities)
		return model.Result{Shelters: facilities, Source: model.SourceAPI}
	}

	cacheDiag, fallbackDiag := msgEmptyAPI, msgNoDataAtAll
	if err != nil {
		zap.L().Warn("shelter refresh failed", zap.Error(err))
		cacheDiag = msgAPIUnavailable + err.Error()
		fallbackDiag = cacheDiag
	}

	if snap, cached := o.loadCache(ctx); cached && len(snap.Facilities) > 0 {
		return o.cacheResult(snap, cacheDiag)
	}
	return o.fallbackResult(fallbackDiag)
}

func (o *Orchestrator) loadCache(ctx context.Context) (model.Snapshot, bool) {
	snap, ok, err := o.store.Load(ctx)
	if err != nil {
		// Store trouble is treated as an absent cache, never surfaced.
		zap.L().Warn("cache load failed, treating as absent", zap.Error(err))
		return model.Snapshot{}, false
	}
	return snap, ok
}

func (o *Orchestrator) saveCache(ctx context.Context, facilities []model.Facility) {
	if err := o.store.Save(ctx, facilities); err != nil {
		// A failed save degrades the next offline request but not this one.
		zap.L().Error("cache save failed", zap.Error(err), zap.Int("facilities", len(facilities)))
	}
}

func (o *Orchestrator) cacheResult(snap model.Snapshot, diag string) model.Result {
	age := snap.Age(o.now())
	return model.Result{
		Shelters: snap.Facilities,
		Source:   model.SourceCache,
		Error:    diag,
		CacheAge: age,
		Stale:    o.freshness > 0 && age > o.freshness,
	}
}

func (o *Orchestrator) fallbackResult(diag string) model.Result {
	return model.Result{
		Shelters: FallbackFacilities(),
		Source:   model.SourceFallback,
		Error:    diag,
	}
}
