package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters implements [PipelineHooks] and [CacheHooks] with in-memory
// atomic counters. The HTTP server exposes a [Snapshot] on /stats.
type Counters struct {
	resolves      atomic.Int64
	resolveErrors atomic.Int64
	resolveNanos  atomic.Int64
	packages      atomic.Int64
	emits         atomic.Int64
	emitErrors    atomic.Int64
	filesEmitted  atomic.Int64
	bytesEmitted  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	cacheSets     atomic.Int64
	inFlight      atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters { return &Counters{} }

// Snapshot is a point-in-time copy of [Counters].
type Snapshot struct {
	Resolves      int64         `json:"resolves"`
	ResolveErrors int64         `json:"resolve_errors"`
	ResolveTime   time.Duration `json:"resolve_time_ns"`
	Packages      int64         `json:"packages"`
	Emits         int64         `json:"emits"`
	EmitErrors    int64         `json:"emit_errors"`
	Files         int64         `json:"files"`
	Bytes         int64         `json:"bytes"`
	CacheHits     int64         `json:"cache_hits"`
	CacheMisses   int64         `json:"cache_misses"`
	CacheSets     int64         `json:"cache_sets"`
	InFlight      int64         `json:"in_flight"`
}

func (c *Counters) OnResolveStart(context.Context, string, int) {
	c.inFlight.Add(1)
}

func (c *Counters) OnResolveComplete(_ context.Context, _ string, nodes, _ int, d time.Duration, err error) {
	c.inFlight.Add(-1)
	c.resolves.Add(1)
	c.resolveNanos.Add(int64(d))
	if err != nil {
		c.resolveErrors.Add(1)
		return
	}
	c.packages.Add(int64(nodes))
}

func (c *Counters) OnEmitComplete(_ context.Context, files, bytes int, _ time.Duration, err error) {
	c.emits.Add(1)
	if err != nil {
		c.emitErrors.Add(1)
		return
	}
	c.filesEmitted.Add(int64(files))
	c.bytesEmitted.Add(int64(bytes))
}

func (c *Counters) OnCacheHit(context.Context, string)      { c.cacheHits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string)     { c.cacheMisses.Add(1) }
func (c *Counters) OnCacheSet(context.Context, string, int) { c.cacheSets.Add(1) }

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Resolves:      c.resolves.Load(),
		ResolveErrors: c.resolveErrors.Load(),
		ResolveTime:   time.Duration(c.resolveNanos.Load()),
		Packages:      c.packages.Load(),
		Emits:         c.emits.Load(),
		EmitErrors:    c.emitErrors.Load(),
		Files:         c.filesEmitted.Load(),
		Bytes:         c.bytesEmitted.Load(),
		CacheHits:     c.cacheHits.Load(),
		CacheMisses:   c.cacheMisses.Load(),
		CacheSets:     c.cacheSets.Load(),
		InFlight:      c.inFlight.Load(),
	}
}

var (
	_ PipelineHooks = (*Counters)(nil)
	_ CacheHooks    = (*Counters)(nil)
)
