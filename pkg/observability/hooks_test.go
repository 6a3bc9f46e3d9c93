package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnResolveStart(ctx, ".", 2)
	p.OnResolveComplete(ctx, ".", 10, 3, time.Second, nil)
	p.OnEmitComplete(ctx, 4, 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "order")
	c.OnCacheMiss(ctx, "order")
	c.OnCacheSet(ctx, "order", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCounters()

	c.OnResolveStart(ctx, ".", 1)
	if got := c.Snapshot().InFlight; got != 1 {
		t.Errorf("InFlight = %d, want 1", got)
	}
	c.OnResolveComplete(ctx, ".", 5, 2, time.Millisecond, nil)
	c.OnResolveStart(ctx, ".", 1)
	c.OnResolveComplete(ctx, ".", 0, 1, time.Millisecond, errors.New("cycle"))
	c.OnEmitComplete(ctx, 3, 300, time.Millisecond, nil)
	c.OnCacheHit(ctx, "order")
	c.OnCacheMiss(ctx, "order")
	c.OnCacheMiss(ctx, "order")
	c.OnCacheSet(ctx, "order", 10)

	s := c.Snapshot()
	if s.Resolves != 2 || s.ResolveErrors != 1 || s.Packages != 5 {
		t.Errorf("resolve counters = %+v", s)
	}
	if s.InFlight != 0 {
		t.Errorf("InFlight = %d, want 0", s.InFlight)
	}
	if s.ResolveTime != 2*time.Millisecond {
		t.Errorf("ResolveTime = %v", s.ResolveTime)
	}
	if s.Files != 3 || s.Bytes != 300 || s.Emits != 1 {
		t.Errorf("emit counters = %+v", s)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 || s.CacheSets != 1 {
		t.Errorf("cache counters = %+v", s)
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
