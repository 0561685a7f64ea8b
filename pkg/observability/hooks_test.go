package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, 3)
	p.OnLoadComplete(ctx, "gcd", time.Second, nil)
	p.OnMaterializeComplete(ctx, "gcd", 4, time.Second, nil)
	p.OnExportComplete(ctx, 2048, true, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "design")
	c.OnCacheMiss(ctx, "design")
	c.OnCacheSet(ctx, "design", 1024)

	// Server hooks
	s := NoopServerHooks{}
	s.OnRequest(ctx, "POST", "/api/design")
	s.OnResponse(ctx, "POST", "/api/design", 200, time.Second)
	s.OnUpload(ctx, 3, 1<<20)
	s.OnError(ctx, "POST", "/api/design", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	// Set custom hooks
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

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusPipeline(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnLoadStart(ctx, 3)
	if got := testutil.ToFloat64(m.inflightLoads); got != 1 {
		t.Errorf("loads in flight = %v, want 1", got)
	}
	m.OnLoadComplete(ctx, "gcd", 10*time.Millisecond, nil)
	if got := testutil.ToFloat64(m.inflightLoads); got != 0 {
		t.Errorf("loads in flight = %v, want 0", got)
	}

	m.OnMaterializeComplete(ctx, "gcd", 4, time.Millisecond, nil)
	m.OnMaterializeComplete(ctx, "gcd", 0, time.Millisecond, nil)
	m.OnMaterializeComplete(ctx, "gcd", 2, time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(m.unresolved.WithLabelValues("gcd")); got != 6 {
		t.Errorf("unresolved = %v, want 6", got)
	}
	if got := testutil.CollectAndCount(m.materializeDuration); got != 2 {
		t.Errorf("materialize series = %d, want 2 (success and error)", got)
	}

	m.OnExportComplete(ctx, 4096, true, time.Millisecond, nil)
	m.OnExportComplete(ctx, 0, false, time.Millisecond, errors.New("boom"))
	if got := testutil.CollectAndCount(m.exportBytes); got != 1 {
		t.Errorf("export size series = %d, want 1", got)
	}
}

func TestPrometheusCacheAndServer(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnCacheMiss(ctx, "design")
	m.OnCacheSet(ctx, "design", 100)
	m.OnCacheSet(ctx, "design", 50)
	m.OnCacheHit(ctx, "design")
	m.OnCacheHit(ctx, "design")

	tests := []struct {
		result string
		want   float64
	}{
		{"hit", 2},
		{"miss", 1},
		{"set", 2},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.cacheEvents.WithLabelValues("design", tt.result)); got != tt.want {
			t.Errorf("cache %s = %v, want %v", tt.result, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("design")); got != 150 {
		t.Errorf("cache bytes = %v, want 150", got)
	}

	m.OnRequest(ctx, "POST", "/api/design")
	m.OnResponse(ctx, "POST", "/api/design", 413, time.Millisecond)
	m.OnError(ctx, "POST", "/api/design", errors.New("boom"))
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/design", "413")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.serverErrors.WithLabelValues("POST", "/api/design")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestNewPrometheusRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)

	defer func() {
		if recover() == nil {
			t.Error("second NewPrometheus on the same registry should panic")
		}
	}()
	NewPrometheus(reg)
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
