package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestHooksRecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	h.OnStageComplete(ctx, "allocate", time.Millisecond, nil)
	h.OnStageComplete(ctx, "validate", time.Millisecond, errors.New("capacity"))
	h.OnGenerationComplete(ctx, 3, 12, 2, time.Second, nil)
	h.OnGenerationComplete(ctx, 3, 12, 0, time.Second, errors.New("capacity"))
	h.OnCacheHit(ctx, "module")
	h.OnCacheSet(ctx, "glyph", 512)
	h.OnResponse(ctx, "POST", "/generate", 400, time.Millisecond)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"ioschema_stage_total", map[string]string{"stage": "allocate", "result": "success"}, 1},
		{"ioschema_stage_total", map[string]string{"stage": "validate", "result": "error"}, 1},
		{"ioschema_generations_total", map[string]string{"result": "success"}, 1},
		{"ioschema_generations_total", map[string]string{"result": "error"}, 1},
		{"ioschema_generation_warnings_total", nil, 2},
		{"ioschema_points_total", nil, 12},
		{"ioschema_cache_events_total", map[string]string{"key_type": "module", "event": "hit"}, 1},
		{"ioschema_cache_written_bytes_total", map[string]string{"key_type": "glyph"}, 512},
		{"ioschema_http_requests_total", map[string]string{"route": "/generate", "status": "4xx"}, 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestNewRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := New(reg); err == nil {
		t.Error("second New on the same registry should fail")
	}
}
