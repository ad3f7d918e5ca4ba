// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"testing"

	"github.com/carterperez-dev/coinvoice/internal/config"
)

func TestNewTelemetryDisabled(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []config.OtelConfig{
		{Enabled: false, Endpoint: "collector:4317", ServiceName: "coinvoice"},
		{Enabled: true, Endpoint: "", ServiceName: "coinvoice"},
	} {
		tel, err := NewTelemetry(ctx, cfg, config.AppConfig{})
		if err != nil {
			t.Fatalf("NewTelemetry() = %v", err)
		}
		if tel.TracerProvider == nil || tel.Tracer == nil {
			t.Fatal("disabled telemetry must still provide a tracer")
		}
		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() = %v", err)
		}
	}
}

func TestSampleRate(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{rate: 0, want: defaultSampleRate},
		{rate: -0.5, want: defaultSampleRate},
		{rate: 1.5, want: defaultSampleRate},
		{rate: 0.25, want: 0.25},
		{rate: 1, want: 1},
	}

	for _, tt := range tests {
		got := sampleRate(config.OtelConfig{SampleRate: tt.rate})
		if got != tt.want {
			t.Errorf("sampleRate(%v) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}
