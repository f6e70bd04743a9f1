package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestClientMetrics_RequestCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewClientMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	t.Run("increments success counter", func(t *testing.T) {
		m.ObserveRequest("activation", "success", 10*time.Millisecond)
		m.ObserveRequest("activation", "success", 20*time.Millisecond)

		if val := getCounterValue(t, m.RequestCounter, "activation", "success"); val != 2 {
			t.Errorf("expected 2, got %f", val)
		}
	})

	t.Run("tracks outcomes separately", func(t *testing.T) {
		m.ObserveRequest("activation", "network", time.Second)

		if val := getCounterValue(t, m.RequestCounter, "activation", "network"); val != 1 {
			t.Errorf("expected 1, got %f", val)
		}
		if val := getCounterValue(t, m.RequestCounter, "activation", "success"); val != 2 {
			t.Errorf("success counter changed: got %f", val)
		}
	})
}

func TestClientMetrics_RequestDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewClientMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.ObserveRequest("info", "success", 500*time.Millisecond)
	m.ObserveRequest("info", "licensing", 1500*time.Millisecond)

	count, sum := getHistogramValues(t, m.RequestDuration, "info")
	if count != 2 {
		t.Errorf("expected 2 observations, got %d", count)
	}
	if sum < 1.99 || sum > 2.01 {
		t.Errorf("expected sum of 2s, got %f", sum)
	}
}

func TestNewClientMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewClientMetrics(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := NewClientMetrics(reg); err == nil {
		t.Error("expected error registering metrics twice on one registry")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewClientMetrics(reg)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	m.ObserveRequest("validation", "success", time.Millisecond)

	path := filepath.Join(t.TempDir(), "lycento.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	want := `lycento_client_requests_total{operation="validation",outcome="success"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("textfile missing %q:\n%s", want, data)
	}
}

func getCounterValue(t *testing.T, counter *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := counter.WithLabelValues(labels...).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func getHistogramValues(t *testing.T, hist *prometheus.HistogramVec, label string) (uint64, float64) {
	t.Helper()
	var m dto.Metric
	if err := hist.WithLabelValues(label).(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}
