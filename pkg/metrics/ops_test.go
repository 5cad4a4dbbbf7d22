package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOpsMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOpsMetrics(reg)
	metrics.ObserveGeocodeDuration("bulk", 120*time.Millisecond)
	metrics.IncGeocode(OutcomeResolved)
	metrics.IncGeocode(OutcomeFailed)
	metrics.IncGeocode(OutcomePersistFailed)
	metrics.IncMail(OutcomeSent)
	metrics.IncOutbox(OutcomePublished)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "geocode_results", "outcome", OutcomeResolved); err != nil {
		t.Fatalf("fetch resolved: %v", err)
	} else if got != 1 {
		t.Fatalf("expected resolved=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "geocode_results", "outcome", OutcomeFailed); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "geocode_results", "outcome", OutcomePersistFailed); err != nil {
		t.Fatalf("fetch persist_failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected persist_failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "mail_delivery_results", "outcome", OutcomeSent); err != nil {
		t.Fatalf("fetch sent: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sent=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "geocode_duration_seconds", "source", "bulk"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestOpsMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *OpsMetrics
	metrics.IncGeocode(OutcomeHit)
	metrics.IncMail(OutcomeFailed)
	metrics.IncOutbox(OutcomeDLQ)
	metrics.ObserveGeocodeDuration("single", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
