package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CreditGranted("free", "cv.analyze")
	m.CreditGranted("free", "cv.analyze")
	m.CreditDenied("free")
	m.StorageDenied("pro", "cv")
	m.WebhookOutcome("upgraded")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.creditGrants.WithLabelValues("free", "cv.analyze")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.creditDenials.WithLabelValues("free")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.storageDenials.WithLabelValues("pro", "cv")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.webhookOutcomes.WithLabelValues("upgraded")))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.CreditGranted("free", "cv.analyze")
	m.CreditDenied("free")
	m.StorageDenied("free", "cv")
	m.WebhookOutcome("ignored")
}
