package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObservePayment(PaymentPartial)
	m.ObservePayment(PaymentPartial)
	m.ObservePayment(PaymentOverpaid)
	m.ObserveSettlement()
	m.ObserveRejection("plan_locked")

	if got := testutil.ToFloat64(m.Payments.WithLabelValues(PaymentPartial)); got != 2 {
		t.Errorf("partial payments = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Settlements); got != 1 {
		t.Errorf("settlements = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Rejected.WithLabelValues("plan_locked")); got != 1 {
		t.Errorf("rejections = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePayment(PaymentFull)
	m.ObserveSettlement()
	m.ObserveRejection("x")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveSettlement()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{"debtplan_settlements_total 1", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
