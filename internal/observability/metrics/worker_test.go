package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQueueLagRecordsSample(t *testing.T) {
	m := NewWorkerMetrics("guardian-worker")

	m.ObserveQueueLag("guardian-worker", 2*time.Second)

	if got := testutil.CollectAndCount(m.queueLag); got != 1 {
		t.Fatalf("expected 1 queue lag series, got %d", got)
	}
}

func TestObserveQueueLagIgnoresNegativeLag(t *testing.T) {
	m := NewWorkerMetrics("guardian-worker")

	m.ObserveQueueLag("guardian-worker", -time.Second)

	if got := testutil.CollectAndCount(m.queueLag); got != 0 {
		t.Fatalf("expected no queue lag series, got %d", got)
	}
}

func TestFinishPolicyLabelsByStatus(t *testing.T) {
	m := NewWorkerMetrics("guardian-worker")

	m.StartPolicy()
	m.FinishPolicy("guardian-worker", time.Second, nil)
	m.StartPolicy()
	m.FinishPolicy("guardian-worker", time.Second, errors.New("boom"))

	success := testutil.ToFloat64(m.processTotal.WithLabelValues("guardian-worker", "success"))
	failed := testutil.ToFloat64(m.processTotal.WithLabelValues("guardian-worker", "error"))
	if success != 1 || failed != 1 {
		t.Fatalf("expected one success and one error, got %v/%v", success, failed)
	}
	if inFlight := testutil.ToFloat64(m.processInFlight); inFlight != 0 {
		t.Fatalf("expected zero in-flight, got %v", inFlight)
	}
}
