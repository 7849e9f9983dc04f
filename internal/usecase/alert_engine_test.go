package usecase

import (
	"testing"
	"time"

	"PairPulse/internal/domain/models"
	"PairPulse/internal/testutil"
	xlogger "PairPulse/pkg/logger"
)

func newEngine(t *testing.T, opts ...AlertOption) (*AlertEngine, *testutil.CountingMetrics) {
	t.Helper()
	metrics := testutil.NewCountingMetrics()
	return NewAlertEngine(metrics, xlogger.Nop(), opts...), metrics
}

func zscoreSnap(z float64) *models.AnalyticsSnapshot {
	return &models.AnalyticsSnapshot{LatestZScore: &z}
}

func TestCreateValidation(t *testing.T) {
	e, _ := newEngine(t)
	cases := []CreateAlertParams{
		{Name: "", Metric: models.MetricZScore, Operator: models.OpGreater},
		{Name: "a", Metric: "volatility", Operator: models.OpGreater},
		{Name: "a", Metric: models.MetricZScore, Operator: "=="},
	}
	for i, p := range cases {
		if _, err := e.Create(p); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	rule, err := e.Create(CreateAlertParams{
		Name: "z high", Metric: models.MetricZScore, Operator: models.OpGreater, Threshold: 2.0,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rule.ID == "" || !rule.Active {
		t.Fatalf("rule not initialized: %+v", rule)
	}
}

func TestEvaluateFiresOnCross(t *testing.T) {
	e, metrics := newEngine(t)
	if _, err := e.Create(CreateAlertParams{
		Name: "z high", Metric: models.MetricZScore, Operator: models.OpGreater, Threshold: 2.0,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	if fired := e.Evaluate(zscoreSnap(1.5), now); len(fired) != 0 {
		t.Fatalf("fired below threshold: %+v", fired)
	}
	fired := e.Evaluate(zscoreSnap(2.3), now)
	if len(fired) != 1 {
		t.Fatalf("expected one event, got %d", len(fired))
	}
	if fired[0].MetricValue != 2.3 {
		t.Fatalf("event should carry the observed value, got %v", fired[0].MetricValue)
	}
	if metrics.Count("alert:zscore") != 1 {
		t.Fatal("firing not counted")
	}
	if e.List()[0].LastTriggered == nil {
		t.Fatal("last_triggered not set")
	}
}

func TestEvaluateRepeatsWhileConditionHolds(t *testing.T) {
	e, _ := newEngine(t)
	if _, err := e.Create(CreateAlertParams{
		Name: "z high", Metric: models.MetricZScore, Operator: models.OpGreaterEqual, Threshold: 2.0,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if fired := e.Evaluate(zscoreSnap(2.5), now); len(fired) != 1 {
			t.Fatalf("pass %d: expected repeat firing", i)
		}
	}
	if got := len(e.Events(0)); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
}

func TestEvaluateSkipsUnavailableMetric(t *testing.T) {
	e, _ := newEngine(t)
	if _, err := e.Create(CreateAlertParams{
		Name: "corr low", Metric: models.MetricCorrelation, Operator: models.OpLess, Threshold: 0.5,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// snapshot has no correlation: rule must be skipped, not fired at zero
	if fired := e.Evaluate(zscoreSnap(3.0), time.Now()); len(fired) != 0 {
		t.Fatalf("fired on unavailable metric: %+v", fired)
	}
}

func TestInactiveRuleDoesNotFire(t *testing.T) {
	e, _ := newEngine(t)
	rule, err := e.Create(CreateAlertParams{
		Name: "z high", Metric: models.MetricZScore, Operator: models.OpGreater, Threshold: 1.0,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := e.SetActive(rule.ID, false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if fired := e.Evaluate(zscoreSnap(5.0), time.Now()); len(fired) != 0 {
		t.Fatal("inactive rule fired")
	}
}

func TestHistoryBoundedMostRecentFirst(t *testing.T) {
	e, _ := newEngine(t, WithHistoryLimit(3))
	if _, err := e.Create(CreateAlertParams{
		Name: "z", Metric: models.MetricZScore, Operator: models.OpGreater, Threshold: 0,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 1; i <= 5; i++ {
		e.Evaluate(zscoreSnap(float64(i)), time.Now())
	}
	events := e.Events(0)
	if len(events) != 3 {
		t.Fatalf("history not bounded: %d", len(events))
	}
	if events[0].MetricValue != 5 || events[2].MetricValue != 3 {
		t.Fatalf("expected most recent first, got %v %v", events[0].MetricValue, events[2].MetricValue)
	}
	if got := e.Events(2); len(got) != 2 || got[0].MetricValue != 5 {
		t.Fatalf("limit not honored: %+v", got)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	e, _ := newEngine(t)
	rule, err := e.Create(CreateAlertParams{
		Name: "z", Metric: models.MetricZScore, Operator: models.OpGreater, Threshold: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.Delete(rule.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := e.Delete(rule.ID); err != ErrAlertNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, err := e.SetActive("nope", true); err != ErrAlertNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	if len(e.List()) != 0 {
		t.Fatal("rule still listed after delete")
	}
}
