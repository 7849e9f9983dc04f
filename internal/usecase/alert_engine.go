package usecase

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/pkg/logger"
)

// ErrAlertNotFound is returned by rule mutations on unknown IDs.
var ErrAlertNotFound = fmt.Errorf("alert rule not found")

// AlertEngine owns the rule set and the bounded firing history. Rules are
// evaluated against every broadcast snapshot; a rule keeps firing on every
// tick its condition holds, there is no cooldown.
type AlertEngine struct {
	metrics drepo.Metrics
	logger  *logger.Logger

	mu           sync.RWMutex
	rules        map[string]*models.AlertRule
	events       []models.AlertEvent // most recent first
	historyLimit int
}

type AlertOption func(*AlertEngine)

// WithHistoryLimit caps the retained firing history.
func WithHistoryLimit(n int) AlertOption {
	return func(e *AlertEngine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

func NewAlertEngine(metrics drepo.Metrics, log *logger.Logger, opts ...AlertOption) *AlertEngine {
	e := &AlertEngine{
		metrics:      metrics,
		logger:       log,
		rules:        make(map[string]*models.AlertRule),
		historyLimit: 500,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateAlertParams carries the user-supplied fields of a new rule.
type CreateAlertParams struct {
	Name      string          `json:"name" validate:"required"`
	Metric    models.Metric   `json:"metric" validate:"required"`
	Operator  models.Operator `json:"operator" validate:"required"`
	Threshold float64         `json:"threshold"`
	Symbols   []string        `json:"symbols"`
	Window    *int            `json:"window,omitempty"`
}

// Create validates params and registers a new active rule.
func (e *AlertEngine) Create(p CreateAlertParams) (*models.AlertRule, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("alert name required")
	}
	if !models.IsValidMetric(p.Metric) {
		return nil, fmt.Errorf("unknown metric %q", p.Metric)
	}
	if !models.IsValidOperator(p.Operator) {
		return nil, fmt.Errorf("unknown operator %q", p.Operator)
	}
	if math.IsNaN(p.Threshold) || math.IsInf(p.Threshold, 0) {
		return nil, fmt.Errorf("threshold must be finite")
	}
	if p.Window != nil && *p.Window < 2 {
		return nil, fmt.Errorf("window must be at least 2")
	}

	rule := &models.AlertRule{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Metric:    p.Metric,
		Operator:  p.Operator,
		Threshold: p.Threshold,
		Symbols:   p.Symbols,
		Window:    p.Window,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.rules[rule.ID] = rule
	e.mu.Unlock()

	e.logger.Info("alert rule created",
		logger.String("id", rule.ID),
		logger.String("metric", string(rule.Metric)),
		logger.Float64("threshold", rule.Threshold))
	out := *rule
	return &out, nil
}

// SetActive toggles a rule on or off.
func (e *AlertEngine) SetActive(id string, active bool) (*models.AlertRule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rule, ok := e.rules[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	rule.Active = active
	out := *rule
	return &out, nil
}

// Delete removes a rule. Past events for the rule are kept.
func (e *AlertEngine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rules[id]; !ok {
		return ErrAlertNotFound
	}
	delete(e.rules, id)
	return nil
}

// List returns all rules ordered by creation time.
func (e *AlertEngine) List() []models.AlertRule {
	e.mu.RLock()
	out := make([]models.AlertRule, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, *r)
	}
	e.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Events returns up to limit firing records, most recent first. limit <= 0
// returns the whole retained history.
func (e *AlertEngine) Events(limit int) []models.AlertEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := len(e.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.AlertEvent, n)
	copy(out, e.events[:n])
	return out
}

// Evaluate checks every active rule against the snapshot and returns the
// events fired on this pass. Rules watching a metric the snapshot does not
// carry are skipped, never fired.
func (e *AlertEngine) Evaluate(snap *models.AnalyticsSnapshot, now time.Time) []models.AlertEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fired []models.AlertEvent
	for _, rule := range e.rules {
		if !rule.Active {
			continue
		}
		value, ok := snap.MetricValue(rule.Metric)
		if !ok {
			continue
		}
		if !rule.Operator.Compare(value, rule.Threshold) {
			continue
		}
		ts := now
		rule.LastTriggered = &ts
		ev := models.AlertEvent{
			AlertID:     rule.ID,
			Name:        rule.Name,
			Metric:      rule.Metric,
			Operator:    rule.Operator,
			Threshold:   rule.Threshold,
			MetricValue: value,
			TriggeredAt: now,
		}
		fired = append(fired, ev)
		e.record(ev)
		e.metrics.RecordAlertFired(string(rule.Metric))
	}
	return fired
}

func (e *AlertEngine) record(ev models.AlertEvent) {
	e.events = append([]models.AlertEvent{ev}, e.events...)
	if len(e.events) > e.historyLimit {
		e.events = e.events[:e.historyLimit]
	}
}
