package models

import "time"

// Metric names a snapshot field an alert rule can watch.
type Metric string

const (
	MetricZScore      Metric = "zscore"
	MetricSpread      Metric = "spread"
	MetricCorrelation Metric = "correlation"
	MetricBeta        Metric = "beta"
)

// IsValidMetric reports whether m is a member of the closed metric set.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricZScore, MetricSpread, MetricCorrelation, MetricBeta:
		return true
	default:
		return false
	}
}

// Operator is a threshold comparison.
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
)

// IsValidOperator reports whether op is a member of the closed operator set.
func IsValidOperator(op Operator) bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	default:
		return false
	}
}

// Compare evaluates value <op> threshold.
func (op Operator) Compare(value, threshold float64) bool {
	switch op {
	case OpGreater:
		return value > threshold
	case OpGreaterEqual:
		return value >= threshold
	case OpLess:
		return value < threshold
	case OpLessEqual:
		return value <= threshold
	default:
		return false
	}
}

// AlertRule is a user-defined threshold rule over the live metric stream.
// Owned exclusively by the alert engine.
type AlertRule struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Metric        Metric     `json:"metric"`
	Operator      Operator   `json:"operator"`
	Threshold     float64    `json:"threshold"`
	Symbols       []string   `json:"symbols"`
	Window        *int       `json:"window,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
}

// AlertEvent records one rule firing. Append-only, never mutated.
type AlertEvent struct {
	AlertID     string    `json:"alert_id"`
	Name        string    `json:"name"`
	Metric      Metric    `json:"metric"`
	Operator    Operator  `json:"operator"`
	Threshold   float64   `json:"threshold"`
	MetricValue float64   `json:"metric_value"`
	TriggeredAt time.Time `json:"triggered_at"`
}
