package models

import "time"

// Tick is a normalized trade observation for one symbol at one instant.
// Immutable once created; the hot buffer evicts old ticks, storage keeps
// the durable copy.
type Tick struct {
	Symbol string    `json:"symbol"`
	Ts     time.Time `json:"ts"`
	Price  float64   `json:"price"`
	Size   float64   `json:"size"`
}

// Bar represents an OHLCV aggregate of ticks within one timeframe bucket.
// Derived on demand from ticks, never stored separately.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Bucket    time.Time `json:"ts"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
