package models

// Request payloads for the REST API. Query tags cover GET binding, json tags
// cover POST bodies.

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1s" validate:"oneof=tick 1s 1m 5m"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=10000"`
}

type WatchSymbolRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type PairAnalyticsRequest struct {
	SymbolA   string `query:"symbol_a" json:"symbol_a" validate:"required"`
	SymbolB   string `query:"symbol_b" json:"symbol_b" validate:"required"`
	TF        string `query:"tf" json:"tf" default:"tick" validate:"oneof=tick 1s 1m 5m"`
	Window    int    `query:"window" json:"window" default:"300" validate:"gte=2,lte=5000"`
	Limit     int    `query:"limit" json:"limit" default:"5000" validate:"gte=2,lte=20000"`
	Intercept string `query:"intercept" json:"intercept" default:"true" validate:"oneof=true false"`
	WithADF   bool   `query:"with_adf" json:"with_adf"`
}

type AlertHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}
