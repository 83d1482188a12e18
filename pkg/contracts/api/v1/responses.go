package api

// ScoreComponents is the per-component risk breakdown, each in [0, 100]
type ScoreComponents struct {
	Health     float64 `json:"health"`
	Volatility float64 `json:"volatility"`
	Liquidity  float64 `json:"liquidity"`
	MarketCap  float64 `json:"market_cap"`
}

// ScoreWeights are the blend weights applied to the components
type ScoreWeights struct {
	Health     float64 `json:"health"`
	Volatility float64 `json:"volatility"`
	Liquidity  float64 `json:"liquidity"`
	MarketCap  float64 `json:"market_cap"`
}

// ScoreResponse is the answer to POST /api/v1/olrs
type ScoreResponse struct {
	OLRS       float64         `json:"olrs"`
	Components ScoreComponents `json:"components"`
	Weights    ScoreWeights    `json:"weights"`
	TraceID    string          `json:"trace_id,omitempty"`
}

// TokenResponse describes one configured token
type TokenResponse struct {
	Symbol string `json:"symbol"`
	Unit   string `json:"unit"`
}

// TokenListResponse lists the configured tokens in symbol order
type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Count  int             `json:"count"`
}
