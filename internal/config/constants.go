package config

import "time"

// Application constants
const (
	AppName      = "Token Risk"
	EnvPrefix    = "OLRS"
	EnvConfigKey = "OLRS_CONFIG_FILE"

	// Market data API
	DefaultAPIBaseURL    = "https://openapi.taptools.io/api/v1"
	DefaultInterval      = "1d"
	DefaultNumIntervals  = 180
	DefaultAPITimeout    = 20 * time.Second
	DefaultRateLimitRPS  = 5.0
	APIKeyHeader         = "x-api-key"
	OHLCVPath            = "/token/ohlcv"
	MarketCapPath        = "/token/mcap"
	MaxErrorBodyExcerpt  = 512

	// Batch
	DefaultDataDir = "data"
	DefaultWorkers = 1
	MaxWorkers     = 16

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/olrs.log"

	// Scoring API
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimit       = 100
	DefaultBurstSize       = 50

	ScoreEndpoint   = "/api/v1/olrs"
	HealthEndpoint  = "/api/health"
	VersionEndpoint = "/api/version"
	MetricsEndpoint = "/metrics"
)

// DefaultSymbols is the batch order used when no items are configured
var DefaultSymbols = []string{"SNEK", "IAG", "HUNT", "LENFI", "BTN"}

// DefaultTokens maps each known symbol to its on-chain unit (policy ID + hex asset name)
var DefaultTokens = map[string]string{
	"SNEK":  "279c909f348e533da5808898f87f9a14bb2c3dfbbacccd631d927a3f534e454b",
	"HUNT":  "95a427e384527065f2f8946f5e86320d0117839a5e98ea2c0b55fb0048554e54",
	"LENFI": "8fef2d34078659493ce161a6c7fba4b56afefa8535296a5743f6958741414441",
	"IAG":   "5d16cc1a177b5d9ba9cfa9793b07e60f1fb70fea1f8aef064415d114494147",
	"BTN":   "016be5325fd988fea98ad422fcfd53e5352cacfced5c106a932a35a442544e",
}
