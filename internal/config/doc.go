// Package config provides configuration management for the token risk tools.
// It loads configuration from multiple sources, validates it, and exposes the
// token table and batch items used by the enrichment driver.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// The file is taken from OLRS_CONFIG_FILE, or the first of config.yaml and
// configs/config.yaml that exists. Tokens listed in the file are merged into
// the default table; an items list replaces the default items.
//
// # Environment Variables
//
// All environment variables follow the pattern OLRS_* for namespacing:
//
//	OLRS_API_KEY=...
//	OLRS_API_BASE_URL=https://openapi.taptools.io/api/v1
//	OLRS_API_TIMEOUT=20s
//	OLRS_BATCH_WORKERS=2
//	OLRS_LOGGING_LEVEL=debug
//	OLRS_TOKENS=SNEK:279c...,HUNT:95a4...
//
// # Example File
//
//	api:
//	  interval: 1d
//	  num_intervals: 180
//	tokens:
//	  SNEK: 279c909f348e533da5808898f87f9a14bb2c3dfbbacccd631d927a3f534e454b
//	items:
//	  - symbol: SNEK
//	    input: data/SNEK.csv
//	    output: data/SNEK_with_OLRS.csv
package config
