package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownToken is returned when a symbol has no entry in the token table
var ErrUnknownToken = errors.New("unknown token symbol")

// TokenTable maps token symbols to API units. Keys are compared case-insensitively.
type TokenTable map[string]string

// Lookup resolves a symbol to its unit
func (t TokenTable) Lookup(symbol string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	if unit, ok := t[key]; ok && unit != "" {
		return unit, nil
	}
	for k, unit := range t {
		if strings.EqualFold(k, key) && unit != "" {
			return unit, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
}

// Symbols returns the table's symbols in sorted order
func (t TokenTable) Symbols() []string {
	symbols := make([]string, 0, len(t))
	for k := range t {
		symbols = append(symbols, strings.ToUpper(k))
	}
	sort.Strings(symbols)
	return symbols
}

// normalized returns a copy with upper-cased, trimmed keys and trimmed units
func (t TokenTable) normalized() TokenTable {
	out := make(TokenTable, len(t))
	for k, v := range t {
		out[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func defaultTokenTable() TokenTable {
	table := make(TokenTable, len(DefaultTokens))
	for k, v := range DefaultTokens {
		table[k] = v
	}
	return table
}
