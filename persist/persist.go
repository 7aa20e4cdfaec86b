// Package persist implements canonical JSON serialization for the
// strategy and backtest configuration the desktop host saves to and loads
// from disk. Grounded on goccy/go-json (pulled in by
// Flipper1994-FlipperCapital through gin) as a drop-in, faster encoding/json replacement (same struct-reflection
// semantics: unknown fields ignored on decode, missing fields left at
// their zero value) rather than hand-rolling a wire format.
package persist

import (
	"github.com/goccy/go-json"

	"github.com/quantkit/backtestcore/config"
)

// MarshalStrategy serializes s as indented, human-diffable JSON.
func MarshalStrategy(s config.Strategy) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalStrategy parses data into a Strategy. Fields absent from data
// are left at their Go zero value; fields present in data but not on
// Strategy are silently ignored, so older saved files stay loadable after
// new fields are added.
func UnmarshalStrategy(data []byte) (config.Strategy, error) {
	var s config.Strategy
	if err := json.Unmarshal(data, &s); err != nil {
		return config.Strategy{}, err
	}
	return s, nil
}

// MarshalBacktestConfig serializes bt as indented JSON.
func MarshalBacktestConfig(bt config.BacktestConfig) ([]byte, error) {
	return json.MarshalIndent(bt, "", "  ")
}

// UnmarshalBacktestConfig parses data into a BacktestConfig under the same
// forward/backward-compatibility rules as UnmarshalStrategy.
func UnmarshalBacktestConfig(data []byte) (config.BacktestConfig, error) {
	var bt config.BacktestConfig
	if err := json.Unmarshal(data, &bt); err != nil {
		return config.BacktestConfig{}, err
	}
	return bt, nil
}

// Document bundles a Strategy with its BacktestConfig, the unit the
// desktop host actually saves as one file.
type Document struct {
	Strategy config.Strategy      `json:"strategy"`
	Backtest config.BacktestConfig `json:"backtest"`
}

// MarshalDocument serializes a full saved-strategy file.
func MarshalDocument(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument parses a full saved-strategy file.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}
