package gcode

import (
	"encoding/json"
	"fmt"
	"io"
)

// configJSON is the on-disk form of a dialect Config, one file per
// supported controller. The enum fields take only the declared
// string values; anything else is rejected rather than defaulted.
type configJSON struct {
	Header   []string          `json:"header"`
	Footer   []string          `json:"footer"`
	ArcMode  string            `json:"arc_mode"`    // "ij" or "r"
	Dwell    string            `json:"dwell_syntax"` // "seconds" or "milliseconds"
	Tokens   map[string]string `json:"tokens"`
	Decimals int               `json:"decimals"`
}

// ReadConfig parses a dialect configuration from JSON.
func ReadConfig(r io.Reader) (*Config, error) {
	var cj configJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cj); err != nil {
		return nil, fmt.Errorf("failed to parse post config: %w", err)
	}
	cfg := &Config{
		Header:   cj.Header,
		Footer:   cj.Footer,
		Tokens:   cj.Tokens,
		Decimals: cj.Decimals,
	}
	switch cj.ArcMode {
	case "", "ij":
		cfg.Arc = ArcIJ
	case "r":
		cfg.Arc = ArcR
	default:
		return nil, fmt.Errorf("unknown arc_mode %q (want \"ij\" or \"r\")", cj.ArcMode)
	}
	switch cj.Dwell {
	case "", "seconds":
		cfg.Dwell = DwellSeconds
	case "milliseconds":
		cfg.Dwell = DwellMilliseconds
	default:
		return nil, fmt.Errorf("unknown dwell_syntax %q (want \"seconds\" or \"milliseconds\")", cj.Dwell)
	}
	return cfg, nil
}
