// Package model defines the typed configuration and outcome schema shared
// by the sync engine and the command-line front end.
package model

// Strategy is the declared conflict-resolution preference for an entry.
type Strategy string

const (
	// StrategyOurs keeps local content on any overlapping change.
	StrategyOurs Strategy = "ours"

	// StrategyTheirs keeps remote content on any overlapping change.
	StrategyTheirs Strategy = "theirs"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyOurs || s == StrategyTheirs
}

// ParseStrategy converts a string to a Strategy, defaulting to ours.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == StrategyTheirs {
		return StrategyTheirs
	}

	return StrategyOurs
}
