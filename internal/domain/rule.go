package domain

import (
	"fmt"
	"strings"
)

// MatchKind selects how a rule pattern is compared against a source.
type MatchKind string

const (
	MatchSubstring MatchKind = "substring"
	MatchRegex     MatchKind = "regex"
)

// ParseMatchKind accepts "substring" (default when empty) or "regex".
func ParseMatchKind(s string) (MatchKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MatchSubstring):
		return MatchSubstring, nil
	case string(MatchRegex), "regexp":
		return MatchRegex, nil
	default:
		return "", fmt.Errorf("%w: unknown match kind %q", ErrInvalidRule, s)
	}
}

// Rule maps a source pattern to a category. Rules are evaluated in order and
// the first match wins.
type Rule struct {
	Pattern  string    `json:"pattern" yaml:"pattern"`
	Kind     MatchKind `json:"kind" yaml:"kind"`
	Category string    `json:"category" yaml:"category"`
}

// RuleTable is a versioned, ordered list of rules.
type RuleTable struct {
	Version uint64 `json:"version"`
	Rules   []Rule `json:"rules"`
}
