package domain

import "errors"

var (
	// ErrInvalidInterval is returned when an observation does not satisfy End > Start.
	ErrInvalidInterval = errors.New("invalid interval: end must be after start")

	// ErrInvalidRange is returned when a query range does not satisfy End > Start.
	ErrInvalidRange = errors.New("invalid range: end must be after start")

	// ErrRuleTableConflict is returned when a rule table swap was based on a
	// stale version.
	ErrRuleTableConflict = errors.New("rule table conflict: table changed since it was read")

	// ErrInvalidRule is returned when a rule cannot be compiled or is incomplete.
	ErrInvalidRule = errors.New("invalid classification rule")

	// ErrUnknownCategory is returned when a rule references a category that
	// is not configured.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidGranularity is returned when a granularity name is not recognized.
	ErrInvalidGranularity = errors.New("invalid granularity")

	// ErrTrackingDisabled is returned when an observation is recorded while
	// tracking is switched off.
	ErrTrackingDisabled = errors.New("tracking is disabled")
)
