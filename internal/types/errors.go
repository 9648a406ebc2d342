package types

import "errors"

// Sentinel errors for themerouter operations.
var (
	// ErrInvalidRule indicates a rule that cannot be stored: missing or
	// malformed value, or no recognizable target.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrRuleNotFound indicates a rule index or ID that resolves to nothing.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrThemeNotFound indicates a theme slug with no installed theme.
	ErrThemeNotFound = errors.New("theme not found")

	// ErrContentNotFound indicates a content ID that resolves to nothing.
	// Rule matching treats this as silent non-match; only admin-facing
	// operations surface it.
	ErrContentNotFound = errors.New("content not found")

	// ErrReservedPrefix indicates an attempt to map a theme to the default
	// REST prefix, which is handled by the host and cannot be remapped.
	ErrReservedPrefix = errors.New("rest prefix is reserved")

	// ErrEmptyPrefix indicates a REST prefix that is empty after
	// sanitization.
	ErrEmptyPrefix = errors.New("rest prefix is empty")
)
