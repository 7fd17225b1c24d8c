package search

import "errors"

var (
	// ErrCorpusUnavailable means no corpus is loaded. It is never served
	// around: callers get this error instead of a stale vector space.
	ErrCorpusUnavailable = errors.New("recipe corpus unavailable")
	// ErrRecipeNotFound is returned for an unknown recipe id.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrInvalidParameter wraps out-of-range paging or scoring arguments.
	ErrInvalidParameter = errors.New("invalid parameter")
)
