package models

import "errors"

var (
	// ErrNoData means a provider had nothing usable for the ticker this
	// attempt: rate limited, unknown symbol, malformed payload, or a failed
	// currency conversion. Recoverable; callers fall back to cache.
	ErrNoData = errors.New("provider: no data")

	// ErrNotConfigured means the provider has no API key configured.
	// Permanent until config changes; no network call was made.
	ErrNotConfigured = errors.New("provider: not configured")

	// ErrRateUnavailable means an exchange rate could not be obtained for a
	// requested currency. The whole record conversion must be aborted.
	ErrRateUnavailable = errors.New("fx: rate unavailable")
)
