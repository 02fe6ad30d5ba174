package quota

import "errors"

var (
	ErrUnknownTier             = errors.New("subscription references unknown tier")
	ErrFailedToCountMonitors   = errors.New("failed to count monitors")
	ErrCounterCacheUnavailable = errors.New("monitor counter cache unavailable")
)
