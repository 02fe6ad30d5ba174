package monitor

import "errors"

var (
	ErrMissingName      = errors.New("monitor name is required")
	ErrInvalidURL       = errors.New("monitor URL is invalid")
	ErrQuotaExceeded    = errors.New("monitor quota exceeded")
	ErrIntervalTooShort = errors.New("check interval below plan minimum")
	ErrMonitorNotFound  = errors.New("monitor not found")
)
