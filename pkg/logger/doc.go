// Package logger builds the application's slog.Logger and provides shared
// attribute helpers (logger.Error, logger.UserID) so log keys stay
// consistent across packages.
package logger
