package arrange

import "log/slog"

// logger is the package-level logger used for the points spec.md §7 calls
// out: EmptyItemOutline dropped (logged by the converter's caller),
// UnpackableItem skipped, and cancellation. Never called from inside a
// per-sample scoring loop. Callers may override it with SetLogger.
var logger = slog.Default()

// SetLogger replaces the package-level logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
