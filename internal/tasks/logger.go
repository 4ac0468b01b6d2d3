package tasks

import "log/slog"

// logger is the package-level logger for task-level events: items dropped
// for an empty outline (spec.md §7 "EmptyItemOutline"), whether host
// arrangeables, clones, or a fill-bed prototype.
var logger = slog.Default()

// SetLogger replaces the package-level logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
