package msg

import "log/slog"

// Logger receives diagnostic-only messages from Compose (property counts,
// storage counts). A nil Logger falls back to slog.Default(); like cfb.Writer's
// Logger field, it is never consulted for control flow.
var Logger *slog.Logger

func logger() *slog.Logger {
	if Logger != nil {
		return Logger
	}
	return slog.Default()
}
