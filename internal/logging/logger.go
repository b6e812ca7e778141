// Package logging defines the logger the client services share. Background
// reconcile and refresh paths log failures instead of surfacing them, so
// every service takes the interface rather than a concrete handler.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Warn(ctx, "refresh failed, serving local mirror", "error", err)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs an unusual but non-fatal condition, e.g. a skipped
	// transaction status regression or a dropped push event.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs; services tag themselves with a "component" key.
	With(args ...any) Logger
}
