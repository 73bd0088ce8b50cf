// Package logging provides the process-wide structured logger shared by
// the packages in this module that log, grounded on the teacher's hal.SetLogger/
// hal.Logger() pair: a package-level atomic pointer defaulting to a
// no-op handler so library use stays silent unless a caller opts in.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards every log record. Enabled returns false
// so callers skip message formatting entirely when logging is disabled.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by every package under this
// module (dispatch, device, and the cmd/ binaries).
// Pass nil to restore the silent default. Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the currently configured logger. Safe for concurrent
// use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
