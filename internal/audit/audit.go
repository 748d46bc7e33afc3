// Package audit records administrative mutations.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/sng-admin/internal/clock"
)

// Entry is one audited action.
type Entry struct {
	Actor    string
	Action   string // login, logout, create, update, delete, upload
	Resource string
	ID       string
}

// Logger writes audit entries as structured log lines.
type Logger struct {
	logger *slog.Logger
	clock  clock.Clock
}

// New creates an audit logger on top of logger; nil means slog.Default().
func New(logger *slog.Logger, clk clock.Clock) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Logger{logger: logger.With("component", "audit"), clock: clk}
}

// Record writes e. Empty actors are reported as "admin".
func (l *Logger) Record(ctx context.Context, e Entry) {
	if l == nil {
		return
	}
	actor := e.Actor
	if actor == "" {
		actor = "admin"
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("timestamp", l.clock.Now().UTC().Format(time.RFC3339Nano)),
		slog.String("actor", actor),
		slog.String("action", e.Action),
		slog.String("resource", e.Resource),
		slog.String("id", e.ID),
	)
}
