package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/offlayer/dispatch/fabric"
	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/wire"
)

// Broadcaster is the subset of fabric.Group the loop reads from. Defined at
// the point of use so dispatch does not depend on fabric.Group's full
// surface.
type Broadcaster interface {
	RecvBroadcast(ctx context.Context) ([]byte, error)
}

// Loop is the worker dispatcher (C5): single-threaded, reads one flushed
// command buffer at a time, parses it into records, and invokes the
// registered handler per record (spec §4.5).
type Loop struct {
	group    Broadcaster
	handlers HandlerTable
	pool     *Pool
	log      *slog.Logger
}

// NewLoop returns a Loop reading broadcasts from group, dispatching through
// handlers, spawning Collective-class work onto pool.
func NewLoop(group Broadcaster, handlers HandlerTable, pool *Pool, log *slog.Logger) *Loop {
	if log == nil {
		log = logging.Logger()
	}
	return &Loop{group: group, handlers: handlers, pool: pool, log: log}
}

// Run decodes and dispatches commands until ctx is canceled or a fatal
// error (ProtocolError) occurs, which it returns. A per-command error that
// is not a ProtocolError aborts only that command (spec §7) and is logged,
// not returned.
func (l *Loop) Run(ctx context.Context) error {
	for {
		payload, err := l.group.RecvBroadcast(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := l.dispatchBuffer(ctx, payload); err != nil {
			return err
		}
	}
}

func (l *Loop) dispatchBuffer(ctx context.Context, payload []byte) error {
	r := bytes.NewReader(payload)
	for {
		rec, err := wire.ReadRecord(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// A malformed record is a ProtocolError: fatal to the fabric
			// (spec §7).
			return err
		}

		h, ok := l.handlers[rec.Tag]
		if !ok {
			return &fabric.ProtocolError{Reason: "unrecognized command tag " + rec.Tag.String()}
		}

		switch h.Class {
		case Collective:
			payload := rec.Payload
			fn := h.Func
			tag := rec.Tag
			l.pool.Submit(func(ctx context.Context) {
				if err := fn(ctx, payload); err != nil {
					l.log.Error("collective handler failed", "tag", tag.String(), "error", err)
				}
			})
		default:
			if err := h.Func(ctx, rec.Payload); err != nil {
				var perr *fabric.ProtocolError
				if errors.As(err, &perr) {
					return err
				}
				l.log.Warn("command handler aborted", "tag", rec.Tag.String(), "error", err)
			}
		}
	}
}
