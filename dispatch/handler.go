package dispatch

import (
	"context"

	"github.com/offlayer/dispatch/wire"
)

// Class names the three handler shapes the dispatcher must treat
// differently (spec §4.5):
//
//   - Local: mutates only this rank's local state (SetParam, Commit,
//     Retain/Release). Runs inline on the dispatch loop.
//   - RepliesRequired: the issuing host call is blocked on a reply
//     (GetVariance, GetProgress, Pick, IsReady, Wait). Runs inline; the
//     handler itself is responsible for sending its reply via
//     fabric.Group.Send before returning.
//   - Collective: requires coordination with other workers and/or
//     long-running work (RenderFrame). Always spawned onto the task pool
//     so the dispatch loop is never blocked on it.
type Class uint8

const (
	Local Class = iota
	RepliesRequired
	Collective
)

// Func is a command handler: it decodes its own payload and performs the
// tag's effect. Handlers that must reply do so by sending through the
// fabric.Group the dispatcher was constructed with; Func's error return
// only governs whether the dispatch loop treats the command as fatal
// (spec §7: ProtocolError is fatal, NotFound/TypeMismatch abort only the
// enclosing command).
type Func func(ctx context.Context, payload []byte) error

// Handler pairs a Func with its Class.
type Handler struct {
	Class Class
	Func  Func
}

// HandlerTable maps command tags to handlers. The zero value is empty and
// ready to use.
type HandlerTable map[wire.Tag]Handler

// Register adds or replaces the handler for tag.
func (t HandlerTable) Register(tag wire.Tag, class Class, fn Func) {
	t[tag] = Handler{Class: class, Func: fn}
}
