// Package mailbox implements the message-sequencing backends that a
// Server hands its work items to: one goroutine per mailbox
// (ThreadedMailbox) or a shared dispatcher pool (DispatchedMailbox).
//
// Neither backend knows anything about call/cast/handler-error
// semantics; a Mailbox only guarantees FIFO, at-most-one-concurrent-
// handler, and the bounded-queue policy documented on Submit. All of
// the Server-level interpretation happens in the Handler closure that
// gets passed in.
package mailbox

import "errors"

var (
	// ErrStopped is returned when Submit is called on a mailbox that has
	// already been stopped, or when Stop races a blocked Submit.
	ErrStopped = errors.New("mailbox: stopped")

	// ErrQueueFull is returned by a non-reply Submit on a bounded mailbox
	// that is at capacity.
	ErrQueueFull = errors.New("mailbox: queue full")

	// ErrReentrantCall is returned when a reply-required Submit is made
	// from the same goroutine that is currently running this mailbox's
	// handler. Allowing it through would deadlock: the single-consumer
	// invariant means the new item can never be serviced.
	ErrReentrantCall = errors.New("mailbox: reentrant call would deadlock")
)

// Kind tells the Handler closure which of a server's two callbacks a
// WorkItem should be run through. The mailbox itself never looks at
// it; FIFO ordering and at-most-one-concurrent-handler apply
// identically to both kinds.
type Kind int

const (
	// Call runs the server's HandleCall and expects a reply, whether
	// that reply is delivered synchronously (ReplyRequired) or handed
	// to Sender (an async-call waiter).
	Call Kind = iota
	// Cast runs the server's HandleCast; any return value is discarded.
	Cast
)

// WorkItem is the unit a Mailbox sequences: a message, which callback
// it should run through, whether the submitter is blocked waiting on
// a reply, and an optional sender used by the async-call reply path.
// Sender is opaque to the mailbox; it exists purely so Handler
// closures can route a reply without the mailbox needing to know what
// a "sender" is.
type WorkItem struct {
	Message       any
	Kind          Kind
	ReplyRequired bool
	Sender        any
}

// Handler runs one work item and returns the interpreted result. It is
// invoked on the mailbox's execution context: the dedicated worker for
// a ThreadedMailbox, or a dispatch task for a DispatchedMailbox.
type Handler func(item WorkItem) (any, error)

// Mailbox sequences work items for a single server.
type Mailbox interface {
	// Submit enqueues item and arranges for handler to run on it in FIFO
	// order relative to every other Submit on this mailbox.
	//
	// If item.ReplyRequired, Submit blocks until handler has run and
	// returns exactly what handler returned; on a full bounded mailbox
	// it first blocks until space frees up. Otherwise Submit returns as
	// soon as the item is queued (or immediately with ErrQueueFull if a
	// bounded mailbox is full); handler then runs asynchronously and its
	// result is discarded by the mailbox.
	Submit(item WorkItem) (any, error)

	// Stop prevents further items from being accepted (ErrStopped is
	// returned to every Submit from then on), discards any items that
	// were queued but not yet started, and releases the mailbox's
	// execution context. Stop does not wait for an in-flight handler to
	// finish, so it is safe to call from within that handler (the
	// self-stop path a Server takes when shutting itself down).
	Stop()

	// Running reports whether Stop has not yet been called.
	Running() bool
}
