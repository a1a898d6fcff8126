package gensrv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/fenwick-labs/gensrv/future"
	"github.com/fenwick-labs/gensrv/internal/mailbox"
)

// Server is a single-consumer, stateful message sequencer: one Handler,
// one piece of state, and a mailbox that guarantees messages run one
// at a time in the order they were submitted. There is no supervision
// tree, no links or monitors, and no distribution; a Server is a local
// value referenced directly by its caller.
type Server struct {
	name    string
	handler Handler
	state   any // touched only from inside dispatch, never concurrently

	mbMu sync.Mutex
	mb   mailbox.Mailbox

	maxQueueSize int
	system       *System
}

// Option configures a Server at construction time.
type Option func(*serverOpts)

type serverOpts struct {
	name         string
	state        any
	stateSet     bool
	maxQueueSize int
	system       *System
}

// WithName gives the server a name used in logging. It is not a
// registry lookup key: gensrv servers are referenced directly by
// their *Server value, not looked up by name.
func WithName(name string) Option {
	return func(o *serverOpts) { o.name = name }
}

// WithState sets the server's initial state, taking priority over
// AfterInit if the Handler also implements AfterIniter.
func WithState(state any) Option {
	return func(o *serverOpts) { o.state = state; o.stateSet = true }
}

// WithMaxQueueSize bounds the server's mailbox. 0 (the default) means
// unbounded.
func WithMaxQueueSize(n int) Option {
	return func(o *serverOpts) { o.maxQueueSize = n }
}

// WithSystem attaches the server to a shared dispatcher pool at
// construction time, equivalent to calling AttachSystem immediately
// after NewServer.
func WithSystem(sys *System) Option {
	return func(o *serverOpts) { o.system = sys }
}

// NewServer constructs a Server around handler and starts its
// mailbox. If handler implements AfterIniter and WithState was not
// given, AfterInit's return value becomes the initial state.
func NewServer(handler Handler, opts ...Option) *Server {
	o := serverOpts{}
	for _, opt := range opts {
		opt(&o)
	}

	name := o.name
	if name == "" {
		name = xid.New().String()
	}

	s := &Server{
		name:         name,
		handler:      handler,
		maxQueueSize: o.maxQueueSize,
		system:       o.system,
	}

	// The mailbox is started before the initial state is set. Nothing
	// can be submitted to s until NewServer returns it, so no message
	// is dispatched before the state below is in place.
	s.mb = s.newMailbox()

	if o.stateSet {
		s.state = o.state
	} else {
		s.state = runAfterInit(handler)
	}
	return s
}

func (s *Server) newMailbox() mailbox.Mailbox {
	if s.system != nil {
		return mailbox.NewDispatchedMailbox(s.maxQueueSize, s.dispatch, s.system.dispatcher())
	}
	return mailbox.NewThreadedMailbox(s.maxQueueSize, s.dispatch)
}

// Name returns the server's configured (or generated) name.
func (s *Server) Name() string { return s.name }

// Running reports whether the server is still accepting messages.
func (s *Server) Running() bool {
	s.mbMu.Lock()
	defer s.mbMu.Unlock()
	return s.mb.Running()
}

// AttachSystem moves the server from its current mailbox backend onto
// sys's shared dispatcher pool, or back to a dedicated goroutine if
// sys is nil. Any message already queued on the old mailbox is
// discarded, matching the Stop contract the old mailbox is closed
// under; callers should attach a System before a server starts
// receiving real traffic.
func (s *Server) AttachSystem(sys *System) {
	s.mbMu.Lock()
	defer s.mbMu.Unlock()

	old := s.mb
	s.system = sys
	s.mb = s.newMailbox()
	old.Stop()
}

// Call sends message to the server and blocks until HandleCall has
// run and produced a reply (or the server stopped, or HandleCall
// panicked). A nil message is a no-op that never reaches the Handler.
func (s *Server) Call(message any) (any, error) {
	if message == nil {
		return nil, nil
	}
	return s.submit(mailbox.WorkItem{Message: message, Kind: mailbox.Call, ReplyRequired: true})
}

// Cast sends message to the server without waiting for it to be
// processed. The returned error reports only submission failures
// (ErrStopped, ErrQueueFull), never anything HandleCast returns. A nil
// message is a no-op that never reaches the Handler.
func (s *Server) Cast(message any) error {
	if message == nil {
		return nil
	}
	_, err := s.submit(mailbox.WorkItem{Message: message, Kind: mailbox.Cast})
	return err
}

// CallResult is the value space an AsyncCall's Future resolves to:
// exactly what a synchronous Call would have returned.
type CallResult struct {
	Value any
	Err   error
}

// AsyncCall sends message to the server like Call, but returns
// immediately with a Future that is completed once HandleCall has run,
// instead of blocking the caller.
func (s *Server) AsyncCall(message any) *future.Future[CallResult] {
	return future.New(func(complete func(CallResult)) {
		newAsyncCallWaiter(s, message, complete)
	})
}

func (s *Server) submit(item mailbox.WorkItem) (any, error) {
	s.mbMu.Lock()
	mb := s.mb
	s.mbMu.Unlock()
	result, err := mb.Submit(item)
	if errors.Is(err, ErrQueueFull) {
		errorw("gensrv: mailbox queue full", "server", s.name)
	}
	return result, err
}

// submitWithSender is used by the async-call waiter to submit message
// as a call whose reply is routed to sender instead of blocked on.
func (s *Server) submitWithSender(message any, sender *Server) error {
	_, err := s.submit(mailbox.WorkItem{Message: message, Kind: mailbox.Call, Sender: sender})
	return err
}

// dispatch is the mailbox.Handler bound to this server: it runs on
// whatever goroutine the mailbox gives it, one item at a time. It
// recovers panics into a HandlerError, stops the mailbox on Stopping
// (replying ErrStopped to a blocked Call), routes a reply to Sender
// when one was given, and falls back to ErrUnhandled for a call the
// Handler didn't recognize.
func (s *Server) dispatch(item mailbox.WorkItem) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, newHandlerError(r)
			errorw("gensrv: handler panic", "server", s.name, "recovered", r)
			if sender, ok := item.Sender.(*Server); ok {
				if castErr := sender.Cast(asyncReply{result: result, err: err}); castErr != nil {
					debugw("gensrv: async reply delivery failed", "server", s.name, "err", castErr)
				}
			}
		}
	}()

	if _, ok := item.Message.(Stop); ok {
		s.mbMu.Lock()
		mb := s.mb
		s.mbMu.Unlock()
		mb.Stop()
		debugw("gensrv: server stopped", "server", s.name)
		if item.Kind == mailbox.Call {
			return nil, ErrStopped
		}
		return nil, nil
	}

	var hr HandleResult
	switch item.Kind {
	case mailbox.Call:
		hr = s.handler.HandleCall(item.Message, s.state)
	default:
		hr = s.handler.HandleCast(item.Message, s.state)
	}

	switch hr.outcome {
	case outcomeReply:
		s.state = hr.state
		result, err = hr.reply, nil
	case outcomeStopping:
		s.mbMu.Lock()
		mb := s.mb
		s.mbMu.Unlock()
		mb.Stop()
		debugw("gensrv: server stopping", "server", s.name)
		if item.Kind == mailbox.Call {
			result, err = nil, ErrStopped
		} else {
			result, err = nil, nil
		}
	default:
		if item.Kind == mailbox.Call {
			result, err = nil, ErrUnhandled
		} else {
			debugw("gensrv: cast unhandled", "server", s.name, "message", fmt.Sprintf("%T", item.Message))
			result, err = nil, nil
		}
	}

	if item.Sender != nil {
		if sender, ok := item.Sender.(*Server); ok {
			if castErr := sender.Cast(asyncReply{result: result, err: err}); castErr != nil {
				debugw("gensrv: async reply delivery failed", "server", s.name, "err", castErr)
			}
		}
	}

	return result, err
}

// asyncReply is the Cast message an async-call waiter's target server
// sends back once it has handled the original call.
type asyncReply struct {
	result any
	err    error
}
