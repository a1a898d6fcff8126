package gensrv

import "github.com/rs/xid"

// newAsyncCallWaiter builds the ephemeral server AsyncCall uses to turn
// a blocking Call into a Future: it submits message to target with
// itself as Sender, waits for target's dispatch to Cast the reply back
// (see Server.dispatch's Sender routing), completes the future, and
// stops itself. It lives in the root package rather than its own
// internal/waiter package because it needs Server, SimpleServer, and
// CallResult directly and Server.AsyncCall needs to construct it in
// turn; splitting it out would just be an import cycle with extra
// steps.
//
// It is a short-lived server whose only job is to receive the one
// reply a blocking caller would otherwise park on and hand it to a
// Future instead: it's just another Server, attached to the target's
// System (or, when the target has none, running on its own dedicated
// goroutine until it stops), and its Cast handler is what "waking up"
// on the reply means here.
func newAsyncCallWaiter(target *Server, message any, complete func(CallResult)) *Server {
	w := NewServer(&SimpleServer{
		CastFunc: func(msg any, state any) HandleResult {
			reply, ok := msg.(asyncReply)
			if !ok {
				return Reply(nil, state)
			}
			complete(CallResult{Value: reply.result, Err: reply.err})
			return Stopping()
		},
	}, WithName("async-call-"+xid.New().String()), WithSystem(target.system))

	if err := target.submitWithSender(message, w); err != nil {
		complete(CallResult{Err: err})
		_ = w.Cast(Stop{})
	}

	return w
}
