// Package gensrv implements a single-consumer, stateful server modeled
// on Erlang/OTP's gen_server behaviour, scoped to what a single Go
// process needs: no distribution, no supervision trees, no links or
// monitors.
//
// A Server wraps a Handler and a mutable piece of state behind a
// mailbox that guarantees messages are handled one at a time, in
// submission order. Three entry points reach it:
//
//	Call(msg)       blocks until HandleCall has produced a reply
//	Cast(msg)       returns once msg is queued; HandleCast runs later
//	AsyncCall(msg)  returns a *future.Future immediately, completed
//	                once HandleCall has run
//
// Roughly, the correspondence to Erlang/OTP is:
//
//	gen_server:call/2        Server.Call
//	gen_server:cast/2        Server.Cast
//	Handle_call/3            Handler.HandleCall
//	Handle_cast/2            Handler.HandleCast
//	{stop, Reason, State}    Stopping()
//
// A Server runs its handler on a dedicated goroutine by default. Many
// servers can instead share a bounded pool of goroutines by attaching
// them to a System.
package gensrv
