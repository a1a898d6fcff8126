package gensrv

// Handler implements a server's behavior. HandleCall backs Call and
// AsyncCall (the submitter blocks, or holds a Future, until it
// returns); HandleCast backs Cast (the submitter never sees the
// result). Both run on the server's mailbox, one at a time, so a
// Handler needs no locking of its own around state.
type Handler interface {
	// HandleCall processes message and returns the reply (if any) plus
	// updated state. state is whatever the previous HandleCall,
	// HandleCast, or AfterInit returned.
	HandleCall(message any, state any) HandleResult

	// HandleCast processes message and returns updated state. Its
	// reply value, if any, is discarded.
	HandleCast(message any, state any) HandleResult
}

// AfterIniter is an optional extension a Handler can implement to run
// setup once the server is constructed but before it processes any
// message, producing the server's initial state.
type AfterIniter interface {
	AfterInit() any
}

func runAfterInit(h Handler) any {
	if a, ok := h.(AfterIniter); ok {
		return a.AfterInit()
	}
	return nil
}
