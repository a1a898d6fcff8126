package gensrv

// SimpleServer is a Handler built from plain functions instead of a
// named type implementing the Handler interface. Callers who don't
// need a dedicated type for a one-off server (the async-call waiter
// being the prototypical example) can fill in just the fields they
// need; a nil function leaves the message unhandled, the same as the
// zero HandleResult a full Handler would return for it.
type SimpleServer struct {
	// CallFunc backs HandleCall. May be nil.
	CallFunc func(message any, state any) HandleResult
	// CastFunc backs HandleCast. May be nil.
	CastFunc func(message any, state any) HandleResult
	// AfterInitFunc, if set, produces the server's initial state.
	AfterInitFunc func() any
}

func (s *SimpleServer) HandleCall(message any, state any) HandleResult {
	if s.CallFunc == nil {
		return HandleResult{}
	}
	return s.CallFunc(message, state)
}

func (s *SimpleServer) HandleCast(message any, state any) HandleResult {
	if s.CastFunc == nil {
		return HandleResult{}
	}
	return s.CastFunc(message, state)
}

func (s *SimpleServer) AfterInit() any {
	if s.AfterInitFunc == nil {
		return nil
	}
	return s.AfterInitFunc()
}
