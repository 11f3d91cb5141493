package tui

import "context"

// scope ties in-flight requests to the screen that issued them. Leaving a
// screen cancels its context; results carry the generation they were
// started under and are dropped when it no longer matches.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    int
}

// renew cancels outstanding work and starts a new generation.
func (s scope) renew() scope {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return scope{ctx: ctx, cancel: cancel, gen: s.gen + 1}
}

func (s scope) close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// context returns the scope's context, or Background before the first renew.
func (s scope) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s scope) current(gen int) bool {
	return gen == s.gen
}
