package interfaces

import "context"

// PageSession is one usable browser page. Release is idempotent and must
// be called on every exit path; for owned sessions it tears down the
// launched browser process, for attached ones it closes only the page.
type PageSession interface {
	Context() context.Context
	Owned() bool
	Release()
}

// BrowserProvider yields page sessions, either by launching a browser or
// attaching to a running one.
type BrowserProvider interface {
	Acquire(ctx context.Context) (PageSession, error)
}
