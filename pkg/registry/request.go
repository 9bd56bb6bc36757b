package registry

import (
	"sync"

	"aerolink/pkg/wire"
)

// Request is the caller's handle on an outstanding or recurring request.
// Stopping it cancels the host-side subscription and drops the local
// handler. A Request left unstopped keeps delivering until the connection
// closes.
type Request struct {
	id   wire.RequestID
	once sync.Once
	stop func() error
	err  error
}

// NewRequest wraps a request id with its cancel action.
func NewRequest(id wire.RequestID, stop func() error) *Request {
	return &Request{id: id, stop: stop}
}

// ID returns the request id the host knows this request by.
func (r *Request) ID() wire.RequestID {
	if r == nil {
		return 0
	}
	return r.id
}

// Stop cancels the request. Only the first call does anything; the error it
// produced is returned on every call.
func (r *Request) Stop() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() {
		if r.stop != nil {
			r.err = r.stop()
		}
	})
	return r.err
}

// Close implements io.Closer as an alias for Stop, so a request can sit in
// a defer like any other resource.
func (r *Request) Close() error { return r.Stop() }
