// Package client ties the protocol pieces together into a usable
// connection: it opens the transport, pumps inbound frames, routes them to
// the request and handler registries, and exposes the typed operations an
// application calls.
package client

import (
	"fmt"
	"log/slog"
	"sync"

	"aerolink/pkg/events"
	"aerolink/pkg/ids"
	"aerolink/pkg/registry"
	"aerolink/pkg/wire"
)

// Connection is one open channel to the host. Outbound methods may be
// called from any goroutine; Poll must be driven by a single goroutine.
type Connection struct {
	t      wire.Transport
	alloc  *ids.Allocator
	kinds  *registry.HandlerRegistry
	reqs   *registry.RequestRegistry
	sends  *registry.SendTracker
	events *events.Handler
	log    *slog.Logger

	mu          sync.Mutex
	open        bool
	hostInfo    *wire.OpenMsg
	onException []func(*wire.HostError)
	onQuit      []func()
}

// Option adjusts a Connection before it is used.
type Option func(*Connection)

// WithLogger replaces the connection's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Connection) { c.log = log }
}

// New builds a connection over a transport. The transport is not opened
// until Open is called.
func New(t wire.Transport, opts ...Option) *Connection {
	c := &Connection{
		alloc: ids.NewAllocator(),
		kinds: registry.NewHandlerRegistry(),
		reqs:  registry.NewRequestRegistry(),
		sends: registry.NewSendTracker(),
		log:   slog.Default().With("component", "client"),
	}
	c.t = &tracked{t: t, sends: c.sends}
	c.events = events.NewHandler(c.t, c.alloc)
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open establishes the channel under the given client name.
func (c *Connection) Open(clientName string, configIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return fmt.Errorf("connection already open")
	}
	if err := c.t.Open(clientName, configIndex); err != nil {
		return fmt.Errorf("open %q: %w", clientName, err)
	}
	c.open = true
	return nil
}

// Close tears the channel down. Outstanding request handlers are dropped;
// the event name registry survives for the next connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	c.open = false
	c.hostInfo = nil
	c.reqs.Clear()
	c.events.ResetMappings()
	return c.t.Close()
}

// IsOpen reports whether Open succeeded and Close has not been called.
func (c *Connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// HostInfo returns the Open acknowledgement received from the host, if any.
func (c *Connection) HostInfo() *wire.OpenMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostInfo
}

// Events exposes the connection's event subsystem.
func (c *Connection) Events() *events.Handler { return c.events }

// Kinds exposes the kind-level handler registry. Every inbound frame is
// offered to it after the built-in routing, unknown kinds included.
func (c *Connection) Kinds() *registry.HandlerRegistry { return c.kinds }

// IDs exposes the connection's id allocator.
func (c *Connection) IDs() *ids.Allocator { return c.alloc }

// Transport exposes the underlying transport with send-id tracking applied.
// Facility and other subsystems drive their calls through it.
func (c *Connection) Transport() wire.Transport { return c.t }

// Requests exposes the request-correlation registry.
func (c *Connection) Requests() *registry.RequestRegistry { return c.reqs }

// OnException registers a callback for host exception reports.
func (c *Connection) OnException(fn func(*wire.HostError)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onException = append(c.onException, fn)
}

// OnQuit registers a callback for the host's shutdown notice.
func (c *Connection) OnQuit(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onQuit = append(c.onQuit, fn)
}

// Poll drains every frame currently queued on the transport and routes
// each one. It returns the number of frames handled. A nil error with zero
// frames means the channel was idle.
func (c *Connection) Poll() (int, error) {
	n := 0
	for {
		f, err := c.t.NextDispatch()
		if err != nil {
			return n, err
		}
		if f == nil {
			return n, nil
		}
		c.route(f)
		n++
	}
}

func (c *Connection) route(f wire.Frame) {
	switch f.Kind() {
	case wire.RecvOpen:
		m, err := wire.DecodeOpen(f)
		if err != nil {
			c.log.Warn("bad open frame", "error", err)
			break
		}
		c.mu.Lock()
		c.hostInfo = m
		c.mu.Unlock()
		c.log.Info("host connected", "application", m.ApplicationName)

	case wire.RecvQuit:
		c.log.Info("host quit")
		c.mu.Lock()
		quits := append([]func(){}, c.onQuit...)
		c.mu.Unlock()
		for _, fn := range quits {
			fn()
		}

	case wire.RecvException:
		c.routeException(f)

	case wire.RecvEvent:
		m, err := wire.DecodeEvent(f)
		if err != nil {
			c.log.Warn("bad event frame", "error", err)
			break
		}
		c.events.HandleEvent(m)

	case wire.RecvEventEx1:
		m, err := wire.DecodeEventEx1(f)
		if err != nil {
			c.log.Warn("bad eventex1 frame", "error", err)
			break
		}
		c.events.HandleEventEx1(m)

	default:
		// A request-specific handler that claims the frame consumes it.
		// Kind-level handlers only see frames no request claimed.
		if c.reqs.Dispatch(f) {
			return
		}
		if _, correlated := wire.CorrelationID(f); correlated {
			c.log.Debug("frame for unknown request", "kind", f.Kind().String())
		}
	}

	c.kinds.Dispatch(f)
}

func (c *Connection) routeException(f wire.Frame) {
	m, err := wire.DecodeException(f)
	if err != nil {
		c.log.Warn("bad exception frame", "error", err)
		return
	}
	herr := &wire.HostError{Code: m.Code, SendID: m.SendID, Index: m.Index}
	if op, ok := c.sends.Lookup(m.SendID); ok {
		herr.Tag = op
	}
	c.log.Warn("host exception",
		"code", m.Code.String(), "sendId", uint32(m.SendID), "op", herr.Tag)

	c.mu.Lock()
	handlers := append([]func(*wire.HostError){}, c.onException...)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn(herr)
	}
}
