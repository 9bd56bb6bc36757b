// Package manager runs a connection's lifecycle on a background worker:
// open, handshake, pump, reconnect. Applications register setup functions
// that are re-applied after every successful open, so data definitions and
// event mappings survive reconnects.
package manager

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"aerolink/pkg/client"
	"aerolink/pkg/wire"
)

// ErrAlreadyRunning is returned by Start when the worker is active.
var ErrAlreadyRunning = errors.New("manager already running")

// StateCallback observes a transition. Callbacks run on the worker
// goroutine, outside the manager's mutex; they must not call back into the
// manager.
type StateCallback func(from, to State)

// ErrorCallback observes an error-bearing transition.
type ErrorCallback func(code ErrorCode, msg string)

// SetupFunc prepares a freshly opened connection. Setups run on every
// entry to Connected, in registration order; an error aborts the
// connection attempt.
type SetupFunc func(*client.Connection) error

// Manager owns one connection and drives it from a single worker
// goroutine. All exported methods are safe from any goroutine.
type Manager struct {
	conn *client.Connection
	opts Options
	log  *slog.Logger

	mu                 sync.Mutex
	cond               *sync.Cond
	state              State
	shouldRun          bool
	explicitDisconnect bool
	connectRequested   bool
	wake               bool
	done               chan struct{}

	lastErrCode ErrorCode
	lastErrMsg  string

	onState []StateCallback
	onError []ErrorCallback
	setups  []SetupFunc
}

// Option adjusts a Manager before Start.
type Option func(*Manager)

// WithLogger replaces the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New builds a manager over a transport. Zero fields of opts take their
// defaults.
func New(t wire.Transport, opts Options, mopts ...Option) *Manager {
	m := &Manager{
		opts:  opts.withDefaults(),
		state: StateStopped,
		log:   slog.Default().With("component", "manager"),
	}
	for _, o := range mopts {
		o(m)
	}
	m.conn = client.New(t, client.WithLogger(m.log))
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Connection returns the managed connection. It is only usable while the
// manager reports Connected.
func (m *Manager) Connection() *client.Connection { return m.conn }

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers a transition observer.
func (m *Manager) OnStateChange(fn StateCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onState = append(m.onState, fn)
}

// LastError returns the most recent connection error, or ErrorNone if no
// error has been reported since Start.
func (m *Manager) LastError() (ErrorCode, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErrCode, m.lastErrMsg
}

// OnError registers an error observer.
func (m *Manager) OnError(fn ErrorCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = append(m.onError, fn)
}

// OnConnected registers a setup function applied on every entry to
// Connected. Registering while connected does not run the function until
// the next open.
func (m *Manager) OnConnected(fn SetupFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setups = append(m.setups, fn)
}

// Start launches the worker. The first connection attempt begins after
// InitialConnectDelay.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.state != StateStopped {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.shouldRun = true
	m.explicitDisconnect = false
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.setState(StateStartingUp)
	go m.run()
	return nil
}

// Stop shuts the worker down and waits for it to exit. The state ends at
// Stopped. Stop is idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.done == nil {
		m.mu.Unlock()
		return
	}
	done := m.done
	m.shouldRun = false
	m.wake = true
	m.cond.Broadcast()
	m.mu.Unlock()
	<-done
}

// Connect re-arms auto-reconnect after an explicit Disconnect or an Error
// state and wakes the worker.
func (m *Manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.explicitDisconnect = false
	m.connectRequested = true
	m.wake = true
	m.cond.Broadcast()
}

// Disconnect closes the connection and pauses auto-reconnect until
// Connect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.explicitDisconnect = true
	m.wake = true
	m.cond.Broadcast()
}

// WaitForState blocks the caller until the state equals desired or the
// timeout elapses. It reports whether the state was reached.
func (m *Manager) WaitForState(desired State, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.state != desired {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		t := time.AfterFunc(remaining, m.cond.Broadcast)
		m.cond.Wait()
		t.Stop()
	}
	return true
}

// run is the worker loop. Each iteration handles one state; transitions
// happen through setState so observers see them in order.
func (m *Manager) run() {
	defer func() {
		m.setState(StateStopped)
		m.mu.Lock()
		done := m.done
		m.done = nil
		m.mu.Unlock()
		close(done)
	}()

	attempts := 0
	for {
		m.mu.Lock()
		st := m.state
		run := m.shouldRun
		m.mu.Unlock()
		if !run && st != StateDisconnecting && st != StateConnected && st != StateWaitingForOpen {
			if m.conn.IsOpen() {
				m.closeConn()
			}
			return
		}

		switch st {
		case StateStartingUp:
			if m.opts.InitialConnectDelay > 0 {
				m.sleep(m.opts.InitialConnectDelay)
			}
			m.setState(StateConnecting)

		case StateConnecting:
			m.mu.Lock()
			paused := m.explicitDisconnect
			m.mu.Unlock()
			if paused {
				m.setState(StateDisconnected)
				continue
			}
			session := uuid.NewString()
			log := m.log.With("session", session)
			log.Debug("opening channel", "client", m.opts.ClientName, "attempt", attempts+1)
			if err := m.conn.Open(m.opts.ClientName, m.opts.ConfigIndex); err != nil {
				attempts++
				log.Debug("open failed", "error", err, "attempt", attempts)
				if m.opts.MaxReconnectAttempts >= 0 && attempts >= m.opts.MaxReconnectAttempts {
					m.reportError(ErrorMaxReconnectAttemptsReached,
						"giving up after "+err.Error())
					m.setState(StateError)
					continue
				}
				m.sleep(m.opts.ReconnectDelay)
				continue
			}
			m.setState(StateWaitingForOpen)

		case StateWaitingForOpen:
			if m.awaitOpen() {
				attempts = 0
				m.mu.Lock()
				m.connectRequested = false
				m.mu.Unlock()
				if err := m.applySetups(); err != nil {
					m.reportError(ErrorResourceInitializationFailed, err.Error())
					m.setState(StateDisconnecting)
					continue
				}
				m.setState(StateConnected)
			} else {
				m.mu.Lock()
				stopping := !m.shouldRun || m.explicitDisconnect
				m.mu.Unlock()
				if !stopping {
					m.reportError(ErrorConnectionFailed, "open handshake timed out")
				}
				m.setState(StateDisconnecting)
			}

		case StateConnected:
			if m.pump() {
				continue
			}
			m.setState(StateDisconnecting)

		case StateDisconnecting:
			m.closeConn()
			m.setState(StateDisconnected)

		case StateDisconnected:
			m.mu.Lock()
			for m.shouldRun && !m.connectRequested &&
				(m.opts.DisableAutoConnect || m.explicitDisconnect) {
				m.cond.Wait()
			}
			reconnect := m.shouldRun &&
				(m.connectRequested || (!m.opts.DisableAutoConnect && !m.explicitDisconnect))
			m.connectRequested = false
			m.mu.Unlock()
			if reconnect {
				m.setState(StateConnecting)
			}

		case StateError:
			m.mu.Lock()
			for m.shouldRun && !m.connectRequested {
				m.cond.Wait()
			}
			m.mu.Unlock()
			attempts = 0
			m.setState(StateDisconnected)

		default:
			return
		}
	}
}

// awaitOpen pumps until the host's open acknowledgement arrives. It
// reports false on timeout or a broken channel.
func (m *Manager) awaitOpen() bool {
	deadline := time.Now().Add(m.opts.OpenHandshakeTimeout)
	for time.Now().Before(deadline) {
		if _, err := m.conn.Poll(); err != nil {
			m.log.Warn("pump failed during handshake", "error", err)
			return false
		}
		if m.conn.HostInfo() != nil {
			return true
		}
		m.mu.Lock()
		stop := !m.shouldRun || m.explicitDisconnect
		m.mu.Unlock()
		if stop {
			return false
		}
		m.sleep(m.opts.MessageCheckInterval)
	}
	return false
}

// pump drains frames while connected. It returns true when frames may
// still follow and false when the connection should be torn down.
func (m *Manager) pump() bool {
	m.mu.Lock()
	stop := !m.shouldRun || m.explicitDisconnect
	m.mu.Unlock()
	if stop {
		return false
	}
	n, err := m.conn.Poll()
	if !m.conn.IsOpen() {
		// A quit frame closed the connection from inside a callback.
		return false
	}
	if err != nil {
		m.reportError(ErrorMessageProcessingFailed, err.Error())
		return false
	}
	if n == 0 {
		m.sleep(m.opts.MessageCheckInterval)
	}
	return true
}

// applySetups runs the registered setup functions against the open
// connection.
func (m *Manager) applySetups() error {
	m.mu.Lock()
	setups := make([]SetupFunc, len(m.setups))
	copy(setups, m.setups)
	m.mu.Unlock()
	for _, fn := range setups {
		if err := fn(m.conn); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) closeConn() {
	if err := m.conn.Close(); err != nil {
		m.log.Warn("close failed", "error", err)
	}
}

// sleep waits for d or until Stop, Connect or Disconnect wakes the
// worker.
func (m *Manager) sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.shouldRun && !m.wake {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		t := time.AfterFunc(remaining, m.cond.Broadcast)
		m.cond.Wait()
		t.Stop()
	}
	m.wake = false
}

// setState records a transition and notifies observers outside the mutex.
func (m *Manager) setState(to State) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	m.state = to
	m.cond.Broadcast()
	observers := make([]StateCallback, len(m.onState))
	copy(observers, m.onState)
	m.mu.Unlock()

	m.log.Debug("state change", "from", from.String(), "to", to.String())
	for _, fn := range observers {
		m.invokeState(fn, from, to)
	}
}

func (m *Manager) reportError(code ErrorCode, msg string) {
	m.mu.Lock()
	m.lastErrCode = code
	m.lastErrMsg = msg
	observers := make([]ErrorCallback, len(m.onError))
	copy(observers, m.onError)
	m.mu.Unlock()

	m.log.Warn("connection error", "code", code.String(), "error", msg)
	for _, fn := range observers {
		m.invokeError(fn, code, msg)
	}
}

func (m *Manager) invokeState(fn StateCallback, from, to State) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("state callback panicked", "panic", r)
		}
	}()
	fn(from, to)
}

func (m *Manager) invokeError(fn ErrorCallback, code ErrorCode, msg string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("error callback panicked", "panic", r)
		}
	}()
	fn(code, msg)
}
