package manager

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerolink/pkg/client"
	"aerolink/pkg/wire/mockwire"
)

const waitShort = 2 * time.Second

func fastOptions() Options {
	return Options{
		ClientName:           "Test Client",
		ReconnectDelay:       5 * time.Millisecond,
		MessageCheckInterval: time.Millisecond,
		OpenHandshakeTimeout: 250 * time.Millisecond,
		MaxReconnectAttempts: -1,
	}
}

// stateLog collects transitions for later assertion.
type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) record(_, to State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, to)
}

func (l *stateLog) snapshot() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]State, len(l.states))
	copy(out, l.states)
	return out
}

func TestManagerConnects(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	mock.AppName = "Test Simulator"

	var log stateLog
	m := New(mock, fastOptions())
	m.OnStateChange(log.record)

	setups := 0
	m.OnConnected(func(c *client.Connection) error {
		setups++
		return nil
	})

	require.NoError(t, m.Start())
	defer m.Stop()

	require.True(t, m.WaitForState(StateConnected, waitShort))
	assert.True(t, mock.Opened())
	assert.Equal(t, 1, setups)

	info := m.Connection().HostInfo()
	require.NotNil(t, info)
	assert.Equal(t, "Test Simulator", info.ApplicationName)

	require.Eventually(t, func() bool { return len(log.snapshot()) == 4 },
		waitShort, time.Millisecond)
	assert.Equal(t, []State{
		StateStartingUp, StateConnecting, StateWaitingForOpen, StateConnected,
	}, log.snapshot())
}

func TestManagerStartTwice(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	m := New(mock, fastOptions())

	require.NoError(t, m.Start())
	defer m.Stop()
	assert.ErrorIs(t, m.Start(), ErrAlreadyRunning)
}

func TestManagerStop(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	m := New(mock, fastOptions())

	require.NoError(t, m.Start())
	require.True(t, m.WaitForState(StateConnected, waitShort))

	m.Stop()
	assert.Equal(t, StateStopped, m.State())
	assert.False(t, mock.Opened())

	// Stop again is a no-op.
	m.Stop()
	assert.Equal(t, StateStopped, m.State())
}

func TestManagerExplicitDisconnectPausesReconnect(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true

	m := New(mock, fastOptions())
	setups := 0
	m.OnConnected(func(c *client.Connection) error {
		setups++
		return nil
	})

	require.NoError(t, m.Start())
	defer m.Stop()
	require.True(t, m.WaitForState(StateConnected, waitShort))

	m.Disconnect()
	require.True(t, m.WaitForState(StateDisconnected, waitShort))

	// No reconnect while paused.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateDisconnected, m.State())
	assert.False(t, mock.Opened())

	m.Connect()
	require.True(t, m.WaitForState(StateConnected, waitShort))
	assert.Equal(t, 2, setups)
}

func TestManagerReconnectsAfterQuit(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true

	m := New(mock, fastOptions())
	require.NoError(t, m.Start())
	defer m.Stop()
	require.True(t, m.WaitForState(StateConnected, waitShort))

	// The host announces shutdown; the connection closes itself and the
	// manager should come back on its own.
	m.Connection().OnQuit(func() { _ = m.Connection().Close() })
	mock.Push(mockwire.QuitFrame())

	require.True(t, m.WaitForState(StateDisconnected, waitShort))
	require.True(t, m.WaitForState(StateConnected, waitShort))
	assert.GreaterOrEqual(t, mock.CallCount("Open"), 2)
}

func TestManagerMaxReconnectAttempts(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	mock.SetOpenErr(errors.New("host not running"))

	opts := fastOptions()
	opts.MaxReconnectAttempts = 3

	m := New(mock, opts)
	var codes []ErrorCode
	var codesMu sync.Mutex
	m.OnError(func(code ErrorCode, msg string) {
		codesMu.Lock()
		codes = append(codes, code)
		codesMu.Unlock()
	})

	require.NoError(t, m.Start())
	defer m.Stop()

	require.True(t, m.WaitForState(StateError, waitShort))
	codesMu.Lock()
	require.Len(t, codes, 1)
	assert.Equal(t, ErrorMaxReconnectAttemptsReached, codes[0])
	codesMu.Unlock()

	// Connect re-arms and the attempt counter starts over.
	mock.SetOpenErr(nil)
	m.Connect()
	require.True(t, m.WaitForState(StateConnected, waitShort))
}

func TestManagerLastError(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true
	mock.SetOpenErr(errors.New("host not running"))

	opts := fastOptions()
	opts.MaxReconnectAttempts = 1

	m := New(mock, opts)
	code, msg := m.LastError()
	assert.Equal(t, ErrorNone, code)
	assert.Empty(t, msg)

	require.NoError(t, m.Start())
	defer m.Stop()

	require.True(t, m.WaitForState(StateError, waitShort))
	code, msg = m.LastError()
	assert.Equal(t, ErrorMaxReconnectAttemptsReached, code)
	assert.NotEmpty(t, msg)
}

func TestManagerHandshakeTimeout(t *testing.T) {
	mock := mockwire.New()
	// No AutoOpenFrame: the host never acknowledges.

	opts := fastOptions()
	opts.OpenHandshakeTimeout = 20 * time.Millisecond
	opts.DisableAutoConnect = true

	m := New(mock, opts)
	var codes []ErrorCode
	var codesMu sync.Mutex
	m.OnError(func(code ErrorCode, msg string) {
		codesMu.Lock()
		codes = append(codes, code)
		codesMu.Unlock()
	})

	require.NoError(t, m.Start())
	defer m.Stop()

	require.True(t, m.WaitForState(StateDisconnected, waitShort))
	assert.False(t, mock.Opened())
	codesMu.Lock()
	require.Len(t, codes, 1)
	assert.Equal(t, ErrorConnectionFailed, codes[0])
	codesMu.Unlock()
}

func TestManagerSetupFailureAbortsAttempt(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true

	opts := fastOptions()
	opts.DisableAutoConnect = true

	m := New(mock, opts)
	m.OnConnected(func(c *client.Connection) error {
		return errors.New("definition rejected")
	})

	var codes []ErrorCode
	var codesMu sync.Mutex
	m.OnError(func(code ErrorCode, msg string) {
		codesMu.Lock()
		codes = append(codes, code)
		codesMu.Unlock()
	})

	require.NoError(t, m.Start())
	defer m.Stop()

	require.True(t, m.WaitForState(StateDisconnected, waitShort))
	codesMu.Lock()
	require.Len(t, codes, 1)
	assert.Equal(t, ErrorResourceInitializationFailed, codes[0])
	codesMu.Unlock()
}

func TestManagerDisableAutoConnectNeedsConnect(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true

	opts := fastOptions()
	opts.DisableAutoConnect = true

	m := New(mock, opts)
	require.NoError(t, m.Start())
	defer m.Stop()
	require.True(t, m.WaitForState(StateConnected, waitShort))

	m.Disconnect()
	require.True(t, m.WaitForState(StateDisconnected, waitShort))

	m.Connect()
	require.True(t, m.WaitForState(StateConnected, waitShort))
}

func TestManagerCallbackPanicIsSwallowed(t *testing.T) {
	mock := mockwire.New()
	mock.AutoOpenFrame = true

	m := New(mock, fastOptions())
	m.OnStateChange(func(from, to State) { panic("observer bug") })

	require.NoError(t, m.Start())
	defer m.Stop()
	require.True(t, m.WaitForState(StateConnected, waitShort))
}

func TestManagerWaitForStateTimeout(t *testing.T) {
	mock := mockwire.New()
	m := New(mock, fastOptions())
	assert.False(t, m.WaitForState(StateConnected, 20*time.Millisecond))
}

func TestStateAndErrorCodeStrings(t *testing.T) {
	assert.Equal(t, "Connected", StateConnected.String())
	assert.Equal(t, "Unknown", State(99).String())
	assert.Equal(t, "MaxReconnectAttemptsReached", ErrorMaxReconnectAttemptsReached.String())
	assert.Equal(t, "Unknown", ErrorCode(99).String())
}
