package manager

import "time"

// Options tune the connection lifecycle. All fields are read once by
// Start; mutating an Options after Start has no effect.
type Options struct {
	// ClientName is announced to the host in the open handshake.
	ClientName string

	// DisableAutoConnect stops the manager from reconnecting on its own
	// after a lost or failed connection. When auto-connect is active, an
	// explicit Disconnect pauses it until Connect.
	DisableAutoConnect bool

	// ReconnectDelay is the pause between failed connection attempts.
	ReconnectDelay time.Duration

	// MessageCheckInterval is the pump's idle poll interval.
	MessageCheckInterval time.Duration

	// InitialConnectDelay postpones the very first attempt after Start.
	InitialConnectDelay time.Duration

	// OpenHandshakeTimeout bounds the wait for the host's open
	// acknowledgement after the channel opens.
	OpenHandshakeTimeout time.Duration

	// MaxReconnectAttempts caps consecutive failed attempts before the
	// manager enters the Error state. -1 means no cap.
	MaxReconnectAttempts int

	// ConfigIndex selects a section of the host's connection
	// configuration.
	ConfigIndex int
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		ClientName:           "aerolink",
		ReconnectDelay:       5 * time.Second,
		MessageCheckInterval: 10 * time.Millisecond,
		OpenHandshakeTimeout: 10 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ClientName == "" {
		o.ClientName = def.ClientName
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = def.ReconnectDelay
	}
	if o.MessageCheckInterval <= 0 {
		o.MessageCheckInterval = def.MessageCheckInterval
	}
	if o.OpenHandshakeTimeout <= 0 {
		o.OpenHandshakeTimeout = def.OpenHandshakeTimeout
	}
	if o.MaxReconnectAttempts == 0 {
		o.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	return o
}
