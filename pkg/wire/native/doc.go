// Package native binds the host's SimConnect.dll as a wire.Transport. It
// only functions on Windows; elsewhere New reports the transport as
// unavailable so callers can fall back to a scripted transport.
package native
