package manager

// State is one step of the connection lifecycle. Transitions are totally
// ordered and reported to state callbacks in the order they happen.
type State int

const (
	StateStopped State = iota
	StateStartingUp
	StateConnecting
	StateWaitingForOpen
	StateConnected
	StateDisconnecting
	StateDisconnected
	StateError
)

var stateNames = map[State]string{
	StateStopped:        "Stopped",
	StateStartingUp:     "StartingUp",
	StateConnecting:     "Connecting",
	StateWaitingForOpen: "WaitingForOpen",
	StateConnected:      "Connected",
	StateDisconnecting:  "Disconnecting",
	StateDisconnected:   "Disconnected",
	StateError:          "Error",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// ErrorCode classifies the failures the manager reports through its error
// callbacks.
type ErrorCode int

const (
	ErrorNone ErrorCode = iota
	ErrorConnectionFailed
	ErrorMessageProcessingFailed
	ErrorMaxReconnectAttemptsReached
	ErrorInvalidState
	ErrorResourceInitializationFailed
)

var errorCodeNames = map[ErrorCode]string{
	ErrorNone:                         "None",
	ErrorConnectionFailed:             "ConnectionFailed",
	ErrorMessageProcessingFailed:      "MessageProcessingFailed",
	ErrorMaxReconnectAttemptsReached:  "MaxReconnectAttemptsReached",
	ErrorInvalidState:                 "InvalidState",
	ErrorResourceInitializationFailed: "ResourceInitializationFailed",
}

func (c ErrorCode) String() string {
	if n, ok := errorCodeNames[c]; ok {
		return n
	}
	return "Unknown"
}
