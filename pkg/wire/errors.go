package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned when an operation needs an open channel.
	ErrNotOpen = errors.New("simconnect channel not open")
	// ErrUnavailable is returned by transports that cannot run on this platform.
	ErrUnavailable = errors.New("simconnect transport not available on this platform")
	// ErrShortFrame is returned when an inbound frame is too small for its kind.
	ErrShortFrame = errors.New("inbound frame shorter than its header")
)

// ExceptionCode is the host's numeric error taxonomy, surfaced unchanged.
type ExceptionCode uint32

const (
	ExceptionNone                        ExceptionCode = 0
	ExceptionError                       ExceptionCode = 1
	ExceptionSizeMismatch                ExceptionCode = 2
	ExceptionUnrecognizedID              ExceptionCode = 3
	ExceptionUnopened                    ExceptionCode = 4
	ExceptionVersionMismatch             ExceptionCode = 5
	ExceptionTooManyGroups               ExceptionCode = 6
	ExceptionNameUnrecognized            ExceptionCode = 7
	ExceptionTooManyEventNames           ExceptionCode = 8
	ExceptionEventIDDuplicate            ExceptionCode = 9
	ExceptionTooManyMaps                 ExceptionCode = 10
	ExceptionTooManyObjects              ExceptionCode = 11
	ExceptionTooManyRequests             ExceptionCode = 12
	ExceptionInvalidDataType             ExceptionCode = 18
	ExceptionInvalidDataSize             ExceptionCode = 19
	ExceptionDataError                   ExceptionCode = 20
	ExceptionInvalidArray                ExceptionCode = 21
	ExceptionCreateObjectFailed          ExceptionCode = 22
	ExceptionLoadFlightplanFailed        ExceptionCode = 23
	ExceptionOperationInvalidForObject   ExceptionCode = 24
	ExceptionIllegalOperation            ExceptionCode = 25
	ExceptionAlreadySubscribed           ExceptionCode = 26
	ExceptionInvalidEnum                 ExceptionCode = 27
	ExceptionDefinitionError             ExceptionCode = 28
	ExceptionDuplicateID                 ExceptionCode = 29
	ExceptionDatumID                     ExceptionCode = 30
	ExceptionOutOfBounds                 ExceptionCode = 31
	ExceptionAlreadyCreated              ExceptionCode = 32
	ExceptionObjectOutsideRealityBubble  ExceptionCode = 33
	ExceptionObjectContainer             ExceptionCode = 34
	ExceptionObjectAI                    ExceptionCode = 35
	ExceptionObjectATC                   ExceptionCode = 36
	ExceptionObjectSchedule              ExceptionCode = 37
	ExceptionJetwayData                  ExceptionCode = 38
	ExceptionActionNotFound              ExceptionCode = 39
	ExceptionNotAnAction                 ExceptionCode = 40
	ExceptionIncorrectActionParams       ExceptionCode = 41
	ExceptionGetInputEventFailed         ExceptionCode = 42
	ExceptionSetInputEventFailed         ExceptionCode = 43
	ExceptionInternal                    ExceptionCode = 44
)

var exceptionNames = map[ExceptionCode]string{
	ExceptionNone:                       "None",
	ExceptionError:                      "Error",
	ExceptionSizeMismatch:               "SizeMismatch",
	ExceptionUnrecognizedID:             "UnrecognizedId",
	ExceptionUnopened:                   "Unopened",
	ExceptionVersionMismatch:            "VersionMismatch",
	ExceptionTooManyGroups:              "TooManyGroups",
	ExceptionNameUnrecognized:           "NameUnrecognized",
	ExceptionTooManyEventNames:          "TooManyEventNames",
	ExceptionEventIDDuplicate:           "EventIdDuplicate",
	ExceptionTooManyMaps:                "TooManyMaps",
	ExceptionTooManyObjects:             "TooManyObjects",
	ExceptionTooManyRequests:            "TooManyRequests",
	ExceptionInvalidDataType:            "InvalidDataType",
	ExceptionInvalidDataSize:            "InvalidDataSize",
	ExceptionDataError:                  "DataError",
	ExceptionInvalidArray:               "InvalidArray",
	ExceptionCreateObjectFailed:         "CreateObjectFailed",
	ExceptionLoadFlightplanFailed:       "LoadFlightplanFailed",
	ExceptionOperationInvalidForObject:  "OperationInvalidForObjectType",
	ExceptionIllegalOperation:           "IllegalOperation",
	ExceptionAlreadySubscribed:          "AlreadySubscribed",
	ExceptionInvalidEnum:                "InvalidEnum",
	ExceptionDefinitionError:            "DefinitionError",
	ExceptionDuplicateID:                "DuplicateId",
	ExceptionDatumID:                    "DatumId",
	ExceptionOutOfBounds:                "OutOfBounds",
	ExceptionAlreadyCreated:             "AlreadyCreated",
	ExceptionObjectOutsideRealityBubble: "ObjectOutsideRealityBubble",
	ExceptionObjectContainer:            "ObjectContainer",
	ExceptionObjectAI:                   "ObjectAi",
	ExceptionObjectATC:                  "ObjectAtc",
	ExceptionObjectSchedule:             "ObjectSchedule",
	ExceptionJetwayData:                 "JetwayData",
	ExceptionActionNotFound:             "ActionNotFound",
	ExceptionNotAnAction:                "NotAnAction",
	ExceptionIncorrectActionParams:      "IncorrectActionParams",
	ExceptionGetInputEventFailed:        "GetInputEventFailed",
	ExceptionSetInputEventFailed:        "SetInputEventFailed",
	ExceptionInternal:                   "Internal",
}

func (c ExceptionCode) String() string {
	if name, ok := exceptionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Exception(%d)", uint32(c))
}

// HostError wraps an exception reported asynchronously by the host. Tag holds
// the description recorded for the offending SendID, if it is still known.
type HostError struct {
	Code   ExceptionCode
	SendID SendID
	Index  uint32
	Tag    string
}

func (e *HostError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("simconnect exception %s (sendId %d, %s)", e.Code, e.SendID, e.Tag)
	}
	return fmt.Sprintf("simconnect exception %s (sendId %d)", e.Code, e.SendID)
}
