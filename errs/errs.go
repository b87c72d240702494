// Package errs is the connection engine's internal error taxonomy,
// covering the three classes of failure spec.md §7 distinguishes:
// malformed input observed while decoding a received packet, a locally
// requested send the engine refuses to perform, and transport loss
// reported by the host.
package errs

import (
	"errors"

	"github.com/axmq/mqttcore/encoding"
)

// Class categorizes an Error by which of the engine's three error
// handling paths produced it.
type Class int

const (
	// ClassMalformedInput is a wire decoding failure or constraint
	// violation discovered during recv. The engine emits on_error, and
	// on v5 also emits a DISCONNECT carrying ReasonCode, before closing.
	ClassMalformedInput Class = iota
	// ClassDisallowedLocal is a send the host requested that violates
	// role/status/size/flow-control preconditions. The engine emits
	// on_error and does not emit a send event; any packet id the caller
	// supplied is released back.
	ClassDisallowedLocal
	// ClassTransportLoss corresponds to notify_closed: the engine cancels
	// timers and, depending on clean-start/session-expiry, clears stored
	// packets and the packet-id manager.
	ClassTransportLoss
)

func (c Class) String() string {
	switch c {
	case ClassMalformedInput:
		return "malformed_input"
	case ClassDisallowedLocal:
		return "disallowed_local"
	case ClassTransportLoss:
		return "transport_loss"
	default:
		return "unknown"
	}
}

// Disallowed-local-action sentinels (send-path preconditions, spec.md §4.6).
var (
	ErrWrongRole              = errors.New("packet type not permitted for this role")
	ErrWrongStatus            = errors.New("packet type not permitted in current connection status")
	ErrExceedsPeerMaxSize     = errors.New("packet exceeds peer's maximum packet size")
	ErrPacketIDNotAllocated   = errors.New("packet id is not currently allocated or registered")
	ErrPublishSendMaxExceeded = errors.New("sending would exceed publish_send_max")
	ErrOfflineSendDisabled    = errors.New("cannot send while offline: offline publish is disabled")
)

// Transport/lifecycle sentinels.
var (
	ErrNotConnected  = errors.New("connection engine is not connected")
	ErrAlreadyClosed = errors.New("connection engine is already closed")
)

// Error wraps a sentinel error with the Class that produced it and, for
// malformed-input errors, the MQTT 5 reason code the engine should report
// on the auto-emitted DISCONNECT.
type Error struct {
	Class      Class
	Err        error
	ReasonCode encoding.ReasonCode
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed wraps err as a ClassMalformedInput error carrying rc.
func Malformed(err error, rc encoding.ReasonCode) *Error {
	return &Error{Class: ClassMalformedInput, Err: err, ReasonCode: rc}
}

// Disallowed wraps err as a ClassDisallowedLocal error.
func Disallowed(err error) *Error {
	return &Error{Class: ClassDisallowedLocal, Err: err}
}

// TransportLoss wraps err as a ClassTransportLoss error.
func TransportLoss(err error) *Error {
	return &Error{Class: ClassTransportLoss, Err: err}
}
