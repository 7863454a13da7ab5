package contracts

import "errors"

// Errors returned by relays, sound targets and capture clients. Test with errors.Is.
var (
	// ErrDeviceUnavailable is returned when a sound target cannot be opened or cannot hand out a receiver.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrInvalidMessageData is returned when a message cannot be represented in the MIDI wire encoding.
	ErrInvalidMessageData = errors.New("invalid MIDI message data")
	// ErrUnsupportedMessageKind is returned when a relay is configured to reject non-short messages.
	ErrUnsupportedMessageKind = errors.New("unsupported MIDI message kind")
	// ErrClosedRelay is returned by Send after Close.
	ErrClosedRelay = errors.New("relay is closed")
)
