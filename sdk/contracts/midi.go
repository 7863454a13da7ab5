package contracts

// Receiver is any sink that accepts MIDI messages with a timestamp in microseconds
// (NoTimestamp for none). Relays and output ports both implement it, so relays chain.
type Receiver interface {
	Send(msg Message, timestamp int64) error
	Close() error
}

// SoundTarget is a synthesizer-like destination that hands out receivers.
type SoundTarget interface {
	Open() error
	IsOpen() bool
	Receiver() (Receiver, error)
}

// InstrumentLoader is implemented by sound targets that can switch instrument.
type InstrumentLoader interface {
	LoadInstrument(program uint8) error
}

// ClientMIDI defines an interface for MIDI input client operations.
type ClientMIDI interface {
	Stop() error                          // Stops capturing and releases the device.
	ListDevices() ([]DeviceInfo, error)   // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error      // Selects a MIDI device by its ID for communication.
	StartCapture(receiver Receiver) error // Starts delivering incoming messages to receiver.
}
