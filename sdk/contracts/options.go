package contracts

// MIDIEventFilter allows users to specify which channel-voice commands to capture.
// Non channel-voice messages are never filtered.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to filter.
}

// Allows reports whether msg passes the filter.
func (f *MIDIEventFilter) Allows(msg Message) bool {
	if f == nil {
		return true
	}
	short, ok := msg.(ShortMessage)
	if !ok {
		return true
	}
	for _, cmd := range f.Commands {
		if short.Command == cmd {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ClientOptions defines the configuration options for the MIDI client.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for MIDI events to capture.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs the client's log output to a file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the MIDI client.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// PitchPolicy decides what a shifter does with a note pushed outside 0-127.
type PitchPolicy int

const (
	// ClampPitch forwards the message with the note clamped to 0 or 127.
	ClampPitch PitchPolicy = iota
	// DropPitch forwards nothing and reports ErrInvalidMessageData.
	DropPitch
)

// KindPolicy decides what a shifter does with messages that are not ShortMessage.
type KindPolicy int

const (
	// PassThroughUnsupported forwards the message unmodified.
	PassThroughUnsupported KindPolicy = iota
	// RejectUnsupported forwards nothing and reports ErrUnsupportedMessageKind.
	RejectUnsupported
)

// ShifterOptions configures an octave shifter.
type ShifterOptions struct {
	Logger      Logger
	LogLevel    *LogLevel // nil leaves the logger's level alone.
	PitchPolicy PitchPolicy
	KindPolicy  KindPolicy
}

// ShifterOption is a function that modifies ShifterOptions.
type ShifterOption func(*ShifterOptions)

// WithShifterLogger sets the logger used by the shifter.
func WithShifterLogger(l Logger) ShifterOption {
	return func(opts *ShifterOptions) {
		opts.Logger = l
	}
}

// WithShifterLogLevel sets the shifter's logging level.
func WithShifterLogLevel(level LogLevel) ShifterOption {
	return func(opts *ShifterOptions) {
		opts.LogLevel = &level
	}
}

// WithPitchPolicy sets the out-of-range note policy.
func WithPitchPolicy(p PitchPolicy) ShifterOption {
	return func(opts *ShifterOptions) {
		opts.PitchPolicy = p
	}
}

// WithKindPolicy sets the policy for non-short messages.
func WithKindPolicy(p KindPolicy) ShifterOption {
	return func(opts *ShifterOptions) {
		opts.KindPolicy = p
	}
}
