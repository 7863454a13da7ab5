package midi

import (
	"fmt"

	"github.com/leandrodaf/midi-octave-shifter/internal/logger"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the log destination could not be set.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "Octave Shifter"}
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return contracts.ClientOptions{}, fmt.Errorf("setting log file: %w", err)
		}
	}
	return *options, nil
}

// applyShifterDefaults does the same for ShifterOptions. Policies default to
// clamping out-of-range notes and passing other messages through.
func applyShifterDefaults(opts ...contracts.ShifterOption) contracts.ShifterOptions {
	options := &contracts.ShifterOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel != nil {
		options.Logger.SetLevel(*options.LogLevel)
	}
	return *options
}
