package midi

import (
	"fmt"

	"github.com/leandrodaf/midi-octave-shifter/internal/shifter"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"go.uber.org/multierr"
)

// SessionConfig is the selection made by the user before connecting.
type SessionConfig struct {
	DeviceID   int    // Input device, as listed by ClientMIDI.ListDevices.
	Octaves    int    // Signed octave offset.
	Instrument *uint8 // Program to load on the target; nil keeps the current one.
}

// Session is one device-to-target connection through an octave shifter.
type Session struct {
	client  contracts.ClientMIDI
	shifter *shifter.OctaveShifter
	logger  contracts.Logger
}

// Connect builds a shifter on target, loads the configured instrument, selects
// the input device and starts delivering its messages through the shifter.
// Anything set up before a failing step is undone.
func Connect(client contracts.ClientMIDI, target contracts.SoundTarget, cfg SessionConfig, opts ...contracts.ShifterOption) (*Session, error) {
	if client == nil {
		return nil, fmt.Errorf("no MIDI client")
	}

	options := applyShifterDefaults(opts...)
	sh, err := shifter.New(target, cfg.Octaves, &options)
	if err != nil {
		return nil, err
	}
	log := options.Logger

	if cfg.Instrument != nil {
		loader, ok := target.(contracts.InstrumentLoader)
		if !ok {
			_ = sh.Close()
			return nil, fmt.Errorf("sound target cannot load instruments")
		}
		if err := loader.LoadInstrument(*cfg.Instrument); err != nil {
			_ = sh.Close()
			return nil, fmt.Errorf("loading instrument %d: %w", *cfg.Instrument, err)
		}
	}

	if err := client.SelectDevice(cfg.DeviceID); err != nil {
		_ = sh.Close()
		return nil, fmt.Errorf("selecting device %d: %w", cfg.DeviceID, err)
	}
	if err := client.StartCapture(sh); err != nil {
		_ = sh.Close()
		return nil, multierr.Append(fmt.Errorf("starting capture: %w", err), client.Stop())
	}

	log.Info("Session connected",
		log.Field().Int("deviceID", cfg.DeviceID),
		log.Field().Int("octaves", cfg.Octaves))
	return &Session{client: client, shifter: sh, logger: log}, nil
}

// Octaves returns the session's octave offset.
func (s *Session) Octaves() int {
	return s.shifter.Octaves()
}

// Close stops capture and closes the shifter. The sound target stays open.
func (s *Session) Close() error {
	err := multierr.Combine(s.client.Stop(), s.shifter.Close())
	if err != nil {
		s.logger.Error("Session closed with errors", s.logger.Field().Error("error", err))
		return err
	}
	s.logger.Info("Session closed")
	return nil
}
