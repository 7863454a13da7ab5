//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

// ErrUnavailable is returned by every operation of the dummy client.
var ErrUnavailable = errors.New("CoreMIDI is not available on this platform")

// dummyMIDIClient stands in for the CoreMIDI client so the package builds everywhere.
type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-macOS systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("Using dummy MIDI client for non-macOS system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *dummyMIDIClient) unavailable(op string) error {
	m.logger.Warn(op+" called on dummy MIDI client", m.logger.Field().String("platform", "darwin"))
	return fmt.Errorf("%w: %s", ErrUnavailable, op)
}

// ListDevices logs a warning and returns ErrUnavailable.
func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return nil, m.unavailable("ListDevices")
}

// SelectDevice logs a warning and returns ErrUnavailable.
func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	return m.unavailable("SelectDevice")
}

// StartCapture logs a warning and returns ErrUnavailable. The receiver is never used.
func (m *dummyMIDIClient) StartCapture(receiver contracts.Receiver) error {
	return m.unavailable("StartCapture")
}

// Stop has nothing to stop.
func (m *dummyMIDIClient) Stop() error {
	m.logger.Debug("Stop called on dummy MIDI client")
	return nil
}
