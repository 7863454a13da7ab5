// Package midiports talks to MIDI ports through the gomidi driver registry.
// It provides the portable capture client and a sound target backed by an output port.
// A driver (e.g. rtmididrv) must be registered by the importing program.
package midiports

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
)

// OutputPort is the part of a gomidi drivers.Out used by OutputSynth.
type OutputPort interface {
	Open() error
	Close() error
	IsOpen() bool
	String() string
	Send(data []byte) error
}

// OutputSynth is a contracts.SoundTarget writing to a MIDI output port, typically
// a hardware or software synthesizer. Writes from every receiver it hands out
// are serialized, so independent relays may share one OutputSynth.
type OutputSynth struct {
	port   OutputPort
	logger contracts.Logger

	mu   sync.Mutex
	open bool
}

// NewOutputSynth wraps an output port. The port is not opened until Open.
func NewOutputSynth(port OutputPort, logger contracts.Logger) *OutputSynth {
	return &OutputSynth{port: port, logger: logger}
}

// OpenOutputSynth finds the output port called name and wraps it.
func OpenOutputSynth(name string, logger contracts.Logger) (*OutputSynth, error) {
	out, err := gomidi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("%w: output port %q: %v", contracts.ErrDeviceUnavailable, name, err)
	}
	return NewOutputSynth(out, logger), nil
}

// ListOutputs lists the output ports known to the registered driver.
func ListOutputs() []contracts.DeviceInfo {
	outs := gomidi.GetOutPorts()
	infos := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		infos[i] = contracts.DeviceInfo{ID: out.Number(), Name: out.String(), EntityName: out.String()}
	}
	return infos
}

// Open opens the underlying port.
func (s *OutputSynth) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if !s.port.IsOpen() {
		if err := s.port.Open(); err != nil {
			s.logger.Error("Failed to open output port",
				s.logger.Field().String("port", s.port.String()),
				s.logger.Field().Error("error", err))
			return fmt.Errorf("%w: opening %s: %v", contracts.ErrDeviceUnavailable, s.port.String(), err)
		}
	}
	s.open = true
	s.logger.Info("Output port opened", s.logger.Field().String("port", s.port.String()))
	return nil
}

// IsOpen reports whether Open succeeded and Close has not been called.
func (s *OutputSynth) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Receiver returns a new handle that writes to the port.
func (s *OutputSynth) Receiver() (contracts.Receiver, error) {
	if !s.IsOpen() {
		return nil, fmt.Errorf("%w: %s is not open", contracts.ErrDeviceUnavailable, s.port.String())
	}
	return &portReceiver{synth: s}, nil
}

// LoadInstrument selects program on all 16 channels.
func (s *OutputSynth) LoadInstrument(program uint8) error {
	if program > 127 {
		return fmt.Errorf("%w: program %d", contracts.ErrInvalidMessageData, program)
	}

	var errs error
	for ch := uint8(0); ch < 16; ch++ {
		errs = multierr.Append(errs, s.write(gomidi.ProgramChange(ch, program)))
	}
	if errs == nil {
		s.logger.Info("Instrument loaded", s.logger.Field().Uint8("program", program))
	}
	return errs
}

// Close closes the port. Receivers handed out earlier fail with ErrDeviceUnavailable afterwards.
func (s *OutputSynth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false
	return s.port.Close()
}

func (s *OutputSynth) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return fmt.Errorf("%w: %s is closed", contracts.ErrDeviceUnavailable, s.port.String())
	}
	return s.port.Send(data)
}

// portReceiver is one relay's handle onto an OutputSynth. Timestamps are
// ignored: messages go out as soon as they arrive.
type portReceiver struct {
	synth  *OutputSynth
	closed atomic.Bool
}

func (r *portReceiver) Send(msg contracts.Message, timestamp int64) error {
	if r.closed.Load() {
		return contracts.ErrClosedRelay
	}
	if msg == nil {
		return fmt.Errorf("%w: nil message", contracts.ErrInvalidMessageData)
	}
	return r.synth.write(msg.Bytes())
}

// Close releases the handle only; the port stays open for other users.
func (r *portReceiver) Close() error {
	r.closed.Store(true)
	return nil
}
