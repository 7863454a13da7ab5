// Package shifter relays MIDI messages to a sound target, moving every note by whole octaves.
package shifter

import (
	"fmt"
	"sync/atomic"

	logging "github.com/leandrodaf/midi-octave-shifter/internal/logger"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

const semitonesPerOctave = 12

// OctaveShifter is a contracts.Receiver that transposes note messages and
// forwards them to the receiver of a sound target.
//
// Send is expected to be called from a single delivery goroutine. Close may be
// called from any goroutine. The octave offset never changes after New returns.
type OctaveShifter struct {
	downstream  contracts.Receiver
	octaves     int
	pitchPolicy contracts.PitchPolicy
	kindPolicy  contracts.KindPolicy
	logger      contracts.Logger
	closed      atomic.Bool
}

// New opens target if needed and binds a shifter to its receiver.
// Errors wrap contracts.ErrDeviceUnavailable.
func New(target contracts.SoundTarget, octaves int, opts *contracts.ShifterOptions) (*OctaveShifter, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: no sound target", contracts.ErrDeviceUnavailable)
	}
	if !target.IsOpen() {
		if err := target.Open(); err != nil {
			return nil, wrapUnavailable("opening sound target", err)
		}
	}

	rcv, err := target.Receiver()
	if err != nil {
		return nil, wrapUnavailable("acquiring receiver", err)
	}
	if rcv == nil {
		return nil, fmt.Errorf("%w: sound target returned no receiver", contracts.ErrDeviceUnavailable)
	}

	if opts == nil {
		opts = &contracts.ShifterOptions{}
	}
	s := &OctaveShifter{
		downstream:  rcv,
		octaves:     octaves,
		pitchPolicy: opts.PitchPolicy,
		kindPolicy:  opts.KindPolicy,
		logger:      opts.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger.Info("Octave shifter connected", s.logger.Field().Int("octaves", octaves))
	return s, nil
}

func wrapUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", contracts.ErrDeviceUnavailable, op, err)
}

// Octaves returns the configured offset.
func (s *OctaveShifter) Octaves() int {
	return s.octaves
}

// Send transposes msg and forwards it downstream with the same timestamp.
func (s *OctaveShifter) Send(msg contracts.Message, timestamp int64) error {
	if s.closed.Load() {
		return contracts.ErrClosedRelay
	}

	switch m := msg.(type) {
	case nil:
		return fmt.Errorf("%w: nil message", contracts.ErrInvalidMessageData)
	case contracts.ShortMessage:
		if err := m.Validate(); err != nil {
			return err
		}
		out, err := s.shift(m)
		if err != nil {
			return err
		}
		return s.forward(out, timestamp)
	default:
		if s.kindPolicy == contracts.RejectUnsupported {
			return fmt.Errorf("%w: %s message", contracts.ErrUnsupportedMessageKind, msg.Kind())
		}
		return s.forward(msg, timestamp)
	}
}

func (s *OctaveShifter) shift(m contracts.ShortMessage) (contracts.ShortMessage, error) {
	if !m.HasPitch() || s.octaves == 0 {
		return m, nil
	}

	note := int(m.Data1) + semitonesPerOctave*s.octaves
	if note < 0 || note > 127 {
		if s.pitchPolicy == contracts.DropPitch {
			s.logger.Warn("Dropping note shifted out of range",
				s.logger.Field().Uint8("note", m.Data1),
				s.logger.Field().Int("shifted", note))
			return contracts.ShortMessage{}, fmt.Errorf("%w: note %d shifted by %d octaves gives %d",
				contracts.ErrInvalidMessageData, m.Data1, s.octaves, note)
		}
		note = clamp(note)
		s.logger.Debug("Clamped shifted note",
			s.logger.Field().Uint8("note", m.Data1),
			s.logger.Field().Int("clamped", note))
	}

	return contracts.NewShortMessage(m.Command, m.Channel, note, int(m.Data2))
}

func clamp(note int) int {
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return note
}

func (s *OctaveShifter) forward(msg contracts.Message, timestamp int64) error {
	if err := s.downstream.Send(msg, timestamp); err != nil {
		return fmt.Errorf("forwarding message: %w", err)
	}
	return nil
}

// Close stops the shifter. The downstream receiver belongs to the sound target and stays open.
func (s *OctaveShifter) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.logger.Info("Octave shifter closed")
	}
	return nil
}
