package midi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leandrodaf/midi-octave-shifter/internal/shifter"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

// NewOctaveShifter returns a receiver that moves every note it is sent by octaves
// and forwards the result to target's receiver. target is opened if needed.
//
// Construction fails with an error wrapping contracts.ErrDeviceUnavailable when
// the target cannot be opened or refuses a receiver.
func NewOctaveShifter(target contracts.SoundTarget, octaves int, opts ...contracts.ShifterOption) (contracts.Receiver, error) {
	options := applyShifterDefaults(opts...)
	s, err := shifter.New(target, octaves, &options)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseOctaves reads a user-supplied octave count. Blank input means 0.
func ParseOctaves(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid octave count %q: %w", s, err)
	}
	return n, nil
}
