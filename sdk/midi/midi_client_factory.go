package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midi-octave-shifter/internal/midi/mididarwin"
	"github.com/leandrodaf/midi-octave-shifter/internal/midi/midiports"
	"github.com/leandrodaf/midi-octave-shifter/internal/midi/midiwindows"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system is not supported by the MIDI client.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to corresponding MIDI client initializers.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI client initializer.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client initializer.
	"linux":   midiports.NewMIDIClient,   // ALSA through the registered gomidi driver.
}

// NewClient initializes a MIDI capture client for the current operating system.
// It returns ErrUnsupportedOS when no client exists for runtime.GOOS.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return newClientFor(runtime.GOOS, opts)
}

func newClientFor(goos string, opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if initializer, exists := clientInitializers[goos]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}
