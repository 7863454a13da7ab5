package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midi-octave-shifter/internal/midi/midiports"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"github.com/leandrodaf/midi-octave-shifter/sdk/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RunConfig holds the flags of the run command.
type RunConfig struct {
	Device            int
	Synth             string
	Octaves           string
	Instrument        int
	DropOutOfRange    bool
	RejectUnsupported bool
}

var runConfig RunConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play an input device through a synthesizer, shifted by octaves",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, level, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg, err := runConfig.sessionConfig()
		if err != nil {
			return err
		}
		if runConfig.Synth == "" {
			return errors.New("no synthesizer selected (--synth)")
		}

		client, err := midi.NewMIDIClient(contracts.WithLogger(log), contracts.WithLogLevel(level))
		if err != nil {
			return errors.Wrap(err, "creating MIDI client")
		}
		synth, err := midiports.OpenOutputSynth(runConfig.Synth, log)
		if err != nil {
			return errors.Wrap(err, "synthesizer unavailable")
		}
		defer synth.Close()

		session, err := midi.Connect(client, synth, cfg, runConfig.shifterOptions(log)...)
		if err != nil {
			return errors.Wrap(err, "connecting")
		}
		defer session.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Shifting by %d octave(s). Press Ctrl+C to stop...\n", cfg.Octaves)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		return nil
	},
}

func (c RunConfig) sessionConfig() (midi.SessionConfig, error) {
	octaves, err := midi.ParseOctaves(c.Octaves)
	if err != nil {
		return midi.SessionConfig{}, errors.Wrap(err, "parsing --octaves")
	}
	cfg := midi.SessionConfig{DeviceID: c.Device, Octaves: octaves}
	if c.Instrument >= 0 {
		if c.Instrument > 127 {
			return midi.SessionConfig{}, errors.Errorf("instrument %d out of range 0-127", c.Instrument)
		}
		program := uint8(c.Instrument)
		cfg.Instrument = &program
	}
	return cfg, nil
}

func (c RunConfig) shifterOptions(log contracts.Logger) []contracts.ShifterOption {
	opts := []contracts.ShifterOption{contracts.WithShifterLogger(log)}
	if c.DropOutOfRange {
		opts = append(opts, contracts.WithPitchPolicy(contracts.DropPitch))
	}
	if c.RejectUnsupported {
		opts = append(opts, contracts.WithKindPolicy(contracts.RejectUnsupported))
	}
	return opts
}

func init() {
	flags := runCmd.Flags()
	flags.IntVarP(&runConfig.Device, "device", "d", 0, "input device number, see 'octaveshift list'")
	flags.StringVarP(&runConfig.Synth, "synth", "s", "", "synthesizer output port name")
	flags.StringVarP(&runConfig.Octaves, "octaves", "o", "", "octaves to shift by, negative for down (default 0)")
	flags.IntVarP(&runConfig.Instrument, "instrument", "i", -1, "program number to load, -1 keeps the current one")
	flags.BoolVar(&runConfig.DropOutOfRange, "drop-out-of-range", false, "drop notes shifted outside 0-127 instead of clamping")
	flags.BoolVar(&runConfig.RejectUnsupported, "reject-unsupported", false, "drop sysex and system messages instead of passing them through")
	RootCmd.AddCommand(runCmd)
}
