package main

import (
	"fmt"

	"github.com/leandrodaf/midi-octave-shifter/internal/midi/midiports"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"github.com/leandrodaf/midi-octave-shifter/sdk/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List MIDI input devices and synthesizer output ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, level, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		client, err := midi.NewMIDIClient(contracts.WithLogger(log), contracts.WithLogLevel(level))
		if err != nil {
			return errors.Wrap(err, "creating MIDI client")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Input devices:")
		devices, err := client.ListDevices()
		if err != nil {
			fmt.Fprintf(out, "  (%v)\n", err)
		}
		for _, d := range devices {
			fmt.Fprintf(out, "  %d: %s\n", d.ID, d.Name)
		}

		fmt.Fprintln(out, "Synthesizer ports:")
		for _, o := range midiports.ListOutputs() {
			fmt.Fprintf(out, "  %d: %s\n", o.ID, o.Name)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}
