// Command octaveshift plays a MIDI input device through a synthesizer, a whole
// number of octaves higher or lower.
package main

import (
	"os"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

func main() {
	err := RootCmd.Execute()
	gomidi.CloseDriver()
	if err != nil {
		os.Exit(1)
	}
}
