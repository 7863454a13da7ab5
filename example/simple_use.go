package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/midi-octave-shifter/internal/logger"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"github.com/leandrodaf/midi-octave-shifter/sdk/midi"
)

// monitor is a SoundTarget that logs what it would play.
type monitor struct {
	log  contracts.Logger
	open bool
}

func (m *monitor) Open() error {
	m.open = true
	return nil
}

func (m *monitor) IsOpen() bool { return m.open }

func (m *monitor) Receiver() (contracts.Receiver, error) { return m, nil }

func (m *monitor) Send(msg contracts.Message, timestamp int64) error {
	short, ok := msg.(contracts.ShortMessage)
	if !ok {
		m.log.Info("MIDI Event", m.log.Field().Int64("Timestamp", timestamp), m.log.Field().Int("Length", len(msg.Bytes())))
		return nil
	}
	m.log.Info("MIDI Event",
		m.log.Field().Int64("Timestamp", timestamp),
		m.log.Field().Int("Command", int(short.Command)),
		m.log.Field().Uint8("Channel", short.Channel),
		m.log.Field().Uint8("Note", short.Data1),
		m.log.Field().Uint8("Velocity", short.Data2),
	)
	return nil
}

func (m *monitor) Close() error { return nil }

func main() {
	log := logger.NewZapLogger()
	defer log.Sync()

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}

	devices, err := client.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	session, err := midi.Connect(client, &monitor{log: log}, midi.SessionConfig{DeviceID: 0, Octaves: 1},
		contracts.WithShifterLogger(log))
	if err != nil {
		log.Error("Failed to connect MIDI device", log.Field().Error("error", err))
		return
	}
	defer session.Close()

	fmt.Println("Capturing MIDI events one octave up... Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
