package midi

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midi-octave-shifter/internal/logger"
	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
)

func TestParseOctaves(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"   ", 0, true},
		{"2", 2, true},
		{" -3 ", -3, true},
		{"+1", 1, true},
		{"one", 0, false},
		{"1.5", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseOctaves(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseOctaves(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseOctaves(%q) should fail", tc.in)
		}
	}
}

func TestNewOctaveShifter(t *testing.T) {
	synth := &synthStub{}
	rcv, err := NewOctaveShifter(synth, -1,
		contracts.WithShifterLogger(logger.NewNopLogger()),
		contracts.WithPitchPolicy(contracts.DropPitch),
		contracts.WithKindPolicy(contracts.RejectUnsupported),
	)
	if err != nil {
		t.Fatalf("NewOctaveShifter: %v", err)
	}

	if err := rcv.Send(contracts.ShortMessage{Command: contracts.NoteOn, Data1: 5, Data2: 1}, 0); !errors.Is(err, contracts.ErrInvalidMessageData) {
		t.Errorf("drop policy not applied: %v", err)
	}
	if err := rcv.Send(contracts.RawMessage{0xF8}, 0); !errors.Is(err, contracts.ErrUnsupportedMessageKind) {
		t.Errorf("reject policy not applied: %v", err)
	}
	if err := rcv.Send(contracts.ShortMessage{Command: contracts.NoteOn, Data1: 60, Data2: 1}, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(synth.got) != 1 || synth.got[0][1] != 48 {
		t.Errorf("synth got % X, want note 48", synth.got)
	}
}

func TestNewOctaveShifterUnavailable(t *testing.T) {
	rcv, err := NewOctaveShifter(nil, 1, quiet())
	if !errors.Is(err, contracts.ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	if rcv != nil {
		t.Error("receiver must be nil on error")
	}
}

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if opts.LogLevel != contracts.InfoLevel {
		t.Errorf("LogLevel = %v, want info", opts.LogLevel)
	}
	if opts.CoreMIDIConfig == nil || opts.CoreMIDIConfig.ClientName == "" {
		t.Error("CoreMIDI config not defaulted")
	}

	filter := contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn}}
	opts, err = applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithMIDIEventFilter(filter),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "shifter"}),
	)
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if opts.MIDIEventFilter == nil || opts.CoreMIDIConfig.ClientName != "shifter" {
		t.Errorf("options not applied: %+v", opts)
	}

	if _, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()), contracts.WithLogFile(t.TempDir())); err == nil {
		t.Error("a directory is not a usable log file")
	}
}

func TestApplyShifterDefaults(t *testing.T) {
	opts := applyShifterDefaults()
	if opts.Logger == nil {
		t.Fatal("logger not defaulted")
	}
	if opts.PitchPolicy != contracts.ClampPitch || opts.KindPolicy != contracts.PassThroughUnsupported {
		t.Errorf("policies = %v/%v, want clamp/pass-through", opts.PitchPolicy, opts.KindPolicy)
	}
}

// levelRecorder records SetLevel calls on an otherwise silent logger.
type levelRecorder struct {
	contracts.Logger
	levels []contracts.LogLevel
}

func (l *levelRecorder) SetLevel(level contracts.LogLevel) {
	l.levels = append(l.levels, level)
}

func TestApplyShifterDefaultsLogLevel(t *testing.T) {
	cases := []struct {
		name string
		opts []contracts.ShifterOption
		want []contracts.LogLevel
	}{
		{"unset keeps logger level", nil, nil},
		{"info", []contracts.ShifterOption{contracts.WithShifterLogLevel(contracts.InfoLevel)}, []contracts.LogLevel{contracts.InfoLevel}},
		{"debug", []contracts.ShifterOption{contracts.WithShifterLogLevel(contracts.DebugLevel)}, []contracts.LogLevel{contracts.DebugLevel}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &levelRecorder{Logger: logger.NewNopLogger()}
			applyShifterDefaults(append([]contracts.ShifterOption{contracts.WithShifterLogger(rec)}, tc.opts...)...)
			if len(rec.levels) != len(tc.want) {
				t.Fatalf("SetLevel calls = %v, want %v", rec.levels, tc.want)
			}
			for i := range tc.want {
				if rec.levels[i] != tc.want[i] {
					t.Errorf("SetLevel calls = %v, want %v", rec.levels, tc.want)
				}
			}
		})
	}
}

func TestNewClientFor(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := newClientFor("plan9", &opts); !errors.Is(err, ErrUnsupportedOS) {
		t.Errorf("err = %v, want ErrUnsupportedOS", err)
	}
	client, err := newClientFor("linux", &opts)
	if err != nil || client == nil {
		t.Fatalf("linux client: %v", err)
	}
}
