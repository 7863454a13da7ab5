package contracts

import (
	"bytes"
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestNewShortMessageValidation(t *testing.T) {
	cases := []struct {
		name    string
		cmd     MIDICommand
		channel byte
		d1, d2  int
		ok      bool
	}{
		{"note on", NoteOn, 0, 60, 100, true},
		{"pitch bend max", PitchBend, 15, 127, 127, true},
		{"negative note", NoteOn, 0, -12, 100, false},
		{"note too high", NoteOn, 0, 128, 100, false},
		{"velocity too high", NoteOff, 0, 60, 200, false},
		{"channel 16", NoteOn, 16, 60, 100, false},
		{"status with channel bits", MIDICommand(0x91), 0, 60, 100, false},
		{"system status", MIDICommand(0xF0), 0, 0, 0, false},
		{"data byte as command", MIDICommand(0x40), 0, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewShortMessage(tc.cmd, tc.channel, tc.d1, tc.d2)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidMessageData) {
				t.Fatalf("err = %v, want ErrInvalidMessageData", err)
			}
		})
	}
}

func TestShortMessageValidate(t *testing.T) {
	cases := []struct {
		name string
		msg  ShortMessage
		ok   bool
	}{
		{"note on", ShortMessage{Command: NoteOn, Channel: 9, Data1: 60, Data2: 100}, true},
		{"program change ignores data2", ShortMessage{Command: ProgramChange, Data1: 5, Data2: 200}, true},
		{"data1 is a status byte", ShortMessage{Command: NoteOn, Data1: 200, Data2: 100}, false},
		{"control value too high", ShortMessage{Command: ControlChange, Data1: 7, Data2: 250}, false},
		{"channel 16", ShortMessage{Command: NoteOff, Channel: 16, Data1: 60}, false},
		{"zero command", ShortMessage{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidMessageData) {
				t.Fatalf("err = %v, want ErrInvalidMessageData", err)
			}
		})
	}
}

func TestShortMessageBytesMatchWireLayout(t *testing.T) {
	cases := []struct {
		msg  ShortMessage
		want gomidi.Message
	}{
		{ShortMessage{Command: NoteOn, Channel: 0, Data1: 60, Data2: 100}, gomidi.NoteOn(0, 60, 100)},
		{ShortMessage{Command: NoteOff, Channel: 3, Data1: 72, Data2: 0}, gomidi.NoteOffVelocity(3, 72, 0)},
		{ShortMessage{Command: PolyPressure, Channel: 1, Data1: 40, Data2: 5}, gomidi.PolyAfterTouch(1, 40, 5)},
		{ShortMessage{Command: ControlChange, Channel: 2, Data1: 7, Data2: 90}, gomidi.ControlChange(2, 7, 90)},
		{ShortMessage{Command: ProgramChange, Channel: 9, Data1: 19}, gomidi.ProgramChange(9, 19)},
		{ShortMessage{Command: ChannelPressure, Channel: 4, Data1: 33}, gomidi.AfterTouch(4, 33)},
	}
	for _, tc := range cases {
		if got := tc.msg.Bytes(); !bytes.Equal(got, tc.want.Bytes()) {
			t.Errorf("%v: got % X, want % X", tc.msg, got, tc.want.Bytes())
		}
	}
}

func TestHasPitch(t *testing.T) {
	for _, cmd := range []MIDICommand{NoteOff, NoteOn, PolyPressure} {
		if !(ShortMessage{Command: cmd}).HasPitch() {
			t.Errorf("0x%02X should carry a pitch", byte(cmd))
		}
	}
	for _, cmd := range []MIDICommand{ControlChange, ProgramChange, ChannelPressure, PitchBend} {
		if (ShortMessage{Command: cmd}).HasPitch() {
			t.Errorf("0x%02X should not carry a pitch", byte(cmd))
		}
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte{0x95, 64, 32})
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	want := ShortMessage{Command: NoteOn, Channel: 5, Data1: 64, Data2: 32}
	if msg != want {
		t.Errorf("got %v, want %v", msg, want)
	}

	msg, err = ParseMessage([]byte{0xF8})
	if err != nil {
		t.Fatalf("ParseMessage clock: %v", err)
	}
	if msg.Kind() != KindOther {
		t.Errorf("clock kind = %v, want other", msg.Kind())
	}

	for _, bad := range [][]byte{nil, {0x90, 60}, {60, 100}, {0x90, 60, 100, 0x80, 60, 0}} {
		if _, err := ParseMessage(bad); !errors.Is(err, ErrInvalidMessageData) {
			t.Errorf("ParseMessage(% X) err = %v, want ErrInvalidMessageData", bad, err)
		}
	}
}

func TestSplitPacket(t *testing.T) {
	data := []byte{
		0x90, 60, 100,          // note on
		62, 100,                // running status note on
		0xF8,                   // clock, keeps running status
		64, 100,                // running status note on
		0xF0, 0x7D, 0x01, 0xF7, // sysex
		0xC1, 5,                // program change
		0xF2, 0x10, 0x20,       // song position
	}
	msgs, err := SplitPacket(data)
	if err != nil {
		t.Fatalf("SplitPacket: %v", err)
	}

	want := [][]byte{
		{0x90, 60, 100},
		{0x90, 62, 100},
		{0xF8},
		{0x90, 64, 100},
		{0xF0, 0x7D, 0x01, 0xF7},
		{0xC1, 5},
		{0xF2, 0x10, 0x20},
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, m := range msgs {
		if !bytes.Equal(m.Bytes(), want[i]) {
			t.Errorf("message %d: got % X, want % X", i, m.Bytes(), want[i])
		}
	}
}

func TestSplitPacketRealtimeInsideMessage(t *testing.T) {
	data := []byte{
		0x90, 60, 0xF8, 100, // clock between note and velocity
		0xFE, 62, 0xF8, 101, // running status with active sensing and clock
		0xC1, 0xFA, 5,       // start inside a program change
	}
	msgs, err := SplitPacket(data)
	if err != nil {
		t.Fatalf("SplitPacket: %v", err)
	}

	want := [][]byte{
		{0xF8},
		{0x90, 60, 100},
		{0xFE},
		{0xF8},
		{0x90, 62, 101},
		{0xFA},
		{0xC1, 5},
	}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, m := range msgs {
		if !bytes.Equal(m.Bytes(), want[i]) {
			t.Errorf("message %d: got % X, want % X", i, m.Bytes(), want[i])
		}
	}
}

func TestSplitPacketErrors(t *testing.T) {
	cases := map[string][]byte{
		"empty":                 {},
		"unterminated sysex":    {0xF0, 0x01, 0x02},
		"truncated system":      {0xF2, 0x10},
		"running after sysex":   {0xF0, 0xF7, 60, 100},
		"data byte above 0x7F":  {0x90, 60, 0x80},
		"status inside message": {0x90, 60, 0xF2, 0x00, 0x00},
		"truncated after clock": {0x90, 60, 0xF8},
	}
	for name, data := range cases {
		if _, err := SplitPacket(data); !errors.Is(err, ErrInvalidMessageData) {
			t.Errorf("%s: err = %v, want ErrInvalidMessageData", name, err)
		}
	}
}

func TestRawMessageBytesIsCopy(t *testing.T) {
	raw := RawMessage{0xF0, 0x01, 0xF7}
	b := raw.Bytes()
	b[1] = 0x7F
	if raw[1] != 0x01 {
		t.Error("Bytes exposed the underlying slice")
	}
}

func TestMIDIEventFilter(t *testing.T) {
	f := &MIDIEventFilter{Commands: []MIDICommand{NoteOn, NoteOff}}

	if !f.Allows(ShortMessage{Command: NoteOn}) {
		t.Error("note on should pass")
	}
	if f.Allows(ShortMessage{Command: ControlChange}) {
		t.Error("control change should be filtered")
	}
	if !f.Allows(RawMessage{0xF8}) {
		t.Error("non channel-voice messages are never filtered")
	}

	var none *MIDIEventFilter
	if !none.Allows(ShortMessage{Command: PitchBend}) {
		t.Error("nil filter should allow everything")
	}
}

func TestStatusLen(t *testing.T) {
	cases := map[byte]int{
		0x00: 0,
		0x90: 3,
		0xC5: 2,
		0xD0: 2,
		0xE3: 3,
		0xF0: 0,
		0xF1: 2,
		0xF2: 3,
		0xF8: 1,
	}
	for status, want := range cases {
		if got := StatusLen(status); got != want {
			t.Errorf("StatusLen(0x%02X) = %d, want %d", status, got, want)
		}
	}
}
