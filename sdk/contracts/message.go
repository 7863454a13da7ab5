package contracts

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoTimestamp marks a message that should be delivered without timing information.
const NoTimestamp int64 = -1

// MIDICommand represents the command nibble of a channel-voice status byte.
type MIDICommand byte

const (
	NoteOff         MIDICommand = 0x80 // Note Off.
	NoteOn          MIDICommand = 0x90 // Note On.
	PolyPressure    MIDICommand = 0xA0 // Polyphonic key pressure.
	ControlChange   MIDICommand = 0xB0 // Control Change.
	ProgramChange   MIDICommand = 0xC0 // Program Change.
	ChannelPressure MIDICommand = 0xD0 // Channel pressure.
	PitchBend       MIDICommand = 0xE0 // Pitch bend.
)

// MessageKind tags the structural variant of a Message.
type MessageKind int

const (
	// KindShort is a channel-voice message (ShortMessage).
	KindShort MessageKind = iota
	// KindOther covers sysex, system common, realtime and anything else (RawMessage).
	KindOther
)

func (k MessageKind) String() string {
	switch k {
	case KindShort:
		return "short"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("MessageKind(%d)", int(k))
	}
}

// Message is a MIDI message as seen by a Receiver.
type Message interface {
	Kind() MessageKind
	Bytes() []byte // Wire encoding.
}

// ShortMessage is a channel-voice message: status (command|channel), data1 and data2.
type ShortMessage struct {
	Command MIDICommand // Command nibble, low 4 bits zero.
	Channel byte        // Channel 0-15.
	Data1   byte        // Note number for note messages (0-127).
	Data2   byte        // Velocity for note messages (0-127). Unused for 2-byte commands.
}

// NewShortMessage builds a ShortMessage, rejecting values the wire encoding cannot carry.
// Data bytes are taken as int so that callers doing arithmetic can pass unchecked results.
func NewShortMessage(command MIDICommand, channel byte, data1, data2 int) (ShortMessage, error) {
	if data1 < 0 || data1 > 127 {
		return ShortMessage{}, fmt.Errorf("%w: data1 %d", ErrInvalidMessageData, data1)
	}
	if data2 < 0 || data2 > 127 {
		return ShortMessage{}, fmt.Errorf("%w: data2 %d", ErrInvalidMessageData, data2)
	}
	m := ShortMessage{Command: command, Channel: channel, Data1: byte(data1), Data2: byte(data2)}
	if err := m.Validate(); err != nil {
		return ShortMessage{}, err
	}
	return m, nil
}

// Validate reports an error wrapping ErrInvalidMessageData when m cannot be
// encoded: an unknown command, a channel above 15 or a data byte above 127.
// Data2 is ignored for commands that carry a single data byte.
func (m ShortMessage) Validate() error {
	if !m.Command.valid() {
		return fmt.Errorf("%w: command 0x%02X", ErrInvalidMessageData, byte(m.Command))
	}
	if m.Channel > 15 {
		return fmt.Errorf("%w: channel %d", ErrInvalidMessageData, m.Channel)
	}
	if m.Data1 > 127 {
		return fmt.Errorf("%w: data1 %d", ErrInvalidMessageData, m.Data1)
	}
	if m.Command.dataLen() == 2 && m.Data2 > 127 {
		return fmt.Errorf("%w: data2 %d", ErrInvalidMessageData, m.Data2)
	}
	return nil
}

func (c MIDICommand) valid() bool {
	return c >= NoteOff && c <= PitchBend && c&0x0F == 0
}

// dataLen is the number of data bytes that follow a channel-voice status byte.
func (c MIDICommand) dataLen() int {
	if c == ProgramChange || c == ChannelPressure {
		return 1
	}
	return 2
}

// Kind implements Message.
func (m ShortMessage) Kind() MessageKind { return KindShort }

// Status returns the combined status byte.
func (m ShortMessage) Status() byte { return byte(m.Command) | m.Channel&0x0F }

// HasPitch reports whether Data1 is a note number.
func (m ShortMessage) HasPitch() bool {
	return m.Command == NoteOff || m.Command == NoteOn || m.Command == PolyPressure
}

// Bytes implements Message.
func (m ShortMessage) Bytes() []byte {
	if m.Command.dataLen() == 1 {
		return []byte{m.Status(), m.Data1}
	}
	return []byte{m.Status(), m.Data1, m.Data2}
}

func (m ShortMessage) String() string {
	return gomidi.Message(m.Bytes()).String()
}

// RawMessage carries any message that is not a channel-voice message, unmodified.
type RawMessage []byte

// Kind implements Message.
func (m RawMessage) Kind() MessageKind { return KindOther }

// Bytes implements Message.
func (m RawMessage) Bytes() []byte {
	out := make([]byte, len(m))
	copy(out, m)
	return out
}

func (m RawMessage) String() string {
	return gomidi.Message(m).String()
}

// ParseMessage decodes exactly one message from data.
func ParseMessage(data []byte) (Message, error) {
	msgs, err := SplitPacket(data)
	if err != nil {
		return nil, err
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("%w: expected one message, got %d", ErrInvalidMessageData, len(msgs))
	}
	return msgs[0], nil
}

// SplitPacket decodes every message contained in a transport packet.
// Running status is honoured for channel-voice messages; a sysex runs up to and including 0xF7.
func SplitPacket(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrInvalidMessageData)
	}

	var (
		msgs    []Message
		running MIDICommand
		runChan byte
	)
	for i := 0; i < len(data); {
		status := data[i]

		switch {
		case status < 0x80:
			if running == 0 {
				return nil, fmt.Errorf("%w: data byte 0x%02X without status", ErrInvalidMessageData, status)
			}
			var err error
			if msgs, i, err = appendShort(msgs, running, runChan, data, i); err != nil {
				return nil, err
			}

		case status < 0xF0:
			running, runChan = MIDICommand(status&0xF0), status&0x0F
			var err error
			if msgs, i, err = appendShort(msgs, running, runChan, data, i+1); err != nil {
				return nil, err
			}

		case status == 0xF0:
			end := i + 1
			for end < len(data) && data[end] != 0xF7 {
				end++
			}
			if end == len(data) {
				return nil, fmt.Errorf("%w: unterminated sysex", ErrInvalidMessageData)
			}
			msgs = append(msgs, RawMessage(append([]byte(nil), data[i:end+1]...)))
			running = 0
			i = end + 1

		default:
			n := systemLen(status)
			if i+n > len(data) {
				return nil, fmt.Errorf("%w: truncated system message 0x%02X", ErrInvalidMessageData, status)
			}
			msgs = append(msgs, RawMessage(append([]byte(nil), data[i:i+n]...)))
			// realtime bytes may interleave without cancelling running status
			if status < 0xF8 {
				running = 0
			}
			i += n
		}
	}
	return msgs, nil
}

// appendShort reads the data bytes of a cmd message starting at data[i] and
// appends the decoded message to msgs. Realtime bytes found between the data
// bytes are appended first, as they were received first. It returns the index
// after the last byte consumed.
func appendShort(msgs []Message, cmd MIDICommand, channel byte, data []byte, i int) ([]Message, int, error) {
	var values [2]int
	for got := 0; got < cmd.dataLen(); i++ {
		if i >= len(data) {
			return nil, 0, fmt.Errorf("%w: truncated 0x%02X message", ErrInvalidMessageData, byte(cmd)|channel)
		}
		switch b := data[i]; {
		case b >= 0xF8:
			msgs = append(msgs, RawMessage{b})
		case b >= 0x80:
			return nil, 0, fmt.Errorf("%w: status 0x%02X inside 0x%02X message", ErrInvalidMessageData, b, byte(cmd)|channel)
		default:
			values[got] = int(b)
			got++
		}
	}
	msg, err := NewShortMessage(cmd, channel, values[0], values[1])
	if err != nil {
		return nil, 0, err
	}
	return append(msgs, msg), i, nil
}

// StatusLen returns the full length of the message introduced by status,
// or 0 when the length is not fixed (sysex) or status is a data byte.
func StatusLen(status byte) int {
	switch {
	case status < 0x80, status == 0xF0, status == 0xF7:
		return 0
	case status < 0xF0:
		return 1 + MIDICommand(status&0xF0).dataLen()
	default:
		return systemLen(status)
	}
}

// systemLen returns the full length of a system common or realtime message.
func systemLen(status byte) int {
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	default:
		return 1
	}
}
