package midiports

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

// inputPort is the part of a drivers.In the client needs to identify a port.
type inputPort interface {
	String() string
}

// listenFunc starts delivering raw data from port to recv and returns a stop function.
type listenFunc func(port inputPort, recv func(data []byte, timestampms int32)) (func(), error)

// ClientMid captures MIDI input through gomidi, which on Linux means ALSA via rtmidi.
type ClientMid struct {
	logger          contracts.Logger
	receiver        atomic.Value // holds receiverSlot
	midiEventFilter *contracts.MIDIEventFilter
	inPorts         func() []inputPort
	listen          listenFunc

	mu       sync.Mutex
	selected inputPort
	stopFunc func()
	wg       sync.WaitGroup
}

type receiverSlot struct {
	r contracts.Receiver
}

// NewMIDIClient initializes a gomidi-backed capture client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for gomidi driver")
	return newClient(options, gomidiInPorts, gomidiListen), nil
}

func gomidiInPorts() []inputPort {
	ins := gomidi.GetInPorts()
	ports := make([]inputPort, len(ins))
	for i, in := range ins {
		ports[i] = in
	}
	return ports
}

func gomidiListen(port inputPort, recv func(data []byte, timestampms int32)) (func(), error) {
	in, ok := port.(drivers.In)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a gomidi input", ErrInvalidMIDIDevice, port.String())
	}
	return gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		recv(msg, timestampms)
	}, gomidi.UseSysEx())
}

func newClient(options *contracts.ClientOptions, inPorts func() []inputPort, listen listenFunc) *ClientMid {
	return &ClientMid{
		logger:          options.Logger,
		midiEventFilter: options.MIDIEventFilter,
		inPorts:         inPorts,
		listen:          listen,
	}
}

// ListDevices lists the available MIDI input ports.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins := m.inPorts()
	if len(ins) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{ID: i, Name: in.String(), EntityName: in.String()}
	}
	return devices, nil
}

// SelectDevice selects an input port by index. A running capture is stopped first.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins := m.inPorts()
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	m.stopLocked()
	m.selected = ins[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", m.selected.String()))
	return nil
}

// StartCapture starts delivering messages from the selected port to receiver.
func (m *ClientMid) StartCapture(receiver contracts.Receiver) error {
	if receiver == nil {
		return fmt.Errorf("StartCapture called with nil receiver")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		m.logger.Error(ErrNoDeviceSelected.Error())
		return ErrNoDeviceSelected
	}
	if m.stopFunc != nil {
		m.logger.Warn("Capture already started; restarting")
		m.stopLocked()
	}

	m.receiver.Store(receiverSlot{receiver})
	stop, err := m.listen(m.selected, m.handleMIDIMessage)
	if err != nil {
		m.receiver.Store(receiverSlot{})
		return fmt.Errorf("listening to %s: %w", m.selected.String(), err)
	}
	m.stopFunc = stop

	m.logger.Info("Starting MIDI event capture", m.logger.Field().String("deviceName", m.selected.String()))
	return nil
}

func (m *ClientMid) handleMIDIMessage(data []byte, timestampms int32) {
	m.wg.Add(1)
	defer m.wg.Done()

	slot, _ := m.receiver.Load().(receiverSlot)
	if slot.r == nil {
		return
	}

	msgs, err := contracts.SplitPacket(data)
	if err != nil {
		m.logger.Warn("Discarding undecodable MIDI data", m.logger.Field().Error("error", err))
		return
	}
	for _, decoded := range msgs {
		if !m.midiEventFilter.Allows(decoded) {
			continue
		}
		if err := slot.r.Send(decoded, int64(timestampms)*1000); err != nil {
			m.logger.Warn("Receiver rejected MIDI message", m.logger.Field().Error("error", err))
		}
	}
}

// Stop halts capturing and waits for in-flight deliveries to finish.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *ClientMid) stopLocked() {
	if m.stopFunc == nil {
		return
	}
	m.stopFunc()
	m.stopFunc = nil
	m.receiver.Store(receiverSlot{})
	m.wg.Wait()
	m.logger.Info("MIDI capture stopped")
}
