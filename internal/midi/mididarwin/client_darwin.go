//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
	ErrNoDeviceSelected    = errors.New("no MIDI device selected")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// receiverSlot lets a nil receiver be stored in an atomic.Value.
type receiverSlot struct {
	r contracts.Receiver
}

// ClientMid manages MIDI capture on Darwin (macOS) systems.
// CoreMIDI calls handleMIDIMessage on its own thread; the receiver slot is
// swapped atomically so Stop never races with a delivery in flight.
type ClientMid struct {
	logger          contracts.Logger
	receiver        atomic.Value               // Holds the current receiverSlot.
	client          coremidi.Client            // CoreMIDI client instance for MIDI operations.
	inputPort       coremidi.InputPort         // Input port for receiving MIDI events.
	portConn        internalPortConnection     // Connection to the MIDI port.
	midiEventFilter *contracts.MIDIEventFilter // Filter for specific MIDI events.
	coreMIDIConfig  *contracts.CoreMIDIConfig  // Configuration for MIDI client.
	mu              sync.Mutex                 // Mutex for thread safety on shared resources.
	capturing       bool                       // Indicates if event capturing is currently active.
	wg              sync.WaitGroup             // Tracks deliveries in progress.
	started         time.Time                  // Origin for message timestamps.
}

// NewMIDIClient initializes a new ClientMid for handling MIDI events on macOS.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI client successfully created")

	return &ClientMid{
		logger:          options.Logger,
		client:          client,
		midiEventFilter: options.MIDIEventFilter,
		coreMIDIConfig:  options.CoreMIDIConfig,
	}, nil
}

// ListDevices retrieves and returns available MIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice selects a MIDI source by ID and connects to it.
// If a source is already connected, it is disconnected first.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	m.stopLocked()

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, "Input Port", m.handleMIDIMessage)
	if err != nil {
		m.logger.Error(ErrCreateInputPort.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handleMIDIMessage decodes a CoreMIDI packet and hands every message to the receiver.
func (m *ClientMid) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	m.wg.Add(1)
	defer m.wg.Done()

	slot, _ := m.receiver.Load().(receiverSlot)
	if slot.r == nil {
		return
	}

	msgs, err := contracts.SplitPacket(packet.Data)
	if err != nil {
		m.logger.Warn("Discarding undecodable MIDI packet",
			m.logger.Field().String("source", source.Name()),
			m.logger.Field().Error("error", err))
		return
	}

	timestamp := time.Since(m.started).Microseconds()
	for _, msg := range msgs {
		if !m.midiEventFilter.Allows(msg) {
			continue
		}
		if err := slot.r.Send(msg, timestamp); err != nil {
			m.logger.Warn("Receiver rejected MIDI message", m.logger.Field().Error("error", err))
		}
	}
}

// StartCapture begins delivering messages from the connected source to receiver.
func (m *ClientMid) StartCapture(receiver contracts.Receiver) error {
	if receiver == nil {
		m.logger.Error("StartCapture called with nil receiver")
		return fmt.Errorf("StartCapture called with nil receiver")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.portConn == nil {
		m.logger.Error(ErrNoDeviceSelected.Error())
		return ErrNoDeviceSelected
	}
	if m.capturing {
		m.logger.Warn("Capture already started; replacing receiver")
	}

	m.logger.Info("Starting MIDI event capture")
	m.started = time.Now()
	m.receiver.Store(receiverSlot{receiver})
	m.capturing = true
	return nil
}

// Stop halts capturing, disconnects from the source and waits for deliveries in progress.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *ClientMid) stopLocked() {
	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}
	if !m.capturing {
		return
	}
	m.capturing = false
	m.receiver.Store(receiverSlot{})
	m.wg.Wait()
	m.logger.Info("MIDI capture stopped")
}
