//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/midi-octave-shifter/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// receiverSlot lets a nil receiver be stored in an atomic.Value.
type receiverSlot struct {
	r contracts.Receiver
}

// ClientMid manages MIDI on Windows
type ClientMid struct {
	logger          contracts.Logger
	receiver        atomic.Value // Holds the current receiverSlot.
	handle          HMIDIIN
	portConn        bool
	capturing       bool
	mu              sync.Mutex
	wg              sync.WaitGroup
	midiEventFilter *contracts.MIDIEventFilter
	coreMIDIConfig  *contracts.CoreMIDIConfig
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")

	// winmm callbacks are a limited resource; one serves every client.
	midiInCallbackPtr = windows.NewCallback(midiInCallback)
)

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for Windows")

	return &ClientMid{
		logger:          options.Logger,
		midiEventFilter: options.MIDIEventFilter,
		coreMIDIConfig:  options.CoreMIDIConfig,
	}, nil
}

// ListDevices lists the available MIDI devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := m.collectDevices(numDevices, midiInGetDevCaps)
	if len(devices) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	return devices, nil
}

func midiInGetDevCaps(id uint32) (midiInCaps, bool) {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(
		uintptr(id),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	return caps, r1 == 0
}

// collectDevices describes every device whose capabilities can be read.
// IDs stay the winmm device numbers, so they may skip failed devices.
func (m *ClientMid) collectDevices(numDevices uint32, getCaps func(uint32) (midiInCaps, bool)) []contracts.DeviceInfo {
	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		caps, ok := getCaps(i)
		if !ok {
			m.logger.Warn("Failed to get information for MIDI device", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices
}

// SelectDevice selects a MIDI device
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiInGetNumDevs.Call()
	if deviceID < 0 || deviceID >= int(r0) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if m.portConn {
		if err := m.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		midiInCallbackPtr,
		uintptr(unsafe.Pointer(m)),
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	m.portConn = true
	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture starts the winmm input stream and delivers its messages to receiver.
func (m *ClientMid) StartCapture(receiver contracts.Receiver) error {
	if receiver == nil {
		return fmt.Errorf("StartCapture called with nil receiver")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn || m.handle == 0 {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return ErrNoDeviceSelected
	}

	m.receiver.Store(receiverSlot{receiver})
	if m.capturing {
		m.logger.Warn("Capture already started; replacing receiver")
		return nil
	}

	r1, _, err := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.receiver.Store(receiverSlot{})
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to start MIDI capture: %v", err)
	}

	m.capturing = true
	m.logger.Info("MIDI capture started")
	return nil
}

// midiInCallback runs on the winmm driver thread.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m := (*ClientMid)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		m.logger.Info("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Info("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		m.deliver(uint32(dwParam1), int64(dwParam2)*1000)
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Error("MIDI error", m.logger.Field().Uint64("msg", uint64(wMsg)))
	default:
		m.logger.Warn("Unknown MIDI message", m.logger.Field().Uint64("msg", uint64(wMsg)))
	}

	return 0
}

// deliver unpacks a short message (status | data1<<8 | data2<<16) and forwards it.
// dwParam2 is milliseconds since midiInStart, passed on as microseconds.
func (m *ClientMid) deliver(packed uint32, timestamp int64) {
	m.wg.Add(1)
	defer m.wg.Done()

	slot, _ := m.receiver.Load().(receiverSlot)
	if slot.r == nil {
		return
	}

	raw := []byte{byte(packed), byte(packed >> 8), byte(packed >> 16)}
	n := contracts.StatusLen(raw[0])
	if n == 0 {
		m.logger.Debug("Ignoring MIDI data without fixed length", m.logger.Field().Uint8("status", raw[0]))
		return
	}

	msg, err := contracts.ParseMessage(raw[:n])
	if err != nil {
		m.logger.Warn("Discarding undecodable MIDI data", m.logger.Field().Error("error", err))
		return
	}
	if !m.midiEventFilter.Allows(msg) {
		return
	}
	if err := slot.r.Send(msg, timestamp); err != nil {
		m.logger.Warn("Receiver rejected MIDI message", m.logger.Field().Error("error", err))
	}
}

// Stop terminates MIDI event capture and closes the device.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn {
		return nil
	}

	if err := m.stopCapture(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// stopCapture stops the input stream, closes the handle and waits for callbacks in progress.
func (m *ClientMid) stopCapture() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	m.receiver.Store(receiverSlot{})

	if m.capturing {
		r1, _, err := procMidiInStop.Call(uintptr(m.handle))
		if r1 != 0 {
			m.logger.Error("Failed to stop MIDI capture", m.logger.Field().Error("error", err))
			return err
		}
		m.capturing = false
	}

	r1, _, err := procMidiInClose.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to close MIDI device", m.logger.Field().Error("error", err))
		return err
	}

	m.wg.Wait()
	m.portConn = false
	m.handle = 0
	return nil
}
