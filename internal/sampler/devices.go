// SPDX-License-Identifier: MIT
package sampler

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceID selects the system default input device.
const DefaultDeviceID = -1

// Device describes one host audio device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// paDevicesFunc is replaced in tests.
var paDevicesFunc = portaudio.Devices

// HostDevices returns all audio devices the host exposes. PortAudio
// must be initialized.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// inputDevice resolves a device ID to its PortAudio info. DefaultDeviceID
// picks the system default input device.
func inputDevice(id int) (*portaudio.DeviceInfo, error) {
	if id == DefaultDeviceID {
		return portaudio.DefaultInputDevice()
	}

	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if id < 0 || id >= len(infos) {
		return nil, fmt.Errorf("invalid device ID %d: host has %d devices", id, len(infos))
	}
	if infos[id].MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", id, infos[id].Name)
	}
	return infos[id], nil
}

// FormatDevices writes a device listing to w, one block per device.
func FormatDevices(w io.Writer, devices []Device) {
	fmt.Fprintf(w, "Available audio devices:\n\n")
	for _, d := range devices {
		kind := deviceKind(d)
		fmt.Fprintf(w, "[%d] %s (%s)\n", d.ID, d.Name, kind)
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n",
			d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
}

func deviceKind(d Device) string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "input/output"
	case d.MaxInputChannels > 0:
		return "input"
	case d.MaxOutputChannels > 0:
		return "output"
	default:
		return "none"
	}
}
