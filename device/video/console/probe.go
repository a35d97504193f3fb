package console

import (
	"kestrel/device"
	"kestrel/kernel/cpu"
)

var (
	portWriteByteFn = cpu.PortWriteByte
)

// probeForVgaTextConsole returns a driver for the text-mode framebuffer. The
// legacy text buffer is always present on the PC platform this kernel boots
// on, so no detection is performed.
func probeForVgaTextConsole() device.Driver {
	return NewVgaTextConsole(FramebufferPhysAddr)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderConsole,
		Probe: probeForVgaTextConsole,
	})
}
