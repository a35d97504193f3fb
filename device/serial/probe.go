package serial

import (
	"kestrel/device"
	"kestrel/kernel/cpu"
)

var (
	portWriteByteFn = cpu.PortWriteByte
	portReadByteFn  = cpu.PortReadByte
)

func probeForCOM1() device.Driver {
	return NewUART(COM1, DefaultDivisor)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForCOM1,
	})
}
