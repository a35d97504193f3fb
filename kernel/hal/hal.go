// Package hal detects the hardware present at boot, initializes its drivers
// and routes kernel output to the devices that were found.
package hal

import (
	"io"
	"kestrel/device"
	"kestrel/device/serial"
	"kestrel/device/video/console"
	"kestrel/kernel/hal/multiboot"
	"kestrel/kernel/kfmt"
	"sort"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole *console.VgaTextConsole
	activeSerial  *serial.UART

	// consoleWriter feeds kfmt output to the active console.
	consoleWriter console.Writer

	// serialWriter feeds kfmt output to the active serial port.
	serialWriter crlfWriter

	// output is the kfmt sink once probing completes.
	output teeWriter

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices   managedDevices
	prefixBuf fixedBuffer
)

// ActiveConsole returns the console that receives kernel output or nil if
// no console was initialized.
func ActiveConsole() *console.VgaTextConsole {
	return devices.activeConsole
}

// ActiveSerial returns the serial port that mirrors kernel output or nil if
// no serial port was initialized.
func ActiveSerial() *serial.UART {
	return devices.activeSerial
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers.
func DetectHardware() {
	// Get driver list and sort by detection priority
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(drivers)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver. Once all drivers
// have been probed, kfmt output is linked to the active devices.
func probe(driverInfoList device.DriverInfoList) {
	var w = kfmt.PrefixWriter{Sink: kfmt.ActiveSink()}

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		if !configure(drv) {
			continue
		}

		prefixBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&prefixBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = prefixBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}

	linkOutput()
}

// configure applies boot command line options to drv before it is
// initialized. It returns false if the driver has been disabled.
func configure(drv device.Driver) bool {
	switch drvImpl := drv.(type) {
	case *serial.UART:
		if v, ok := multiboot.CmdLineValue("serial"); ok && v == "off" {
			return false
		}

		if v, ok := multiboot.CmdLineValue("serial.baud"); ok {
			if baud, ok := parseUint32(v); ok {
				drvImpl.SetBaudRate(baud)
			}
		}
	}

	return true
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized. The first console and the first serial port
// become the active devices.
func onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case *console.VgaTextConsole:
		if devices.activeConsole != nil {
			return
		}

		devices.activeConsole = drvImpl
		devices.consoleWriter.Console = drvImpl
	case *serial.UART:
		if devices.activeSerial != nil {
			return
		}

		devices.activeSerial = drvImpl
		devices.serialWriter.sink = drvImpl
	}
}

// linkOutput points kfmt at the active console and mirrors it to the active
// serial port. Output buffered while probing is replayed to both.
func linkOutput() {
	devices.output = teeWriter{}
	if devices.activeConsole != nil {
		devices.output.primary = &devices.consoleWriter
	}
	if devices.activeSerial != nil {
		devices.output.secondary = &devices.serialWriter
	}

	if devices.output.primary == nil && devices.output.secondary == nil {
		return
	}

	kfmt.SetOutputSink(&devices.output)
}

// teeWriter duplicates writes to up to two writers. Unlike io.MultiWriter
// it keeps going when one of them fails.
type teeWriter struct {
	primary, secondary io.Writer
}

func (t *teeWriter) Write(p []byte) (int, error) {
	if t.primary != nil {
		t.primary.Write(p)
	}
	if t.secondary != nil {
		t.secondary.Write(p)
	}

	return len(p), nil
}

// crlfWriter sends "\r\n" for every '\n' written to it, as serial terminals
// expect.
type crlfWriter struct {
	sink io.ByteWriter
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if b == '\n' {
			if err := c.sink.WriteByte('\r'); err != nil {
				return i, err
			}
		}
		if err := c.sink.WriteByte(b); err != nil {
			return i, err
		}
	}

	return len(p), nil
}

// fixedBuffer is an allocation-free io.Writer used to render driver log
// prefixes. Output that does not fit is dropped.
type fixedBuffer struct {
	data [64]byte
	len  int
}

func (b *fixedBuffer) Write(p []byte) (int, error) {
	b.len += copy(b.data[b.len:], p)
	return len(p), nil
}

func (b *fixedBuffer) Bytes() []byte { return b.data[:b.len] }

func (b *fixedBuffer) Reset() { b.len = 0 }

// parseUint32 parses a decimal number without allocating.
func parseUint32(s string) (uint32, bool) {
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}

	var v uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + uint64(s[i]-'0')
	}

	if v > 1<<32-1 {
		return 0, false
	}
	return uint32(v), true
}
