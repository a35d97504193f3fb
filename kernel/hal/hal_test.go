package hal

import (
	"bytes"
	"encoding/binary"
	"io"
	"kestrel/device"
	"kestrel/device/serial"
	"kestrel/device/video/console"
	"kestrel/kernel"
	"kestrel/kernel/hal/multiboot"
	"kestrel/kernel/kfmt"
	"strings"
	"testing"
	"unsafe"
)

type portWrite struct {
	port uint16
	val  uint8
}

// fakeCOM1 is an always-ready UART that records every register write.
type fakeCOM1 struct {
	writes []portWrite
}

func (f *fakeCOM1) write(port uint16, val uint8) {
	f.writes = append(f.writes, portWrite{port, val})
}

func (f *fakeCOM1) read(uint16) uint8 { return 0x20 }

// transmitted returns the bytes sent to the data register after the divisor
// latch has been programmed.
func (f *fakeCOM1) transmitted() []byte {
	var (
		out    []byte
		dlabOn bool
	)

	for _, w := range f.writes {
		switch w.port {
		case uint16(serial.COM1) + 3:
			dlabOn = w.val&0x80 != 0
		case uint16(serial.COM1):
			if !dlabOn {
				out = append(out, w.val)
			}
		}
	}
	return out
}

type failingDriver struct{}

func (failingDriver) DriverName() string                     { return "failing" }
func (failingDriver) DriverVersion() (uint16, uint16, uint16) { return 1, 2, 3 }
func (failingDriver) DriverInit(io.Writer) *kernel.Error {
	return &kernel.Error{Module: "test", Message: "no such device"}
}

// cmdLineInfo backs the info block installed by setCmdLine. It is a
// package-level array so the pointer arithmetic performed by the multiboot
// parser passes the checkptr instrumentation enabled by -race.
var cmdLineInfo [32]uint64

// setCmdLine points the multiboot package at an info block that only carries
// a command line tag.
func setCmdLine(cmdLine string) {
	payload := append([]byte(cmdLine), 0)
	tagSize := 8 + len(payload)
	padded := (tagSize + 7) &^ 7

	raw := make([]byte, 8+padded+8)
	binary.LittleEndian.PutUint32(raw[0:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(raw[8:], 1)
	binary.LittleEndian.PutUint32(raw[12:], uint32(tagSize))
	copy(raw[16:], payload)
	binary.LittleEndian.PutUint32(raw[8+padded+4:], 8)

	cmdLineInfo = [32]uint64{}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&cmdLineInfo[0])), len(cmdLineInfo)*8), raw)
	multiboot.SetInfoPtr(uintptr(unsafe.Pointer(&cmdLineInfo[0])))
}

func resetState() {
	devices = managedDevices{}
	kfmt.SetOutputSink(io.Discard)
	kfmt.SetOutputSink(nil)
}

func rowText(cons *console.VgaTextConsole, row uint32) string {
	var line [console.Columns]byte
	for col := uint32(0); col < console.Columns; col++ {
		line[col], _ = console.DecodeCell(cons.Cell(row*console.Columns + col))
	}
	return strings.TrimRight(string(line[:]), "\x00 ")
}

func TestProbe(t *testing.T) {
	defer func() {
		resetState()
		multiboot.SetInfoPtr(0)
	}()
	resetState()

	setCmdLine("serial.baud=38400")

	var (
		uartIO = &fakeCOM1{}
		uart   = serial.NewUARTWithIO(serial.COM1, 0, uartIO.write, uartIO.read)
		fb     = make([]uint16, console.Columns*console.Rows)
		cons   = console.NewBufferedVgaTextConsole(fb, nil)
		second = console.NewBufferedVgaTextConsole(make([]uint16, console.Columns*console.Rows), nil)
	)

	probe(device.DriverInfoList{
		{Order: device.DetectOrderEarly, Probe: func() device.Driver { return uart }},
		{Order: device.DetectOrderEarly, Probe: func() device.Driver { return nil }},
		{Order: device.DetectOrderConsole, Probe: func() device.Driver { return failingDriver{} }},
		{Order: device.DetectOrderConsole, Probe: func() device.Driver { return cons }},
		{Order: device.DetectOrderLast, Probe: func() device.Driver { return second }},
	})

	if ActiveConsole() != cons {
		t.Fatal("expected the first console to become the active console")
	}

	if ActiveSerial() != uart {
		t.Fatal("expected the UART to become the active serial port")
	}

	if exp, got := 3, len(devices.activeDrivers); got != exp {
		t.Fatalf("expected %d active drivers; got %d", exp, got)
	}

	if exp, got := uint16(3), uart.Divisor(); got != exp {
		t.Fatalf("expected serial.baud=38400 to select divisor %d; got %d", exp, got)
	}

	expLines := []string{
		"[hal] uart16550(0.0.1): port 0x3f8, 38400 baud",
		"[hal] uart16550(0.0.1): initialized",
		"[hal] failing(1.2.3): init failed: no such device",
		"[hal] vga_text_console(0.0.1): initialized",
		"[hal] vga_text_console(0.0.1): initialized",
	}

	for row, exp := range expLines {
		if got := rowText(cons, uint32(row)); got != exp {
			t.Errorf("[row %d] expected console text %q; got %q", row, exp, got)
		}
	}

	if exp, got := strings.Join(expLines, "\r\n")+"\r\n", string(uartIO.transmitted()); got != exp {
		t.Errorf("expected serial output:\n%s\ngot:\n%s", exp, got)
	}

	// Once linked, kfmt output reaches both devices.
	kfmt.Printf("ready\n")

	if got := rowText(cons, uint32(len(expLines))); got != "ready" {
		t.Errorf("expected console to show kfmt output; got %q", got)
	}

	if !bytes.HasSuffix(uartIO.transmitted(), []byte("\r\nready\r\n")) {
		t.Error("expected kfmt output to be mirrored to the serial port")
	}
}

func TestProbeWithSerialDisabled(t *testing.T) {
	defer func() {
		resetState()
		multiboot.SetInfoPtr(0)
	}()
	resetState()

	setCmdLine("quiet serial=off")

	var (
		uartIO = &fakeCOM1{}
		uart   = serial.NewUARTWithIO(serial.COM1, 0, uartIO.write, uartIO.read)
		cons   = console.NewBufferedVgaTextConsole(make([]uint16, console.Columns*console.Rows), nil)
	)

	probe(device.DriverInfoList{
		{Order: device.DetectOrderEarly, Probe: func() device.Driver { return uart }},
		{Order: device.DetectOrderConsole, Probe: func() device.Driver { return cons }},
	})

	if ActiveSerial() != nil {
		t.Fatal("expected no active serial port when serial=off")
	}

	if len(uartIO.writes) != 0 {
		t.Fatalf("expected the disabled UART not to be touched; got %d port writes", len(uartIO.writes))
	}

	if exp, got := "[hal] vga_text_console(0.0.1): initialized", rowText(cons, 0); got != exp {
		t.Fatalf("expected console text %q; got %q", exp, got)
	}
}

func TestProbeWithoutDevices(t *testing.T) {
	defer resetState()
	resetState()

	probe(nil)

	if ActiveConsole() != nil || ActiveSerial() != nil {
		t.Fatal("expected no active devices")
	}

	// Output stays buffered until a sink becomes available.
	kfmt.Printf("buffered")

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)
	if got := buf.String(); got != "buffered" {
		t.Fatalf("expected buffered output to be replayed; got %q", got)
	}
}

func TestParseUint32(t *testing.T) {
	specs := []struct {
		input string
		exp   uint32
		expOK bool
	}{
		{"9600", 9600, true},
		{"115200", 115200, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false},
		{"", 0, false},
		{"96OO", 0, false},
		{"-1", 0, false},
	}

	for specIndex, spec := range specs {
		got, ok := parseUint32(spec.input)
		if got != spec.exp || ok != spec.expOK {
			t.Errorf("[spec %d] expected parseUint32(%q) to return (%d, %t); got (%d, %t)", specIndex, spec.input, spec.exp, spec.expOK, got, ok)
		}
	}
}

func TestFixedBufferTruncates(t *testing.T) {
	var b fixedBuffer

	b.Write(bytes.Repeat([]byte{'x'}, 100))
	if exp, got := 64, len(b.Bytes()); got != exp {
		t.Fatalf("expected buffer length %d; got %d", exp, got)
	}

	b.Reset()
	b.Write([]byte("[hal] "))
	if got := string(b.Bytes()); got != "[hal] " {
		t.Fatalf("expected %q; got %q", "[hal] ", got)
	}
}

type byteRecorder struct {
	bytes.Buffer
	failAfter int
}

func (r *byteRecorder) WriteByte(b byte) error {
	if r.failAfter >= 0 && r.Len() == r.failAfter {
		return io.ErrShortWrite
	}
	return r.Buffer.WriteByte(b)
}

func TestCRLFWriter(t *testing.T) {
	specs := []struct {
		input     string
		failAfter int
		exp       string
		expN      int
		expErr    error
	}{
		{"abc", -1, "abc", 3, nil},
		{"a\nb\n", -1, "a\r\nb\r\n", 4, nil},
		{"\n\n", -1, "\r\n\r\n", 2, nil},
		{"ab\ncd", 3, "ab\r", 2, io.ErrShortWrite},
	}

	for specIndex, spec := range specs {
		rec := &byteRecorder{failAfter: spec.failAfter}
		w := &crlfWriter{sink: rec}

		n, err := w.Write([]byte(spec.input))
		if n != spec.expN || err != spec.expErr {
			t.Errorf("[spec %d] expected Write to return (%d, %v); got (%d, %v)", specIndex, spec.expN, spec.expErr, n, err)
		}

		if got := rec.String(); got != spec.exp {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.exp, got)
		}
	}
}
