// Package serial implements a polled driver for 16550-compatible UARTs.
package serial

import (
	"io"
	"kestrel/kernel"
	"kestrel/kernel/kfmt"
)

// Port is the base I/O port of a UART.
type Port uint16

const (
	// COM1 is the base port of the first serial port.
	COM1 Port = 0x3f8

	// DefaultDivisor selects 57600 baud (115200 / 2).
	DefaultDivisor uint16 = 2

	// BaseClock is the UART input clock divided by 16; the baud rate is
	// BaseClock / divisor.
	BaseClock = 115200

	// minBaud is the lowest rate whose divisor fits in 16 bits.
	minBaud = BaseClock/0xffff + 1
)

// Register offsets relative to the base port.
const (
	regData         = 0
	regDivisorHigh  = 1
	regFIFOControl  = 2
	regLineControl  = 3
	regModemControl = 4
	regLineStatus   = 5
)

const (
	lineControlDLAB = 0x80
	lineControl8N1  = 0x03

	// Enable the FIFOs, clear both of them and use a 14-byte threshold.
	fifoControlEnable14 = 0xc7

	// Assert DTR and RTS.
	modemControlReady = 0x03

	lineStatusTHRE = 0x20
)

// PortWriter sends a byte to an I/O port.
type PortWriter func(port uint16, val uint8)

// PortReader reads a byte from an I/O port.
type PortReader func(port uint16) uint8

// UART is a transmit-only, busy-waiting serial port driver.
type UART struct {
	port    Port
	divisor uint16

	out PortWriter
	in  PortReader
}

// NewUART returns a driver for the UART at port that programs the given baud
// divisor on DriverInit. A zero divisor selects DefaultDivisor.
func NewUART(port Port, divisor uint16) *UART {
	return NewUARTWithIO(port, divisor, portWriteByteFn, portReadByteFn)
}

// NewUARTWithIO is like NewUART but accesses the UART registers through the
// supplied port functions.
func NewUARTWithIO(port Port, divisor uint16, out PortWriter, in PortReader) *UART {
	if divisor == 0 {
		divisor = DefaultDivisor
	}

	return &UART{port: port, divisor: divisor, out: out, in: in}
}

// SetBaudRate sets the divisor to BaseClock/baud. It must be called before
// DriverInit. Rates that need a divisor outside the 16-bit latch or below 1
// (below 2 baud or above BaseClock) are ignored.
func (u *UART) SetBaudRate(baud uint32) {
	if baud < minBaud || baud > BaseClock {
		return
	}

	u.divisor = uint16(BaseClock / baud)
}

// Divisor returns the baud divisor programmed by DriverInit.
func (u *UART) Divisor() uint16 {
	return u.divisor
}

func (u *UART) reg(offset uint16) uint16 {
	return uint16(u.port) + offset
}

// IsTransmitReady reports whether the transmit holding register is empty.
func (u *UART) IsTransmitReady() bool {
	return u.in(u.reg(regLineStatus))&lineStatusTHRE != 0
}

// WriteByte implements io.ByteWriter. It blocks until the UART can accept
// another byte.
func (u *UART) WriteByte(b byte) error {
	for !u.IsTransmitReady() {
	}

	u.out(u.reg(regData), b)
	return nil
}

// Write implements io.Writer.
func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.WriteByte(b)
	}

	return len(p), nil
}

// WriteText transmits text, stopping after maxLen bytes, at the end of text
// or at the first NUL byte, whichever comes first. It returns the number of
// bytes sent.
func (u *UART) WriteText(text []byte, maxLen uint32) int {
	var n int
	for ; uint32(n) < maxLen && n < len(text) && text[n] != 0; n++ {
		u.WriteByte(text[n])
	}

	return n
}

// DriverName returns the name of this driver.
func (u *UART) DriverName() string {
	return "uart16550"
}

// DriverVersion returns the version of this driver.
func (u *UART) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit configures the baud rate, an 8N1 line, the FIFOs and the modem
// control lines.
func (u *UART) DriverInit(w io.Writer) *kernel.Error {
	// The divisor latch is reachable through the data and interrupt
	// enable registers while DLAB is set.
	u.out(u.reg(regLineControl), lineControlDLAB)
	u.out(u.reg(regData), uint8(u.divisor))
	u.out(u.reg(regDivisorHigh), uint8(u.divisor>>8))
	u.out(u.reg(regLineControl), 0)

	u.out(u.reg(regLineControl), lineControl8N1)
	u.out(u.reg(regFIFOControl), fifoControlEnable14)
	u.out(u.reg(regModemControl), modemControlReady)

	kfmt.Fprintf(w, "port 0x%x, %d baud\n", uint16(u.port), BaseClock/uint32(u.divisor))
	return nil
}
