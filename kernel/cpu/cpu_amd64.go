// Package cpu exposes the privileged x86 instructions used by the kernel.
package cpu

// DisableInterrupts clears the interrupt flag.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// PortWriteByte writes a uint8 value to the requested port. The write
// completes before PortWriteByte returns.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
