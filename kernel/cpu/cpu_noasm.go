//go:build !amd64

package cpu

// The kernel only targets amd64. These no-op definitions let host tools that
// import packages depending on cpu build on other architectures.

// DisableInterrupts is a no-op on this architecture.
func DisableInterrupts() {}

// Halt is a no-op on this architecture.
func Halt() {}

// PortWriteByte is a no-op on this architecture.
func PortWriteByte(_ uint16, _ uint8) {}

// PortReadByte always returns 0 on this architecture.
func PortReadByte(_ uint16) uint8 { return 0 }
