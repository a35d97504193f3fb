// Package device defines the contract between hardware drivers and the HAL.
package device

import (
	"io"
	"kestrel/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. Drivers log their
	// progress by passing w to kfmt.Fprintf.
	DriverInit(w io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it.
type ProbeFn func() Driver

// DetectOrder controls the order in which the HAL probes drivers.
type DetectOrder int8

const (
	// DetectOrderEarly is used by drivers whose output should be
	// available while the remaining drivers initialize (e.g. serial).
	DetectOrderEarly DetectOrder = -64

	// DetectOrderConsole is used by display drivers.
	DetectOrderConsole DetectOrder = 0

	// DetectOrderLast is used by drivers that depend on all others.
	DetectOrderLast DetectOrder = 127
)

// DriverInfo describes a registered driver probe.
type DriverInfo struct {
	// Order specifies at which stage the HAL runs Probe.
	Order DetectOrder

	// Probe returns a driver if the hardware it handles is present.
	Probe ProbeFn
}

// DriverInfoList is a list of registered drivers that implements
// sort.Interface.
type DriverInfoList []*DriverInfo

// Len returns the length of the driver info list.
func (l DriverInfoList) Len() int { return len(l) }

// Swap exchanges 2 elements in the driver info list.
func (l DriverInfoList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less compares 2 elements of the driver info list.
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }

var registeredDrivers DriverInfoList

// RegisterDriver adds the supplied driver info entry to the list of
// registered drivers. Drivers call it from an init() block.
func RegisterDriver(info *DriverInfo) {
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the list of registered drivers.
func DriverList() DriverInfoList {
	return registeredDrivers
}
