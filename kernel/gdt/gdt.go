// Package gdt builds and loads the global descriptor table.
package gdt

import "unsafe"

// Access is the access byte of a segment descriptor.
type Access uint8

// Access byte bits.
const (
	AccessPresent             Access = 0x80
	AccessRing0               Access = 0x00
	AccessRing1               Access = 0x20
	AccessRing2               Access = 0x40
	AccessRing3               Access = 0x60
	AccessSegment             Access = 0x10 // code or data, as opposed to system
	AccessExecutable          Access = 0x08
	AccessDirectionConforming Access = 0x04
	AccessReadWrite           Access = 0x02
	AccessAccessed            Access = 0x01

	AccessKernelCode = AccessPresent | AccessRing0 | AccessSegment | AccessExecutable | AccessReadWrite | AccessAccessed
	AccessKernelData = AccessPresent | AccessRing0 | AccessSegment | AccessReadWrite | AccessAccessed
)

// Flags is the 4-bit flags nibble of a segment descriptor.
type Flags uint8

// Descriptor flag bits.
const (
	FlagGranularity4K Flags = 0x8
	FlagSize32        Flags = 0x4
	FlagLongMode      Flags = 0x2
)

// Selectors for the entries of the kernel table.
const (
	KernelCodeSelector uint16 = 0x08
	KernelDataSelector uint16 = 0x10
)

const maxLimit = 0xfffff

// Entry is a segment descriptor laid out as the processor expects it.
type Entry struct {
	LimitLow       uint16
	BaseLow        uint16
	BaseMiddle     uint8
	Access         Access
	FlagsLimitHigh uint8
	BaseHigh       uint8
}

// NewEntry packs a segment descriptor. Only the low 20 bits of limit are
// used.
func NewEntry(base, limit uint32, access Access, flags Flags) Entry {
	limit &= maxLimit

	return Entry{
		LimitLow:       uint16(limit),
		BaseLow:        uint16(base),
		BaseMiddle:     uint8(base >> 16),
		Access:         access,
		FlagsLimitHigh: uint8(flags&0xf)<<4 | uint8(limit>>16)&0xf,
		BaseHigh:       uint8(base >> 24),
	}
}

// Base returns the segment base address.
func (e Entry) Base() uint32 {
	return uint32(e.BaseLow) | uint32(e.BaseMiddle)<<16 | uint32(e.BaseHigh)<<24
}

// Limit returns the 20-bit segment limit.
func (e Entry) Limit() uint32 {
	return uint32(e.LimitLow) | uint32(e.FlagsLimitHigh&0xf)<<16
}

// Flags returns the descriptor flags.
func (e Entry) Flags() Flags {
	return Flags(e.FlagsLimitHigh >> 4)
}

// Table is the kernel descriptor table: the mandatory null descriptor, a
// flat kernel code segment and a flat kernel data segment.
type Table [3]Entry

// Pointer is the 10-byte operand of the LGDT instruction: a 16-bit limit
// followed by the 64-bit table address.
type Pointer [10]byte

var (
	// lgdtFn and reloadSegmentsFn are swapped by tests.
	lgdtFn           = lgdt
	reloadSegmentsFn = reloadSegments

	table Table
	gdtr  Pointer
)

// NewPointer returns the LGDT operand for t.
func NewPointer(t *Table) Pointer {
	var (
		p     Pointer
		limit = uint16(unsafe.Sizeof(*t)) - 1
		base  = uint64(uintptr(unsafe.Pointer(t)))
	)

	p[0], p[1] = byte(limit), byte(limit>>8)
	for i := 0; i < 8; i++ {
		p[2+i] = byte(base >> (8 * i))
	}

	return p
}

// Init populates the kernel table, loads it and reloads the segment
// registers. The code segment is a 64-bit segment since the kernel runs in
// long mode; the data segment keeps the 32-bit size flag.
func Init() {
	table[0] = Entry{}
	table[1] = NewEntry(0, maxLimit, AccessKernelCode, FlagGranularity4K|FlagLongMode)
	table[2] = NewEntry(0, maxLimit, AccessKernelData, FlagGranularity4K|FlagSize32)

	gdtr = NewPointer(&table)
	lgdtFn(uintptr(unsafe.Pointer(&gdtr)))
	reloadSegmentsFn(KernelCodeSelector, KernelDataSelector)
}
