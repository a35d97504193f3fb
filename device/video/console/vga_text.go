// Package console drives the legacy 80x25 text-mode display adapter that the
// kernel uses for diagnostic output during early boot.
package console

import (
	"io"
	"kestrel/kernel"
	"kestrel/kernel/kfmt"
	"unsafe"
)

const (
	// Columns is the width of the text grid in characters.
	Columns = 80

	// Rows is the height of the text grid in characters.
	Rows = 25

	// FramebufferPhysAddr is the physical address of the text buffer.
	FramebufferPhysAddr uintptr = 0xb8000

	cellCount     = Columns * Rows
	lastRowOffset = (Rows - 1) * Columns

	// CRT controller ports and the cursor location registers.
	crtcCommandPort   uint16 = 0x3d4
	crtcDataPort      uint16 = 0x3d5
	cursorHighByteReg uint8  = 14
	cursorLowByteReg  uint8  = 15
)

// PortWriter sends a single byte to an I/O port. The write must be complete
// when the call returns.
type PortWriter func(port uint16, val uint8)

// VgaTextConsole owns the text grid and the cursor. The cursor always points
// at the cell that the next PutChar call writes to. Only PutChar (and the
// line breaks handled by Writer) move it.
//
// The console keeps no current color; each write is given its colors.
type VgaTextConsole struct {
	fbPhysAddr uintptr

	// fb is either nil (not yet mapped) or exactly cellCount cells.
	fb []uint16

	col, row uint32

	out PortWriter
}

// NewVgaTextConsole returns a console for the text buffer located at
// fbPhysAddr. The buffer is mapped by DriverInit; until then all writes to
// the grid are dropped.
func NewVgaTextConsole(fbPhysAddr uintptr) *VgaTextConsole {
	return &VgaTextConsole{
		fbPhysAddr: fbPhysAddr,
		out:        portWriteByteFn,
	}
}

// NewBufferedVgaTextConsole returns a ready-to-use console that renders into
// fb and programs the cursor through out. A buffer holding fewer than
// Columns*Rows cells is treated as unmapped; extra cells are ignored. A nil
// out discards cursor updates.
func NewBufferedVgaTextConsole(fb []uint16, out PortWriter) *VgaTextConsole {
	if out == nil {
		out = func(uint16, uint8) {}
	}

	cons := &VgaTextConsole{out: out}
	if len(fb) >= cellCount {
		cons.fb = fb[:cellCount]
	}

	return cons
}

// Cursor returns the position of the next write.
func (cons *VgaTextConsole) Cursor() (col, row uint32) {
	return cons.col, cons.row
}

// Cell returns the raw contents of the cell at pos, or 0 if pos is outside
// the grid.
func (cons *VgaTextConsole) Cell(pos uint32) uint16 {
	if pos >= uint32(len(cons.fb)) {
		return 0
	}

	return cons.fb[pos]
}

// WriteCellAt stores ch with the given colors at the linear position pos
// (col + row*Columns). Positions outside the grid are ignored. The cursor is
// not moved.
func (cons *VgaTextConsole) WriteCellAt(ch byte, colors ColorPair, pos uint32) {
	if pos >= uint32(len(cons.fb)) {
		return
	}

	cons.fb[pos] = EncodeCell(ch, colors)
}

// PutChar writes ch at the cursor and advances it. Reaching the end of a row
// wraps to the next one; wrapping past the last row scrolls the grid and
// leaves the cursor at the start of the cleared last row. The hardware
// cursor is synchronized afterwards.
func (cons *VgaTextConsole) PutChar(ch byte, colors ColorPair) {
	cons.WriteCellAt(ch, colors, cons.col+cons.row*Columns)

	cons.col++
	if cons.col == Columns {
		cons.col = 0
		cons.advanceRow()
	}

	cons.SyncCursor(cons.col, cons.row)
}

// lineFeed moves the cursor to the start of the next row using the same
// scroll rule as PutChar.
func (cons *VgaTextConsole) lineFeed() {
	cons.col = 0
	cons.advanceRow()
	cons.SyncCursor(cons.col, cons.row)
}

func (cons *VgaTextConsole) advanceRow() {
	cons.row++
	if cons.row == Rows {
		cons.Scroll()
		cons.row--
	}
}

// Scroll moves every row up by one, discarding the first row, and clears the
// last row to black-on-black spaces.
func (cons *VgaTextConsole) Scroll() {
	if len(cons.fb) != cellCount {
		return
	}

	// Rows must be copied top to bottom; each row is overwritten only after
	// it has been copied to the row above.
	for i := uint32(0); i < lastRowOffset; i++ {
		cons.fb[i] = cons.fb[i+Columns]
	}

	for i := uint32(lastRowOffset); i < cellCount; i++ {
		cons.WriteCellAt(' ', clearColors, i)
	}
}

// SyncCursor moves the blinking hardware cursor to (col, row). Out-of-range
// coordinates are ignored.
//
// The CRT controller exposes the cursor location as two 8-bit registers
// behind a single index/data port pair, so the high and low bytes are each
// sent as a select-register write followed by a value write. The four writes
// must not be interleaved with other accesses to the same ports.
func (cons *VgaTextConsole) SyncCursor(col, row uint32) {
	if col >= Columns || row >= Rows {
		return
	}

	pos := uint16(col + row*Columns)

	cons.out(crtcCommandPort, cursorHighByteReg)
	cons.out(crtcDataPort, uint8(pos>>8))
	cons.out(crtcCommandPort, cursorLowByteReg)
	cons.out(crtcDataPort, uint8(pos))
}

// WriteText writes text through PutChar using DefaultColors. It stops after
// maxLen bytes, at the end of text or at the first NUL byte, whichever comes
// first, and returns the number of characters written. All other bytes,
// including '\n', are written as glyphs.
func (cons *VgaTextConsole) WriteText(text []byte, maxLen uint32) int {
	var n int
	for ; uint32(n) < maxLen && n < len(text) && text[n] != 0; n++ {
		cons.PutChar(text[n], DefaultColors)
	}

	return n
}

// DriverName returns the name of this driver.
func (cons *VgaTextConsole) DriverName() string {
	return "vga_text_console"
}

// DriverVersion returns the version of this driver.
func (cons *VgaTextConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit maps the text buffer and moves the hardware cursor to the
// initial cursor position.
func (cons *VgaTextConsole) DriverInit(w io.Writer) *kernel.Error {
	if cons.fb == nil {
		cons.fb = unsafe.Slice((*uint16)(unsafe.Pointer(cons.fbPhysAddr)), cellCount)
		kfmt.Fprintf(w, "mapped %dx%d text buffer at 0x%x\n", Columns, Rows, cons.fbPhysAddr)
	}

	cons.SyncCursor(cons.col, cons.row)
	return nil
}
