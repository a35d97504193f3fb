package main

import "kestrel/device/video/console"

const (
	crtcIndexPort uint16 = 0x3d4
	crtcDataPort  uint16 = 0x3d5

	regCursorHigh uint8 = 0x0e
	regCursorLow  uint8 = 0x0f
)

// crtc emulates the index/data register pair of the CRT controller. Only the
// cursor location registers are latched; writes to any other register or
// port are ignored.
type crtc struct {
	index uint8
	high  uint8
	low   uint8

	// writes counts every port write, including ignored ones.
	writes int
}

// write has the signature of console.PortWriter.
func (c *crtc) write(port uint16, val uint8) {
	c.writes++

	switch port {
	case crtcIndexPort:
		c.index = val
	case crtcDataPort:
		switch c.index {
		case regCursorHigh:
			c.high = val
		case regCursorLow:
			c.low = val
		}
	}
}

// cursorPos returns the latched cursor location as a linear cell index.
func (c *crtc) cursorPos() uint16 {
	return uint16(c.high)<<8 | uint16(c.low)
}

// cursor returns the latched cursor location as grid coordinates.
func (c *crtc) cursor() (col, row int) {
	pos := int(c.cursorPos())
	return pos % console.Columns, pos / console.Columns
}
