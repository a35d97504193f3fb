package main

import "testing"

func TestCRTCLatchesCursorRegisters(t *testing.T) {
	specs := []struct {
		writes [][2]uint16
		expCol int
		expRow int
	}{
		{
			writes: [][2]uint16{{0x3d4, 14}, {0x3d5, 0x07}, {0x3d4, 15}, {0x3d5, 0xcf}},
			expCol: 79, expRow: 24,
		},
		{
			writes: [][2]uint16{{0x3d4, 15}, {0x3d5, 81}},
			expCol: 1, expRow: 1,
		},
		{
			// unknown registers and ports are ignored
			writes: [][2]uint16{{0x3d4, 0x0a}, {0x3d5, 0xff}, {0x3d0, 0xff}, {0x3d4, 15}, {0x3d5, 2}},
			expCol: 2, expRow: 0,
		},
	}

	for specIndex, spec := range specs {
		var c crtc
		for _, w := range spec.writes {
			c.write(w[0], uint8(w[1]))
		}

		if col, row := c.cursor(); col != spec.expCol || row != spec.expRow {
			t.Errorf("[spec %d] expected cursor at (%d, %d); got (%d, %d)", specIndex, spec.expCol, spec.expRow, col, row)
		}

		if c.writes != len(spec.writes) {
			t.Errorf("[spec %d] expected %d port writes to be counted; got %d", specIndex, len(spec.writes), c.writes)
		}
	}
}
