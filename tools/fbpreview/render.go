package main

import (
	"fmt"
	"io"
	"kestrel/device/video/console"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/encoding/charmap"
)

// egaPalette maps the 16 text-mode colors to the RGB values shown by EGA and
// VGA adapters.
var egaPalette = [16]tcell.Color{
	console.Black:        tcell.NewRGBColor(0x00, 0x00, 0x00),
	console.Blue:         tcell.NewRGBColor(0x00, 0x00, 0xaa),
	console.Green:        tcell.NewRGBColor(0x00, 0xaa, 0x00),
	console.Cyan:         tcell.NewRGBColor(0x00, 0xaa, 0xaa),
	console.Red:          tcell.NewRGBColor(0xaa, 0x00, 0x00),
	console.Magenta:      tcell.NewRGBColor(0xaa, 0x00, 0xaa),
	console.Brown:        tcell.NewRGBColor(0xaa, 0x55, 0x00),
	console.LightGrey:    tcell.NewRGBColor(0xaa, 0xaa, 0xaa),
	console.DarkGrey:     tcell.NewRGBColor(0x55, 0x55, 0x55),
	console.LightBlue:    tcell.NewRGBColor(0x55, 0x55, 0xff),
	console.LightGreen:   tcell.NewRGBColor(0x55, 0xff, 0x55),
	console.LightCyan:    tcell.NewRGBColor(0x55, 0xff, 0xff),
	console.LightRed:     tcell.NewRGBColor(0xff, 0x55, 0x55),
	console.LightMagenta: tcell.NewRGBColor(0xff, 0x55, 0xff),
	console.LightBrown:   tcell.NewRGBColor(0xff, 0xff, 0x55),
	console.White:        tcell.NewRGBColor(0xff, 0xff, 0xff),
}

// controlGlyphs holds the symbols the adapter's ROM font draws for the
// bytes that code page 437 decodes to control characters.
var controlGlyphs = [32]rune{
	' ', '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

// glyph returns the character that the display adapter draws for ch.
func glyph(ch byte) rune {
	switch {
	case ch < 0x20:
		return controlGlyphs[ch]
	case ch == 0x7f:
		return '⌂'
	}
	return charmap.CodePage437.DecodeByte(ch)
}

// render paints the console grid onto screen at its top-left corner and
// places the terminal cursor on the hardware cursor location latched by c.
func render(screen tcell.Screen, cons *console.VgaTextConsole, c *crtc) {
	screen.Clear()

	for row := 0; row < console.Rows; row++ {
		for col := 0; col < console.Columns; col++ {
			ch, colors := console.DecodeCell(cons.Cell(uint32(row*console.Columns + col)))
			style := tcell.StyleDefault.
				Foreground(egaPalette[colors.Fg]).
				Background(egaPalette[colors.Bg])
			screen.SetContent(col, row, glyph(ch), nil, style)
		}
	}

	screen.ShowCursor(c.cursor())
	screen.Show()
}

// dump writes the console grid as Rows lines of Columns characters followed
// by the hardware cursor position. Bytes outside the printable ASCII range
// are shown as '.'.
func dump(w io.Writer, cons *console.VgaTextConsole, c *crtc) error {
	var line [console.Columns + 1]byte
	line[console.Columns] = '\n'

	for row := 0; row < console.Rows; row++ {
		for col := 0; col < console.Columns; col++ {
			ch, _ := console.DecodeCell(cons.Cell(uint32(row*console.Columns + col)))
			if ch < 0x20 || ch > 0x7e {
				ch = '.'
			}
			line[col] = ch
		}

		if _, err := w.Write(line[:]); err != nil {
			return err
		}
	}

	col, row := c.cursor()
	_, err := fmt.Fprintf(w, "cursor: %d,%d\n", col, row)
	return err
}

// waitForKey blocks until a key is pressed or the screen is finalized.
func waitForKey(screen tcell.Screen) {
	for {
		switch screen.PollEvent().(type) {
		case nil, *tcell.EventKey:
			return
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}
