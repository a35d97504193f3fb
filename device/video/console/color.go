package console

// Color is an index into the 16-entry EGA text-mode palette.
type Color uint8

// The colors supported by the text console, in palette order.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGrey
	DarkGrey
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	LightBrown
	White
)

// ColorPair is a foreground/background color combination.
type ColorPair struct {
	Fg Color
	Bg Color
}

var (
	// DefaultColors is used by WriteText: white text on black background.
	DefaultColors = ColorPair{Fg: White, Bg: Black}

	// clearColors is used for the row exposed by Scroll.
	clearColors = ColorPair{Fg: Black, Bg: Black}
)

// attr returns the attribute byte for the pair. Each color is masked to 4
// bits so that an out-of-range value cannot spill into the other field.
func (c ColorPair) attr() uint16 {
	return uint16(c.Fg&0xf) | uint16(c.Bg&0xf)<<4
}

// EncodeCell packs a character and its colors into the 16-bit cell layout
// expected by the display adapter: the character in bits 0-7, the foreground
// in bits 8-11 and the background in bits 12-15.
func EncodeCell(ch byte, colors ColorPair) uint16 {
	return uint16(ch) | colors.attr()<<8
}

// DecodeCell is the inverse of EncodeCell.
func DecodeCell(cell uint16) (byte, ColorPair) {
	return byte(cell), ColorPair{
		Fg: Color(cell>>8) & 0xf,
		Bg: Color(cell >> 12),
	}
}
