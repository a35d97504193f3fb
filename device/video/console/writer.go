package console

import (
	"io"
	"kestrel/kernel/sync"
)

// Writer adapts a VgaTextConsole to io.Writer so it can serve as the kfmt
// output sink.
//
// Unlike WriteText, Writer treats '\n' as a line break: the cursor moves to
// the first column of the next row, scrolling if needed. Every other byte,
// NUL included, is written as a glyph. Writes from different tasks are
// serialized so the grid, cursor and CRT controller ports change under a
// single lock.
type Writer struct {
	// Console receives the output.
	Console *VgaTextConsole

	// Colors is used for every glyph. The zero value selects DefaultColors.
	Colors ColorPair

	lock sync.Spinlock
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.Console == nil {
		return 0, io.ErrClosedPipe
	}

	w.lock.Acquire()
	for _, b := range p {
		w.put(b)
	}
	w.lock.Release()

	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	if w.Console == nil {
		return io.ErrClosedPipe
	}

	w.lock.Acquire()
	w.put(b)
	w.lock.Release()

	return nil
}

func (w *Writer) put(b byte) {
	if b == '\n' {
		w.Console.lineFeed()
		return
	}

	colors := w.Colors
	if colors == (ColorPair{}) {
		colors = DefaultColors
	}
	w.Console.PutChar(b, colors)
}
