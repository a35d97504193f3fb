// Package kfmt implements the kernel's formatted output. It works before the
// Go allocator is available and is the only logging facility the early kernel
// has.
package kfmt

import (
	"io"
	"unsafe"
)

// numBufSize is the size of the scratch buffer used to render integers. It
// fits a 64-bit value in base 8 plus sign and padding.
const numBufSize = 32

var (
	markerMissingArg = []byte("(MISSING)")
	markerWrongType  = []byte("%!(WRONGTYPE)")
	markerNoVerb     = []byte("%!(NOVERB)")
	markerExtraArg   = []byte("%!(EXTRA)")
	trueValue        = []byte("true")
	falseValue       = []byte("false")
	digits           = []byte("0123456789abcdef")

	numBuf  [numBufSize]byte
	oneByte [1]byte

	// earlyBuf captures output produced before SetOutputSink is called.
	earlyBuf ringBuffer

	// outputSink receives Printf output. A nil sink redirects output to
	// earlyBuf.
	outputSink io.Writer
)

// SetOutputSink makes w the target of Printf and replays into w any output
// that was buffered while no sink was set.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyBuf)
	}
}

// activeSink forwards writes to the current Printf target.
type activeSink struct{}

func (activeSink) Write(p []byte) (int, error) {
	doWrite(outputSink, p)
	return len(p), nil
}

// ActiveSink returns a writer that always writes wherever Printf currently
// writes, including the early ring buffer. It is meant for wrappers such as
// PrefixWriter that outlive a call to SetOutputSink.
func ActiveSink() io.Writer {
	return activeSink{}
}

// Printf writes a formatted message to the active output sink. It supports
// a subset of the fmt verbs:
//
//	%s  string or []byte
//	%c  a single byte
//	%d  base 10 integer, space padded
//	%o  base 8 integer, zero padded
//	%x  base 16 integer (lower-case), zero padded
//	%t  bool
//	%%  a literal percent sign
//
// An optional decimal width may precede the verb. Strings shorter than the
// width are left-padded with spaces.
//
// Arguments are never checked for io.Stringer or error; values of other types
// print %!(WRONGTYPE).
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes its output to w.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		width    int
		inVerb   bool
	)

	for i := 0; i < len(format); i++ {
		ch := format[i]

		if !inVerb {
			if ch == '%' {
				inVerb, width = true, 0
				continue
			}
			writeByte(w, ch)
			continue
		}

		switch {
		case ch >= '0' && ch <= '9':
			width = width*10 + int(ch-'0')
			continue
		case ch == '%':
			writeByte(w, '%')
		case isVerb(ch):
			if argIndex >= len(args) {
				doWrite(w, markerMissingArg)
				break
			}
			fmtArg(w, ch, args[argIndex], width)
			argIndex++
		default:
			doWrite(w, markerNoVerb)
			writeByte(w, ch)
		}
		inVerb = false
	}

	if inVerb {
		doWrite(w, markerNoVerb)
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, markerExtraArg)
	}
}

func isVerb(ch byte) bool {
	switch ch {
	case 's', 'c', 'd', 'o', 'x', 't':
		return true
	}
	return false
}

func fmtArg(w io.Writer, verb byte, arg interface{}, width int) {
	switch verb {
	case 's':
		fmtString(w, arg, width)
	case 'c':
		fmtChar(w, arg)
	case 't':
		fmtBool(w, arg)
	case 'd':
		fmtInt(w, arg, 10, width)
	case 'o':
		fmtInt(w, arg, 8, width)
	case 'x':
		fmtInt(w, arg, 16, width)
	}
}

func fmtBool(w io.Writer, arg interface{}) {
	v, ok := arg.(bool)
	switch {
	case !ok:
		doWrite(w, markerWrongType)
	case v:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtChar(w io.Writer, arg interface{}) {
	switch v := arg.(type) {
	case byte:
		writeByte(w, v)
	case rune:
		writeByte(w, byte(v))
	default:
		doWrite(w, markerWrongType)
	}
}

func fmtString(w io.Writer, arg interface{}, width int) {
	switch v := arg.(type) {
	case string:
		pad(w, ' ', width-len(v))
		// Slicing the string into a []byte would allocate.
		for i := 0; i < len(v); i++ {
			writeByte(w, v[i])
		}
	case []byte:
		pad(w, ' ', width-len(v))
		doWrite(w, v)
	default:
		doWrite(w, markerWrongType)
	}
}

func pad(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt renders an integer argument in the requested base. Decimal output is
// padded with spaces, octal and hex output with zeroes.
func fmtInt(w io.Writer, arg interface{}, base uint64, width int) {
	var (
		val uint64
		neg bool
	)

	switch v := arg.(type) {
	case uint8:
		val = uint64(v)
	case uint16:
		val = uint64(v)
	case uint32:
		val = uint64(v)
	case uint64:
		val = v
	case uint:
		val = uint64(v)
	case uintptr:
		val = uint64(v)
	case int8:
		val, neg = abs(int64(v))
	case int16:
		val, neg = abs(int64(v))
	case int32:
		val, neg = abs(int64(v))
	case int64:
		val, neg = abs(v)
	case int:
		val, neg = abs(int64(v))
	default:
		doWrite(w, markerWrongType)
		return
	}

	if width > numBufSize {
		width = numBufSize
	}

	// Digits are rendered right-to-left from the end of numBuf.
	start := numBufSize
	for {
		start--
		numBuf[start] = digits[val%base]
		val /= base
		if val == 0 {
			break
		}
	}

	if neg {
		if base == 10 {
			start--
			numBuf[start] = '-'
		} else {
			// Zero padding goes between the sign and the digits.
			for numBufSize-start < width-1 && start > 1 {
				start--
				numBuf[start] = '0'
			}
			start--
			numBuf[start] = '-'
		}
	}

	padCh := byte('0')
	if base == 10 {
		padCh = ' '
	}
	for numBufSize-start < width && start > 0 {
		start--
		numBuf[start] = padCh
	}

	doWrite(w, numBuf[start:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, b byte) {
	oneByte[0] = b
	doWrite(w, oneByte[:])
}

// doWrite hides p from escape analysis. The sink is an interface so the
// compiler would otherwise assume that p escapes and heap-allocate the
// argument slices of every Printf call.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
		return
	}
	earlyBuf.Write(p)
}

// noEscape hides a pointer from escape analysis (see runtime/stubs.go).
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
