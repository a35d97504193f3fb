package kmain

import (
	"bytes"
	"kestrel/device/video/console"
	"kestrel/kernel/gdt"
	"kestrel/kernel/hal"
	"kestrel/kernel/kfmt"
	"strings"
	"testing"
)

func TestKmain(t *testing.T) {
	defer func() {
		gdtInitFn = gdt.Init
		detectHardwareFn = hal.DetectHardware
		activeConsoleFn = hal.ActiveConsole
		panicFn = kfmt.Panic
		kfmt.SetOutputSink(nil)
	}()

	var (
		calls    []string
		panicked interface{}
		fb       = make([]uint16, console.Columns*console.Rows)
		cons     = console.NewBufferedVgaTextConsole(fb, nil)
		buf      bytes.Buffer
	)

	kfmt.SetOutputSink(&buf)
	gdtInitFn = func() { calls = append(calls, "gdt") }
	detectHardwareFn = func() { calls = append(calls, "hal") }
	activeConsoleFn = func() *console.VgaTextConsole { return cons }
	panicFn = func(e interface{}) { panicked = e }

	Kmain(0)

	if exp, got := "gdt,hal", strings.Join(calls, ","); got != exp {
		t.Fatalf("expected init sequence %q; got %q", exp, got)
	}

	for i, ch := range []byte("Hello World!") {
		if exp := console.EncodeCell(ch, console.DefaultColors); fb[i] != exp {
			t.Fatalf("expected cell %d to be 0x%x; got 0x%x", i, exp, fb[i])
		}
	}

	if col, row := cons.Cursor(); col != 12 || row != 0 {
		t.Fatalf("expected cursor at (12, 0); got (%d, %d)", col, row)
	}

	if !bytes.Contains(buf.Bytes(), []byte("boot complete")) {
		t.Fatalf("expected boot banner to be logged; got %q", buf.String())
	}

	if panicked != errKmainReturned {
		t.Fatalf("expected Kmain to end with errKmainReturned; got %v", panicked)
	}
}

func TestKmainWithoutConsole(t *testing.T) {
	defer func() {
		gdtInitFn = gdt.Init
		detectHardwareFn = hal.DetectHardware
		activeConsoleFn = hal.ActiveConsole
		panicFn = kfmt.Panic
		kfmt.SetOutputSink(nil)
	}()

	var (
		panicked interface{}
		buf      bytes.Buffer
	)

	kfmt.SetOutputSink(&buf)
	gdtInitFn = func() {}
	detectHardwareFn = func() {}
	activeConsoleFn = func() *console.VgaTextConsole { return nil }
	panicFn = func(e interface{}) { panicked = e }

	Kmain(0)

	if panicked != errKmainReturned {
		t.Fatalf("expected Kmain to end with errKmainReturned; got %v", panicked)
	}
}
