// Package kmain contains the kernel entrypoint that the rt0 code jumps to.
package kmain

import (
	"kestrel/kernel"
	"kestrel/kernel/gdt"
	"kestrel/kernel/hal"
	"kestrel/kernel/hal/multiboot"
	"kestrel/kernel/kfmt"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	greeting = []byte("Hello World!")

	// Swapped by tests.
	gdtInitFn        = gdt.Init
	detectHardwareFn = hal.DetectHardware
	activeConsoleFn  = hal.ActiveConsole
	panicFn          = kfmt.Panic
)

// Kmain is the only Go symbol that is visible (exported) from the rt0
// initialization code. It is invoked by the rt0 assembly code once a minimal
// g0 and a 4K stack are in place and receives the address of the multiboot
// info payload provided by the bootloader.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr) {
	multiboot.SetInfoPtr(multibootInfoPtr)

	gdtInitFn()
	detectHardwareFn()

	if cons := activeConsoleFn(); cons != nil {
		cons.WriteText(greeting, uint32(len(greeting)))
	}

	kfmt.Printf("\nkestrel: boot complete (cmdline: \"%s\")\n", multiboot.CmdLine())

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kernel code as unreachable and eliminating it.
	panicFn(errKmainReturned)
}
