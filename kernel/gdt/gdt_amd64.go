package gdt

// lgdt loads the table described by the Pointer at ptr.
func lgdt(ptr uintptr)

// reloadSegments loads dataSel into DS, ES and SS and codeSel into CS. FS
// and GS keep their selectors and bases.
func reloadSegments(codeSel, dataSel uint16)

// reloadSegmentsDone is the far return target used by reloadSegments.
func reloadSegmentsDone()
