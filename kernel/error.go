// Package kernel contains the types shared by every kernel package.
package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error values since the early boot code runs without a memory
// allocator and therefore cannot use errors.New.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
