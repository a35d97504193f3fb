package kernel

import "testing"

func TestKernelError(t *testing.T) {
	var err error = &Error{
		Module:  "vga",
		Message: "framebuffer not mapped",
	}

	if got := err.Error(); got != "framebuffer not mapped" {
		t.Fatalf("expected err.Error() to return %q; got %q", "framebuffer not mapped", got)
	}
}
