// Package multiboot reads the boot information that a multiboot2-compliant
// loader passes to the kernel.
package multiboot

import "unsafe"

type tagType uint32

const (
	tagMbSectionEnd tagType = iota
	tagBootCmdLine
	tagBootLoaderName
)

// info describes the multiboot info section header.
type info struct {
	// Total size of multiboot info section including the header.
	totalSize uint32

	// Always set to zero; reserved for future use
	reserved uint32
}

// tagHeader precedes each tag in the info section. size includes the header.
type tagHeader struct {
	tagType tagType
	size    uint32
}

var (
	infoData uintptr
)

// SetInfoPtr records the address of the multiboot info section. The loader
// passes this address to the kernel entrypoint.
func SetInfoPtr(ptr uintptr) {
	infoData = ptr
}

// CmdLine returns the kernel command line or an empty string if the loader
// did not supply one. The returned string aliases the info section.
func CmdLine() string {
	ptr, size := findTagByType(tagBootCmdLine)
	if ptr == 0 {
		return ""
	}

	var n uint32
	for ; n < size && *(*byte)(unsafe.Pointer(ptr + uintptr(n))) != 0; n++ {
	}

	return unsafe.String((*byte)(unsafe.Pointer(ptr)), n)
}

// CmdLineValue looks up key in the space-separated list of key=value tokens
// on the kernel command line. A token without '=' has an empty value.
func CmdLineValue(key string) (string, bool) {
	cmdLine := CmdLine()

	for start := 0; start < len(cmdLine); {
		end := start
		for end < len(cmdLine) && cmdLine[end] != ' ' {
			end++
		}

		token := cmdLine[start:end]
		start = end + 1

		if len(token) < len(key) || token[:len(key)] != key {
			continue
		}

		switch {
		case len(token) == len(key):
			return "", true
		case token[len(key)] == '=':
			return token[len(key)+1:], true
		}
	}

	return "", false
}

// findTagByType scans the info section for a tag of the requested type and
// returns the address and size of its payload, or (0, 0) if no such tag
// exists.
func findTagByType(tagType tagType) (uintptr, uint32) {
	if infoData == 0 {
		return 0, 0
	}

	var (
		hdr    = (*info)(unsafe.Pointer(infoData))
		end    = infoData + uintptr(hdr.totalSize)
		curPtr = infoData + unsafe.Sizeof(info{})
	)

	for curPtr+unsafe.Sizeof(tagHeader{}) <= end {
		tag := (*tagHeader)(unsafe.Pointer(curPtr))
		if tag.tagType == tagMbSectionEnd || tag.size < uint32(unsafe.Sizeof(tagHeader{})) {
			break
		}

		if tag.tagType == tagType {
			return curPtr + unsafe.Sizeof(tagHeader{}), tag.size - uint32(unsafe.Sizeof(tagHeader{}))
		}

		// Tags are 8-byte aligned.
		curPtr += uintptr((tag.size + 7) &^ 7)
	}

	return 0, 0
}
