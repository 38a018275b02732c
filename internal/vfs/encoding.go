package vfs

import "bytes"

// binarySniffLen bounds how much of a file is inspected for binary content.
const binarySniffLen = 8192

// IsBinary reports whether content looks like binary data rather than text.
// A NUL byte within the sniff window is treated as conclusive, matching the
// heuristic used by git and most editors.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}
