package container

import "encoding/binary"

// SniffLen is the number of leading bytes Sniff inspects.
const SniffLen = RIFFHeaderSize

// Sniff reports whether header begins with "RIFF" at offset 0 and "WEBP" at
// offset 8. The RIFF size field is not examined, so a truncated file still
// sniffs as WebP and fails later, at probe time.
func Sniff(header []byte) bool {
	if len(header) < SniffLen {
		return false
	}
	return binary.LittleEndian.Uint32(header[0:4]) == FourCCRIFF &&
		binary.LittleEndian.Uint32(header[8:12]) == FourCCWEBP
}
