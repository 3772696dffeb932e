// Package container describes the WebP flavour of the RIFF container: FourCC
// tags, header sizes, and the lightweight parsers used to sniff a source and
// probe a buffered file for its bitstream features without decoding pixels.
package container

import "encoding/binary"

// FourCC creates a FourCC value from four bytes (little-endian).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// FourCCFromString converts a 4-byte ASCII tag such as "XMP " into its FourCC
// value. ok is false when tag is not exactly four bytes long.
func FourCCFromString(tag string) (fourcc uint32, ok bool) {
	if len(tag) != TagSize {
		return 0, false
	}
	return FourCC(tag[0], tag[1], tag[2], tag[3]), true
}

// Container FourCC values.
var (
	FourCCRIFF = FourCC('R', 'I', 'F', 'F')
	FourCCWEBP = FourCC('W', 'E', 'B', 'P')
	FourCCVP8  = FourCC('V', 'P', '8', ' ')
	FourCCVP8L = FourCC('V', 'P', '8', 'L')
	FourCCVP8X = FourCC('V', 'P', '8', 'X')
	FourCCALPH = FourCC('A', 'L', 'P', 'H')
	FourCCANIM = FourCC('A', 'N', 'I', 'M')
	FourCCANMF = FourCC('A', 'N', 'M', 'F')
	FourCCICCP = FourCC('I', 'C', 'C', 'P')
	FourCCEXIF = FourCC('E', 'X', 'I', 'F')
	FourCCXMP  = FourCC('X', 'M', 'P', ' ')
)

// VP8 format constants.
const (
	VP8Signature       = 0x9d012a // Signature in VP8 data
	VP8FrameHeaderSize = 10       // Size of the frame header within VP8 data
)

// VP8L format constants.
const (
	VP8LMagicByte       = 0x2f // VP8L signature byte
	VP8LImageSizeBits   = 14   // Number of bits used to store width and height
	VP8LVersion         = 0    // version 0
	VP8LFrameHeaderSize = 5    // Size of the VP8L frame header
)

// Container structure sizes.
const (
	TagSize         = 4  // Size of a chunk tag (e.g. "VP8L")
	ChunkHeaderSize = 8  // Size of a chunk header
	RIFFHeaderSize  = 12 // Size of the RIFF header ("RIFFnnnnWEBP")
	ANMFChunkSize   = 16 // Size of an ANMF chunk
	ANIMChunkSize   = 6  // Size of an ANIM chunk
	VP8XChunkSize   = 10 // Size of a VP8X chunk
)

// Limits.
const (
	MaxCanvasSize   = 1 << 24         // 24-bit max for VP8X width/height
	MaxImageArea    = uint64(1) << 32 // 32-bit max for width x height
	MaxDimension    = 16383           // largest width or height a bitstream can carry
	MaxChunkPayload = ^uint32(0) - ChunkHeaderSize - 1
)

// ReadLE24 reads a 24-bit little-endian integer from 3 bytes.
func ReadLE24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

// PutLE24 writes v as a 24-bit little-endian integer into b[0:3].
func PutLE24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// ReadLE32 reads a little-endian uint32 from data.
func ReadLE32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// PutLE32 writes a little-endian uint32 to data.
func PutLE32(data []byte, v uint32) {
	binary.LittleEndian.PutUint32(data, v)
}
