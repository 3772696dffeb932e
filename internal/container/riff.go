package container

import (
	"encoding/binary"
	"errors"
)

// VP8X feature flags (from the first byte of VP8X chunk payload).
const (
	AnimationFlag uint32 = 0x00000002
	XMPFlag       uint32 = 0x00000004
	EXIFFlag      uint32 = 0x00000008
	AlphaFlag     uint32 = 0x00000010
	ICCPFlag      uint32 = 0x00000020
	AllValidFlags uint32 = 0x0000003e
)

// Common errors.
var (
	ErrInvalidRIFF  = errors.New("webp: invalid RIFF header")
	ErrInvalidWebP  = errors.New("webp: invalid WEBP signature")
	ErrTruncated    = errors.New("webp: truncated data")
	ErrInvalidChunk = errors.New("webp: invalid chunk")
	ErrTooLarge     = errors.New("webp: file too large")
	ErrInvalidVP8X  = errors.New("webp: invalid VP8X chunk")
	ErrInvalidFlags = errors.New("webp: invalid feature flags")
	ErrUnsupported  = errors.New("webp: unsupported format")
	ErrInvalidImage = errors.New("webp: invalid image dimensions")
)

// FormatType identifies the container shape and the bitstream inside it.
type FormatType int

const (
	FormatUndefined FormatType = iota
	FormatVP8                  // simple, lossy
	FormatVP8L                 // simple, lossless
	FormatVP8X                 // extended
)

// String returns a human-readable format name.
func (f FormatType) String() string {
	switch f {
	case FormatVP8:
		return "VP8"
	case FormatVP8L:
		return "VP8L"
	case FormatVP8X:
		return "VP8X"
	default:
		return "undefined"
	}
}

// RIFFHeader holds the parsed RIFF container header.
type RIFFHeader struct {
	FileSize uint32 // total RIFF file size (excluding 8-byte RIFF header)
}

// ParseRIFFHeader validates and parses the 12-byte RIFF/WEBP header from data.
// Returns the header and the number of bytes consumed.
func ParseRIFFHeader(data []byte) (RIFFHeader, int, error) {
	if len(data) < RIFFHeaderSize {
		return RIFFHeader{}, 0, ErrTruncated
	}

	riffTag := binary.LittleEndian.Uint32(data[0:4])
	if riffTag != FourCCRIFF {
		return RIFFHeader{}, 0, ErrInvalidRIFF
	}

	fileSize := binary.LittleEndian.Uint32(data[4:8])
	if fileSize < ChunkHeaderSize {
		return RIFFHeader{}, 0, ErrInvalidRIFF
	}
	if fileSize > MaxChunkPayload {
		return RIFFHeader{}, 0, ErrTooLarge
	}

	webpTag := binary.LittleEndian.Uint32(data[8:12])
	if webpTag != FourCCWEBP {
		return RIFFHeader{}, 0, ErrInvalidWebP
	}

	return RIFFHeader{FileSize: fileSize}, RIFFHeaderSize, nil
}

// ReadChunkHeader reads a chunk's FourCC tag and payload size from data.
func ReadChunkHeader(data []byte) (fourcc uint32, payloadSize uint32, err error) {
	if len(data) < ChunkHeaderSize {
		return 0, 0, ErrTruncated
	}
	fourcc = binary.LittleEndian.Uint32(data[0:4])
	payloadSize = binary.LittleEndian.Uint32(data[4:8])
	if payloadSize > MaxChunkPayload {
		return 0, 0, ErrTooLarge
	}
	return fourcc, payloadSize, nil
}

// PaddedSize returns the payload size padded to an even number of bytes,
// as required by the RIFF format.
func PaddedSize(size uint32) uint32 {
	return size + (size & 1)
}

// FourCCString returns a human-readable string for a FourCC value.
func FourCCString(fourcc uint32) string {
	b := [4]byte{
		byte(fourcc),
		byte(fourcc >> 8),
		byte(fourcc >> 16),
		byte(fourcc >> 24),
	}
	return string(b[:])
}
