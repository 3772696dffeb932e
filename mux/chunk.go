// Package mux reads and writes the chunks of a still WebP RIFF container.
//
// The demuxer indexes the chunks of a buffered file so metadata (ICCP, EXIF,
// XMP) can be pulled out without decoding the image. The muxer wraps an
// encoded image and metadata chunks into a Simple or Extended format file.
package mux

import (
	"encoding/binary"

	"github.com/deepteams/webpbridge/internal/container"
)

// ChunkID is a FourCC identifier for a WebP chunk.
type ChunkID = uint32

// Chunk FourCC identifiers re-exported from the container package.
var (
	FourCCRIFF = container.FourCCRIFF
	FourCCWEBP = container.FourCCWEBP
	FourCCVP8  = container.FourCCVP8
	FourCCVP8L = container.FourCCVP8L
	FourCCVP8X = container.FourCCVP8X
	FourCCALPH = container.FourCCALPH
	FourCCANIM = container.FourCCANIM
	FourCCANMF = container.FourCCANMF
	FourCCICCP = container.FourCCICCP
	FourCCEXIF = container.FourCCEXIF
	FourCCXMP  = container.FourCCXMP
)

// Metadata chunk tags as they appear in the file. The XMP tag ends in a space.
const (
	TagICCP = "ICCP"
	TagEXIF = "EXIF"
	TagXMP  = "XMP "
)

// Format flags reported by (*Demuxer).Flags.
const (
	FlagAnimation = container.AnimationFlag
	FlagXMP       = container.XMPFlag
	FlagEXIF      = container.EXIFFlag
	FlagAlpha     = container.AlphaFlag
	FlagICCP      = container.ICCPFlag
)

// Chunk is a single chunk of a WebP container. Data is the payload without
// the padding byte.
type Chunk struct {
	ID   ChunkID
	Data []byte
}

// Tag returns the chunk's 4-byte tag, e.g. "XMP ".
func (c Chunk) Tag() string { return container.FourCCString(c.ID) }

// isImageChunk reports whether id belongs to the image itself rather than to
// its metadata.
func isImageChunk(id ChunkID) bool {
	switch id {
	case FourCCVP8, FourCCVP8L, FourCCVP8X, FourCCALPH, FourCCANIM, FourCCANMF:
		return true
	}
	return false
}

// writeChunkHeader writes a chunk header (FourCC + size) into buf.
func writeChunkHeader(buf []byte, id ChunkID, size uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], id)
	binary.LittleEndian.PutUint32(buf[4:8], size)
}

// chunkTotalSize returns header + payload + optional padding byte.
func chunkTotalSize(payloadSize int) int {
	return container.ChunkHeaderSize + int(container.PaddedSize(uint32(payloadSize)))
}

// appendChunk appends a chunk header, data and the padding byte if needed.
func appendChunk(dst []byte, id ChunkID, data []byte) []byte {
	var hdr [container.ChunkHeaderSize]byte
	writeChunkHeader(hdr[:], id, uint32(len(data)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, data...)
	if len(data)%2 != 0 {
		dst = append(dst, 0)
	}
	return dst
}
