package mux

import (
	"encoding/binary"
	"fmt"

	"github.com/deepteams/webpbridge/internal/container"
)

// Muxer assembles a still WebP file from an encoded image and metadata
// chunks.
type Muxer struct {
	// Image.
	bitstream []byte
	bitID     ChunkID // FourCCVP8 or FourCCVP8L
	alpha     []byte  // ALPH payload, VP8 only
	width     int
	height    int
	hasAlpha  bool

	iccData  []byte
	exifData []byte
	xmpData  []byte
	unknown  []Chunk

	deleted bool
}

// New creates an empty Muxer.
func New() *Muxer {
	return &Muxer{}
}

// SetImage sets the image from either a complete still WebP file or a raw
// VP8/VP8L bitstream. data is copied. Metadata chunks inside a WebP file are
// not taken over; set them with SetChunk.
func (m *Muxer) SetImage(data []byte) error {
	const op = "SetImage"
	if m == nil || m.deleted || len(data) == 0 {
		return newError(op, CodeInvalidArgument, nil)
	}

	if len(data) >= container.RIFFHeaderSize && binary.LittleEndian.Uint32(data) == FourCCRIFF {
		d, err := NewDemuxer(data)
		if err != nil {
			e := err.(*Error)
			e.Op = op
			return e
		}
		if d.Flags()&FlagAnimation != 0 {
			return newError(op, CodeInvalidArgument, fmt.Errorf("animated files are not supported"))
		}
		var alpha, bits []byte
		var id ChunkID
		for _, c := range d.Chunks() {
			switch c.ID {
			case FourCCALPH:
				if alpha == nil {
					alpha = c.Data
				}
			case FourCCVP8, FourCCVP8L:
				if bits == nil {
					bits, id = c.Data, c.ID
				}
			}
		}
		if id == FourCCVP8L {
			alpha = nil
		}
		return m.setBitstream(op, id, bits, alpha)
	}

	id := detectBitstreamType(data)
	if id == 0 {
		return newError(op, CodeBadData, fmt.Errorf("not a WebP file or VP8/VP8L bitstream"))
	}
	return m.setBitstream(op, id, data, nil)
}

func (m *Muxer) setBitstream(op string, id ChunkID, bits, alpha []byte) error {
	var (
		w, h     int
		hasAlpha bool
		err      error
	)
	switch id {
	case FourCCVP8:
		w, h, err = container.ParseVP8Header(bits)
		hasAlpha = len(alpha) > 0
	case FourCCVP8L:
		w, h, hasAlpha, err = container.ParseVP8LHeader(bits)
	default:
		err = container.ErrInvalidChunk
	}
	if err != nil {
		return newError(op, CodeBadData, err)
	}
	m.bitID = id
	m.bitstream = append([]byte(nil), bits...)
	m.alpha = nil
	if len(alpha) > 0 {
		m.alpha = append([]byte(nil), alpha...)
	}
	m.width, m.height, m.hasAlpha = w, h, hasAlpha
	return nil
}

// detectBitstreamType identifies a raw bitstream, returning 0 when it is
// neither VP8 nor VP8L.
func detectBitstreamType(data []byte) ChunkID {
	if _, _, _, err := container.ParseVP8LHeader(data); err == nil {
		return FourCCVP8L
	}
	if _, _, err := container.ParseVP8Header(data); err == nil {
		return FourCCVP8
	}
	return 0
}

// SetChunk stores a metadata chunk under tag. ICCP, EXIF and "XMP " replace
// any earlier chunk with that tag; other tags are kept in order and written
// after the image. Image and animation tags are rejected.
func (m *Muxer) SetChunk(tag string, data []byte) error {
	const op = "SetChunk"
	if m == nil || m.deleted || data == nil {
		return newError(op, CodeInvalidArgument, nil)
	}
	id, ok := container.FourCCFromString(tag)
	if !ok || isImageChunk(id) {
		return newError(op, CodeInvalidArgument, fmt.Errorf("tag %q", tag))
	}
	data = append([]byte{}, data...)
	switch id {
	case FourCCICCP:
		m.iccData = data
	case FourCCEXIF:
		m.exifData = data
	case FourCCXMP:
		m.xmpData = data
	default:
		m.unknown = append(m.unknown, Chunk{ID: id, Data: data})
	}
	return nil
}

// DeleteChunk removes every chunk stored under tag. It fails with
// CodeNotFound when there is none.
func (m *Muxer) DeleteChunk(tag string) error {
	const op = "DeleteChunk"
	if m == nil || m.deleted {
		return newError(op, CodeInvalidArgument, nil)
	}
	id, ok := container.FourCCFromString(tag)
	if !ok || isImageChunk(id) {
		return newError(op, CodeInvalidArgument, fmt.Errorf("tag %q", tag))
	}
	found := false
	switch id {
	case FourCCICCP:
		found, m.iccData = m.iccData != nil, nil
	case FourCCEXIF:
		found, m.exifData = m.exifData != nil, nil
	case FourCCXMP:
		found, m.xmpData = m.xmpData != nil, nil
	default:
		kept := m.unknown[:0]
		for _, c := range m.unknown {
			if c.ID == id {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		m.unknown = kept
	}
	if !found {
		return newError(op, CodeNotFound, nil)
	}
	return nil
}

// needsVP8X reports whether the file requires the extended format header.
func (m *Muxer) needsVP8X() bool {
	return m.iccData != nil || m.exifData != nil || m.xmpData != nil ||
		len(m.unknown) > 0 || m.alpha != nil
}

// Assemble returns the complete WebP file. The output is a Simple format
// file when the image carries no metadata and no separate alpha chunk.
func (m *Muxer) Assemble() ([]byte, error) {
	const op = "Assemble"
	if m == nil || m.deleted || m.bitstream == nil {
		return nil, newError(op, CodeInvalidArgument, fmt.Errorf("no image set"))
	}
	if !m.needsVP8X() {
		return m.assembleSimple(), nil
	}
	return m.assembleExtended(), nil
}

func (m *Muxer) assembleSimple() []byte {
	riffPayload := container.TagSize + chunkTotalSize(len(m.bitstream))
	out := make([]byte, container.RIFFHeaderSize, container.ChunkHeaderSize+riffPayload)
	writeRIFFHeader(out, riffPayload)
	return appendChunk(out, m.bitID, m.bitstream)
}

// assembleExtended writes VP8X, ICCP, the image, unknown chunks, EXIF and XMP
// in that order.
func (m *Muxer) assembleExtended() []byte {
	var flags uint32
	if m.iccData != nil {
		flags |= FlagICCP
	}
	if m.exifData != nil {
		flags |= FlagEXIF
	}
	if m.xmpData != nil {
		flags |= FlagXMP
	}
	if m.hasAlpha {
		flags |= FlagAlpha
	}

	riffPayload := container.TagSize + chunkTotalSize(container.VP8XChunkSize)
	if m.iccData != nil {
		riffPayload += chunkTotalSize(len(m.iccData))
	}
	if m.alpha != nil {
		riffPayload += chunkTotalSize(len(m.alpha))
	}
	riffPayload += chunkTotalSize(len(m.bitstream))
	for _, c := range m.unknown {
		riffPayload += chunkTotalSize(len(c.Data))
	}
	if m.exifData != nil {
		riffPayload += chunkTotalSize(len(m.exifData))
	}
	if m.xmpData != nil {
		riffPayload += chunkTotalSize(len(m.xmpData))
	}

	out := make([]byte, container.RIFFHeaderSize, container.ChunkHeaderSize+riffPayload)
	writeRIFFHeader(out, riffPayload)

	vp8x := make([]byte, container.VP8XChunkSize)
	container.PutLE32(vp8x[0:4], flags)
	container.PutLE24(vp8x[4:7], m.width-1)
	container.PutLE24(vp8x[7:10], m.height-1)
	out = appendChunk(out, FourCCVP8X, vp8x)

	if m.iccData != nil {
		out = appendChunk(out, FourCCICCP, m.iccData)
	}
	if m.alpha != nil {
		out = appendChunk(out, FourCCALPH, m.alpha)
	}
	out = appendChunk(out, m.bitID, m.bitstream)
	for _, c := range m.unknown {
		out = appendChunk(out, c.ID, c.Data)
	}
	if m.exifData != nil {
		out = appendChunk(out, FourCCEXIF, m.exifData)
	}
	if m.xmpData != nil {
		out = appendChunk(out, FourCCXMP, m.xmpData)
	}
	return out
}

func writeRIFFHeader(buf []byte, riffPayload int) {
	binary.LittleEndian.PutUint32(buf[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(riffPayload))
	binary.LittleEndian.PutUint32(buf[8:12], FourCCWEBP)
}

// Delete releases the muxer's data. Later calls fail with
// CodeInvalidArgument.
func (m *Muxer) Delete() {
	if m == nil {
		return
	}
	*m = Muxer{deleted: true}
}
