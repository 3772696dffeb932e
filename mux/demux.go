package mux

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/riff"

	"github.com/deepteams/webpbridge/internal/container"
)

// Demuxer indexes the chunks of a complete WebP file held in memory.
type Demuxer struct {
	chunks  []Chunk
	flags   uint32
	width   int
	height  int
	format  container.FormatType
	deleted bool
}

// NewDemuxer parses data and indexes its chunks. A file whose RIFF size runs
// past the end of data fails with CodeNotEnoughData; anything that is not a
// well-formed WebP container fails with CodeBadData.
func NewDemuxer(data []byte) (*Demuxer, error) {
	const op = "NewDemuxer"

	hdr, _, err := container.ParseRIFFHeader(data)
	if err == container.ErrTruncated {
		return nil, newError(op, CodeNotEnoughData, err)
	}
	if err != nil {
		return nil, newError(op, CodeBadData, err)
	}
	if uint64(hdr.FileSize)+container.ChunkHeaderSize > uint64(len(data)) {
		return nil, newError(op, CodeNotEnoughData,
			fmt.Errorf("RIFF size %d exceeds %d available bytes", hdr.FileSize, len(data)-container.ChunkHeaderSize))
	}

	formType, r, err := riff.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, newError(op, CodeBadData, err)
	}
	if formType != (riff.FourCC{'W', 'E', 'B', 'P'}) {
		return nil, newError(op, CodeBadData, container.ErrInvalidWebP)
	}

	d := &Demuxer{}
	for {
		id, n, rd, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(op, CodeBadData, err)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(rd, payload); err != nil {
			return nil, newError(op, CodeBadData, err)
		}
		d.chunks = append(d.chunks, Chunk{ID: container.FourCC(id[0], id[1], id[2], id[3]), Data: payload})
	}
	if err := d.index(); err != nil {
		return nil, newError(op, CodeBadData, err)
	}
	return d, nil
}

// index derives the format, flags and canvas size from the chunk list.
func (d *Demuxer) index() error {
	if len(d.chunks) == 0 {
		return container.ErrInvalidChunk
	}
	first := d.chunks[0]
	switch first.ID {
	case FourCCVP8:
		d.format = container.FormatVP8
		w, h, err := container.ParseVP8Header(first.Data)
		if err != nil {
			return err
		}
		d.width, d.height = w, h
		return nil
	case FourCCVP8L:
		d.format = container.FormatVP8L
		w, h, _, err := container.ParseVP8LHeader(first.Data)
		if err != nil {
			return err
		}
		d.width, d.height = w, h
		return nil
	case FourCCVP8X:
		if len(first.Data) < container.VP8XChunkSize {
			return container.ErrInvalidVP8X
		}
		d.format = container.FormatVP8X
		d.flags = container.ReadLE32(first.Data) & container.AllValidFlags
		d.width = container.ReadLE24(first.Data[4:]) + 1
		d.height = container.ReadLE24(first.Data[7:]) + 1
	default:
		return fmt.Errorf("%w: first chunk %q", container.ErrInvalidChunk, first.Tag())
	}

	if d.flags&FlagAnimation != 0 {
		return nil
	}
	for _, c := range d.chunks[1:] {
		if c.ID == FourCCVP8 || c.ID == FourCCVP8L {
			return nil
		}
	}
	return fmt.Errorf("%w: no image chunk", container.ErrInvalidChunk)
}

// Flags returns the VP8X feature flags, or 0 for a Simple format file.
func (d *Demuxer) Flags() uint32 { return d.flags }

// Format reports whether the file is Simple (VP8/VP8L) or Extended (VP8X).
func (d *Demuxer) Format() container.FormatType { return d.format }

// CanvasSize returns the canvas dimensions.
func (d *Demuxer) CanvasSize() (width, height int) { return d.width, d.height }

// Chunks returns every indexed chunk in file order.
func (d *Demuxer) Chunks() []Chunk { return d.chunks }

// Chunk returns the nth (1-based) chunk with the given tag. The returned
// payload aliases the demuxer's copy and must not be modified.
func (d *Demuxer) Chunk(tag string, nth int) (Chunk, error) {
	const op = "GetChunk"
	if d == nil || d.deleted {
		return Chunk{}, newError(op, CodeInvalidArgument, nil)
	}
	id, ok := container.FourCCFromString(tag)
	if !ok || nth < 1 {
		return Chunk{}, newError(op, CodeInvalidArgument, fmt.Errorf("tag %q index %d", tag, nth))
	}
	seen := 0
	for _, c := range d.chunks {
		if c.ID != id {
			continue
		}
		seen++
		if seen == nth {
			return c, nil
		}
	}
	return Chunk{}, newError(op, CodeNotFound, nil)
}

// Delete drops the index. Later calls fail with CodeInvalidArgument.
func (d *Demuxer) Delete() {
	if d == nil {
		return
	}
	d.chunks = nil
	d.deleted = true
}
