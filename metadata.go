package webpbridge

import (
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/deepteams/webpbridge/mux"
)

// Metadata holds the metadata chunks of a WebP file. Absent chunks are not
// errors; their accessors return zero values.
type Metadata struct {
	exifData []byte
	exif     *exif.Exif

	xmp    string
	hasXMP bool

	iccData []byte
	profile *ColorProfile

	orientation Orientation
}

// EXIF returns the parsed EXIF directory, or nil.
func (m *Metadata) EXIF() *exif.Exif { return m.exif }

// EXIFData returns the raw EXIF payload, or nil.
func (m *Metadata) EXIFData() []byte { return m.exifData }

// XMP returns the XMP packet and whether the file had one.
func (m *Metadata) XMP() (string, bool) { return m.xmp, m.hasXMP }

// ColorProfile returns the parsed ICC profile, or nil.
func (m *Metadata) ColorProfile() *ColorProfile { return m.profile }

// ICCData returns the raw ICC payload, or nil.
func (m *Metadata) ICCData() []byte { return m.iccData }

// Orientation returns the EXIF orientation, Rotate0 when there is none.
func (m *Metadata) Orientation() Orientation {
	if m == nil {
		return Rotate0
	}
	return m.orientation
}

// readMetadata demuxes data and hands each metadata chunk to its reader.
// Reader failures are logged and leave the raw payload in place.
func readMetadata(data []byte, opts *DecoderOptions) (*Metadata, error) {
	dm, err := mux.NewDemuxer(data)
	if err != nil {
		return nil, muxError(err)
	}
	defer dm.Delete()

	md := &Metadata{}
	flags := dm.Flags()

	if flags&mux.FlagICCP != 0 {
		payload, err := chunkData(dm, mux.TagICCP)
		if err != nil {
			return nil, err
		}
		md.iccData = payload
		if payload != nil {
			p, err := opts.ColorProfileReader.ReadColorProfile(payload)
			if err != nil {
				logger.WithError(err).Debug("ignoring unreadable ICC profile")
			} else {
				md.profile = p
			}
		}
	}

	if flags&mux.FlagEXIF != 0 {
		payload, err := chunkData(dm, mux.TagEXIF)
		if err != nil {
			return nil, err
		}
		md.exifData = payload
		if payload != nil {
			x, err := opts.DirectoryReader.ReadDirectory(payload)
			if err != nil {
				logger.WithError(err).Debug("ignoring unreadable EXIF directory")
			} else {
				md.exif = x
				md.orientation = exifOrientation(x)
			}
		}
	}

	if flags&mux.FlagXMP != 0 {
		payload, err := chunkData(dm, mux.TagXMP)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			md.xmp = strings.ToValidUTF8(string(payload), "\uFFFD")
			md.hasXMP = true
		}
	}
	return md, nil
}

// chunkData returns the first chunk with tag, or nil when the file sets the
// flag but carries no such chunk.
func chunkData(dm *mux.Demuxer, tag string) ([]byte, error) {
	c, err := dm.Chunk(tag, 1)
	if mux.CodeOf(err) == mux.CodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, muxError(err)
	}
	return c.Data, nil
}
