package webpbridge

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

// DirectoryReader parses the payload of an EXIF chunk.
type DirectoryReader interface {
	ReadDirectory(data []byte) (*exif.Exif, error)
}

// DirectoryReaderFunc adapts a function to DirectoryReader.
type DirectoryReaderFunc func(data []byte) (*exif.Exif, error)

func (f DirectoryReaderFunc) ReadDirectory(data []byte) (*exif.Exif, error) { return f(data) }

// exifReader is the default DirectoryReader. It accepts a bare TIFF structure
// as well as one behind an "Exif\0\0" header. Damaged sub-IFDs are tolerated
// as long as the main directory decodes.
type exifReader struct{}

func (exifReader) ReadDirectory(data []byte) (*exif.Exif, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return nil, errors.Wrap(err, "read EXIF directory")
		}
		logger.WithError(err).Debug("EXIF directory partially read")
	}
	return x, nil
}

// exifOrientation reads the Orientation tag, defaulting to upright.
func exifOrientation(x *exif.Exif) Orientation {
	if x == nil {
		return Rotate0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return Rotate0
	}
	v, err := tag.Int(0)
	if err != nil {
		return Rotate0
	}
	return OrientationFromEXIF(v)
}
