package webpbridge

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"
)

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a WebP image from r with the default decoder options. Images
// with alpha come back as *image.NRGBA, opaque ones as *image.NRGBA with
// every alpha set to 0xff.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, ioError(err, "read image")
	}
	d := NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{})
	defer d.Close()
	raster, _, err := d.Decode(DecodeRequest{})
	if err != nil {
		return nil, err
	}
	return raster.Image(), nil
}

// DecodeConfig returns the color model and dimensions of a WebP image
// without decoding pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, ioError(err, "read image")
	}
	d := NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{})
	defer d.Close()
	f, err := d.probe()
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      f.Width,
		Height:     f.Height,
	}, nil
}

// Encode writes img to w. A nil opts uses DefaultEncodeOptions.
func Encode(w io.Writer, img image.Image, opts *EncodeOptions) error {
	if img == nil {
		return errors.New("webp: nil image")
	}
	o := DefaultEncodeOptions()
	if opts != nil {
		o = *opts
	}
	e := NewEncoder(o)
	defer e.Close()
	return e.Encode(NewImageSource(img), w)
}
