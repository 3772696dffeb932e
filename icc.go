package webpbridge

import "github.com/deepteams/webpbridge/internal/colormgmt"

// ColorProfile is a parsed ICC profile.
type ColorProfile = colormgmt.Profile

// ColorProfileReader parses the payload of an ICCP chunk.
type ColorProfileReader interface {
	ReadColorProfile(data []byte) (*ColorProfile, error)
}

// ColorProfileReaderFunc adapts a function to ColorProfileReader.
type ColorProfileReaderFunc func(data []byte) (*ColorProfile, error)

func (f ColorProfileReaderFunc) ReadColorProfile(data []byte) (*ColorProfile, error) {
	return f(data)
}

// ColorManager converts a decoded raster from its embedded profile to sRGB.
type ColorManager interface {
	ToSRGB(p *ColorProfile, r *Raster) error
}

// ColorManagerFunc adapts a function to ColorManager.
type ColorManagerFunc func(p *ColorProfile, r *Raster) error

func (f ColorManagerFunc) ToSRGB(p *ColorProfile, r *Raster) error { return f(p, r) }

var (
	defaultProfileReader = ColorProfileReaderFunc(colormgmt.Parse)

	defaultColorManager = ColorManagerFunc(func(p *ColorProfile, r *Raster) error {
		return colormgmt.ToSRGB(p, r.Pix, r.Width, r.Height, r.Stride, r.NumBands())
	})
)
