package webpbridge

import (
	"image"
	"image/color"
)

// SampleSource is the raster abstraction the encoder reads from. Bands are
// in semantic order: gray; gray, alpha; red, green, blue; or red, green,
// blue, alpha.
type SampleSource interface {
	Bounds() image.Rectangle
	NumBands() int
	Sample(x, y, band int) uint8
}

// BandOrder is the storage order of an interleaved raster.
type BandOrder int

const (
	OrderRGB BandOrder = iota
	OrderBGR
	OrderRGBA
	OrderGray
)

// Bands returns the number of bands stored per pixel.
func (o BandOrder) Bands() int {
	switch o {
	case OrderRGBA:
		return 4
	case OrderGray:
		return 1
	}
	return 3
}

func (o BandOrder) String() string {
	switch o {
	case OrderBGR:
		return "BGR"
	case OrderRGBA:
		return "RGBA"
	case OrderGray:
		return "Gray"
	}
	return "RGB"
}

// Interleaved is implemented by sources whose samples are stored as packed
// 8-bit pixels. The encoder copies such sources row by row when the storage
// order matches what the codec imports.
type Interleaved interface {
	SampleSource
	BandOrder() BandOrder
	Pixels() (pix []byte, stride int)
}

// Raster is a packed 8-bit pixel buffer. Decode returns RGB or RGBA rasters;
// callers may build rasters in any BandOrder for encoding.
type Raster struct {
	Width  int
	Height int
	Stride int
	Order  BandOrder
	Pix    []byte
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height int, order BandOrder) *Raster {
	stride := width * order.Bands()
	return &Raster{
		Width:  width,
		Height: height,
		Stride: stride,
		Order:  order,
		Pix:    make([]byte, stride*height),
	}
}

// HasAlpha reports whether the raster carries an alpha band.
func (r *Raster) HasAlpha() bool { return r.Order == OrderRGBA }

func (r *Raster) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width, r.Height) }

func (r *Raster) NumBands() int { return r.Order.Bands() }

func (r *Raster) BandOrder() BandOrder { return r.Order }

func (r *Raster) Pixels() ([]byte, int) { return r.Pix, r.Stride }

// Sample returns band of the pixel at (x, y). BGR storage is mapped back to
// semantic order.
func (r *Raster) Sample(x, y, band int) uint8 {
	if r.Order == OrderBGR {
		band = 2 - band
	}
	return r.Pix[y*r.Stride+x*r.Order.Bands()+band]
}

// Image returns the raster as an image.Image. RGBA and gray rasters share
// Pix with the result; RGB and BGR rasters are expanded into a new NRGBA.
func (r *Raster) Image() image.Image {
	rect := r.Bounds()
	switch r.Order {
	case OrderRGBA:
		return &image.NRGBA{Pix: r.Pix, Stride: r.Stride, Rect: rect}
	case OrderGray:
		return &image.Gray{Pix: r.Pix, Stride: r.Stride, Rect: rect}
	}
	m := image.NewNRGBA(rect)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			i := m.PixOffset(x, y)
			m.Pix[i+0] = r.Sample(x, y, 0)
			m.Pix[i+1] = r.Sample(x, y, 1)
			m.Pix[i+2] = r.Sample(x, y, 2)
			m.Pix[i+3] = 0xff
		}
	}
	return m
}

// ImageSource adapts an image.Image to SampleSource. Gray images have one
// band, opaque images three and everything else four.
type ImageSource struct {
	img   image.Image
	bands int

	// last converted pixel, so the bands of one pixel convert once
	lastX, lastY int
	last         color.NRGBA
	valid        bool
}

// NewImageSource wraps img.
func NewImageSource(img image.Image) *ImageSource {
	return &ImageSource{img: img, bands: bandsOf(img)}
}

func bandsOf(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.YCbCrModel, color.CMYKModel:
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func (s *ImageSource) Bounds() image.Rectangle { return s.img.Bounds() }

func (s *ImageSource) NumBands() int { return s.bands }

func (s *ImageSource) Sample(x, y, band int) uint8 {
	if s.bands == 1 {
		return color.GrayModel.Convert(s.img.At(x, y)).(color.Gray).Y
	}
	if !s.valid || x != s.lastX || y != s.lastY {
		s.last = color.NRGBAModel.Convert(s.img.At(x, y)).(color.NRGBA)
		s.lastX, s.lastY, s.valid = x, y, true
	}
	switch band {
	case 0:
		return s.last.R
	case 1:
		return s.last.G
	case 2:
		return s.last.B
	}
	return s.last.A
}
