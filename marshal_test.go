package webpbridge

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/deepteams/webpbridge/internal/pool"
)

// bandSource is a SampleSource whose sample value encodes its position.
type bandSource struct{ w, h, bands int }

func (s *bandSource) Bounds() image.Rectangle { return image.Rect(0, 0, s.w, s.h) }

func (s *bandSource) NumBands() int { return s.bands }

func (s *bandSource) Sample(x, y, band int) uint8 { return uint8(100*band + 10*y + x) }

func TestMarshalFastPathBGR(t *testing.T) {
	// 2x2 BGR raster with two bytes of row padding
	r := &Raster{
		Width:  2,
		Height: 2,
		Stride: 8,
		Order:  OrderBGR,
		Pix: []byte{
			1, 2, 3, 4, 5, 6, 0xee, 0xee,
			7, 8, 9, 10, 11, 12, 0xee, 0xee,
		},
	}
	scope := pool.NewScope()
	defer scope.Release()

	pix, bpp := marshal(r, scope)
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}; bpp != 3 || !bytes.Equal(pix, want) {
		t.Fatalf("marshal = %v (bpp %d), want %v", pix, bpp, want)
	}
	if n := scope.Outstanding(); n != 1 {
		t.Errorf("Outstanding = %d, want 1", n)
	}

	// semantic order is still red first
	if red, blue := r.Sample(0, 0, 0), r.Sample(0, 0, 2); red != 3 || blue != 1 {
		t.Errorf("Sample red=%d blue=%d", red, blue)
	}
}

func TestMarshalFastPathRGBA(t *testing.T) {
	r := NewRaster(3, 2, OrderRGBA)
	for i := range r.Pix {
		r.Pix[i] = uint8(i)
	}
	pix, bpp := marshal(r, pool.NewScope())
	if bpp != 4 || !bytes.Equal(pix, r.Pix) {
		t.Fatalf("marshal = %v (bpp %d), want %v", pix, bpp, r.Pix)
	}
}

func TestMarshalRGBRasterSwapsToBGR(t *testing.T) {
	r := NewRaster(2, 1, OrderRGB)
	copy(r.Pix, []byte{10, 20, 30, 40, 50, 60})
	pix, bpp := marshal(r, pool.NewScope())
	if want := []byte{30, 20, 10, 60, 50, 40}; bpp != 3 || !bytes.Equal(pix, want) {
		t.Fatalf("marshal = %v (bpp %d), want %v", pix, bpp, want)
	}
}

func TestMarshalPerSample(t *testing.T) {
	tests := []struct {
		bands   int
		wantBpp int
		want    []byte
	}{
		// gray replicated into B,G,R
		{1, 3, []byte{0, 0, 0, 1, 1, 1, 10, 10, 10, 11, 11, 11}},
		// gray and alpha become RGBA
		{2, 4, []byte{0, 0, 0, 100, 1, 1, 1, 101, 10, 10, 10, 110, 11, 11, 11, 111}},
		// three bands are written B,G,R
		{3, 3, []byte{200, 100, 0, 201, 101, 1, 210, 110, 10, 211, 111, 11}},
		// four bands keep R,G,B,A
		{4, 4, []byte{0, 100, 200, 44, 1, 101, 201, 45, 10, 110, 210, 54, 11, 111, 211, 55}},
		// extra bands are dropped
		{5, 3, []byte{200, 100, 0, 201, 101, 1, 210, 110, 10, 211, 111, 11}},
	}
	for _, tt := range tests {
		src := &bandSource{w: 2, h: 2, bands: tt.bands}
		pix, bpp := marshal(src, pool.NewScope())
		if bpp != tt.wantBpp || !bytes.Equal(pix, tt.want) {
			t.Errorf("bands %d: marshal = %v (bpp %d), want %v (bpp %d)", tt.bands, pix, bpp, tt.want, tt.wantBpp)
		}
	}
}

func TestMarshalImageSource(t *testing.T) {
	m := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	m.SetNRGBA(5, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	m.SetNRGBA(6, 5, color.NRGBA{R: 5, G: 6, B: 7, A: 8})

	src := NewImageSource(m)
	if n := src.NumBands(); n != 4 {
		t.Fatalf("NumBands = %d, want 4", n)
	}
	pix, bpp := marshal(src, pool.NewScope())
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; bpp != 4 || !bytes.Equal(pix, want) {
		t.Fatalf("marshal = %v (bpp %d), want %v", pix, bpp, want)
	}
}

func TestImageSourceBands(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	opaque.Pix[3] = 0xff
	tests := []struct {
		name string
		img  image.Image
		want int
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 1, 1)), 1},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420), 3},
		{"opaque nrgba", opaque, 3},
		{"transparent nrgba", image.NewNRGBA(image.Rect(0, 0, 1, 1)), 4},
	}
	for _, tt := range tests {
		if got := NewImageSource(tt.img).NumBands(); got != tt.want {
			t.Errorf("%s: NumBands = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRasterImage(t *testing.T) {
	r := NewRaster(1, 1, OrderBGR)
	copy(r.Pix, []byte{3, 2, 1})
	m, ok := r.Image().(*image.NRGBA)
	if !ok {
		t.Fatalf("BGR raster image is %T", r.Image())
	}
	if got, want := m.NRGBAAt(0, 0), (color.NRGBA{R: 1, G: 2, B: 3, A: 0xff}); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}

	g := NewRaster(2, 1, OrderGray)
	if _, ok := g.Image().(*image.Gray); !ok {
		t.Errorf("gray raster image is %T", g.Image())
	}
}
