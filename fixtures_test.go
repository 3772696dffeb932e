package webpbridge

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"testing"
)

// noisyRGB returns an opaque image with enough detail that lossy quality
// settings make a visible difference in output size.
func noisyRGB(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(12345)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			n := uint8(seed >> 24)
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*255/w) ^ n>>2,
				G: uint8(y*255/h) ^ n>>3,
				B: n,
				A: 0xff,
			})
		}
	}
	return m
}

// translucentRGBA returns an image whose alpha varies but is never zero.
func translucentRGBA(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 7),
				G: uint8(y * 5),
				B: uint8((x + y) * 3),
				A: uint8(32 + (x*y)%224),
			})
		}
	}
	return m
}

func encodeImage(t *testing.T, img image.Image, opts EncodeOptions) []byte {
	t.Helper()
	e := NewEncoder(opts)
	defer e.Close()
	var buf bytes.Buffer
	if err := e.Encode(NewImageSource(img), &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func losslessOptions() EncodeOptions {
	o := DefaultEncodeOptions()
	o.Lossless = true
	return o
}

// rgbFixture is the 100x88 opaque lossy fixture.
func rgbFixture(t *testing.T) []byte {
	t.Helper()
	return encodeImage(t, noisyRGB(100, 88), DefaultEncodeOptions())
}

// alphaFixture is the 400x300 lossy fixture with an alpha channel.
func alphaFixture(t *testing.T) []byte {
	t.Helper()
	return encodeImage(t, translucentRGBA(400, 300), DefaultEncodeOptions())
}

func streamDecoder(data []byte) *Decoder {
	return NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{})
}

// countingSeeker counts Read calls on the wrapped stream.
type countingSeeker struct {
	io.ReadSeeker
	reads int
}

func (c *countingSeeker) Read(p []byte) (int, error) {
	c.reads++
	return c.ReadSeeker.Read(p)
}

// tiffWithOrientation returns a little-endian TIFF structure holding a single
// Orientation tag.
func tiffWithOrientation(v uint16) []byte {
	b := make([]byte, 26)
	copy(b, "II*\x00")
	binary.LittleEndian.PutUint32(b[4:], 8)
	binary.LittleEndian.PutUint16(b[8:], 1)       // one entry
	binary.LittleEndian.PutUint16(b[10:], 0x0112) // Orientation
	binary.LittleEndian.PutUint16(b[12:], 3)      // SHORT
	binary.LittleEndian.PutUint32(b[14:], 1)
	binary.LittleEndian.PutUint16(b[18:], v)
	binary.LittleEndian.PutUint32(b[22:], 0) // no next IFD
	return b
}

// iccProfile returns a minimal RGB display profile with a description tag.
// The description length keeps the profile size even.
func iccProfile(desc string) []byte {
	const tagDataOffset = 128 + 4 + 12
	tag := make([]byte, 12, 12+len(desc)+1)
	copy(tag, "desc")
	binary.BigEndian.PutUint32(tag[8:], uint32(len(desc)+1))
	tag = append(tag, desc...)
	tag = append(tag, 0)

	p := make([]byte, tagDataOffset, tagDataOffset+len(tag))
	binary.BigEndian.PutUint32(p[0:], uint32(tagDataOffset+len(tag)))
	p[8] = 2
	copy(p[12:], "mntr")
	copy(p[16:], "RGB ")
	copy(p[20:], "XYZ ")
	copy(p[36:], "acsp")
	binary.BigEndian.PutUint32(p[128:], 1)
	copy(p[132:], "desc")
	binary.BigEndian.PutUint32(p[136:], tagDataOffset)
	binary.BigEndian.PutUint32(p[140:], uint32(len(tag)))
	return append(p, tag...)
}
