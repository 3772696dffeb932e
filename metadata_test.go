package webpbridge

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/deepteams/webpbridge/internal/colormgmt"
	"github.com/deepteams/webpbridge/mux"
)

// withChunks wraps an encoded image and the given metadata chunks into an
// Extended format file.
func withChunks(t *testing.T, img []byte, chunks map[string][]byte) []byte {
	t.Helper()
	m := mux.New()
	defer m.Delete()
	if err := m.SetImage(img); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	for tag, data := range chunks {
		if err := m.SetChunk(tag, data); err != nil {
			t.Fatalf("SetChunk(%q): %v", tag, err)
		}
	}
	out, err := m.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return out
}

func mustMetadata(t *testing.T, d *Decoder) *Metadata {
	t.Helper()
	md, err := d.Metadata(0)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	return md
}

func TestMetadataAbsent(t *testing.T) {
	d := streamDecoder(rgbFixture(t))
	defer d.Close()
	md := mustMetadata(t, d)
	if md.EXIF() != nil || md.EXIFData() != nil {
		t.Error("unexpected EXIF")
	}
	if md.ICCData() != nil || md.ColorProfile() != nil {
		t.Error("unexpected ICC profile")
	}
	if _, ok := md.XMP(); ok {
		t.Error("unexpected XMP")
	}
	if o := md.Orientation(); o != Rotate0 {
		t.Errorf("Orientation = %v", o)
	}
}

func TestMetadataEXIFOrientation(t *testing.T) {
	tests := map[string][]byte{
		"bare TIFF":   tiffWithOrientation(6),
		"Exif header": append([]byte("Exif\x00\x00"), tiffWithOrientation(6)...),
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			data := withChunks(t, encodeImage(t, noisyRGB(40, 30), DefaultEncodeOptions()),
				map[string][]byte{mux.TagEXIF: payload})
			d := streamDecoder(data)
			defer d.Close()

			md := mustMetadata(t, d)
			if md.EXIF() == nil {
				t.Fatal("EXIF not parsed")
			}
			if !bytes.Equal(md.EXIFData(), payload) {
				t.Errorf("EXIFData = %x, want %x", md.EXIFData(), payload)
			}
			if o := md.Orientation(); o != Rotate90 {
				t.Errorf("Orientation = %v, want 90", o)
			}

			tag, err := md.EXIF().Get(exif.Orientation)
			if err != nil {
				t.Fatalf("Get(Orientation): %v", err)
			}
			if v, err := tag.Int(0); err != nil || v != 6 {
				t.Errorf("orientation tag = %d, %v", v, err)
			}

			// sizes stay in stored orientation
			size, err := d.Size(0)
			if err != nil || size != image.Pt(40, 30) {
				t.Errorf("Size = %v, %v; want 40x30", size, err)
			}
		})
	}
}

func TestDecodeRegionFollowsOrientation(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(40, 30), DefaultEncodeOptions()),
		map[string][]byte{mux.TagEXIF: tiffWithOrientation(6)})
	d := streamDecoder(data)
	defer d.Close()

	// a 10x5 region of the upright image is a 5x10 block of the stored one
	region := image.Rect(0, 0, 10, 5)
	r, res, err := d.Decode(DecodeRequest{Region: &region})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Bounds().Size() != image.Pt(5, 10) {
		t.Errorf("size = %v, want 5x10", r.Bounds().Size())
	}
	if !res.Hints.Has(HintRegionHonored) {
		t.Errorf("hints = %v", res.Hints)
	}

	full, _, err := d.Decode(DecodeRequest{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if full.Bounds().Size() != image.Pt(40, 30) {
		t.Errorf("full size = %v, want 40x30", full.Bounds().Size())
	}
}

func TestMetadataUnreadableEXIF(t *testing.T) {
	garbage := []byte("not an exif block")
	data := withChunks(t, encodeImage(t, noisyRGB(16, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagEXIF: garbage})
	d := streamDecoder(data)
	defer d.Close()

	md := mustMetadata(t, d)
	if md.EXIF() != nil {
		t.Error("garbage parsed as EXIF")
	}
	if !bytes.Equal(md.EXIFData(), garbage) {
		t.Errorf("EXIFData = %q", md.EXIFData())
	}
	if o := md.Orientation(); o != Rotate0 {
		t.Errorf("Orientation = %v", o)
	}

	if _, _, err := d.Decode(DecodeRequest{}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestMetadataCustomDirectoryReader(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(16, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagEXIF: tiffWithOrientation(3)})

	var calls int
	d := NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{
		DirectoryReader: DirectoryReaderFunc(func(b []byte) (*exif.Exif, error) {
			calls++
			return nil, errors.New("refused")
		}),
	})
	defer d.Close()
	md := mustMetadata(t, d)
	if o := md.Orientation(); o != Rotate0 {
		t.Errorf("Orientation = %v", o)
	}

	// cached
	mustMetadata(t, d)
	if calls != 1 {
		t.Errorf("reader called %d times, want 1", calls)
	}
}

func TestMetadataICCProfile(t *testing.T) {
	icc := iccProfile("Display P3 v1")
	data := withChunks(t, encodeImage(t, noisyRGB(24, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagICCP: icc})
	d := streamDecoder(data)
	defer d.Close()

	md := mustMetadata(t, d)
	if !bytes.Equal(md.ICCData(), icc) {
		t.Error("ICCData differs from the embedded profile")
	}
	p := md.ColorProfile()
	if p == nil {
		t.Fatal("ColorProfile is nil")
	}
	if p.Description != "Display P3 v1" || p.Space != colormgmt.SpaceDisplayP3 || p.Components != 3 {
		t.Errorf("profile = %+v", p)
	}
}

func TestDecodeAppliesColorProfile(t *testing.T) {
	img := encodeImage(t, noisyRGB(24, 16), DefaultEncodeOptions())
	tagged := withChunks(t, img, map[string][]byte{mux.TagICCP: iccProfile("Display P3 v1")})

	plainDec := streamDecoder(img)
	defer plainDec.Close()
	plain, _, err := plainDec.Decode(DecodeRequest{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	managedDec := streamDecoder(tagged)
	defer managedDec.Close()
	managed, _, err := managedDec.Decode(DecodeRequest{})
	if err != nil {
		t.Fatalf("Decode tagged: %v", err)
	}

	if plain.Bounds() != managed.Bounds() {
		t.Fatalf("bounds %v vs %v", plain.Bounds(), managed.Bounds())
	}
	if bytes.Equal(plain.Pix, managed.Pix) {
		t.Error("Display P3 pixels were not converted")
	}
}

func TestDecodeCustomColorManager(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(24, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagICCP: iccProfile("Display P3 v1")})

	var got *ColorProfile
	var size image.Point
	d := NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{
		ColorManager: ColorManagerFunc(func(p *ColorProfile, r *Raster) error {
			got = p
			size = r.Bounds().Size()
			return nil
		}),
	})
	defer d.Close()
	region := image.Rect(4, 4, 12, 10)
	if _, _, err := d.Decode(DecodeRequest{Region: &region}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || got.Description != "Display P3 v1" {
		t.Fatalf("color manager got profile %+v", got)
	}
	if size != image.Pt(8, 6) {
		t.Errorf("color manager got %v raster, want 8x6", size)
	}
}

func TestDecodeColorManagerFailureIgnored(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(24, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagICCP: iccProfile("Display P3 v1")})

	d := NewDecoder(NewStreamSource(bytes.NewReader(data)), DecoderOptions{
		ColorManager: ColorManagerFunc(func(*ColorProfile, *Raster) error {
			return errors.New("no transform")
		}),
	})
	defer d.Close()
	r, _, err := d.Decode(DecodeRequest{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Bounds().Size() != image.Pt(24, 16) {
		t.Errorf("size = %v", r.Bounds().Size())
	}
}

func TestMetadataUnreadableICC(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(16, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagICCP: []byte("not a profile!")})
	d := streamDecoder(data)
	defer d.Close()

	md := mustMetadata(t, d)
	if md.ColorProfile() != nil {
		t.Error("garbage parsed as a profile")
	}
	if got := string(md.ICCData()); got != "not a profile!" {
		t.Errorf("ICCData = %q", got)
	}

	if _, _, err := d.Decode(DecodeRequest{}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestMetadataInvalidXMP(t *testing.T) {
	data := withChunks(t, encodeImage(t, noisyRGB(16, 16), DefaultEncodeOptions()),
		map[string][]byte{mux.TagXMP: {'<', 'x', 0xff, '>'}})
	d := streamDecoder(data)
	defer d.Close()

	xmp, ok := mustMetadata(t, d).XMP()
	if !ok || xmp != "<x\uFFFD>" {
		t.Errorf("XMP = %q (%v), want repaired UTF-8", xmp, ok)
	}
}

func TestMetadataNilReceiver(t *testing.T) {
	var md *Metadata
	if o := md.Orientation(); o != Rotate0 {
		t.Errorf("Orientation = %v", o)
	}
}
