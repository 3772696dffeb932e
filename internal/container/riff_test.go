package container

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestParseRIFFHeader_Valid(t *testing.T) {
	data := make([]byte, 20)
	binary.LittleEndian.PutUint32(data[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(data[4:8], 100) // file size
	binary.LittleEndian.PutUint32(data[8:12], FourCCWEBP)

	hdr, n, err := ParseRIFFHeader(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != RIFFHeaderSize {
		t.Fatalf("consumed %d bytes, want %d", n, RIFFHeaderSize)
	}
	if hdr.FileSize != 100 {
		t.Fatalf("file size = %d, want 100", hdr.FileSize)
	}
}

func TestParseRIFFHeader_Errors(t *testing.T) {
	tooSmall := make([]byte, 12)
	binary.LittleEndian.PutUint32(tooSmall[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(tooSmall[4:8], 4)
	binary.LittleEndian.PutUint32(tooSmall[8:12], FourCCWEBP)

	badRIFF := make([]byte, 12)
	copy(badRIFF[0:4], "JUNK")

	badWEBP := make([]byte, 12)
	binary.LittleEndian.PutUint32(badWEBP[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(badWEBP[4:8], 100)
	copy(badWEBP[8:12], "WAVE")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte{0, 1, 2}, ErrTruncated},
		{"size below chunk header", tooSmall, ErrInvalidRIFF},
		{"bad RIFF", badRIFF, ErrInvalidRIFF},
		{"bad WEBP", badWEBP, ErrInvalidWebP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRIFFHeader(tt.data)
			if err != tt.want {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadChunkHeader(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], FourCCXMP)
	binary.LittleEndian.PutUint32(data[4:8], 42)

	fourcc, size, err := ReadChunkHeader(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fourcc != FourCCXMP {
		t.Fatalf("fourcc = %s, want XMP ", FourCCString(fourcc))
	}
	if size != 42 {
		t.Fatalf("size = %d, want 42", size)
	}

	if _, _, err := ReadChunkHeader(data[:7]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("short header: got %v, want ErrTruncated", err)
	}
}

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 0},
		{1, 2},
		{2, 2},
		{3, 4},
		{100, 100},
		{101, 102},
	}
	for _, tt := range tests {
		if got := PaddedSize(tt.in); got != tt.want {
			t.Errorf("PaddedSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFourCCStringRoundTrip(t *testing.T) {
	for _, tag := range []string{"RIFF", "WEBP", "VP8 ", "VP8L", "VP8X", "ALPH", "ICCP", "EXIF", "XMP "} {
		fourcc, ok := FourCCFromString(tag)
		if !ok {
			t.Fatalf("FourCCFromString(%q) not ok", tag)
		}
		if got := FourCCString(fourcc); got != tag {
			t.Errorf("FourCCString = %q, want %q", got, tag)
		}
	}
	if fourcc, _ := FourCCFromString("XMP "); fourcc != FourCCXMP {
		t.Errorf("FourCCFromString(\"XMP \") = %08x, want %08x", fourcc, FourCCXMP)
	}
	if _, ok := FourCCFromString("XMP"); ok {
		t.Errorf("three-byte tag accepted")
	}
}

func TestLE24(t *testing.T) {
	b := make([]byte, 3)
	PutLE24(b, 0x123456)
	if b[0] != 0x56 || b[1] != 0x34 || b[2] != 0x12 {
		t.Fatalf("PutLE24 wrote % x", b)
	}
	if got := ReadLE24(b); got != 0x123456 {
		t.Fatalf("ReadLE24 = 0x%x, want 0x123456", got)
	}
}

func TestFormatTypeString(t *testing.T) {
	tests := map[FormatType]string{
		FormatUndefined: "undefined",
		FormatVP8:       "VP8",
		FormatVP8L:      "VP8L",
		FormatVP8X:      "VP8X",
	}
	for f, want := range tests {
		if got := f.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", f, got, want)
		}
	}
}

func makeChunk(fourcc uint32, payload []byte) []byte {
	size := uint32(len(payload))
	padded := PaddedSize(size)
	out := make([]byte, ChunkHeaderSize+padded)
	binary.LittleEndian.PutUint32(out[0:4], fourcc)
	binary.LittleEndian.PutUint32(out[4:8], size)
	copy(out[ChunkHeaderSize:], payload)
	return out
}

func wrapRIFF(chunks []byte) []byte {
	riffPayload := 4 + uint32(len(chunks)) // "WEBP" + chunks
	out := make([]byte, RIFFHeaderSize+len(chunks))
	binary.LittleEndian.PutUint32(out[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(out[4:8], riffPayload)
	binary.LittleEndian.PutUint32(out[8:12], FourCCWEBP)
	copy(out[RIFFHeaderSize:], chunks)
	return out
}

func concat(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
