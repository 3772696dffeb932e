package container

import "testing"

func TestSniff(t *testing.T) {
	webp := buildSimpleVP8WebP(16, 16)

	truncated := make([]byte, SniffLen)
	copy(truncated, webp) // size field says more data follows

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"webp", webp, true},
		{"header only", truncated, true},
		{"empty", nil, false},
		{"short", webp[:SniffLen-1], false},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), false},
		{"wave", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), false},
		{"lowercase", []byte("riff\x24\x00\x00\x00webp"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Fatalf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}
