//go:build cgo

package codec

import "testing"

func TestCgoOptions(t *testing.T) {
	cfg := ConfigPreset(PresetPhoto, 80)
	cfg.Method = 6
	cfg.Exact = true

	opts := cgoOptions(cfg)
	if opts.Quality != 80 || opts.Lossless || !opts.Exact {
		t.Fatalf("cgoOptions = %+v", opts)
	}
}
