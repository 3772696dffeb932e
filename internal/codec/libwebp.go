package codec

import (
	"bytes"
	"errors"
	"math"

	"github.com/gen2brain/webp"

	"github.com/deepteams/webpbridge/internal/pool"
)

// libwebpCodec runs libwebp through github.com/gen2brain/webp: the shared
// library when one is installed, the embedded WASM build otherwise.
type libwebpCodec struct{}

func init() { Register(libwebpCodec{}) }

func (libwebpCodec) Name() string { return BackendLibwebp }

func (libwebpCodec) Library() string {
	if webp.Dynamic() == nil {
		return "libwebp (shared library)"
	}
	return "libwebp (embedded wasm)"
}

func (libwebpCodec) Features(data []byte) (Features, Status) { return probe(data) }

func (libwebpCodec) Decode(data []byte, opts *DecodeOptions, alloc pool.Allocator) (*Buffer, Status) {
	if _, st := prepare(data, opts); st != StatusOK {
		return nil, st
	}
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		switch {
		case errors.Is(err, webp.ErrMemRead), errors.Is(err, webp.ErrMemWrite):
			return nil, StatusOutOfMemory
		default:
			return nil, StatusBitstreamError
		}
	}
	return render(img, opts, alloc), StatusOK
}

func (libwebpCodec) ValidateConfig(cfg *Config) error { return cfg.Validate() }

// libwebpOptions maps cfg onto the options gen2brain/webp accepts. Only
// Lossless, Quality, Method and Exact cross the boundary; the library keeps
// its own defaults for the preset tuning, filters and threading.
func libwebpOptions(cfg *Config) webp.Options {
	return webp.Options{
		// The library treats 0 as "use the default of 75".
		Quality:  max(1, int(math.Round(float64(cfg.Quality)))),
		Lossless: cfg.Lossless,
		Method:   cfg.Method,
		Exact:    cfg.Exact,
	}
}

func (c libwebpCodec) Encode(cfg *Config, pic *Picture) bool {
	if !pic.ready() {
		return false
	}
	if c.ValidateConfig(cfg) != nil {
		return pic.SetError(EncodeInvalidConfiguration)
	}
	if err := webp.Encode(upcall{pic}, pic.Image(), libwebpOptions(cfg)); err != nil {
		if errors.Is(err, errBadWrite) {
			return pic.SetError(EncodeBadWrite)
		}
		return pic.SetError(EncodeOutOfMemory)
	}
	return true
}
