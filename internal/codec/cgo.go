//go:build cgo

package codec

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"

	"github.com/deepteams/webpbridge/internal/pool"
)

// cgoCodec links libwebp through github.com/chai2010/webp. It is only built
// with cgo enabled.
type cgoCodec struct{}

func init() { Register(cgoCodec{}) }

func (cgoCodec) Name() string { return BackendCgo }

func (cgoCodec) Library() string { return "libwebp (cgo)" }

func (cgoCodec) Features(data []byte) (Features, Status) {
	f, st := probe(data)
	if st != StatusOK || f.HasAnimation {
		return f, st
	}
	if _, _, _, err := webp.GetInfo(data); err != nil {
		return Features{}, StatusBitstreamError
	}
	return f, StatusOK
}

func (cgoCodec) Decode(data []byte, opts *DecodeOptions, alloc pool.Allocator) (*Buffer, Status) {
	f, st := prepare(data, opts)
	if st != StatusOK {
		return nil, st
	}

	// Without a crop libwebp can scale while decoding.
	if opts.UseScaling && !opts.UseCropping {
		w, h, _ := scaledSize(opts, image.Pt(f.Width, f.Height))
		m, err := webp.DecodeRGBAToSize(data, w, h)
		if err != nil {
			return nil, StatusBitstreamError
		}
		unscaled := *opts
		unscaled.UseScaling = false
		return render(straight(m), &unscaled, alloc), StatusOK
	}

	m, err := webp.DecodeRGBA(data)
	if err != nil {
		return nil, StatusBitstreamError
	}
	return render(straight(m), opts, alloc), StatusOK
}

// straight relabels libwebp's RGBA output, which is not premultiplied.
func straight(m *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: m.Pix, Stride: m.Stride, Rect: m.Rect}
}

func (cgoCodec) ValidateConfig(cfg *Config) error { return cfg.Validate() }

// cgoOptions maps cfg onto chai2010/webp options, which carry no method,
// preset or filter settings.
func cgoOptions(cfg *Config) *webp.Options {
	return &webp.Options{
		Lossless: cfg.Lossless,
		Quality:  cfg.Quality,
		Exact:    cfg.Exact,
	}
}

func (c cgoCodec) Encode(cfg *Config, pic *Picture) bool {
	if !pic.ready() {
		return false
	}
	if c.ValidateConfig(cfg) != nil {
		return pic.SetError(EncodeInvalidConfiguration)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, pic.Image(), cgoOptions(cfg)); err != nil {
		return pic.SetError(EncodeOutOfMemory)
	}
	return pic.emit(buf.Bytes())
}
