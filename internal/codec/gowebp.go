package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/HugoSmits86/nativewebp"

	"github.com/deepteams/webpbridge/internal/pool"
)

// goCodec decodes with golang.org/x/image/webp and encodes with nativewebp.
// VP8L output is bit-exact, which makes it the default decoder. The encoder
// only produces lossless VP8L.
type goCodec struct{}

func init() { Register(goCodec{}) }

func (goCodec) Name() string { return BackendGo }

func (goCodec) Library() string { return "golang.org/x/image/webp, nativewebp" }

func (goCodec) Features(data []byte) (Features, Status) { return probe(data) }

func (goCodec) Decode(data []byte, opts *DecodeOptions, alloc pool.Allocator) (*Buffer, Status) {
	if _, st := prepare(data, opts); st != StatusOK {
		return nil, st
	}
	// x/image/webp refuses VP8X files that set the alpha flag on a VP8L image;
	// DecodeIgnoreAlphaFlag clears the flag on a copy first.
	img, err := nativewebp.DecodeIgnoreAlphaFlag(bytes.NewReader(data))
	if err != nil {
		return nil, readStatus(err)
	}
	return render(img, opts, alloc), StatusOK
}

func (goCodec) ValidateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Lossless {
		return fmt.Errorf("webp: backend %q encodes lossless only", BackendGo)
	}
	return nil
}

func (c goCodec) Encode(cfg *Config, pic *Picture) bool {
	if !pic.ready() {
		return false
	}
	if c.ValidateConfig(cfg) != nil {
		return pic.SetError(EncodeInvalidConfiguration)
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, pic.Image(), nil); err != nil {
		return pic.SetError(EncodeBadDimension)
	}
	return pic.emit(buf.Bytes())
}

// readStatus classifies an error from a pure Go decoder.
func readStatus(err error) Status {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return StatusNotEnoughData
	}
	return StatusBitstreamError
}
