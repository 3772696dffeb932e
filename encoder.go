package webpbridge

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/deepteams/webpbridge/internal/codec"
	"github.com/deepteams/webpbridge/internal/pool"
	"github.com/deepteams/webpbridge/mux"
)

// Encoder is one encode session. It is not safe for concurrent use.
type Encoder struct {
	opts  EncodeOptions
	scope *pool.Scope
}

// NewEncoder returns an encoder using opts.
func NewEncoder(opts EncodeOptions) *Encoder {
	if opts.Backend == "" {
		opts.Backend = codec.DefaultEncoder
	}
	return &Encoder{opts: opts, scope: pool.NewScope()}
}

// SupportedFormats lists the formats the encoder writes.
func (e *Encoder) SupportedFormats() []Format { return SupportedFormats() }

// Encode compresses src and writes the complete file to w. Nothing is
// written when encoding fails. With XMP set the output uses the Extended
// format, otherwise the Simple one.
func (e *Encoder) Encode(src SampleSource, w io.Writer) error {
	total := newStopwatch()

	cfg := e.opts.toConfig()
	c, err := codec.LoadEncoder(e.opts.Backend)
	if err != nil {
		return ioError(err, "load encoder %q", e.opts.Backend)
	}
	if err := c.ValidateConfig(cfg); err != nil {
		return configError(err)
	}

	step := newStopwatch()
	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	pix, bpp := marshal(src, e.scope)
	defer e.scope.Put(pix)

	pic := codec.NewPicture(width, height, e.scope)
	defer pic.Free()
	if bpp == 4 {
		if !pic.ImportRGBA(pix, width*4) {
			return encodeFailure("WebPPictureImportRGBA", pic)
		}
	} else if !pic.ImportBGR(pix, width*3) {
		return encodeFailure("WebPPictureImportBGR", pic)
	}
	logger.Tracef("Copied image into native memory in %s", step)

	step.reset()
	sink := codec.NewMemoryWriter(e.scope)
	defer sink.Clear()
	pic.Writer = sink.Write
	if !c.Encode(cfg, pic) {
		return encodeFailure("WebPEncode", pic)
	}
	logger.WithFields(log.Fields{
		"backend":  c.Name(),
		"lossless": cfg.Lossless,
		"quality":  cfg.Quality,
		"method":   cfg.Method,
		"bytes":    sink.Len(),
	}).Tracef("Encoded image in %s", step)

	out := sink.Bytes()
	if e.opts.XMP != nil {
		if out, err = embedXMP(out, *e.opts.XMP); err != nil {
			return err
		}
	}

	if _, err := w.Write(out); err != nil {
		return ioError(err, "write output")
	}
	logger.Tracef("Wrote %dx%d image in %s", width, height, total)
	return nil
}

// Close releases the session's buffers.
func (e *Encoder) Close() error {
	e.scope.Release()
	return nil
}

// encodeFailure translates the error left on pic. A backend that failed
// without setting one is reported as a bad write.
func encodeFailure(op string, pic *codec.Picture) error {
	code := pic.ErrorCode
	if code == codec.EncodeOK {
		code = codec.EncodeBadWrite
	}
	return encodeError(op, code)
}

// embedXMP rewraps a Simple format file as an Extended one carrying xmp.
func embedXMP(bitstream []byte, xmp string) ([]byte, error) {
	m := mux.New()
	defer m.Delete()
	if err := m.SetImage(bitstream); err != nil {
		return nil, muxError(err)
	}
	if err := m.SetChunk(mux.TagXMP, []byte(xmp)); err != nil {
		return nil, muxError(err)
	}
	out, err := m.Assemble()
	if err != nil {
		return nil, muxError(err)
	}
	return out, nil
}
