package webpbridge

import (
	"image"

	log "github.com/sirupsen/logrus"

	"github.com/deepteams/webpbridge/internal/codec"
	"github.com/deepteams/webpbridge/internal/container"
	"github.com/deepteams/webpbridge/internal/pool"
)

type lazyState uint8

const (
	notComputed lazyState = iota
	computed
	failed
)

// lazy caches the outcome of a computation, success or failure.
type lazy[T any] struct {
	state lazyState
	val   T
	err   error
}

func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	switch l.state {
	case computed:
		return l.val, nil
	case failed:
		var zero T
		return zero, l.err
	}
	v, err := compute()
	if err != nil {
		l.state, l.err = failed, err
		return v, err
	}
	l.state, l.val = computed, v
	return v, nil
}

// DecodeRequest selects what Decode produces. Region is in displayed
// coordinates, that is after EXIF orientation is applied. Scale factors of
// zero or less mean 1.
type DecodeRequest struct {
	ImageIndex int
	Region     *image.Rectangle
	ScaleX     float64
	ScaleY     float64
}

// DecodeResult reports how a request was honoured.
type DecodeResult struct {
	ReductionFactor ReductionFactor
	Hints           Hints
}

// Decoder is one decode session over one source. It is not safe for
// concurrent use. Close releases every buffer the session holds.
type Decoder struct {
	src   Source
	opts  DecoderOptions
	scope *pool.Scope

	data     []byte
	codec    lazy[codec.Codec]
	features lazy[codec.Features]
	metadata lazy[*Metadata]
}

// NewDecoder returns a session reading src. Nothing is read until the first
// call that needs the bitstream.
func NewDecoder(src Source, opts DecoderOptions) *Decoder {
	if opts.Backend == "" {
		opts.Backend = codec.DefaultDecoder
	}
	if opts.DirectoryReader == nil {
		opts.DirectoryReader = exifReader{}
	}
	if opts.ColorProfileReader == nil {
		opts.ColorProfileReader = defaultProfileReader
	}
	if opts.ColorManager == nil {
		opts.ColorManager = defaultColorManager
	}
	return &Decoder{src: src, opts: opts, scope: pool.NewScope()}
}

// SupportedFormats lists the formats the decoder reads.
func (d *Decoder) SupportedFormats() []Format { return SupportedFormats() }

// NumImages always returns 1; animations are not decoded.
func (d *Decoder) NumImages() int { return 1 }

// NumResolutions always returns 1.
func (d *Decoder) NumResolutions() int { return 1 }

// Size returns the stored (unoriented) dimensions of image index.
func (d *Decoder) Size(index int) (image.Point, error) {
	if index != 0 {
		return image.Point{}, indexError(index)
	}
	f, err := d.probe()
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(f.Width, f.Height), nil
}

// TileSize is the full image size; WebP is not tiled.
func (d *Decoder) TileSize(index int) (image.Point, error) { return d.Size(index) }

// Metadata returns the metadata of image index, read once per session.
func (d *Decoder) Metadata(index int) (*Metadata, error) {
	if index != 0 {
		return nil, indexError(index)
	}
	if _, err := d.probe(); err != nil {
		return nil, err
	}
	return d.metadata.get(func() (*Metadata, error) {
		return readMetadata(d.data, &d.opts)
	})
}

// Decode decodes image req.ImageIndex, cropped and scaled as requested. The
// returned raster is owned by the caller and stays valid after Close.
func (d *Decoder) Decode(req DecodeRequest) (*Raster, DecodeResult, error) {
	total := newStopwatch()
	if req.ImageIndex != 0 {
		return nil, DecodeResult{}, indexError(req.ImageIndex)
	}
	f, err := d.probe()
	if err != nil {
		return nil, DecodeResult{}, err
	}
	c, err := d.backend()
	if err != nil {
		return nil, DecodeResult{}, err
	}

	md, err := d.Metadata(0)
	if err != nil {
		logger.WithError(err).Debug("decoding without metadata")
		md = nil
	}

	full := image.Pt(f.Width, f.Height)
	region := req.Region
	if region != nil {
		r := orientRegion(*region, full, md.Orientation())
		region = &r
	}
	g := resolveGeometry(full, region, scaleOrOne(req.ScaleX), scaleOrOne(req.ScaleY))

	opts := &codec.DecodeOptions{
		UseThreads:        d.opts.Multithreaded,
		NoFancyUpsampling: true,
		Colorspace:        codec.ModeRGB,
	}
	if f.HasAlpha {
		opts.Colorspace = codec.ModeRGBA
	}
	if g.cropped {
		opts.UseCropping = true
		opts.CropLeft, opts.CropTop = g.crop.Min.X, g.crop.Min.Y
		opts.CropWidth, opts.CropHeight = g.crop.Dx(), g.crop.Dy()
	}
	if g.scaled {
		opts.UseScaling = true
		opts.ScaledWidth, opts.ScaledHeight = g.scaledW, g.scaledH
	}

	step := newStopwatch()
	buf, st := c.Decode(d.data, opts, d.scope)
	defer buf.Free()
	if err := statusError("WebPDecode", st); err != nil {
		return nil, DecodeResult{}, err
	}
	logger.WithFields(log.Fields{
		"width":  buf.Width,
		"height": buf.Height,
	}).Tracef("decoded image in %s", step)

	r := copyBuffer(buf)
	if md != nil && md.ColorProfile() != nil {
		p := md.ColorProfile()
		if err := d.opts.ColorManager.ToSRGB(p, r); err != nil {
			logger.WithError(err).WithField("profile", p.Description).Debug("color correction skipped")
		}
	}

	logger.Tracef("total time %s", total)
	return r, DecodeResult{ReductionFactor: g.reduction, Hints: g.hints}, nil
}

// Close releases the session's buffers. The decoder must not be used
// afterwards.
func (d *Decoder) Close() error {
	d.scope.Release()
	d.data = nil
	return nil
}

func scaleOrOne(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}

// copyBuffer moves decoded pixels into a caller-owned raster.
func copyBuffer(buf *codec.Buffer) *Raster {
	order := OrderRGB
	if buf.Colorspace == codec.ModeRGBA {
		order = OrderRGBA
	}
	r := NewRaster(buf.Width, buf.Height, order)
	for y := 0; y < buf.Height; y++ {
		copy(r.Pix[y*r.Stride:(y+1)*r.Stride], buf.Pix[y*buf.Stride:])
	}
	return r
}

func (d *Decoder) backend() (codec.Codec, error) {
	return d.codec.get(func() (codec.Codec, error) {
		c, err := codec.LoadDecoder(d.opts.Backend)
		if err != nil {
			return nil, ioError(err, "load decoder %q", d.opts.Backend)
		}
		return c, nil
	})
}

// buffer reads the whole source into the session scope. A non-empty buffer
// is never re-read.
func (d *Decoder) buffer() ([]byte, error) {
	if len(d.data) > 0 {
		return d.data, nil
	}
	data, err := d.src.readAll(d.scope)
	if err != nil {
		return nil, err
	}
	d.data = data
	return data, nil
}

// probe buffers the source and reads the bitstream features once.
func (d *Decoder) probe() (codec.Features, error) {
	return d.features.get(func() (codec.Features, error) {
		data, err := d.buffer()
		if err != nil {
			return codec.Features{}, err
		}
		if !container.Sniff(data) {
			return codec.Features{}, &Error{Kind: KindInvalidSourceFormat, msg: "not a WebP file"}
		}
		c, err := d.backend()
		if err != nil {
			return codec.Features{}, err
		}
		f, st := c.Features(data)
		if err := statusError("WebPGetFeatures", st); err != nil {
			return codec.Features{}, err
		}
		logger.WithFields(log.Fields{
			"width":  f.Width,
			"height": f.Height,
			"alpha":  f.HasAlpha,
			"format": f.Format,
		}).Debug("read image info")
		return f, nil
	})
}
