// Package codec is the boundary between the bridge and the libraries that do
// the actual VP8/VP8L work. Each backend wraps one library behind the Codec
// interface and reports failures with libwebp's status and error numbering,
// so callers translate codes the same way whichever backend ran.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/deepteams/webpbridge/internal/container"
	"github.com/deepteams/webpbridge/internal/pool"
)

// Backend names.
const (
	BackendGo      = "go"
	BackendLibwebp = "libwebp"
	BackendCgo     = "cgo"

	DefaultDecoder = BackendGo
	DefaultEncoder = BackendLibwebp
)

// Features is what a backend learns about a bitstream without decoding it.
type Features struct {
	Width        int
	Height       int
	HasAlpha     bool
	HasAnimation bool
	Format       container.FormatType
}

// Colorspace is the byte layout of decoded pixels.
type Colorspace int

const (
	ModeRGB  Colorspace = iota // R,G,B
	ModeRGBA                   // R,G,B,A, not premultiplied
)

// BytesPerPixel returns 3 for ModeRGB and 4 for ModeRGBA.
func (c Colorspace) BytesPerPixel() int {
	if c == ModeRGBA {
		return 4
	}
	return 3
}

func (c Colorspace) String() string {
	if c == ModeRGBA {
		return "RGBA"
	}
	return "RGB"
}

// DecodeOptions mirrors the subset of libwebp's WebPDecoderOptions the
// bridge uses. Cropping happens before scaling.
type DecodeOptions struct {
	UseCropping bool
	CropLeft    int
	CropTop     int
	CropWidth   int
	CropHeight  int

	// UseScaling resizes the (cropped) image. When one of the scaled
	// dimensions is 0 it is derived from the other, keeping the aspect ratio.
	UseScaling   bool
	ScaledWidth  int
	ScaledHeight int

	UseThreads        bool
	NoFancyUpsampling bool

	Colorspace Colorspace
}

// Buffer holds decoded, packed pixels. Pix is drawn from the allocator passed
// to Decode and must be handed back with Free.
type Buffer struct {
	Width      int
	Height     int
	Stride     int
	Colorspace Colorspace
	Pix        []byte

	alloc pool.Allocator
}

// Free returns Pix to its allocator. It is safe to call more than once.
func (b *Buffer) Free() {
	if b == nil || b.Pix == nil {
		return
	}
	if b.alloc != nil {
		b.alloc.Put(b.Pix)
	}
	b.Pix = nil
}

// Codec is implemented by every backend.
type Codec interface {
	// Name returns the name the backend is registered under.
	Name() string

	// Features probes data without decoding pixels.
	Features(data []byte) (Features, Status)

	// Decode decodes the still image in data according to opts. The
	// returned buffer's Pix comes from alloc (or the heap if alloc is nil).
	Decode(data []byte, opts *DecodeOptions, alloc pool.Allocator) (*Buffer, Status)

	// ValidateConfig reports whether the backend can honour cfg.
	ValidateConfig(cfg *Config) error

	// Encode compresses pic and streams the result through pic.Writer. On
	// failure it returns false and pic.ErrorCode says why.
	Encode(cfg *Config, pic *Picture) bool
}

// ErrUnknownBackend is returned by Lookup for a name nobody registered.
var ErrUnknownBackend = errors.New("webp: unknown codec backend")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Codec)
)

// Register makes a backend available by its name. Registering the same name
// twice panics.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := c.Name()
	if _, dup := registry[name]; dup {
		panic("codec: Register called twice for backend " + name)
	}
	registry[name] = c
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Codec, error) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, name)
	}
	return c, nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// probe runs the container-level prober and translates its findings into a
// status the way libwebp's WebPGetFeatures reports them.
func probe(data []byte) (Features, Status) {
	f, err := container.Probe(data)
	if err != nil {
		return Features{}, probeStatus(err)
	}
	return Features{
		Width:        f.Width,
		Height:       f.Height,
		HasAlpha:     f.HasAlpha,
		HasAnimation: f.HasAnimation,
		Format:       f.Format,
	}, StatusOK
}

func probeStatus(err error) Status {
	if errors.Is(err, container.ErrTruncated) {
		return StatusNotEnoughData
	}
	return StatusBitstreamError
}

// prepare probes data and checks opts before any pixel work.
func prepare(data []byte, opts *DecodeOptions) (Features, Status) {
	if opts == nil {
		return Features{}, StatusInvalidParam
	}
	f, st := probe(data)
	if st != StatusOK {
		return f, st
	}
	if f.HasAnimation {
		return f, StatusUnsupportedFeature
	}
	return f, checkOptions(opts, f.Width, f.Height)
}
