package codec

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// loadFlag records that a component type has brought up its codec library.
// It is set at most once per process and never reset.
type loadFlag struct {
	loaded  atomic.Bool
	once    sync.Once
	backend string
}

var (
	decoderLoad loadFlag
	encoderLoad loadFlag
)

func (f *loadFlag) load(c Codec, component string) {
	if f.loaded.Load() {
		return
	}
	f.once.Do(func() {
		f.backend = c.Name()
		entry := log.WithFields(log.Fields{
			"component": component,
			"backend":   c.Name(),
		})
		if l, ok := c.(interface{ Library() string }); ok {
			entry = entry.WithField("library", l.Library())
		}
		entry.Debug("codec library loaded")
		f.loaded.Store(true)
	})
}

func (f *loadFlag) state() (string, bool) {
	if !f.loaded.Load() {
		return "", false
	}
	return f.backend, true
}

// LoadDecoder returns the named backend for decoding, loading the decoder
// library the first time any decoder asks.
func LoadDecoder(name string) (Codec, error) {
	c, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	decoderLoad.load(c, "decoder")
	return c, nil
}

// LoadEncoder is LoadDecoder for the encoding side.
func LoadEncoder(name string) (Codec, error) {
	c, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	encoderLoad.load(c, "encoder")
	return c, nil
}

// DecoderLoaded reports whether a decoder library was loaded and which
// backend loaded it first.
func DecoderLoaded() (backend string, ok bool) { return decoderLoad.state() }

// EncoderLoaded is DecoderLoaded for the encoding side.
func EncoderLoaded() (backend string, ok bool) { return encoderLoad.state() }
