package webpbridge

import (
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/deepteams/webpbridge/internal/codec"
)

// Configuration keys read by the decoder and encoder.
const (
	KeyDecoderMultithreading = "decoder.WebPDecoder.multithreading"
	KeyDecoderBackend        = "decoder.WebPDecoder.backend"

	KeyEncoderQuality        = "encoder.WebPEncoder.quality"
	KeyEncoderMethod         = "encoder.WebPEncoder.method"
	KeyEncoderLossless       = "encoder.WebPEncoder.lossless"
	KeyEncoderAutofilter     = "encoder.WebPEncoder.autofilter"
	KeyEncoderMultithreading = "encoder.WebPEncoder.multithreading"
	KeyEncoderBackend        = "encoder.WebPEncoder.backend"
)

// Defaults applied when a key is missing or its value cannot be coerced.
const (
	DefaultQuality float32 = 50
	DefaultMethod          = 3
)

// Configuration looks up host configuration values by key.
type Configuration interface {
	Get(key string) (value any, ok bool)
}

// MapConfiguration is a Configuration backed by a map. Values may be of any
// type cast can coerce, so "75", 75 and 75.0 all read as quality 75.
type MapConfiguration map[string]any

// Get implements Configuration.
func (m MapConfiguration) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// DecoderConfigKeys lists the keys the decoder reads.
func DecoderConfigKeys() []string {
	return []string{KeyDecoderBackend, KeyDecoderMultithreading}
}

// EncoderConfigKeys lists the keys the encoder reads.
func EncoderConfigKeys() []string {
	return []string{
		KeyEncoderAutofilter,
		KeyEncoderBackend,
		KeyEncoderLossless,
		KeyEncoderMethod,
		KeyEncoderMultithreading,
		KeyEncoderQuality,
	}
}

// ConfigKeys lists every configuration key, sorted.
func ConfigKeys() []string {
	keys := append(DecoderConfigKeys(), EncoderConfigKeys()...)
	sort.Strings(keys)
	return keys
}

// EncodeOptions controls one Encode call.
type EncodeOptions struct {
	Quality       float32 // 0-100
	Method        int     // 0-6
	Lossless      bool
	Autofilter    bool
	Multithreaded bool

	// Backend names the codec backend; empty means the default.
	Backend string

	// XMP, when set, is embedded as an "XMP " chunk in an Extended format
	// file.
	XMP *string
}

// DefaultEncodeOptions returns the options used when nothing is configured.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Quality: DefaultQuality,
		Method:  DefaultMethod,
		Backend: codec.DefaultEncoder,
	}
}

// EncodeOptionsFrom reads encode options from cfg. A nil cfg yields the
// defaults.
func EncodeOptionsFrom(cfg Configuration) EncodeOptions {
	def := DefaultEncodeOptions()
	return EncodeOptions{
		Quality:       configFloat32(cfg, KeyEncoderQuality, def.Quality),
		Method:        configInt(cfg, KeyEncoderMethod, def.Method),
		Lossless:      configBool(cfg, KeyEncoderLossless, false),
		Autofilter:    configBool(cfg, KeyEncoderAutofilter, false),
		Multithreaded: configBool(cfg, KeyEncoderMultithreading, false),
		Backend:       configString(cfg, KeyEncoderBackend, def.Backend),
	}
}

// toConfig initialises a codec config from the Photo preset and applies the
// options on top of it.
func (o EncodeOptions) toConfig() *codec.Config {
	cfg := codec.ConfigPreset(codec.PresetPhoto, o.Quality)
	cfg.Lossless = o.Lossless
	cfg.Quality = o.Quality
	cfg.Method = o.Method
	cfg.Autofilter = o.Autofilter
	cfg.Exact = o.Lossless
	if o.Multithreaded {
		cfg.ThreadLevel = 1
	}
	return cfg
}

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	Multithreaded bool

	// Backend names the codec backend; empty means the default.
	Backend string

	// Collaborators. Nil fields use the built-in implementations.
	DirectoryReader    DirectoryReader
	ColorProfileReader ColorProfileReader
	ColorManager       ColorManager
}

// DecoderOptionsFrom reads decoder options from cfg. A nil cfg yields the
// defaults.
func DecoderOptionsFrom(cfg Configuration) DecoderOptions {
	return DecoderOptions{
		Multithreaded: configBool(cfg, KeyDecoderMultithreading, false),
		Backend:       configString(cfg, KeyDecoderBackend, codec.DefaultDecoder),
	}
}

func lookup(cfg Configuration, key string) (any, bool) {
	if cfg == nil {
		return nil, false
	}
	v, ok := cfg.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func fallback(key string, v any, def any, err error) {
	logger.WithFields(log.Fields{
		"key":     key,
		"value":   v,
		"default": def,
	}).WithError(err).Warn("ignoring malformed configuration value")
}

func configFloat32(cfg Configuration, key string, def float32) float32 {
	v, ok := lookup(cfg, key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat32E(v)
	if err != nil {
		fallback(key, v, def, err)
		return def
	}
	return f
}

func configInt(cfg Configuration, key string, def int) int {
	v, ok := lookup(cfg, key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		fallback(key, v, def, err)
		return def
	}
	return n
}

func configBool(cfg Configuration, key string, def bool) bool {
	v, ok := lookup(cfg, key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		fallback(key, v, def, err)
		return def
	}
	return b
}

func configString(cfg Configuration, key string, def string) string {
	v, ok := lookup(cfg, key)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		fallback(key, v, def, err)
		return def
	}
	return s
}
