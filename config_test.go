package webpbridge

import (
	"slices"
	"sort"
	"testing"

	"github.com/deepteams/webpbridge/internal/codec"
)

func TestEncodeOptionsDefaults(t *testing.T) {
	for _, cfg := range []Configuration{nil, MapConfiguration{}} {
		o := EncodeOptionsFrom(cfg)
		if o.Quality != 50 || o.Method != 3 {
			t.Errorf("quality/method = %v/%d, want 50/3", o.Quality, o.Method)
		}
		if o.Lossless || o.Autofilter || o.Multithreaded {
			t.Errorf("flags set by default: %+v", o)
		}
		if o.Backend != codec.DefaultEncoder {
			t.Errorf("Backend = %q, want %q", o.Backend, codec.DefaultEncoder)
		}
		if o.XMP != nil {
			t.Errorf("XMP = %q, want nil", *o.XMP)
		}
	}
}

func TestEncodeOptionsCoercion(t *testing.T) {
	o := EncodeOptionsFrom(MapConfiguration{
		KeyEncoderQuality:        "75",
		KeyEncoderMethod:         6.0,
		KeyEncoderLossless:       "true",
		KeyEncoderAutofilter:     1,
		KeyEncoderMultithreading: true,
		KeyEncoderBackend:        "go",
	})
	if o.Quality != 75 || o.Method != 6 {
		t.Errorf("quality/method = %v/%d, want 75/6", o.Quality, o.Method)
	}
	if !o.Lossless || !o.Autofilter || !o.Multithreaded {
		t.Errorf("flags not coerced: %+v", o)
	}
	if o.Backend != "go" {
		t.Errorf("Backend = %q", o.Backend)
	}
}

func TestEncodeOptionsMalformed(t *testing.T) {
	o := EncodeOptionsFrom(MapConfiguration{
		KeyEncoderQuality:  "high",
		KeyEncoderMethod:   []int{1},
		KeyEncoderLossless: "maybe",
		KeyEncoderBackend:  "",
	})
	if o.Quality != DefaultQuality || o.Method != DefaultMethod {
		t.Errorf("quality/method = %v/%d, want defaults", o.Quality, o.Method)
	}
	if o.Lossless {
		t.Error("malformed lossless value enabled lossless")
	}
	if o.Backend != codec.DefaultEncoder {
		t.Errorf("Backend = %q, want %q", o.Backend, codec.DefaultEncoder)
	}
}

func TestDecoderOptionsFrom(t *testing.T) {
	o := DecoderOptionsFrom(nil)
	if o.Multithreaded || o.Backend != codec.DefaultDecoder {
		t.Errorf("defaults = %+v", o)
	}

	o = DecoderOptionsFrom(MapConfiguration{
		KeyDecoderMultithreading: "1",
		KeyDecoderBackend:        "libwebp",
	})
	if !o.Multithreaded || o.Backend != "libwebp" {
		t.Errorf("configured = %+v", o)
	}
}

func TestToConfig(t *testing.T) {
	o := EncodeOptions{Quality: 80, Method: 5, Lossless: true, Autofilter: true, Multithreaded: true}
	cfg := o.toConfig()
	if cfg.Preset != codec.PresetPhoto {
		t.Errorf("Preset = %v, want photo", cfg.Preset)
	}
	if cfg.Quality != 80 || cfg.Method != 5 {
		t.Errorf("quality/method = %v/%d", cfg.Quality, cfg.Method)
	}
	if !cfg.Lossless || !cfg.Exact || !cfg.Autofilter || cfg.ThreadLevel != 1 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// photo tuning survives the overrides
	if cfg.SNSStrength != 80 || cfg.FilterStrength != 30 {
		t.Errorf("photo tuning lost: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg = DefaultEncodeOptions().toConfig()
	if cfg.Lossless || cfg.Exact || cfg.ThreadLevel != 0 {
		t.Errorf("default config = %+v", cfg)
	}
}

func TestConfigKeys(t *testing.T) {
	keys := ConfigKeys()
	if len(keys) != 8 {
		t.Fatalf("ConfigKeys = %v, want 8 keys", keys)
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("keys not sorted: %v", keys)
	}
	want := []string{"encoder.WebPEncoder.quality", "decoder.WebPDecoder.multithreading"}
	want = append(want, DecoderConfigKeys()...)
	want = append(want, EncoderConfigKeys()...)
	for _, k := range want {
		if !slices.Contains(keys, k) {
			t.Errorf("ConfigKeys missing %q", k)
		}
	}
}
