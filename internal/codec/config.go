package codec

import "fmt"

// Preset selects a set of encoding parameters tuned for specific content types.
type Preset int

const (
	PresetDefault Preset = iota
	PresetPicture
	PresetPhoto
	PresetDrawing
	PresetIcon
	PresetText
)

// Config controls one compression call. Field meanings and ranges match
// libwebp's WebPConfig; a backend that has no equivalent for a field accepts
// and ignores it.
type Config struct {
	// Lossless selects VP8L. When false, VP8 lossy encoding is used.
	Lossless bool

	// Quality is the compression quality (0-100). For lossless it controls
	// the compression effort.
	Quality float32

	// Method is the speed/size trade-off (0=fast, 6=slower-better).
	Method int

	// Preset the config was initialised from.
	Preset Preset

	// Exact preserves RGB values under fully transparent pixels.
	Exact bool

	// Autofilter lets the encoder pick the loop filter strength.
	Autofilter bool

	// ThreadLevel is non-zero when the encoder may use several threads.
	ThreadLevel int

	SNSStrength     int // 0-100
	FilterStrength  int // 0-100
	FilterSharpness int // 0-7
	Preprocessing   int // bitmask: 1 segment smooth, 2 dithering
	Segments        int // 1-4
	Pass            int // 1-10
}

// ConfigPreset returns a config tuned for the given preset and quality,
// matching libwebp's WebPConfigPreset.
func ConfigPreset(preset Preset, quality float32) *Config {
	cfg := &Config{
		Quality:         quality,
		Method:          4,
		Preset:          preset,
		SNSStrength:     50,
		FilterStrength:  60,
		FilterSharpness: 0,
		Segments:        4,
		Pass:            1,
	}

	switch preset {
	case PresetPicture:
		cfg.SNSStrength = 80
		cfg.FilterSharpness = 4
		cfg.FilterStrength = 35
		cfg.Preprocessing &^= 2
	case PresetPhoto:
		cfg.SNSStrength = 80
		cfg.FilterSharpness = 3
		cfg.FilterStrength = 30
		cfg.Preprocessing |= 2
	case PresetDrawing:
		cfg.SNSStrength = 25
		cfg.FilterSharpness = 6
		cfg.FilterStrength = 10
	case PresetIcon, PresetText:
		cfg.SNSStrength = 0
		cfg.FilterStrength = 0
		cfg.Preprocessing &^= 2
	}
	return cfg
}

// Validate reports the first field that is out of range, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("webp: nil config")
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("webp: invalid Quality %.2f (must be 0-100)", c.Quality)
	}
	if c.Method < 0 || c.Method > 6 {
		return fmt.Errorf("webp: invalid Method %d (must be 0-6)", c.Method)
	}
	if c.Preset < PresetDefault || c.Preset > PresetText {
		return fmt.Errorf("webp: invalid Preset %d", c.Preset)
	}
	if c.ThreadLevel < 0 {
		return fmt.Errorf("webp: invalid ThreadLevel %d (must be >= 0)", c.ThreadLevel)
	}
	if c.SNSStrength < 0 || c.SNSStrength > 100 {
		return fmt.Errorf("webp: invalid SNSStrength %d (must be 0-100)", c.SNSStrength)
	}
	if c.FilterStrength < 0 || c.FilterStrength > 100 {
		return fmt.Errorf("webp: invalid FilterStrength %d (must be 0-100)", c.FilterStrength)
	}
	if c.FilterSharpness < 0 || c.FilterSharpness > 7 {
		return fmt.Errorf("webp: invalid FilterSharpness %d (must be 0-7)", c.FilterSharpness)
	}
	if c.Preprocessing < 0 || c.Preprocessing > 7 {
		return fmt.Errorf("webp: invalid Preprocessing %d (must be 0-7)", c.Preprocessing)
	}
	if c.Segments < 1 || c.Segments > 4 {
		return fmt.Errorf("webp: invalid Segments %d (must be 1-4)", c.Segments)
	}
	if c.Pass < 1 || c.Pass > 10 {
		return fmt.Errorf("webp: invalid Pass %d (must be 1-10)", c.Pass)
	}
	return nil
}
