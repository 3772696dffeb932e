package webpbridge

// Format describes an image format known to the bridge.
type Format struct {
	Key          string
	Name         string
	MediaType    string
	Extensions   []string
	Raster       bool
	Video        bool
	Transparency bool
}

// IsUnknown reports whether f is FormatUnknown.
func (f Format) IsUnknown() bool { return f.Key == FormatUnknown.Key }

func (f Format) String() string { return f.Name }

var (
	// FormatUnknown is returned by DetectFormat for anything that is not WebP.
	FormatUnknown = Format{Key: "unknown", Name: "Unknown"}

	// FormatWebP describes the WebP format.
	FormatWebP = Format{
		Key:          "webp",
		Name:         "WebP",
		MediaType:    "image/webp",
		Extensions:   []string{"webp"},
		Raster:       true,
		Video:        false,
		Transparency: true,
	}
)

// SupportedFormats lists the formats the decoder and encoder handle.
func SupportedFormats() []Format { return []Format{FormatWebP} }
