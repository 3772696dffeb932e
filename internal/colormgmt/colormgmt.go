// Package colormgmt reads embedded ICC profiles and converts decoded pixels
// from a handful of well-known RGB working spaces into sRGB.
//
// Profiles are matched by their description tag. Only matrix/TRC spaces that
// prism models are converted; anything else is reported as unsupported and
// the pixels are left alone.
package colormgmt

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/mandykoh/prism/adobergb"
	"github.com/mandykoh/prism/ciexyz"
	"github.com/mandykoh/prism/displayp3"
	"github.com/mandykoh/prism/meta/icc"
	"github.com/mandykoh/prism/prophotorgb"
	"github.com/mandykoh/prism/srgb"
)

var (
	// ErrUnsupportedProfile is returned by ToSRGB for profiles whose space is
	// not known.
	ErrUnsupportedProfile = errors.New("colormgmt: unsupported color profile")

	// ErrBandMismatch is returned by ToSRGB when the raster's bands do not fit
	// the profile's color space.
	ErrBandMismatch = errors.New("colormgmt: numbers of source raster bands and source color space components do not match")
)

// Space is an RGB working space this package can convert from.
type Space int

const (
	SpaceUnknown Space = iota
	SpaceSRGB
	SpaceDisplayP3
	SpaceAdobeRGB
	SpaceProPhotoRGB
)

func (s Space) String() string {
	switch s {
	case SpaceSRGB:
		return "sRGB"
	case SpaceDisplayP3:
		return "Display P3"
	case SpaceAdobeRGB:
		return "Adobe RGB (1998)"
	case SpaceProPhotoRGB:
		return "ProPhoto RGB"
	}
	return "unknown"
}

// Profile is a parsed ICC profile.
type Profile struct {
	Description string
	ColorSpace  icc.ColorSpace
	Space       Space
	Components  int

	// Data is the raw profile.
	Data []byte
}

// Parse reads the header and tag table of an ICC profile. A missing or
// unreadable description is not an error; the profile then has SpaceUnknown.
func Parse(data []byte) (*Profile, error) {
	p, err := icc.NewProfileReader(bytes.NewReader(data)).ReadProfile()
	if err != nil {
		return nil, fmt.Errorf("colormgmt: parse ICC profile: %w", err)
	}
	desc, _ := p.Description()
	return &Profile{
		Description: desc,
		ColorSpace:  p.Header.DataColorSpace,
		Space:       spaceOf(desc),
		Components:  components(p.Header.DataColorSpace),
		Data:        data,
	}, nil
}

func spaceOf(desc string) Space {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "srgb"):
		return SpaceSRGB
	case strings.Contains(d, "p3"):
		return SpaceDisplayP3
	case strings.Contains(d, "adobe rgb"), strings.Contains(d, "adobergb"):
		return SpaceAdobeRGB
	case strings.Contains(d, "prophoto"):
		return SpaceProPhotoRGB
	}
	return SpaceUnknown
}

func components(cs icc.ColorSpace) int {
	switch cs {
	case icc.ColorSpaceGray:
		return 1
	case icc.ColorSpaceCMYK:
		return 4
	case icc.ColorSpace2Color:
		return 2
	}
	return 3
}

type converter func(c color.NRGBA) color.NRGBA

func converterFor(s Space) converter {
	switch s {
	case SpaceDisplayP3:
		return func(c color.NRGBA) color.NRGBA {
			col, a := displayp3.ColorFromNRGBA(c)
			return toSRGB(col.ToXYZ(), a)
		}
	case SpaceAdobeRGB:
		return func(c color.NRGBA) color.NRGBA {
			col, a := adobergb.ColorFromNRGBA(c)
			return toSRGB(col.ToXYZ(), a)
		}
	case SpaceProPhotoRGB:
		return func(c color.NRGBA) color.NRGBA {
			col, a := prophotorgb.ColorFromNRGBA(c)
			return toSRGB(col.ToXYZ(), a)
		}
	}
	return nil
}

func toSRGB(xyz ciexyz.Color, alpha float32) color.NRGBA {
	return srgb.ColorFromXYZ(xyz).ToNRGBA(alpha)
}

// ToSRGB converts packed RGB (bands 3) or RGBA (bands 4) pixels in place.
// sRGB profiles leave the pixels untouched.
func ToSRGB(p *Profile, pix []byte, width, height, stride, bands int) error {
	if p.Components != 3 || (bands != 3 && bands != 4) {
		return ErrBandMismatch
	}
	if p.Space == SpaceSRGB {
		return nil
	}
	conv := converterFor(p.Space)
	if conv == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedProfile, p.Description)
	}

	// neighbouring pixels are often equal
	var lastIn, lastOut color.NRGBA
	haveLast := false
	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x := 0; x < width; x++ {
			px := row[x*bands : x*bands+bands]
			in := color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xff}
			if bands == 4 {
				in.A = px[3]
			}
			var out color.NRGBA
			if haveLast && in == lastIn {
				out = lastOut
			} else {
				out = conv(in)
				lastIn, lastOut, haveLast = in, out, true
			}
			px[0], px[1], px[2] = out.R, out.G, out.B
		}
	}
	return nil
}
