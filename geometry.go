package webpbridge

import (
	"image"
	"math"
)

const (
	// scaleDelta is how far a scale factor may be from 1 and still count
	// as unscaled.
	scaleDelta = 1e-7

	// reductionTolerance is the slack allowed when matching a scale to a
	// power of two.
	reductionTolerance = 0.001

	maxReductionFactor = 9
)

// ReductionFactor is the number of times an image was halved in each
// dimension: 0 is full size, 1 is half size, 2 quarter size, and so on.
type ReductionFactor int

// ReductionFactorForScale returns the largest factor f for which scale is at
// most 2^-f, allowing tolerance.
func ReductionFactorForScale(scale, tolerance float64) ReductionFactor {
	f := 0
	next := 0.5
	for f < maxReductionFactor && scale <= next+tolerance {
		f++
		next /= 2
	}
	return ReductionFactor(f)
}

// Scale returns the scale the factor stands for, 2^-f.
func (f ReductionFactor) Scale() float64 { return math.Ldexp(1, -int(f)) }

// Hints report how a decode request was honoured.
type Hints uint8

const (
	// HintRegionHonored is set when the decoder cropped to the requested
	// region.
	HintRegionHonored Hints = 1 << iota
	// HintScaleHonored is set when the decoder scaled the output.
	HintScaleHonored
	// HintIgnoredRegion is set by decoders that return the full image in
	// place of a region.
	HintIgnoredRegion
	// HintIgnoredScale is set by decoders that return the unscaled image.
	HintIgnoredScale
	// HintNeedsDifferentialScale is set by decoders that can only scale
	// both axes alike, leaving the caller to apply the difference.
	HintNeedsDifferentialScale
)

// Has reports whether every hint in h2 is set in h.
func (h Hints) Has(h2 Hints) bool { return h&h2 == h2 }

func (h Hints) String() string {
	if h == 0 {
		return "none"
	}
	names := []string{"RegionHonored", "ScaleHonored", "IgnoredRegion", "IgnoredScale", "NeedsDifferentialScale"}
	s := ""
	for i, name := range names {
		if h&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	return s
}

// geometry is a decode request resolved against the image size.
type geometry struct {
	crop    image.Rectangle
	cropped bool

	scaledW, scaledH int
	scaled           bool

	reduction ReductionFactor
	hints     Hints
}

// resolveGeometry turns a region and per-axis scale into crop and scale
// settings for the codec. The region is clipped to the image. A region
// covering the whole image is not a crop. The scale applies to the region.
func resolveGeometry(full image.Point, region *image.Rectangle, scaleX, scaleY float64) geometry {
	var g geometry
	bounds := image.Rectangle{Max: full}

	src := bounds
	if region != nil {
		r := region.Canon().Intersect(bounds)
		if r != bounds {
			g.crop = r
			g.cropped = true
			g.hints |= HintRegionHonored
			src = r
		}
	}

	if math.Abs(scaleX-1) > scaleDelta || math.Abs(scaleY-1) > scaleDelta {
		g.scaled = true
		g.scaledW = max(1, int(math.Round(float64(src.Dx())*scaleX)))
		g.scaledH = max(1, int(math.Round(float64(src.Dy())*scaleY)))
		g.reduction = ReductionFactorForScale(math.Max(scaleX, scaleY), reductionTolerance)
		g.hints |= HintScaleHonored
	}
	return g
}
