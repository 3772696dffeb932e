package webpbridge

import "image"

// Orientation is the clockwise rotation needed to display an image upright.
type Orientation int

const (
	Rotate0 Orientation = iota
	Rotate90
	Rotate180
	Rotate270
)

// OrientationFromEXIF maps an EXIF Orientation tag value to a rotation.
// Mirrored orientations (2, 4, 5 and 7) and unknown values are treated as
// upright.
func OrientationFromEXIF(v int) Orientation {
	switch v {
	case 3:
		return Rotate180
	case 6:
		return Rotate90
	case 8:
		return Rotate270
	}
	return Rotate0
}

// Degrees returns the rotation in degrees.
func (o Orientation) Degrees() int { return int(o) * 90 }

func (o Orientation) String() string {
	switch o {
	case Rotate90:
		return "90"
	case Rotate180:
		return "180"
	case Rotate270:
		return "270"
	}
	return "0"
}

// orientRegion maps r, given in displayed coordinates, onto the stored image
// of size full.
func orientRegion(r image.Rectangle, full image.Point, o Orientation) image.Rectangle {
	r = r.Canon()
	x, y, w, h := r.Min.X, r.Min.Y, r.Dx(), r.Dy()
	switch o {
	case Rotate90:
		return image.Rect(y, full.Y-x-w, y+h, full.Y-x)
	case Rotate180:
		return image.Rect(full.X-x-w, full.Y-y-h, full.X-x, full.Y-y)
	case Rotate270:
		return image.Rect(full.X-y-h, x, full.X-y, x+w)
	}
	return r
}
