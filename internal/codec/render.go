package codec

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/deepteams/webpbridge/internal/pool"
)

// checkOptions rejects crop and scale settings libwebp would refuse.
func checkOptions(opts *DecodeOptions, width, height int) Status {
	if opts.Colorspace != ModeRGB && opts.Colorspace != ModeRGBA {
		return StatusInvalidParam
	}
	if opts.UseCropping {
		if opts.CropLeft < 0 || opts.CropTop < 0 ||
			opts.CropWidth <= 0 || opts.CropHeight <= 0 ||
			opts.CropLeft+opts.CropWidth > width ||
			opts.CropTop+opts.CropHeight > height {
			return StatusInvalidParam
		}
	}
	if opts.UseScaling {
		if _, _, ok := scaledSize(opts, cropSize(opts, width, height)); !ok {
			return StatusInvalidParam
		}
	}
	return StatusOK
}

func cropSize(opts *DecodeOptions, width, height int) image.Point {
	if opts.UseCropping {
		return image.Pt(opts.CropWidth, opts.CropHeight)
	}
	return image.Pt(width, height)
}

// scaledSize resolves a zero target dimension from the other one, as
// libwebp's WebPRescalerGetScaledDimensions does.
func scaledSize(opts *DecodeOptions, src image.Point) (w, h int, ok bool) {
	w, h = opts.ScaledWidth, opts.ScaledHeight
	if w < 0 || h < 0 || (w == 0 && h == 0) {
		return 0, 0, false
	}
	if w == 0 {
		w = int((int64(src.X)*int64(h) + int64(src.Y)/2) / int64(src.Y))
	}
	if h == 0 {
		h = int((int64(src.Y)*int64(w) + int64(src.X)/2) / int64(src.X))
	}
	if w <= 0 || h <= 0 || w > math.MaxInt32/4/h {
		return 0, 0, false
	}
	return w, h, true
}

// render applies opts to a decoded image and packs the result into a buffer
// drawn from alloc.
func render(img image.Image, opts *DecodeOptions, alloc pool.Allocator) *Buffer {
	b := img.Bounds()
	src := img
	sr := b
	if opts.UseCropping {
		sr = image.Rect(b.Min.X+opts.CropLeft, b.Min.Y+opts.CropTop,
			b.Min.X+opts.CropLeft+opts.CropWidth, b.Min.Y+opts.CropTop+opts.CropHeight)
	}
	if opts.UseScaling {
		w, h, _ := scaledSize(opts, sr.Size())
		if w != sr.Dx() || h != sr.Dy() {
			// Scale in premultiplied space so transparent pixels do not bleed.
			dst := image.NewRGBA(image.Rect(0, 0, w, h))
			draw.BiLinear.Scale(dst, dst.Bounds(), img, sr, draw.Src, nil)
			src, sr = dst, dst.Bounds()
		}
	}

	out := newBuffer(sr.Dx(), sr.Dy(), opts.Colorspace, alloc)
	pack(out, src, sr)
	return out
}

func newBuffer(width, height int, cs Colorspace, alloc pool.Allocator) *Buffer {
	stride := width * cs.BytesPerPixel()
	var pix []byte
	if alloc != nil {
		pix = alloc.Get(stride * height)
	} else {
		pix = make([]byte, stride*height)
	}
	return &Buffer{Width: width, Height: height, Stride: stride, Colorspace: cs, Pix: pix, alloc: alloc}
}

// pack writes the pixels of r in src into out as straight (not premultiplied)
// RGB or RGBA.
func pack(out *Buffer, src image.Image, r image.Rectangle) {
	bpp := out.Colorspace.BytesPerPixel()
	switch m := src.(type) {
	case *image.NRGBA:
		for y := 0; y < out.Height; y++ {
			in := m.Pix[m.PixOffset(r.Min.X, r.Min.Y+y):]
			row := out.Pix[y*out.Stride : y*out.Stride+out.Width*bpp]
			if bpp == 4 {
				copy(row, in[:out.Width*4])
				continue
			}
			for x := 0; x < out.Width; x++ {
				row[x*3+0] = in[x*4+0]
				row[x*3+1] = in[x*4+1]
				row[x*3+2] = in[x*4+2]
			}
		}
	case *image.RGBA:
		for y := 0; y < out.Height; y++ {
			in := m.Pix[m.PixOffset(r.Min.X, r.Min.Y+y):]
			row := out.Pix[y*out.Stride:]
			for x := 0; x < out.Width; x++ {
				c := unpremultiply(in[x*4], in[x*4+1], in[x*4+2], in[x*4+3])
				put(row[x*bpp:], c, bpp)
			}
		}
	case *image.NYCbCrA:
		for y := 0; y < out.Height; y++ {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < out.Width; x++ {
				px, py := r.Min.X+x, r.Min.Y+y
				yi, ci := m.YOffset(px, py), m.COffset(px, py)
				cr, cg, cb := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
				put(row[x*bpp:], color.NRGBA{cr, cg, cb, m.A[m.AOffset(px, py)]}, bpp)
			}
		}
	case *image.YCbCr:
		for y := 0; y < out.Height; y++ {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < out.Width; x++ {
				px, py := r.Min.X+x, r.Min.Y+y
				yi, ci := m.YOffset(px, py), m.COffset(px, py)
				cr, cg, cb := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
				put(row[x*bpp:], color.NRGBA{cr, cg, cb, 0xff}, bpp)
			}
		}
	default:
		for y := 0; y < out.Height; y++ {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < out.Width; x++ {
				c := color.NRGBAModel.Convert(src.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
				put(row[x*bpp:], c, bpp)
			}
		}
	}
}

func put(dst []byte, c color.NRGBA, bpp int) {
	dst[0], dst[1], dst[2] = c.R, c.G, c.B
	if bpp == 4 {
		dst[3] = c.A
	}
}

func unpremultiply(r, g, b, a uint8) color.NRGBA {
	switch a {
	case 0xff:
		return color.NRGBA{r, g, b, a}
	case 0:
		return color.NRGBA{}
	}
	return color.NRGBA{
		R: uint8((uint32(r)*0xff + uint32(a)/2) / uint32(a)),
		G: uint8((uint32(g)*0xff + uint32(a)/2) / uint32(a)),
		B: uint8((uint32(b)*0xff + uint32(a)/2) / uint32(a)),
		A: a,
	}
}
