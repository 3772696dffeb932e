package webpbridge

import "github.com/deepteams/webpbridge/internal/pool"

// marshal copies src into one packed buffer drawn from alloc, in the layout
// the codec imports: R,G,B,A when bpp is 4 and B,G,R when bpp is 3.
//
// Four-band and gray-with-alpha sources become RGBA. Everything else becomes
// BGR: three-band sources keep their first three bands, gray is replicated
// into all three.
func marshal(src SampleSource, alloc pool.Allocator) (pix []byte, bpp int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	bands := src.NumBands()

	bpp = 3
	if bands == 2 || bands == 4 {
		bpp = 4
	}
	pix = alloc.Get(w * h * bpp)

	if il, ok := src.(Interleaved); ok && copyInterleaved(pix, il, w, h, bpp) {
		return pix, bpp
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch bands {
			case 1:
				g := src.Sample(x, y, 0)
				pix[i+0], pix[i+1], pix[i+2] = g, g, g
			case 2:
				g := src.Sample(x, y, 0)
				pix[i+0], pix[i+1], pix[i+2] = g, g, g
				pix[i+3] = src.Sample(x, y, 1)
			case 4:
				pix[i+0] = src.Sample(x, y, 0)
				pix[i+1] = src.Sample(x, y, 1)
				pix[i+2] = src.Sample(x, y, 2)
				pix[i+3] = src.Sample(x, y, 3)
			default:
				pix[i+0] = src.Sample(x, y, 2)
				pix[i+1] = src.Sample(x, y, 1)
				pix[i+2] = src.Sample(x, y, 0)
			}
			i += bpp
		}
	}
	return pix, bpp
}

// copyInterleaved copies whole rows when the source is already stored in the
// import layout. It reports false when the per-sample path must be used.
func copyInterleaved(dst []byte, src Interleaved, w, h, bpp int) bool {
	order := src.BandOrder()
	if !(order == OrderBGR && bpp == 3) && !(order == OrderRGBA && bpp == 4) {
		return false
	}
	pix, stride := src.Pixels()
	row := w * bpp
	if stride == row {
		copy(dst, pix[:row*h])
		return true
	}
	for y := 0; y < h; y++ {
		copy(dst[y*row:(y+1)*row], pix[y*stride:])
	}
	return true
}
