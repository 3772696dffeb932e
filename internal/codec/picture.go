package codec

import (
	"errors"
	"image"

	"github.com/deepteams/webpbridge/internal/container"
	"github.com/deepteams/webpbridge/internal/pool"
)

// WriterFunc receives compressed bytes as the encoder produces them. It runs
// on the goroutine that called Encode and must not re-enter the encoder.
// Returning false aborts the encode with EncodeBadWrite.
type WriterFunc func(data []byte) bool

// Picture is the input of one encode: the staged pixels, the output upcall
// and, after a failed encode, the error code.
type Picture struct {
	Width  int
	Height int

	// Writer is called with the compressed output.
	Writer WriterFunc

	// ErrorCode is EncodeOK unless an import or encode failed.
	ErrorCode EncodeError

	img   *image.NRGBA
	alloc pool.Allocator
}

// NewPicture returns a picture of the given size whose pixel plane will be
// drawn from alloc. A nil alloc uses the heap.
func NewPicture(width, height int, alloc pool.Allocator) *Picture {
	return &Picture{Width: width, Height: height, alloc: alloc}
}

// SetError records code and returns false, for use in return statements.
func (p *Picture) SetError(code EncodeError) bool {
	if p.ErrorCode == EncodeOK {
		p.ErrorCode = code
	}
	return false
}

// ImportRGBA stages packed R,G,B,A rows. stride is the byte distance between
// the starts of two rows.
func (p *Picture) ImportRGBA(rgba []byte, stride int) bool {
	return p.importPacked(rgba, stride, 4, func(dst, src []byte) {
		copy(dst, src[:4])
	})
}

// ImportBGR stages packed B,G,R rows. Alpha is set opaque.
func (p *Picture) ImportBGR(bgr []byte, stride int) bool {
	return p.importPacked(bgr, stride, 3, func(dst, src []byte) {
		dst[0] = src[2]
		dst[1] = src[1]
		dst[2] = src[0]
		dst[3] = 0xff
	})
}

// ImportRGB stages packed R,G,B rows. Alpha is set opaque.
func (p *Picture) ImportRGB(rgb []byte, stride int) bool {
	return p.importPacked(rgb, stride, 3, func(dst, src []byte) {
		copy(dst, src[:3])
		dst[3] = 0xff
	})
}

func (p *Picture) importPacked(src []byte, stride, bpp int, px func(dst, src []byte)) bool {
	if p == nil {
		return false
	}
	if !p.checkDimensions() {
		return false
	}
	if src == nil || stride < p.Width*bpp || len(src) < (p.Height-1)*stride+p.Width*bpp {
		return p.SetError(EncodeNullParameter)
	}
	p.allocPlane()
	pix := p.img.Pix
	for y := 0; y < p.Height; y++ {
		row := src[y*stride:]
		out := pix[y*p.img.Stride:]
		for x := 0; x < p.Width; x++ {
			px(out[x*4:x*4+4], row[x*bpp:x*bpp+bpp])
		}
	}
	return true
}

func (p *Picture) checkDimensions() bool {
	if p.Width <= 0 || p.Height <= 0 ||
		p.Width > container.MaxDimension || p.Height > container.MaxDimension {
		return p.SetError(EncodeBadDimension)
	}
	return true
}

func (p *Picture) allocPlane() {
	n := p.Width * p.Height * 4
	if p.img != nil && len(p.img.Pix) == n {
		return
	}
	p.release()
	var pix []byte
	if p.alloc != nil {
		pix = p.alloc.Get(n)
	} else {
		pix = make([]byte, n)
	}
	p.img = &image.NRGBA{Pix: pix, Stride: p.Width * 4, Rect: image.Rect(0, 0, p.Width, p.Height)}
}

// Image returns the staged pixels, or nil before a successful import.
func (p *Picture) Image() *image.NRGBA { return p.img }

// Free releases the pixel plane. The picture can be imported into again.
func (p *Picture) Free() {
	if p == nil {
		return
	}
	p.release()
}

func (p *Picture) release() {
	if p.img == nil {
		return
	}
	if p.alloc != nil {
		p.alloc.Put(p.img.Pix)
	}
	p.img = nil
}

// ready checks what every backend needs before compressing.
func (p *Picture) ready() bool {
	if p == nil {
		return false
	}
	if p.Writer == nil || p.img == nil {
		return p.SetError(EncodeNullParameter)
	}
	return p.checkDimensions()
}

var errBadWrite = errors.New("webp: writer rejected output")

// upcall adapts the picture's WriterFunc to io.Writer.
type upcall struct{ pic *Picture }

func (u upcall) Write(data []byte) (int, error) {
	if !u.pic.Writer(data) {
		return 0, errBadWrite
	}
	return len(data), nil
}

// emit hands a complete bitstream to the writer in one call.
func (p *Picture) emit(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !p.Writer(data) {
		return p.SetError(EncodeBadWrite)
	}
	return true
}

// MemoryWriter collects the encoder output in a buffer drawn from its
// allocator. Its Write method is meant to be a Picture's Writer.
type MemoryWriter struct {
	alloc pool.Allocator
	mem   []byte
}

// NewMemoryWriter returns an empty writer. A nil alloc uses the heap.
func NewMemoryWriter(alloc pool.Allocator) *MemoryWriter {
	return &MemoryWriter{alloc: alloc}
}

// Write appends data. It never fails.
func (w *MemoryWriter) Write(data []byte) bool {
	n := len(w.mem)
	if n+len(data) > cap(w.mem) {
		w.grow(n + len(data))
	}
	w.mem = w.mem[:n+len(data)]
	copy(w.mem[n:], data)
	return true
}

func (w *MemoryWriter) grow(need int) {
	size := 2 * cap(w.mem)
	if size < need {
		size = need
	}
	var mem []byte
	if w.alloc != nil {
		mem = w.alloc.Get(size)
	} else {
		mem = make([]byte, size)
	}
	mem = mem[:len(w.mem)]
	copy(mem, w.mem)
	w.free()
	w.mem = mem
}

// Bytes returns the data written so far. It aliases the writer's buffer.
func (w *MemoryWriter) Bytes() []byte { return w.mem }

// Len returns the number of bytes written.
func (w *MemoryWriter) Len() int { return len(w.mem) }

// Clear releases the buffer.
func (w *MemoryWriter) Clear() {
	w.free()
	w.mem = nil
}

func (w *MemoryWriter) free() {
	if w.mem != nil && w.alloc != nil {
		w.alloc.Put(w.mem)
	}
}
