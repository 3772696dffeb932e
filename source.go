package webpbridge

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/deepteams/webpbridge/internal/pool"
)

// Source is where a Decoder reads its bitstream from: a file path or a
// seekable stream. Exactly one of the two is set.
type Source struct {
	path   string
	stream io.ReadSeeker
}

// NewPathSource returns a Source reading the file at path.
func NewPathSource(path string) Source { return Source{path: path} }

// NewStreamSource returns a Source reading r. The stream is read from its
// start and is not closed by the decoder.
func NewStreamSource(r io.ReadSeeker) Source { return Source{stream: r} }

func (s Source) String() string {
	if s.stream != nil {
		return "stream"
	}
	return s.path
}

var errNoSource = errors.New("source not set")

// open returns a reader positioned at the start of the source and a function
// that ends the read: it closes a file or rewinds a stream.
func (s Source) open() (io.ReadSeeker, func(), error) {
	switch {
	case s.stream != nil:
		if _, err := s.stream.Seek(0, io.SeekStart); err != nil {
			return nil, nil, ioError(err, "seek stream")
		}
		return s.stream, func() { s.stream.Seek(0, io.SeekStart) }, nil
	case s.path != "":
		f, err := os.Open(s.path)
		if os.IsNotExist(err) {
			return nil, nil, &Error{Kind: KindSourceNotFound, Err: errors.Wrap(err, "open source")}
		}
		if err != nil {
			return nil, nil, ioError(err, "open %s", s.path)
		}
		return f, func() { f.Close() }, nil
	}
	return nil, nil, &Error{Kind: KindIO, Err: errNoSource}
}

// readAll reads the whole source into one buffer drawn from alloc.
func (s Source) readAll(alloc pool.Allocator) ([]byte, error) {
	r, done, err := s.open()
	if err != nil {
		return nil, err
	}
	defer done()

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, ioError(err, "size %s", s)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, ioError(err, "rewind %s", s)
	}
	if size > int64(maxSourceSize) {
		return nil, ioError(errTooLarge, "read %s", s)
	}

	buf := alloc.Get(int(size))
	if _, err := io.ReadFull(r, buf); err != nil {
		alloc.Put(buf)
		return nil, ioError(err, "read %s", s)
	}
	return buf, nil
}

// maxSourceSize is the largest RIFF file: a 32-bit size field plus the
// 8-byte RIFF header.
const maxSourceSize = 1<<32 + 8

var errTooLarge = errors.New("source larger than a RIFF file can be")

// readHeader reads up to n bytes from the start of the source. A short source
// yields a short slice, not an error.
func (s Source) readHeader(n int) ([]byte, error) {
	r, done, err := s.open()
	if err != nil {
		return nil, err
	}
	defer done()

	buf := make([]byte, n)
	m, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, ioError(err, "read %s", s)
	}
	return buf[:m], nil
}
