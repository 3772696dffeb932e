package webpbridge

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/deepteams/webpbridge/internal/codec"
	"github.com/deepteams/webpbridge/mux"
)

// Kind classifies every failure the bridge reports.
type Kind int

const (
	KindSourceNotFound Kind = iota + 1
	KindInvalidSourceFormat
	KindIndexOutOfBounds
	KindIO
	KindEncodeConfigInvalid
	KindEncodeFailed
	KindMuxFailed
)

func (k Kind) String() string {
	switch k {
	case KindSourceNotFound:
		return "source not found"
	case KindInvalidSourceFormat:
		return "invalid source format"
	case KindIndexOutOfBounds:
		return "index out of bounds"
	case KindIO:
		return "I/O error"
	case KindEncodeConfigInvalid:
		return "invalid encoder configuration"
	case KindEncodeFailed:
		return "encode failed"
	case KindMuxFailed:
		return "mux failed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the failure type returned by Decoder and Encoder. Op names the
// codec call that failed, Code and Label carry its native result code.
type Error struct {
	Kind  Kind
	Op    string
	Code  int
	Label string
	Err   error

	msg string
}

func (e *Error) Error() string {
	var s string
	switch {
	case e.msg != "":
		s = "webp: " + e.msg
	case e.Op != "":
		s = "webp: " + e.Op + "(): " + e.Kind.String()
	default:
		s = "webp: " + e.Kind.String()
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Kind == e.Kind
}

// Kind sentinels, for use with errors.Is.
var (
	ErrSourceNotFound      = &Error{Kind: KindSourceNotFound}
	ErrInvalidSourceFormat = &Error{Kind: KindInvalidSourceFormat}
	ErrIndexOutOfBounds    = &Error{Kind: KindIndexOutOfBounds}
	ErrIO                  = &Error{Kind: KindIO}
	ErrEncodeConfigInvalid = &Error{Kind: KindEncodeConfigInvalid}
	ErrEncodeFailed        = &Error{Kind: KindEncodeFailed}
	ErrMuxFailed           = &Error{Kind: KindMuxFailed}
)

// KindOf returns the kind of err, or 0 when err did not come from this
// package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// statusKind maps a decoder status onto the taxonomy.
func statusKind(st codec.Status) Kind {
	switch st {
	case codec.StatusBitstreamError, codec.StatusNotEnoughData:
		return KindInvalidSourceFormat
	}
	return KindIO
}

// statusError translates a decoder status returned by op. It returns nil for
// StatusOK.
func statusError(op string, st codec.Status) error {
	if st == codec.StatusOK {
		return nil
	}
	return &Error{
		Kind:  statusKind(st),
		Op:    op,
		Code:  int(st),
		Label: st.String(),
		msg:   fmt.Sprintf("%s() returned VP8StatusCode %d: %s", op, int(st), st),
	}
}

// encodeError translates the error code left on a picture by op.
func encodeError(op string, code codec.EncodeError) error {
	if code == codec.EncodeOK {
		return nil
	}
	return &Error{
		Kind:  KindEncodeFailed,
		Op:    op,
		Code:  int(code),
		Label: code.String(),
		msg:   fmt.Sprintf("%s() returned error %d: %s", op, int(code), code),
	}
}

var muxOps = map[string]string{
	"NewDemuxer":  "WebPDemux",
	"GetChunk":    "WebPDemuxGetChunk",
	"SetImage":    "WebPMuxSetImage",
	"SetChunk":    "WebPMuxSetChunk",
	"DeleteChunk": "WebPMuxDeleteChunk",
	"Assemble":    "WebPMuxAssemble",
}

// muxError translates a failure from the mux package.
func muxError(err error) error {
	if err == nil {
		return nil
	}
	code := mux.CodeOf(err)
	op := "WebPMux"
	var detail error
	var me *mux.Error
	if errors.As(err, &me) {
		detail = me.Err
		if name, ok := muxOps[me.Op]; ok {
			op = name
		} else if me.Op != "" {
			op += me.Op
		}
	}
	return &Error{
		Kind:  KindMuxFailed,
		Op:    op,
		Code:  int(code),
		Label: code.String(),
		Err:   detail,
		msg:   fmt.Sprintf("%s() returned error code %d: %s", op, int(code), code),
	}
}

// configError reports an encoder configuration the backend rejected.
func configError(err error) error {
	return &Error{
		Kind: KindEncodeConfigInvalid,
		Op:   "WebPValidateConfig",
		Err:  err,
		msg:  "WebPValidateConfig() failed",
	}
}

func indexError(index int) error {
	return &Error{
		Kind: KindIndexOutOfBounds,
		msg:  fmt.Sprintf("image index %d out of bounds (1 image)", index),
	}
}

// ioError wraps err as KindIO, keeping the message context.
func ioError(err error, format string, args ...any) error {
	return &Error{
		Kind: KindIO,
		Err:  errors.Wrapf(err, format, args...),
		msg:  KindIO.String(),
	}
}
