package webpbridge

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/deepteams/webpbridge/internal/codec"
	"github.com/deepteams/webpbridge/mux"
)

func TestStatusError(t *testing.T) {
	if err := statusError("WebPDecode", codec.StatusOK); err != nil {
		t.Fatalf("StatusOK: %v", err)
	}

	tests := []struct {
		status codec.Status
		kind   Kind
	}{
		{codec.StatusOutOfMemory, KindIO},
		{codec.StatusInvalidParam, KindIO},
		{codec.StatusBitstreamError, KindInvalidSourceFormat},
		{codec.StatusUnsupportedFeature, KindIO},
		{codec.StatusSuspended, KindIO},
		{codec.StatusUserAbort, KindIO},
		{codec.StatusNotEnoughData, KindInvalidSourceFormat},
	}
	for _, tt := range tests {
		err := statusError("WebPDecode", tt.status)
		if k := KindOf(err); k != tt.kind {
			t.Errorf("status %v: kind %v, want %v", tt.status, k, tt.kind)
		}

		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("status %v: %T is not *Error", tt.status, err)
		}
		if e.Op != "WebPDecode" || e.Code != int(tt.status) || e.Label != tt.status.String() {
			t.Errorf("status %v: error = %+v", tt.status, e)
		}
	}

	err := statusError("WebPDecode", codec.StatusBitstreamError)
	if want := "webp: WebPDecode() returned VP8StatusCode 3: Bitstream error"; err.Error() != want {
		t.Errorf("message = %q, want %q", err, want)
	}
	if !errors.Is(err, ErrInvalidSourceFormat) || errors.Is(err, ErrIO) {
		t.Errorf("bitstream error chain: %v", err)
	}
}

func TestEncodeError(t *testing.T) {
	if err := encodeError("WebPEncode", codec.EncodeOK); err != nil {
		t.Fatalf("EncodeOK: %v", err)
	}

	err := encodeError("WebPEncode", codec.EncodeFileTooBig)
	if !errors.Is(err, ErrEncodeFailed) {
		t.Errorf("%v is not ErrEncodeFailed", err)
	}
	if want := "webp: WebPEncode() returned error 9: File too big"; err.Error() != want {
		t.Errorf("message = %q, want %q", err, want)
	}

	var e *Error
	if !errors.As(err, &e) || e.Code != int(codec.EncodeFileTooBig) {
		t.Errorf("error = %#v", err)
	}
}

func TestMuxError(t *testing.T) {
	if err := muxError(nil); err != nil {
		t.Fatalf("muxError(nil) = %v", err)
	}

	_, derr := mux.NewDemuxer(nil)
	if derr == nil {
		t.Fatal("NewDemuxer(nil) succeeded")
	}
	err := muxError(derr)
	if !errors.Is(err, ErrMuxFailed) {
		t.Errorf("%v is not ErrMuxFailed", err)
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("%T is not *Error", err)
	}
	if e.Op != "WebPDemux" || e.Code != -4 || e.Label != "Not enough data" {
		t.Errorf("demux error = %+v", e)
	}

	// foreign errors are reported as bad data
	err = muxError(io.ErrUnexpectedEOF)
	if !errors.As(err, &e) || e.Op != "WebPMux" || e.Code != int(mux.CodeBadData) {
		t.Errorf("foreign error = %#v", err)
	}
}

func TestConfigError(t *testing.T) {
	cause := errors.New("invalid Quality")
	err := configError(cause)
	if !errors.Is(err, ErrEncodeConfigInvalid) || !errors.Is(err, cause) {
		t.Errorf("chain of %v", err)
	}
	if !strings.Contains(err.Error(), "WebPValidateConfig()") {
		t.Errorf("message = %q", err)
	}
}

func TestIOErrorChain(t *testing.T) {
	err := ioError(io.ErrUnexpectedEOF, "read %s", "input.webp")
	if !errors.Is(err, ErrIO) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("chain of %v", err)
	}
	if !strings.Contains(err.Error(), "read input.webp") {
		t.Errorf("message = %q", err)
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(nil); k != 0 {
		t.Errorf("KindOf(nil) = %v", k)
	}
	if k := KindOf(errors.New("foreign")); k != 0 {
		t.Errorf("KindOf(foreign) = %v", k)
	}
	if k := KindOf(indexError(3)); k != KindIndexOutOfBounds {
		t.Errorf("KindOf(indexError) = %v", k)
	}
	if !errors.Is(indexError(3), ErrIndexOutOfBounds) {
		t.Error("indexError is not ErrIndexOutOfBounds")
	}
	if s := Kind(42).String(); s != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", s)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrSourceNotFound,
		ErrInvalidSourceFormat,
		ErrIndexOutOfBounds,
		ErrIO,
		ErrEncodeConfigInvalid,
		ErrEncodeFailed,
		ErrMuxFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if errors.Is(a, b) != (i == j) {
				t.Errorf("errors.Is(%v, %v) = %v", a, b, !(i == j))
			}
		}
	}
}
