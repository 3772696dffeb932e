package codec

import "strconv"

// Status is the result of a decode-side codec call. The numbering follows
// libwebp's VP8StatusCode.
type Status int

const (
	StatusOK Status = iota
	StatusOutOfMemory
	StatusInvalidParam
	StatusBitstreamError
	StatusUnsupportedFeature
	StatusSuspended
	StatusUserAbort
	StatusNotEnoughData
)

var statusLabels = [...]string{
	StatusOK:                 "OK",
	StatusOutOfMemory:        "Out of memory",
	StatusInvalidParam:       "Invalid parameter",
	StatusBitstreamError:     "Bitstream error",
	StatusUnsupportedFeature: "Unsupported feature",
	StatusSuspended:          "Suspended",
	StatusUserAbort:          "Aborted by user",
	StatusNotEnoughData:      "Not enough data",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusLabels) {
		return statusLabels[s]
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Error returns the label, so a non-OK Status can travel as an error value.
func (s Status) Error() string { return s.String() }

// EncodeError is the error code a Picture carries after a failed encode. The
// numbering follows libwebp's WebPEncodingError.
type EncodeError int

const (
	EncodeOK EncodeError = iota
	EncodeOutOfMemory
	EncodeBitstreamOutOfMemory
	EncodeNullParameter
	EncodeInvalidConfiguration
	EncodeBadDimension
	EncodePartition0Overflow
	EncodePartitionOverflow
	EncodeBadWrite
	EncodeFileTooBig
	EncodeUserAbort
	EncodeLast
)

var encodeLabels = [...]string{
	EncodeOK:                   "OK",
	EncodeOutOfMemory:          "Out of memory",
	EncodeBitstreamOutOfMemory: "Bitstream out of memory",
	EncodeNullParameter:        "Null parameter",
	EncodeInvalidConfiguration: "Invalid configuration",
	EncodeBadDimension:         "Bad dimension",
	EncodePartition0Overflow:   "Partition 0 overflow",
	EncodePartitionOverflow:    "Partition overflow",
	EncodeBadWrite:             "Bad write",
	EncodeFileTooBig:           "File too big",
	EncodeUserAbort:            "Aborted by user",
	EncodeLast:                 "Last",
}

func (e EncodeError) String() string {
	if e >= 0 && int(e) < len(encodeLabels) {
		return encodeLabels[e]
	}
	return "EncodeError(" + strconv.Itoa(int(e)) + ")"
}

func (e EncodeError) Error() string { return e.String() }
