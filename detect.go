package webpbridge

import "github.com/deepteams/webpbridge/internal/container"

// DetectFormat reports FormatWebP when the source starts with a RIFF/WEBP
// header and FormatUnknown otherwise, including for sources too short to
// hold one. Only a missing or unreadable source is an error.
//
// A path source is opened and closed by the call. A stream source is
// rewound when the call returns.
func (d *Decoder) DetectFormat() (Format, error) {
	header := d.data
	if len(header) == 0 {
		h, err := d.src.readHeader(container.SniffLen)
		if err != nil {
			return FormatUnknown, err
		}
		header = h
	}
	if container.Sniff(header) {
		return FormatWebP, nil
	}
	return FormatUnknown, nil
}
