// Package webpbridge connects an image pipeline to WebP codec libraries.
//
// A Decoder reads one source, a file path or a seekable stream, and answers
// format detection, size, metadata and decode requests against it:
//
//	d := webpbridge.NewDecoder(webpbridge.NewPathSource("in.webp"),
//		webpbridge.DecoderOptionsFrom(cfg))
//	defer d.Close()
//	r, res, err := d.Decode(webpbridge.DecodeRequest{
//		Region: &image.Rectangle{Max: image.Pt(200, 100)},
//		ScaleX: 0.5,
//		ScaleY: 0.5,
//	})
//
// The region is clipped to the image and then scaled; res reports the
// reduction factor and which parts of the request were honoured. Embedded
// ICC profiles are applied to the decoded pixels, and EXIF orientation is
// taken into account when mapping the region.
//
// An Encoder compresses any SampleSource, including an image.Image wrapped
// with NewImageSource:
//
//	e := webpbridge.NewEncoder(webpbridge.EncodeOptionsFrom(cfg))
//	defer e.Close()
//	err := e.Encode(webpbridge.NewImageSource(img), w)
//
// Setting EncodeOptions.XMP embeds an XMP packet, which switches the output
// to the Extended file format.
//
// Failures are *Error values whose Kind classifies them; compare with
// errors.Is against ErrSourceNotFound, ErrInvalidSourceFormat and the other
// sentinels.
//
// The pixel work itself is done by one of several backends, selected with
// the decoder.WebPDecoder.backend and encoder.WebPEncoder.backend keys:
// "go" (golang.org/x/image/webp and nativewebp), "libwebp" (gen2brain/webp)
// and, in cgo builds, "cgo" (chai2010/webp).
package webpbridge
