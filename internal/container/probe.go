package container

import (
	"encoding/binary"
	"fmt"
)

// Features describes what a probe learns about a buffered WebP file.
type Features struct {
	Width        int
	Height       int
	HasAlpha     bool
	HasAnimation bool
	Format       FormatType
	Flags        uint32 // VP8X flags; zero for simple files
}

// Probe parses the RIFF header, the optional VP8X chunk and the header of the
// image bitstream. No pixel data is decoded. Only the bitstream headers have
// to be present; a file cut short inside the image payload still probes.
func Probe(data []byte) (Features, error) {
	var p prober
	if err := p.parse(data); err != nil {
		return Features{}, err
	}
	return p.features, nil
}

type prober struct {
	features Features
}

func (p *prober) parse(data []byte) error {
	hdr, consumed, err := ParseRIFFHeader(data)
	if err != nil {
		return err
	}

	// Limit parsing to the declared RIFF size.
	riffEnd := int(hdr.FileSize) + ChunkHeaderSize
	if riffEnd > len(data) {
		riffEnd = len(data)
	}
	buf := data[consumed:riffEnd]

	if len(buf) < ChunkHeaderSize {
		return ErrTruncated
	}

	firstFourCC := binary.LittleEndian.Uint32(buf[0:4])
	switch firstFourCC {
	case FourCCVP8X:
		return p.parseVP8X(buf)
	case FourCCVP8:
		p.features.Format = FormatVP8
		return p.parseSimple(buf)
	case FourCCVP8L:
		p.features.Format = FormatVP8L
		return p.parseSimple(buf)
	default:
		return fmt.Errorf("%w: unexpected first chunk %s", ErrUnsupported, FourCCString(firstFourCC))
	}
}

// parseSimple handles a file whose only chunk is the VP8 or VP8L bitstream.
func (p *prober) parseSimple(buf []byte) error {
	fourcc, payload, err := chunkHead(buf)
	if err != nil {
		return err
	}
	w, h, alpha, err := parseImageHeader(fourcc, payload)
	if err != nil {
		return err
	}
	p.features.Width = w
	p.features.Height = h
	p.features.HasAlpha = alpha
	return nil
}

func (p *prober) parseVP8X(buf []byte) error {
	p.features.Format = FormatVP8X

	_, payloadSize, err := ReadChunkHeader(buf)
	if err != nil {
		return err
	}
	if payloadSize != uint32(VP8XChunkSize) {
		return ErrInvalidVP8X
	}
	if ChunkHeaderSize+VP8XChunkSize > len(buf) {
		return ErrTruncated
	}
	payload := buf[ChunkHeaderSize : ChunkHeaderSize+VP8XChunkSize]

	// Reserved bits are ignored, as libwebp does.
	flags := uint32(payload[0]) & AllValidFlags
	p.features.Flags = flags
	p.features.HasAnimation = flags&AnimationFlag != 0
	p.features.HasAlpha = flags&AlphaFlag != 0

	// Canvas dimensions: 24-bit LE, stored as value-1.
	p.features.Width = 1 + ReadLE24(payload[4:7])
	p.features.Height = 1 + ReadLE24(payload[7:10])
	if uint64(p.features.Width)*uint64(p.features.Height) >= MaxImageArea {
		return ErrInvalidImage
	}

	// An animated file reports its canvas; frames are never looked at.
	if p.features.HasAnimation {
		return nil
	}
	return p.findStillImage(buf[ChunkHeaderSize+int(PaddedSize(payloadSize)):])
}

// findStillImage walks the chunks that follow VP8X up to the image bitstream
// and checks its header against the canvas.
func (p *prober) findStillImage(buf []byte) error {
	for len(buf) >= ChunkHeaderSize {
		fourcc, payload, err := chunkHead(buf)
		if err != nil {
			return err
		}

		switch fourcc {
		case FourCCVP8X:
			// Duplicate VP8X is an error.
			return ErrInvalidChunk
		case FourCCANIM, FourCCANMF:
			// Frames without the animation flag.
			return ErrInvalidChunk
		case FourCCALPH:
			p.features.HasAlpha = true
		case FourCCVP8, FourCCVP8L:
			w, h, alpha, err := parseImageHeader(fourcc, payload)
			if err != nil {
				return err
			}
			if w != p.features.Width || h != p.features.Height {
				return fmt.Errorf("%w: bitstream %dx%d, canvas %dx%d",
					ErrInvalidImage, w, h, p.features.Width, p.features.Height)
			}
			p.features.HasAlpha = p.features.HasAlpha || alpha
			return nil
		}

		_, size, _ := ReadChunkHeader(buf)
		next := ChunkHeaderSize + int(PaddedSize(size))
		if next > len(buf) {
			return ErrTruncated
		}
		buf = buf[next:]
	}
	return ErrTruncated
}

// chunkHead returns the FourCC and the available part of the payload of the
// chunk at the start of buf. The payload may be shorter than declared.
func chunkHead(buf []byte) (uint32, []byte, error) {
	fourcc, payloadSize, err := ReadChunkHeader(buf)
	if err != nil {
		return 0, nil, err
	}
	end := ChunkHeaderSize + int(payloadSize)
	if end > len(buf) {
		end = len(buf)
	}
	return fourcc, buf[ChunkHeaderSize:end], nil
}

func parseImageHeader(fourcc uint32, payload []byte) (width, height int, hasAlpha bool, err error) {
	if fourcc == FourCCVP8L {
		return ParseVP8LHeader(payload)
	}
	width, height, err = ParseVP8Header(payload)
	return width, height, false, err
}

// ParseVP8Header extracts width and height from a VP8 lossy bitstream header.
// Minimal parsing: 10-byte frame header containing the VP8 signature.
func ParseVP8Header(data []byte) (width, height int, err error) {
	if len(data) < VP8FrameHeaderSize {
		return 0, 0, ErrTruncated
	}

	// First 3 bytes: frame tag (keyframe info, version, show, partition size).
	frameTag := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	isKeyframe := (frameTag & 1) == 0
	if !isKeyframe {
		return 0, 0, fmt.Errorf("%w: VP8 non-keyframe", ErrUnsupported)
	}

	// Bytes 3-5: VP8 signature (0x9D 0x01 0x2A), read as big-endian.
	sig := uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5])
	if sig != VP8Signature {
		return 0, 0, fmt.Errorf("%w: VP8 signature 0x%06x", ErrInvalidChunk, sig)
	}

	// Bytes 6-9: width (14 bits + 2 bits scale) and height (14 bits + 2 bits scale).
	width = int(binary.LittleEndian.Uint16(data[6:8])) & 0x3FFF
	height = int(binary.LittleEndian.Uint16(data[8:10])) & 0x3FFF
	if width == 0 || height == 0 {
		return 0, 0, ErrInvalidImage
	}

	return width, height, nil
}

// ParseVP8LHeader extracts width, height, and alpha presence from a VP8L
// lossless bitstream header.
func ParseVP8LHeader(data []byte) (width, height int, hasAlpha bool, err error) {
	if len(data) < VP8LFrameHeaderSize {
		return 0, 0, false, ErrTruncated
	}

	if data[0] != VP8LMagicByte {
		return 0, 0, false, fmt.Errorf("%w: VP8L signature 0x%02x", ErrInvalidChunk, data[0])
	}

	// Bytes 1-4: 32-bit LE containing width-1, height-1, alpha, version.
	bits := binary.LittleEndian.Uint32(data[1:5])
	width = int(bits&0x3FFF) + 1
	height = int((bits>>14)&0x3FFF) + 1
	hasAlpha = (bits>>28)&1 != 0
	version := (bits >> 29) & 0x7
	if version != VP8LVersion {
		return 0, 0, false, fmt.Errorf("%w: VP8L version %d", ErrUnsupported, version)
	}

	return width, height, hasAlpha, nil
}
