// Command gwebp encodes, decodes and inspects WebP images from the command
// line.
//
// Usage:
//
//	gwebp detect <input>...              Report whether each input is WebP
//	gwebp info [options] <input.webp>... Display size and metadata
//	gwebp dec [options] <input.webp>...  WebP → PNG/JPEG (use "-" for stdin, -o - for stdout)
//	gwebp enc [options] <input>...       PNG/JPEG/GIF/WebP → WebP (use "-" for stdin)
//
// Several inputs are processed concurrently on a bounded worker pool.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	_ "image/gif" // register GIF input
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/deepteams/webpbridge"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "detect":
		err = runDetect(os.Stdout, os.Args[2:])
	case "info":
		err = runInfo(os.Stdout, os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "enc":
		err = runEnc(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gwebp: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gwebp: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gwebp detect <input>...              Report whether each input is WebP
  gwebp info [options] <input.webp>... Display size and metadata
  gwebp dec [options] <input.webp>...  Decode WebP to PNG or JPEG
  gwebp enc [options] <input>...       Encode PNG/JPEG/GIF/WebP to WebP

Use "-" as the only input to read from stdin, "-o -" to write to stdout.

Run "gwebp <command> -h" for command-specific options.
`)
}

// commonFlags registers the flags every command shares.
type commonFlags struct {
	jobs    *int
	verbose *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		jobs:    fs.Int("j", runtime.NumCPU(), "number of inputs processed concurrently"),
		verbose: fs.Bool("v", false, "log codec timings to stderr"),
	}
}

func (c commonFlags) apply() {
	if *c.verbose {
		log.SetLevel(log.TraceLevel)
	}
}

// source returns the decoder source for path. Stdin is buffered so it can be
// rewound.
func source(path string) (webpbridge.Source, error) {
	if path != "-" {
		return webpbridge.NewPathSource(path), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return webpbridge.Source{}, fmt.Errorf("reading stdin: %w", err)
	}
	return webpbridge.NewStreamSource(bytes.NewReader(data)), nil
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// outputPath derives the output file for input. An explicit output wins;
// otherwise the input's base name gets ext, inside dir when one is set.
func outputPath(input, explicit, dir, ext string) string {
	if explicit != "" {
		return explicit
	}
	base := "output"
	if input != "-" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return filepath.Join(dir, base+ext)
}

// checkInputs validates the input list against the single-output flags.
func checkInputs(cmd string, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%s: missing input file", cmd)
	}
	if len(inputs) > 1 {
		if output != "" {
			return fmt.Errorf("%s: -o needs a single input; use -outdir for several", cmd)
		}
		for _, in := range inputs {
			if in == "-" {
				return fmt.Errorf("%s: stdin cannot be combined with other inputs", cmd)
			}
		}
	}
	return nil
}

// writeFile creates path and hands it to write, removing it again when write
// fails. "-" writes to stdout.
func writeFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// --- detect ---

func runDetect(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	common.apply()
	if err := checkInputs("detect", fs.Args(), ""); err != nil {
		return err
	}

	return runBatch(w, *common.jobs, fs.Args(), func(path string) (string, error) {
		src, err := source(path)
		if err != nil {
			return "", err
		}
		d := webpbridge.NewDecoder(src, webpbridge.DecoderOptions{})
		defer d.Close()
		f, err := d.DetectFormat()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s", displayName(path), f.Name), nil
	})
}

// --- info ---

func runInfo(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	common := addCommonFlags(fs)
	backend := fs.String("backend", "", "decoder backend: go, libwebp, cgo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	common.apply()
	if err := checkInputs("info", fs.Args(), ""); err != nil {
		return err
	}

	return runBatch(w, *common.jobs, fs.Args(), func(path string) (string, error) {
		src, err := source(path)
		if err != nil {
			return "", err
		}
		d := webpbridge.NewDecoder(src, webpbridge.DecoderOptions{Backend: *backend})
		defer d.Close()
		return describe(d, path)
	})
}

// describe renders the info report for one file.
func describe(d *webpbridge.Decoder, path string) (string, error) {
	size, err := d.Size(0)
	if err != nil {
		return "", err
	}
	md, err := d.Metadata(0)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File:        %s\n", displayName(path))
	fmt.Fprintf(&b, "Format:      %s (%s)\n", webpbridge.FormatWebP.Name, webpbridge.FormatWebP.MediaType)
	fmt.Fprintf(&b, "Dimensions:  %d x %d\n", size.X, size.Y)
	fmt.Fprintf(&b, "Orientation: %s\n", md.Orientation())
	if p := md.ColorProfile(); p != nil {
		fmt.Fprintf(&b, "ICC profile: %q (%d bytes)\n", p.Description, len(md.ICCData()))
	} else if len(md.ICCData()) > 0 {
		fmt.Fprintf(&b, "ICC profile: unreadable (%d bytes)\n", len(md.ICCData()))
	}
	if data := md.EXIFData(); data != nil {
		fmt.Fprintf(&b, "EXIF:        %d bytes\n", len(data))
	}
	if xmp, ok := md.XMP(); ok {
		fmt.Fprintf(&b, "XMP:         %d bytes\n", len(xmp))
	}
	if path != "-" {
		if fi, err := os.Stat(path); err == nil {
			fmt.Fprintf(&b, "File size:   %d bytes\n", fi.Size())
		}
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	common := addCommonFlags(fs)
	output := fs.String("o", "", `output path (default: <input>.png, "-" for stdout)`)
	outDir := fs.String("outdir", "", "directory for outputs when decoding several inputs")
	fmtFlag := fs.String("fmt", "", "output format: png, jpeg (auto-detect from extension if omitted)")
	region := fs.String("region", "", "decode only x,y,w,h of the upright image")
	scale := fs.Float64("scale", 1, "scale factor for both axes")
	scaleX := fs.Float64("sx", 0, "horizontal scale factor (overrides -scale)")
	scaleY := fs.Float64("sy", 0, "vertical scale factor (overrides -scale)")
	backend := fs.String("backend", "", "decoder backend: go, libwebp, cgo")
	mt := fs.Bool("mt", false, "allow multithreaded decoding")

	if err := fs.Parse(args); err != nil {
		return err
	}
	common.apply()
	if err := checkInputs("dec", fs.Args(), *output); err != nil {
		return err
	}

	req := webpbridge.DecodeRequest{ScaleX: *scale, ScaleY: *scale}
	if *scaleX > 0 {
		req.ScaleX = *scaleX
	}
	if *scaleY > 0 {
		req.ScaleY = *scaleY
	}
	if *region != "" {
		r, err := parseRegion(*region)
		if err != nil {
			return fmt.Errorf("dec: %w", err)
		}
		req.Region = &r
	}
	opts := webpbridge.DecoderOptions{Backend: *backend, Multithreaded: *mt}

	return runBatch(os.Stderr, *common.jobs, fs.Args(), func(path string) (string, error) {
		outFmt := detectOutputFormat(*fmtFlag, *output)
		ext := ".png"
		if outFmt == "jpeg" {
			ext = ".jpg"
		}
		dst := outputPath(path, *output, *outDir, ext)
		res, err := decodeFile(path, dst, outFmt, opts, req)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Decoded %s → %s (hints: %s)", displayName(path), dst, res.Hints), nil
	})
}

// parseRegion reads "x,y,w,h".
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// detectOutputFormat returns "png" or "jpeg" based on flag/extension.
func detectOutputFormat(fmtFlag, outputPath string) string {
	if fmtFlag != "" {
		return strings.ToLower(fmtFlag)
	}
	if outputPath != "" && outputPath != "-" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".jpg", ".jpeg":
			return "jpeg"
		}
	}
	return "png"
}

func decodeFile(path, dst, outFmt string, opts webpbridge.DecoderOptions, req webpbridge.DecodeRequest) (webpbridge.DecodeResult, error) {
	src, err := source(path)
	if err != nil {
		return webpbridge.DecodeResult{}, err
	}
	d := webpbridge.NewDecoder(src, opts)
	defer d.Close()

	raster, res, err := d.Decode(req)
	if err != nil {
		return res, err
	}
	err = writeFile(dst, func(w io.Writer) error {
		return encodeImage(w, raster.Image(), outFmt)
	})
	return res, err
}

// encodeImage writes img in the specified format to w.
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(w, img)
	}
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	common := addCommonFlags(fs)
	quality := fs.Float64("q", float64(webpbridge.DefaultQuality), "quality 0-100")
	method := fs.Int("m", webpbridge.DefaultMethod, "compression effort 0-6")
	lossless := fs.Bool("lossless", false, "lossless VP8L encoding")
	autofilter := fs.Bool("af", false, "let the encoder pick the filter strength")
	mt := fs.Bool("mt", false, "allow multithreaded encoding")
	xmpPath := fs.String("xmp", "", "file whose contents are embedded as XMP metadata")
	backend := fs.String("backend", "", "encoder backend: libwebp, go, cgo")
	output := fs.String("o", "", `output path (default: <input>.webp, "-" for stdout)`)
	outDir := fs.String("outdir", "", "directory for outputs when encoding several inputs")

	if err := fs.Parse(args); err != nil {
		return err
	}
	common.apply()
	if err := checkInputs("enc", fs.Args(), *output); err != nil {
		return err
	}

	opts := webpbridge.EncodeOptions{
		Quality:       float32(*quality),
		Method:        *method,
		Lossless:      *lossless,
		Autofilter:    *autofilter,
		Multithreaded: *mt,
		Backend:       *backend,
	}
	if *xmpPath != "" {
		data, err := os.ReadFile(*xmpPath)
		if err != nil {
			return fmt.Errorf("enc: reading XMP: %w", err)
		}
		s := string(data)
		opts.XMP = &s
	}

	return runBatch(os.Stderr, *common.jobs, fs.Args(), func(path string) (string, error) {
		dst := outputPath(path, *output, *outDir, ".webp")
		if err := encodeFile(path, dst, opts); err != nil {
			return "", err
		}
		if dst == "-" {
			return fmt.Sprintf("Encoded %s", displayName(path)), nil
		}
		fi, err := os.Stat(dst)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Encoded %s → %s (%d bytes)", displayName(path), dst, fi.Size()), nil
	})
}

func encodeFile(path, dst string, opts webpbridge.EncodeOptions) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	e := webpbridge.NewEncoder(opts)
	defer e.Close()
	return writeFile(dst, func(w io.Writer) error {
		return e.Encode(webpbridge.NewImageSource(img), w)
	})
}
