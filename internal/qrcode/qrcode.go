// Package qrcode renders QR codes as PNG data URLs and SVG documents.
//
// Symbol encoding is done by github.com/skip2/go-qrcode; this package only
// lays the module bitmap out with the requested width, quiet zone and colours.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent   = errors.New("qr code content is empty")
	ErrContentTooLong = errors.New("content does not fit in a qr code at this error correction level")
	ErrInvalidColor   = errors.New("colour must be in #RRGGBB format")
	ErrInvalidLevel   = errors.New("error correction level must be one of L, M, Q, H")
)

// Options controls rendering. Empty fields other than Margin are taken from
// DefaultOptions.
type Options struct {
	Width                int    `json:"width"`
	Margin               int    `json:"margin"`
	Dark                 string `json:"dark"`
	Light                string `json:"light"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel"`
}

// DefaultOptions returns a 300px, 2 module margin, black on white symbol with
// medium error correction.
func DefaultOptions() Options {
	return Options{
		Width:                300,
		Margin:               2,
		Dark:                 "#000000",
		Light:                "#FFFFFF",
		ErrorCorrectionLevel: "M",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Dark == "" {
		o.Dark = def.Dark
	}
	if o.Light == "" {
		o.Light = def.Light
	}
	if o.ErrorCorrectionLevel == "" {
		o.ErrorCorrectionLevel = def.ErrorCorrectionLevel
	}
	return o
}

// Code is a rendered QR code.
type Code struct {
	DataURL string `json:"dataURL"`
	SVG     string `json:"svg,omitempty"`
}

// Symbol is an encoded QR symbol ready to be rendered.
type Symbol struct {
	modules [][]bool
	opts    Options
	dark    color.RGBA
	light   color.RGBA
}

// Encode encodes content into a symbol using opts.
func Encode(content string, opts Options) (*Symbol, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	opts = opts.withDefaults()

	level, err := recoveryLevel(opts.ErrorCorrectionLevel)
	if err != nil {
		return nil, err
	}
	dark, err := ParseColor(opts.Dark)
	if err != nil {
		return nil, err
	}
	light, err := ParseColor(opts.Light)
	if err != nil {
		return nil, err
	}

	q, err := goqrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentTooLong, err)
	}
	q.DisableBorder = true

	return &Symbol{
		modules: q.Bitmap(),
		opts:    opts,
		dark:    dark,
		light:   light,
	}, nil
}

// Generate encodes content and renders both the PNG data URL and the SVG.
func Generate(content string, opts Options) (Code, error) {
	sym, err := Encode(content, opts)
	if err != nil {
		return Code{}, err
	}
	dataURL, err := sym.DataURL()
	if err != nil {
		return Code{}, err
	}
	return Code{DataURL: dataURL, SVG: sym.SVG()}, nil
}

// Size is the number of modules per side, quiet zone included.
func (s *Symbol) Size() int {
	return len(s.modules) + 2*s.opts.Margin
}

// isDark reports whether the module at (x, y), measured with the quiet zone,
// is dark.
func (s *Symbol) isDark(x, y int) bool {
	x -= s.opts.Margin
	y -= s.opts.Margin
	if y < 0 || y >= len(s.modules) || x < 0 || x >= len(s.modules[y]) {
		return false
	}
	return s.modules[y][x]
}

// Image renders the symbol at opts.Width pixels. When the width cannot hold
// one pixel per module the image grows to fit.
func (s *Symbol) Image() image.Image {
	size := s.Size()
	scale := max(1, s.opts.Width/size)
	side := max(s.opts.Width, size*scale)
	offset := (side - size*scale) / 2

	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{s.light, s.dark})
	for py := 0; py < size*scale; py++ {
		for px := 0; px < size*scale; px++ {
			if s.isDark(px/scale, py/scale) {
				img.SetColorIndex(offset+px, offset+py, 1)
			}
		}
	}
	return img
}

// PNG encodes the rendered image.
func (s *Symbol) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image()); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL returns the PNG as a base64 data URL.
func (s *Symbol) DataURL() (string, error) {
	b, err := s.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// SVG renders the symbol as a standalone SVG document. Horizontal runs of dark
// modules are merged into a single path segment.
func (s *Symbol) SVG() string {
	size := s.Size()
	dark, light := hexColor(s.dark), hexColor(s.light)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		s.opts.Width, s.opts.Width, size, size)
	fmt.Fprintf(&b, `<path fill="%s" d="M0 0h%dv%dH0z"/>`, light, size, size)
	b.WriteString(`<path stroke="` + dark + `" d="`)
	for y := 0; y < size; y++ {
		for x := 0; x < size; {
			if !s.isDark(x, y) {
				x++
				continue
			}
			start := x
			for x < size && s.isDark(x, y) {
				x++
			}
			fmt.Fprintf(&b, "M%d %d.5h%d", start, y, x-start)
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String()
}

// ParseColor parses a #RRGGBB colour.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, ErrInvalidColor
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, ErrInvalidColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// ValidLevel reports whether level is one of L, M, Q, H.
func ValidLevel(level string) bool {
	_, err := recoveryLevel(level)
	return err == nil
}

func recoveryLevel(level string) (goqrcode.RecoveryLevel, error) {
	switch strings.ToUpper(level) {
	case "L":
		return goqrcode.Low, nil
	case "M":
		return goqrcode.Medium, nil
	case "Q":
		return goqrcode.High, nil
	case "H":
		return goqrcode.Highest, nil
	}
	return 0, ErrInvalidLevel
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
