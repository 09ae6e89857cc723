// Package render draws a terminal preview of the tiled noise field driven by visual parameters.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/ipcctiled/transform-api/internal/models"
	"github.com/ojrac/opensimplex-go"
)

// Options control the preview size and frame
type Options struct {
	Width  int
	Height int
	// Frame advances the field in time by Speed per frame
	Frame int
	Seed  int64
	// Color emits 24-bit ANSI colors derived from Hue
	Color bool
}

// DefaultOptions returns an 80x24 monochrome preview of the first frame
func DefaultOptions() Options {
	return Options{Width: 80, Height: 24, Seed: 1}
}

// Characters from darkest to brightest
const ramp = " .:-=+*#%@"

// Terminal cells are taller than wide; cellPixels approximates one cell in display pixels
const (
	cellPixels  = 8.0
	cellAspect  = 2.0
	minSegments = 1
)

// Field samples the noise field at each cell. Values are in [0, 1].
func Field(p models.VisualParams, opts Options) [][]float64 {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil
	}
	noise := opensimplex.NewNormalized(opts.Seed)

	segments := int(math.Ceil(p.Segments))
	if segments < minSegments {
		segments = minSegments
	}
	tileWidth := int(math.Ceil(float64(opts.Width) / float64(segments)))
	t := float64(opts.Frame) * p.Speed

	field := make([][]float64, opts.Height)
	for y := 0; y < opts.Height; y++ {
		row := make([]float64, opts.Width)
		for x := 0; x < opts.Width; x++ {
			// Alternate tiles are mirrored so the seams line up
			tile := x / tileWidth
			tx := x % tileWidth
			if tile%2 == 1 {
				tx = tileWidth - 1 - tx
			}
			nx := float64(tx) * cellPixels * p.NoiseScale
			ny := float64(y) * cellPixels * cellAspect * p.NoiseScale
			row[x] = noise.Eval3(nx, ny, t)
		}
		field[y] = row
	}
	return field
}

// Preview renders the field as text, one line per row
func Preview(p models.VisualParams, opts Options) string {
	field := Field(p, opts)

	var b strings.Builder
	for _, row := range field {
		for _, v := range row {
			c := ramp[shade(v)]
			if opts.Color {
				r, g, bl := hsvToRGB(p.Hue, 0.6, 0.3+0.7*v)
				fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm%c", r, g, bl, c)
				continue
			}
			b.WriteByte(c)
		}
		if opts.Color {
			b.WriteString("\033[0m")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func shade(v float64) int {
	i := int(v * float64(len(ramp)))
	if i < 0 {
		return 0
	}
	if i >= len(ramp) {
		return len(ramp) - 1
	}
	return i
}

// hsvToRGB converts hue in degrees and saturation/value in [0, 1] to 8-bit RGB
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return to8(r), to8(g), to8(b)
}
