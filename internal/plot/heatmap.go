package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

const heatmapCell = 8 // pixels per voxel

// Heatmap renders a 2D field (indexed [ix][iz]) as a log-scale PNG
// heatmap. Zero bins draw black; the color ramp spans the decades
// between the smallest and largest positive values.
func Heatmap(w io.Writer, field [][]float64) error {
	if len(field) == 0 || len(field[0]) == 0 {
		return fmt.Errorf("plot: empty heatmap field")
	}
	nx, nz := len(field), len(field[0])

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range field {
		for _, v := range row {
			if v <= 0 {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi < lo {
		lo, hi = 1, 10
	}
	logLo, logHi := math.Log10(lo), math.Log10(hi)
	if logHi == logLo {
		logHi = logLo + 1
	}

	img := image.NewRGBA(image.Rect(0, 0, nz*heatmapCell, nx*heatmapCell))
	for ix := 0; ix < nx; ix++ {
		for iz := 0; iz < nz; iz++ {
			var c color.RGBA
			if v := field[ix][iz]; v > 0 {
				t := (math.Log10(v) - logLo) / (logHi - logLo)
				c = rampColor(t)
			} else {
				c = color.RGBA{A: 255}
			}
			// Beam travels along z (horizontal); x runs downward.
			for py := 0; py < heatmapCell; py++ {
				for px := 0; px < heatmapCell; px++ {
					img.SetRGBA(iz*heatmapCell+px, ix*heatmapCell+py, c)
				}
			}
		}
	}
	return png.Encode(w, img)
}

// rampColor maps t in [0,1] onto a dark-blue to yellow ramp.
func rampColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	stops := []color.RGBA{
		{R: 13, G: 8, B: 135, A: 255},
		{R: 126, G: 3, B: 168, A: 255},
		{R: 204, G: 71, B: 120, A: 255},
		{R: 248, G: 149, B: 64, A: 255},
		{R: 240, G: 249, B: 33, A: 255},
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	f := pos - float64(i)
	a, b := stops[i], stops[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(float64(x) + f*(float64(y)-float64(x))) }
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
