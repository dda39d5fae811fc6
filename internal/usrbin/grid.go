package usrbin

import (
	"context"
	"errors"
	"os"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/ctxlog"
)

// ErrEmptyGrid indicates a header declaring zero voxels.
var ErrEmptyGrid = errors.New("usrbin: header declares an empty grid")

// Grid is a decoded scalar field over a rectilinear voxel grid. The
// flat backing slice keeps FLUKA's on-disk element order: X varies
// fastest, then Y, then Z. After Reshape the invariant
// len(data) == NX*NY*NZ always holds.
type Grid struct {
	Header Header
	data   []float64
}

// Reshape builds a Grid from a flat value sequence. A sequence shorter
// than the declared voxel count is zero-padded at the tail; a longer
// one is truncated. Either discrepancy is logged, never fatal: a
// partial visualization beats no output.
func Reshape(ctx context.Context, values []float64, h Header) (*Grid, error) {
	if !h.Valid() {
		return nil, ErrEmptyGrid
	}

	want := h.Voxels()
	data := make([]float64, want)
	copy(data, values)

	if len(values) < want {
		ctxlog.FromContext(ctx).Warn("usrbin: short data, padding with zeros",
			"expected", want, "got", len(values))
	} else if len(values) > want {
		ctxlog.FromContext(ctx).Warn("usrbin: extra data, truncating",
			"expected", want, "got", len(values))
	}

	return &Grid{Header: h, data: data}, nil
}

// At returns the value at voxel (ix, iy, iz). Flat element i lives at
// (i mod nx, (i/nx) mod ny, i/(nx*ny)).
func (g *Grid) At(ix, iy, iz int) float64 {
	h := g.Header
	return g.data[ix+h.NX*(iy+h.NY*iz)]
}

// Values exposes the flat field in on-disk order.
func (g *Grid) Values() []float64 { return g.data }

// ProjectXZ produces the 2D map used for visualization, indexed
// [ix][iz]. A unit-depth Y axis is sliced out; a deeper one is summed
// over.
func (g *Grid) ProjectXZ() [][]float64 {
	h := g.Header
	out := make([][]float64, h.NX)
	for ix := range out {
		out[ix] = make([]float64, h.NZ)
		for iz := 0; iz < h.NZ; iz++ {
			if h.NY == 1 {
				out[ix][iz] = g.At(ix, 0, iz)
				continue
			}
			sum := 0.0
			for iy := 0; iy < h.NY; iy++ {
				sum += g.At(ix, iy, iz)
			}
			out[ix][iz] = sum
		}
	}
	return out
}

// ProfileZ collapses the grid onto the beam axis: one value per Z bin,
// summed over X and Y.
func (g *Grid) ProfileZ() []float64 {
	h := g.Header
	profile := make([]float64, h.NZ)
	for iz := 0; iz < h.NZ; iz++ {
		for iy := 0; iy < h.NY; iy++ {
			for ix := 0; ix < h.NX; ix++ {
				profile[iz] += g.At(ix, iy, iz)
			}
		}
	}
	return profile
}

// Decode reads and decodes a USRBIN ASCII dump file.
func Decode(ctx context.Context, path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	h, err := ParseHeader(text)
	if err != nil {
		return nil, err
	}
	return Reshape(ctx, ScanValues(text), h)
}
