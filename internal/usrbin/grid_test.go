package usrbin

import (
	"context"
	"math"
	"testing"
)

func TestReshape_FlatIndexing(t *testing.T) {
	h := Header{NX: 2, NY: 3, NZ: 4, XMax: 2, YMax: 3, ZMax: 4}
	values := make([]float64, h.Voxels())
	for i := range values {
		values[i] = float64(i)
	}

	g, err := Reshape(context.Background(), values, h)
	if err != nil {
		t.Fatal(err)
	}

	// Element at flat index i must map to (i mod nx, (i/nx) mod ny, i/(nx*ny)).
	for i := range values {
		ix := i % h.NX
		iy := (i / h.NX) % h.NY
		iz := i / (h.NX * h.NY)
		if got := g.At(ix, iy, iz); got != float64(i) {
			t.Errorf("At(%d,%d,%d) = %g, want %d", ix, iy, iz, got, i)
		}
	}
}

// Worked example: 2x1x2 grid with flat data [1,2,3,4], x fastest.
func TestReshape_WorkedExample(t *testing.T) {
	h := Header{NX: 2, NY: 1, NZ: 2, XMin: 0, XMax: 2, ZMin: 0, ZMax: 2}
	g, err := Reshape(context.Background(), []float64{1, 2, 3, 4}, h)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ix, iz int
		want   float64
	}{
		{0, 0, 1},
		{1, 0, 2},
		{0, 1, 3},
		{1, 1, 4},
	}
	for _, tt := range tests {
		if got := g.At(tt.ix, 0, tt.iz); got != tt.want {
			t.Errorf("At(%d,0,%d) = %g, want %g", tt.ix, tt.iz, got, tt.want)
		}
	}
}

func TestReshape_ShortDataPads(t *testing.T) {
	h := Header{NX: 2, NY: 2, NZ: 2, XMax: 1, YMax: 1, ZMax: 1}

	g, err := Reshape(context.Background(), []float64{1, 2, 3}, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Values()) != 8 {
		t.Fatalf("expected 8 voxels, got %d", len(g.Values()))
	}
	for i, v := range g.Values()[3:] {
		if v != 0 {
			t.Errorf("tail voxel %d not zero-padded: %g", i+3, v)
		}
	}
}

func TestReshape_LongDataTruncates(t *testing.T) {
	h := Header{NX: 1, NY: 1, NZ: 2, XMax: 1, YMax: 1, ZMax: 1}

	g, err := Reshape(context.Background(), []float64{1, 2, 3, 4, 5}, h)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Values()) != 2 {
		t.Fatalf("expected 2 voxels, got %d", len(g.Values()))
	}
	if g.Values()[0] != 1 || g.Values()[1] != 2 {
		t.Errorf("truncation kept wrong values: %v", g.Values())
	}
}

func TestReshape_EmptyGrid(t *testing.T) {
	if _, err := Reshape(context.Background(), nil, Header{}); err != ErrEmptyGrid {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestProjectXZ_UnitYSlices(t *testing.T) {
	h := Header{NX: 2, NY: 1, NZ: 2, XMax: 2, YMax: 1, ZMax: 2}
	g, err := Reshape(context.Background(), []float64{1, 2, 3, 4}, h)
	if err != nil {
		t.Fatal(err)
	}

	xz := g.ProjectXZ()
	if xz[0][0] != 1 || xz[1][0] != 2 || xz[0][1] != 3 || xz[1][1] != 4 {
		t.Errorf("XZ slice wrong: %v", xz)
	}
}

func TestProjectXZ_DeepYSums(t *testing.T) {
	h := Header{NX: 1, NY: 2, NZ: 1, XMax: 1, YMax: 2, ZMax: 1}
	g, err := Reshape(context.Background(), []float64{3, 4}, h)
	if err != nil {
		t.Fatal(err)
	}

	xz := g.ProjectXZ()
	if xz[0][0] != 7 {
		t.Errorf("expected sum over Y = 7, got %g", xz[0][0])
	}
}

func TestProfileZ(t *testing.T) {
	h := Header{NX: 2, NY: 1, NZ: 2, XMax: 2, YMax: 1, ZMax: 2}
	g, err := Reshape(context.Background(), []float64{1, 2, 3, 4}, h)
	if err != nil {
		t.Fatal(err)
	}

	profile := g.ProfileZ()
	if profile[0] != 3 || profile[1] != 7 {
		t.Errorf("Z profile wrong: %v", profile)
	}
}

func TestTotal_UniformField(t *testing.T) {
	// Uniform field v over n voxels: total must be v*n*dx*dy*dz.
	h := Header{NX: 4, NY: 5, NZ: 10, XMin: -2, XMax: 2, YMin: 0, YMax: 10, ZMin: 0, ZMax: 1}
	n := h.Voxels()
	v := 2.5
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}

	g, err := Reshape(context.Background(), values, h)
	if err != nil {
		t.Fatal(err)
	}

	est := g.Total(5)
	want := v * float64(n) * h.VoxelVolume()
	if math.Abs(est.Total-want) > 1e-9*math.Abs(want) {
		t.Errorf("total %g, want %g", est.Total, want)
	}
	// A uniform field has zero spread.
	if est.RelError != 0 {
		t.Errorf("uniform field should have zero error estimate, got %g", est.RelError)
	}
}

func TestTotal_ErrorShrinksWithCycles(t *testing.T) {
	h := Header{NX: 1, NY: 1, NZ: 4, XMax: 1, YMax: 1, ZMax: 4}
	g, err := Reshape(context.Background(), []float64{1, 2, 3, 4}, h)
	if err != nil {
		t.Fatal(err)
	}

	one := g.Total(1)
	four := g.Total(4)
	if one.RelError <= 0 {
		t.Fatal("expected nonzero error estimate")
	}
	if math.Abs(four.RelError-one.RelError/2) > 1e-12 {
		t.Errorf("4 cycles should halve the estimate: %g vs %g", four.RelError, one.RelError)
	}
}

func TestHeaderEdges(t *testing.T) {
	h := Header{NX: 4, XMin: -2, XMax: 2, NY: 1, NZ: 2, ZMin: 0, ZMax: 1}

	xe := h.XEdges()
	if len(xe) != 5 {
		t.Fatalf("expected 5 edges, got %d", len(xe))
	}
	if xe[0] != -2 || xe[4] != 2 || xe[2] != 0 {
		t.Errorf("edges wrong: %v", xe)
	}

	zc := h.ZCenters()
	if len(zc) != 2 || zc[0] != 0.25 || zc[1] != 0.75 {
		t.Errorf("centers wrong: %v", zc)
	}
}
