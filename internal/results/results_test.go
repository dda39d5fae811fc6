package results

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		"fluka/JEFF", "fluka/ENDF", "geant4/QGSP_BERT_HP",
	} {
		if err := os.MkdirAll(filepath.Join(dir, p), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// A stray file next to the run dirs must be ignored.
	writeFile(t, filepath.Join(dir, "fluka", "summary.csv"), "x\n")

	runs, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	var labels []string
	for _, r := range runs {
		labels = append(labels, r.Label())
	}
	want := []string{"fluka/ENDF", "fluka/JEFF", "geant4/QGSP_BERT_HP"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverMissingTree(t *testing.T) {
	runs, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestReadCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.dat")
	writeFile(t, path, "# z  edep\n0.5 1.0\n1.5 2.0\n\n2.5 0.0\n")

	c, err := ReadCurve(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0.5, 1.5, 2.5}, c.X); diff != "" {
		t.Errorf("X mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1.0, 2.0, 0.0}, c.Y); diff != "" {
		t.Errorf("Y mismatch:\n%s", diff)
	}
}

func TestReadCurveSingleValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "total.dat")
	writeFile(t, path, "42.5\n")

	c, err := ReadCurve(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Y) != 1 || c.Y[0] != 42.5 {
		t.Fatalf("got %+v, want single point 42.5", c)
	}
}

func TestReadCurveBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dat")
	writeFile(t, path, "0.5 oops\n")
	if _, err := ReadCurve(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadProfilesFallback(t *testing.T) {
	dir := t.TempDir()
	// Geant4 run uses the canonical name, FLUKA run only has the
	// converted USRBIN output.
	writeFile(t, filepath.Join(dir, "geant4", "FTFP", "edep_profile.dat"), "0.5 1.0\n")
	writeFile(t, filepath.Join(dir, "fluka", "JEFF", "input001_21.dat"), "0.5 2.0\n")
	// Run with no data at all.
	if err := os.MkdirAll(filepath.Join(dir, "fluka", "ENDF"), 0o755); err != nil {
		t.Fatal(err)
	}

	runs, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	profiles := LoadProfiles(context.Background(), runs)
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if profiles["fluka/JEFF"].Y[0] != 2.0 {
		t.Errorf("fallback file not loaded: %+v", profiles["fluka/JEFF"])
	}
	if _, ok := profiles["fluka/ENDF"]; ok {
		t.Error("run without data should be absent")
	}
}

func TestIntegral(t *testing.T) {
	c := Curve{X: []float64{0.25, 0.75, 1.25}, Y: []float64{2.0, 4.0, 6.0}}
	if got := c.Integral(); math.Abs(got-6.0) > 1e-12 {
		t.Errorf("Integral = %g, want 6", got)
	}
	single := Curve{X: []float64{0.5}, Y: []float64{3.0}}
	if got := single.Integral(); got != 3.0 {
		t.Errorf("single-sample Integral = %g, want 3", got)
	}
	if got := (Curve{}).Integral(); got != 0 {
		t.Errorf("empty Integral = %g, want 0", got)
	}
}

func TestInterp(t *testing.T) {
	c := Curve{X: []float64{0, 1, 2}, Y: []float64{0, 10, 40}}
	got := Interp([]float64{-1, 0.5, 1.5, 3}, c)
	want := []float64{0, 5, 25, 40}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Interp[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}
