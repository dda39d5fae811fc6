// Package results discovers completed run directories and loads their
// decoded profile and spectrum data for analysis.
package results

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/ctxlog"
)

// Curve is a sampled 1D function: X positions (bin centers or bin
// lower edges) and one value per position.
type Curve struct {
	X []float64
	Y []float64
}

// Integral sums the curve as value times uniform bin width, taking the
// width from the first two X positions. A single-sample curve sums the
// values unscaled.
func (c Curve) Integral() float64 {
	sum := 0.0
	for _, y := range c.Y {
		sum += y
	}
	if len(c.X) > 1 {
		sum *= c.X[1] - c.X[0]
	}
	return sum
}

// RunDir locates one run's artifacts.
type RunDir struct {
	Engine string
	Model  string
	Path   string
}

func (r RunDir) Label() string { return r.Engine + "/" + r.Model }

// Discover scans a results tree for <dir>/fluka/<model> and
// <dir>/geant4/<model> run directories, sorted for stable output.
func Discover(dir string) ([]RunDir, error) {
	var runs []RunDir
	for _, engine := range []string{"fluka", "geant4"} {
		entries, err := os.ReadDir(filepath.Join(dir, engine))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			runs = append(runs, RunDir{
				Engine: engine,
				Model:  e.Name(),
				Path:   filepath.Join(dir, engine, e.Name()),
			})
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Label() < runs[j].Label() })
	return runs, nil
}

// ReadCurve parses a two-column ASCII file (x, y per line, '#'
// comments). A file holding a single value becomes a one-point curve.
func ReadCurve(path string) (Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return Curve{}, err
	}
	defer f.Close()

	var curve Curve
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Curve{}, fmt.Errorf("results: %s: bad value %q", path, fields[0])
		}
		if len(fields) == 1 {
			curve.X = append(curve.X, 0.5)
			curve.Y = append(curve.Y, x)
			continue
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Curve{}, fmt.Errorf("results: %s: bad value %q", path, fields[1])
		}
		curve.X = append(curve.X, x)
		curve.Y = append(curve.Y, y)
	}
	return curve, scanner.Err()
}

// Filenames tried per run directory, in order. The first name is the
// Geant4 application's output; the fallbacks are FLUKA conversions.
var (
	profileNames  = []string{"edep_profile.dat", "input001_21.dat"}
	spectrumNames = []string{"neutron_spectrum.dat", "input001_23.dat"}
)

// LoadProfiles reads energy-deposition profiles for every run that has
// one, keyed engine/model. Unreadable files are logged and skipped.
func LoadProfiles(ctx context.Context, runs []RunDir) map[string]Curve {
	return load(ctx, runs, profileNames)
}

// LoadSpectra reads neutron exit spectra for every run that has one.
func LoadSpectra(ctx context.Context, runs []RunDir) map[string]Curve {
	return load(ctx, runs, spectrumNames)
}

func load(ctx context.Context, runs []RunDir, names []string) map[string]Curve {
	data := make(map[string]Curve)
	for _, run := range runs {
		path := firstExisting(run.Path, names)
		if path == "" {
			continue
		}
		curve, err := ReadCurve(path)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("skipping unreadable result", "path", path, "error", err)
			continue
		}
		data[run.Label()] = curve
	}
	return data
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Interp linearly interpolates curve values onto a target grid,
// clamping outside the curve's domain. Used to compare models whose
// binning differs.
func Interp(target []float64, c Curve) []float64 {
	out := make([]float64, len(target))
	for i, x := range target {
		out[i] = interpAt(x, c)
	}
	return out
}

func interpAt(x float64, c Curve) float64 {
	n := len(c.X)
	if n == 0 {
		return 0
	}
	if x <= c.X[0] {
		return c.Y[0]
	}
	if x >= c.X[n-1] {
		return c.Y[n-1]
	}
	// Bisect for the bracketing interval.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if c.X[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	t := (x - c.X[lo]) / (c.X[hi] - c.X[lo])
	return c.Y[lo] + t*(c.Y[hi]-c.Y[lo])
}
