package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/ctxlog"
)

// Options names the container images and run limits. They are passed
// in explicitly and scoped to a single campaign rather than living as
// package globals.
type Options struct {
	FlukaImage  string
	FluggImage  string
	Geant4Image string
	Timeout     time.Duration
	UseFLUGG    bool
}

func DefaultOptions() Options {
	return Options{
		FlukaImage:  "fluka:ggi",
		FluggImage:  "flugg:latest",
		Geant4Image: "ghcr.io/kalradaisy/geant4muc:dev-CI",
		Timeout:     time.Hour,
	}
}

// flukaMergeScript is the in-container shell that runs rfluka over all
// cycles, merges the unit-21 USRBIN and unit-23 USRBDX cycle files with
// the engine's own usbsuw/usxsuw utilities, converts them to ASCII and
// copies everything back to the mounted data directory.
func flukaMergeScript(inputStem string, cycles int) string {
	return fmt.Sprintf(`set -e; `+
		`export FLUPRO=/usr/local/fluka; `+
		`export FLUFOR=gfortran; `+
		`mkdir -p /fluka_work && cd /fluka_work; `+
		`cp /data/%[1]s.inp .; `+
		`$FLUPRO/bin/rfluka -N0 -M%[2]d %[1]s; `+
		`if ls %[1]s001_fort.21 2>/dev/null; then `+
		`  for i in $(seq -f '%%03g' 1 %[2]d); do `+
		`    [ -f %[1]s${i}_fort.21 ] && echo %[1]s${i}_fort.21; `+
		`  done > usrbin21.lst; `+
		`  echo '' >> usrbin21.lst; echo 'edep_xz.bnn' >> usrbin21.lst; `+
		`  $FLUPRO/bin/usbsuw < usrbin21.lst; `+
		`  printf 'edep_xz.bnn\nedep_xz.dat\n\n' | $FLUPRO/bin/usbrea; `+
		`fi; `+
		`if ls %[1]s001_fort.23 2>/dev/null; then `+
		`  for i in $(seq -f '%%03g' 1 %[2]d); do `+
		`    [ -f %[1]s${i}_fort.23 ] && echo %[1]s${i}_fort.23; `+
		`  done > usrbdx23.lst; `+
		`  echo '' >> usrbdx23.lst; echo 'neut_exit.bnn' >> usrbdx23.lst; `+
		`  $FLUPRO/bin/usxsuw < usrbdx23.lst; `+
		`  printf 'neut_exit.bnn\nneut_exit.dat\n\n' | $FLUPRO/bin/usxrea; `+
		`fi; `+
		`cp -f *.bnn *.dat *.out *.log *.err /data/ 2>/dev/null || true`,
		inputStem, cycles)
}

// runFlukaNative executes a FLUKA run with inline geometry.
func runFlukaNative(ctx context.Context, ex Exec, opts Options, cfg *config.Simulation, model, inputFile, outputDir string) Result {
	start := time.Now()

	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return failed("fluka", model, outputDir, start, err.Error())
	}
	stem := stemOf(inputFile)

	args := []string{
		"run", "--rm",
		"-v", absOut + ":/data",
		opts.FlukaImage,
		"bash", "-c", flukaMergeScript(stem, cfg.Fluka.Cycles),
	}

	errText, ok := invoke(ctx, ex, outputDir, opts.Timeout, "docker", args...)
	return Result{
		Engine:    "fluka",
		Model:     model,
		Success:   ok,
		OutputDir: outputDir,
		Runtime:   time.Since(start),
		Err:       errText,
	}
}

// runFlukaFLUGG executes a FLUKA run with geometry imported from the
// configured GDML file via FLUGG. On success the cycle outputs are
// merged in a second container pass.
func runFlukaFLUGG(ctx context.Context, ex Exec, opts Options, cfg *config.Simulation, model, inputFile, outputDir string) Result {
	start := time.Now()

	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return failed("fluka", model, outputDir, start, err.Error())
	}
	gdml, err := filepath.Abs(cfg.GeometryGDML)
	if err != nil {
		return failed("fluka", model, outputDir, start, err.Error())
	}

	args := []string{
		"run", "--rm",
		"-v", absOut + ":/data",
		"-v", gdml + ":/geometry.gdml:ro",
		"-e", "FLUGG_GDML=/geometry.gdml",
		"-w", "/data",
		opts.FluggImage,
		"flugg_run.sh", filepath.Base(inputFile), fmt.Sprintf("%d", cfg.Fluka.Cycles),
	}

	errText, ok := invoke(ctx, ex, outputDir, opts.Timeout, "docker", args...)

	if ok {
		mergeArgs := []string{
			"run", "--rm",
			"-v", absOut + ":/data",
			"-w", "/data",
			opts.FluggImage,
			"bash", "-c",
			`for f in *_fort.21; do ` +
				`$FLUPRO/bin/usbsuw <<< "${f%_fort.21}" && ` +
				`$FLUPRO/bin/usbrea <<< "${f%.21}.bnn"; done 2>/dev/null || true`,
		}
		mergeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		_, _, merr := ex.Run(mergeCtx, "docker", mergeArgs...)
		cancel()
		if merr != nil {
			ctxlog.FromContext(ctx).Warn("flugg merge pass failed", "model", model, "error", merr)
		}
	}

	return Result{
		Engine:    "fluka",
		Model:     model,
		Success:   ok,
		OutputDir: outputDir,
		Runtime:   time.Since(start),
		Err:       errText,
	}
}

// runGeant4 executes the containerized comparison application for one
// physics list.
func runGeant4(ctx context.Context, ex Exec, opts Options, cfg *config.Simulation, model, macroFile, outputDir string) Result {
	start := time.Now()

	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return failed("geant4", model, outputDir, start, err.Error())
	}
	gdml, err := filepath.Abs(cfg.GeometryGDML)
	if err != nil {
		return failed("geant4", model, outputDir, start, err.Error())
	}

	args := []string{
		"run", "--rm",
		"-v", absOut + ":/data",
		"-v", gdml + ":/geometry.gdml:ro",
		"-w", "/data",
		opts.Geant4Image,
		"comparison_app",
		"-g", "/geometry.gdml",
		"-p", model,
		"-m", filepath.Base(macroFile),
		"-o", "/data",
	}

	errText, ok := invoke(ctx, ex, outputDir, opts.Timeout, "docker", args...)
	return Result{
		Engine:    "geant4",
		Model:     model,
		Success:   ok,
		OutputDir: outputDir,
		Runtime:   time.Since(start),
		Err:       errText,
	}
}

func failed(engine, model, outputDir string, start time.Time, msg string) Result {
	return Result{
		Engine:    engine,
		Model:     model,
		OutputDir: outputDir,
		Runtime:   time.Since(start),
		Err:       msg,
	}
}

func stemOf(inputFile string) string {
	base := filepath.Base(inputFile)
	return base[:len(base)-len(filepath.Ext(base))]
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
