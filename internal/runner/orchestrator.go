package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/ctxlog"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/fluka"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/geant4"
)

// Task is one materialized (engine, model) invocation. Each task owns
// its output directory exclusively, so tasks need no locking against
// each other.
type Task struct {
	Spec      config.RunSpec
	InputFile string
	OutputDir string
}

const (
	EventStart = "start"
	EventDone  = "done"
)

// Event reports task lifecycle transitions to observers (the live
// watch TUI or a plain logger).
type Event struct {
	Type   string // EventStart or EventDone
	Spec   config.RunSpec
	Result *Result // set for EventDone
}

// Orchestrator prepares input artifacts and executes comparison runs.
type Orchestrator struct {
	cfg  *config.Simulation
	opts Options
	exec Exec
}

func New(cfg *config.Simulation, opts Options, ex Exec) *Orchestrator {
	if ex == nil {
		ex = SystemExec{}
	}
	return &Orchestrator{cfg: cfg, opts: opts, exec: ex}
}

// Prepare materializes the input deck or macro for every spec and
// returns the ready-to-run task list. Artifacts are idempotently
// overwritten, so a retry starts from a clean slate.
func (o *Orchestrator) Prepare(specs []config.RunSpec) ([]Task, error) {
	var tasks []Task
	for _, spec := range specs {
		outputDir := filepath.Join(o.cfg.OutputDir, filepath.FromSlash(spec.Subdir))
		if err := ensureDir(outputDir); err != nil {
			return nil, err
		}

		var inputFile string
		switch spec.Engine {
		case "fluka":
			inputFile = filepath.Join(outputDir, "input.inp")
			var deck string
			var err error
			switch {
			case o.cfg.Fluka.TemplateDeck != "":
				deck, err = o.patchTemplate(spec.Model)
			case o.opts.UseFLUGG:
				deck, err = fluka.GenerateFLUGG(o.cfg, spec.Model)
			default:
				deck, err = fluka.GenerateNative(o.cfg, spec.Model)
			}
			if err != nil {
				return nil, fmt.Errorf("runner: generate deck for %s: %w", spec.Model, err)
			}
			if err := fluka.WriteDeck(inputFile, deck); err != nil {
				return nil, err
			}
		case "geant4":
			inputFile = filepath.Join(outputDir, "run.mac")
			macro, err := geant4.GenerateMacro(o.cfg, spec.Model)
			if err != nil {
				return nil, fmt.Errorf("runner: generate macro for %s: %w", spec.Model, err)
			}
			if err := geant4.WriteMacro(inputFile, macro); err != nil {
				return nil, err
			}
			// The app also accepts a single JSON config; write it next
			// to the macro so a run can be reproduced outside docker.
			app, err := geant4.GenerateJSON(o.cfg, spec.Model)
			if err != nil {
				return nil, err
			}
			if err := geant4.WriteJSON(filepath.Join(outputDir, "config.json"), app); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("runner: unknown engine %q", spec.Engine)
		}

		tasks = append(tasks, Task{Spec: spec, InputFile: inputFile, OutputDir: outputDir})
	}
	return tasks, nil
}

// patchTemplate adapts the user's hand-written deck to one model:
// beam energy and primary count from the config, the low-energy
// neutron library card swapped for the model's.
func (o *Orchestrator) patchTemplate(model string) (string, error) {
	data, err := os.ReadFile(o.cfg.Fluka.TemplateDeck)
	if err != nil {
		return "", err
	}
	deck := string(data)

	energy, err := o.cfg.Particle.EnergyGeV()
	if err != nil {
		return "", err
	}
	if deck, err = fluka.PatchEnergy(deck, energy); err != nil {
		return "", fmt.Errorf("runner: patch %s: %w", o.cfg.Fluka.TemplateDeck, err)
	}
	if deck, err = fluka.PatchPrimaries(deck, o.cfg.EventsPerCycle()); err != nil {
		return "", fmt.Errorf("runner: patch %s: %w", o.cfg.Fluka.TemplateDeck, err)
	}
	if o.cfg.Fluka.LowEnergyNeutron {
		if deck, err = fluka.PatchLibrary(deck, config.LibrarySDUM(model)); err != nil {
			return "", fmt.Errorf("runner: patch %s: %w", o.cfg.Fluka.TemplateDeck, err)
		}
	}
	return deck, nil
}

// Run executes tasks with at most workers in flight (workers <= 1 means
// sequential). One run's failure never aborts its siblings; results
// come back sorted regardless of completion order. The observer is
// optional.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task, workers int, observe func(Event)) []Result {
	if observe == nil {
		observe = func(Event) {}
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, task := range tasks {
		g.Go(func() error {
			observe(Event{Type: EventStart, Spec: task.Spec})
			res := o.runOne(gctx, task)
			results[i] = res
			observe(Event{Type: EventDone, Spec: task.Spec, Result: &res})

			log := ctxlog.FromContext(gctx)
			if res.Success {
				log.Info("run complete", "run", res.Label(), "runtime", res.Runtime)
			} else {
				log.Error("run failed", "run", res.Label(), "runtime", res.Runtime, "error", res.Err)
			}
			return nil
		})
	}
	// Task errors travel inside Result, so Wait only gathers.
	_ = g.Wait()

	SortResults(results)
	return results
}

func (o *Orchestrator) runOne(ctx context.Context, task Task) Result {
	switch task.Spec.Engine {
	case "fluka":
		if o.opts.UseFLUGG {
			return runFlukaFLUGG(ctx, o.exec, o.opts, o.cfg, task.Spec.Model, task.InputFile, task.OutputDir)
		}
		return runFlukaNative(ctx, o.exec, o.opts, o.cfg, task.Spec.Model, task.InputFile, task.OutputDir)
	case "geant4":
		return runGeant4(ctx, o.exec, o.opts, o.cfg, task.Spec.Model, task.InputFile, task.OutputDir)
	}
	return Result{
		Engine:    task.Spec.Engine,
		Model:     task.Spec.Model,
		OutputDir: task.OutputDir,
		Err:       fmt.Sprintf("unknown engine %q", task.Spec.Engine),
	}
}
