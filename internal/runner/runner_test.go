package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/fluka"
)

// fakeExec records invocations and returns scripted outcomes.
type fakeExec struct {
	mu      sync.Mutex
	calls   [][]string
	fail    map[string]error // substring of args -> error
	block   bool             // block until the context expires
	blockOn string           // block only calls whose args contain this substring
}

func (f *fakeExec) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	joined := strings.Join(args, " ")
	if f.block || (f.blockOn != "" && strings.Contains(joined, f.blockOn)) {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	for substr, err := range f.fail {
		if strings.Contains(joined, substr) {
			return "", "engine exploded", err
		}
	}
	return "simulation ok", "", nil
}

func testConfig(t *testing.T) *config.Simulation {
	t.Helper()
	cfg := config.DefaultSimulation()
	cfg.OutputDir = t.TempDir()
	cfg.Fluka.NeutronLibraries = []string{"JEFF", "ENDF"}
	cfg.Geant4.PhysicsLists = []string{"QGSP_BERT_HP"}
	return cfg
}

func TestPrepare(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, DefaultOptions(), &fakeExec{})

	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	for _, task := range tasks {
		if _, err := os.Stat(task.InputFile); err != nil {
			t.Errorf("input artifact missing for %s: %v", task.Spec.Model, err)
		}
	}

	deck, err := os.ReadFile(tasks[0].InputFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(deck), "JEFF-3.3") {
		t.Error("fluka deck missing library code")
	}

	macro, err := os.ReadFile(tasks[2].InputFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(macro), "/run/beamOn") {
		t.Error("geant4 macro missing beamOn")
	}
	if _, err := os.Stat(filepath.Join(tasks[2].OutputDir, "config.json")); err != nil {
		t.Errorf("geant4 app config missing: %v", err)
	}
}

func TestPrepare_TemplateDeck(t *testing.T) {
	cfg := testConfig(t)
	cfg.Particle.Energy = 14
	cfg.Particle.EnergyUnit = "MeV"
	cfg.Events = 50000
	cfg.Fluka.Cycles = 5

	template := strings.Join([]string{
		fluka.Card("TITLE", nil, ""),
		"BPE slab, hand-tuned geometry",
		fluka.Card("BEAM", []any{-0.001, nil, nil, nil, nil, nil}, "NEUTRON"),
		fluka.Card("LOW-PWXS", []any{1}, "JENDL4.0"),
		fluka.Card("RANDOMIZ", []any{1.0}, ""),
		fluka.Card("START", []any{1000.0}, ""),
		fluka.Card("STOP", nil, ""),
	}, "\n") + "\n"
	path := filepath.Join(t.TempDir(), "template.inp")
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Fluka.TemplateDeck = path

	o := New(cfg, DefaultOptions(), &fakeExec{})
	tasks, err := o.Prepare(cfg.RunSpecs()[:1]) // fluka/JEFF
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(tasks[0].InputFile)
	if err != nil {
		t.Fatal(err)
	}
	deck := string(data)

	if !strings.Contains(deck, "-0.014") {
		t.Error("beam energy not patched to -0.014 GeV")
	}
	if !strings.Contains(deck, "1e+04") {
		t.Error("primaries not patched to events per cycle")
	}
	if !strings.Contains(deck, "JEFF-3.3") || strings.Contains(deck, "JENDL4.0") {
		t.Error("library card not swapped for the model's")
	}
	if strings.Count(deck, "LOW-PWXS") != 1 {
		t.Errorf("expected exactly one LOW-PWXS card:\n%s", deck)
	}
	if !strings.Contains(deck, "hand-tuned geometry") {
		t.Error("template prose line lost")
	}
}

func TestRun_AllSucceed(t *testing.T) {
	cfg := testConfig(t)
	ex := &fakeExec{}
	o := New(cfg, DefaultOptions(), ex)

	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	results := o.Run(context.Background(), tasks, 2, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("%s failed: %s", r.Label(), r.Err)
		}
	}
	if Failed(results) != 0 {
		t.Error("expected no failures")
	}
}

func TestRun_FailureDoesNotAbortSiblings(t *testing.T) {
	cfg := testConfig(t)
	ex := &fakeExec{fail: map[string]error{"-p QGSP_BERT_HP": os.ErrPermission}}
	o := New(cfg, DefaultOptions(), ex)

	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	results := o.Run(context.Background(), tasks, 4, nil)
	if Failed(results) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d", Failed(results))
	}
	for _, r := range results {
		if r.Engine == "fluka" && !r.Success {
			t.Errorf("sibling fluka run aborted: %s", r.Err)
		}
		if r.Engine == "geant4" {
			if r.Success {
				t.Error("geant4 run should have failed")
			}
			if !strings.Contains(r.Err, "engine exploded") {
				t.Errorf("stderr not captured: %q", r.Err)
			}
		}
	}
}

func TestRun_TimeoutIsFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fluka.NeutronLibraries = []string{"JEFF"}
	cfg.Geant4.Enabled = false

	opts := DefaultOptions()
	opts.Timeout = 10 * time.Millisecond
	o := New(cfg, opts, &fakeExec{block: true})

	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	results := o.Run(context.Background(), tasks, 1, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Success {
		t.Fatal("timed-out run must be reported as failed")
	}
	if !strings.Contains(results[0].Err, "timed out after") {
		t.Errorf("expected timeout-specific message, got %q", results[0].Err)
	}
}

func TestRun_FLUGGMergeTimeout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fluka.NeutronLibraries = []string{"JEFF"}
	cfg.Geant4.Enabled = false

	opts := DefaultOptions()
	opts.UseFLUGG = true
	opts.Timeout = 10 * time.Millisecond
	// Stall only the usbsuw merge pass; the primary FLUGG run succeeds.
	o := New(cfg, opts, &fakeExec{blockOn: "usbsuw"})

	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan []Result, 1)
	go func() { done <- o.Run(context.Background(), tasks, 1, nil) }()

	select {
	case results := <-done:
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if !results[0].Success {
			t.Errorf("a failed merge pass must not fail the run: %s", results[0].Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("merge pass ignored the per-run timeout")
	}
}

func TestRun_PersistsLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Fluka.NeutronLibraries = []string{"JEFF"}
	cfg.Geant4.Enabled = false

	o := New(cfg, DefaultOptions(), &fakeExec{})
	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	results := o.Run(context.Background(), tasks, 1, nil)
	logPath := filepath.Join(results[0].OutputDir, "run.log")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("run.log not persisted: %v", err)
	}
	if !strings.Contains(string(data), "=== STDOUT ===") || !strings.Contains(string(data), "simulation ok") {
		t.Errorf("log content wrong:\n%s", data)
	}
}

func TestRun_Events(t *testing.T) {
	cfg := testConfig(t)
	o := New(cfg, DefaultOptions(), &fakeExec{})
	tasks, err := o.Prepare(cfg.RunSpecs())
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	counts := map[string]int{}
	o.Run(context.Background(), tasks, 2, func(e Event) {
		mu.Lock()
		counts[e.Type]++
		mu.Unlock()
	})

	if counts["start"] != 3 || counts["done"] != 3 {
		t.Errorf("expected 3 start/done events, got %v", counts)
	}
}

func TestSortResults(t *testing.T) {
	results := []Result{
		{Engine: "geant4", Model: "Shielding"},
		{Engine: "fluka", Model: "JEFF"},
		{Engine: "fluka", Model: "ENDF"},
	}
	SortResults(results)

	want := []string{"fluka/ENDF", "fluka/JEFF", "geant4/Shielding"}
	for i, r := range results {
		if r.Label() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, r.Label(), want[i])
		}
	}
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Engine: "fluka", Model: "JEFF", Success: true, Runtime: 90 * time.Second},
		{Engine: "geant4", Model: "Shielding", Success: false, Runtime: time.Second,
			Err: "bad, very bad: " + strings.Repeat("x", 200)},
	}

	s := Summary(results)
	lines := strings.Split(s, "\n")
	if lines[0] != "engine,model,success,runtime_s,error" {
		t.Errorf("header: %q", lines[0])
	}
	if lines[1] != "fluka,JEFF,true,90.0," {
		t.Errorf("row: %q", lines[1])
	}
	if strings.Contains(lines[2], "bad, very") {
		t.Error("commas in error text must be replaced")
	}
	if len(lines[2]) > len("geant4,Shielding,false,1.0,")+100 {
		t.Error("error text must be truncated to 100 chars")
	}
}
