package storage

import (
	"testing"
	"time"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/runner"
)

func TestSaveAndList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultSimulation()
	cfg.Particle.Type = "neutron"
	cfg.Particle.Energy = 14
	cfg.Particle.EnergyUnit = "MeV"
	results := []runner.Result{
		{Engine: "fluka", Model: "JEFF", Success: true, Runtime: 90 * time.Second},
		{Engine: "geant4", Model: "QGSP_BERT_HP", Success: false, Runtime: 5 * time.Second, Err: "docker: not found"},
	}

	id, err := st.Save(cfg, results)
	if err != nil {
		t.Fatal(err)
	}

	campaigns, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("got %d campaigns, want 1", len(campaigns))
	}
	got := campaigns[0]
	if got.ID != id {
		t.Errorf("ID = %s, want %s", got.ID, id)
	}
	if got.EnergyGeV != 0.014 {
		t.Errorf("EnergyGeV = %g, want 0.014", got.EnergyGeV)
	}
	if len(got.Runs) != 2 || got.Failed() != 1 {
		t.Errorf("runs = %+v, want 2 runs with 1 failure", got.Runs)
	}
	if got.Runs[1].Error != "docker: not found" {
		t.Errorf("error not persisted: %+v", got.Runs[1])
	}
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	campaigns, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(campaigns) != 0 {
		t.Errorf("expected empty history, got %d", len(campaigns))
	}
}
