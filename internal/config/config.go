package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEvents    = 100000
	DefaultCycles    = 5
	DefaultCutMM     = 0.7
	DefaultOutputDir = "output/scan_results"
	DefaultSpecBins  = 100
)

// Particle describes the primary particle gun.
type Particle struct {
	Type       string     `yaml:"type"`
	Energy     float64    `yaml:"energy"`
	EnergyUnit string     `yaml:"energy_unit"`
	Position   [3]float64 `yaml:"position"`
	Direction  [3]float64 `yaml:"direction"`
}

// EnergyGeV converts the configured energy to GeV.
func (p Particle) EnergyGeV() (float64, error) {
	switch strings.ToUpper(p.EnergyUnit) {
	case "GEV":
		return p.Energy, nil
	case "MEV", "":
		return p.Energy / 1e3, nil
	case "KEV":
		return p.Energy / 1e6, nil
	case "EV":
		return p.Energy / 1e9, nil
	default:
		return 0, fmt.Errorf("config: unknown energy unit %q", p.EnergyUnit)
	}
}

// EnergyMeV converts the configured energy to MeV.
func (p Particle) EnergyMeV() (float64, error) {
	gev, err := p.EnergyGeV()
	if err != nil {
		return 0, err
	}
	return gev * 1e3, nil
}

// EdepScoring defines the 3D energy-deposition mesh.
type EdepScoring struct {
	Enabled bool       `yaml:"enabled"`
	XRange  [2]float64 `yaml:"x_range"`
	YRange  [2]float64 `yaml:"y_range"`
	ZRange  [2]float64 `yaml:"z_range"`
	XBins   int        `yaml:"x_bins"`
	YBins   int        `yaml:"y_bins"`
	ZBins   int        `yaml:"z_bins"`
}

// SpectrumScoring defines the boundary-crossing neutron spectrum.
type SpectrumScoring struct {
	Enabled     bool       `yaml:"enabled"`
	EnergyRange [2]float64 `yaml:"energy_range"` // GeV
	EnergyBins  int        `yaml:"energy_bins"`
}

type Scoring struct {
	EnergyDeposition EdepScoring     `yaml:"energy_deposition"`
	NeutronSpectrum  SpectrumScoring `yaml:"neutron_spectrum"`
	Secondaries      bool            `yaml:"secondaries"`
}

type Fluka struct {
	Enabled          bool     `yaml:"enabled"`
	Cycles           int      `yaml:"cycles"`
	NeutronLibraries []string `yaml:"neutron_libraries"`
	LowEnergyNeutron bool     `yaml:"low_energy_neutron"`
	// TemplateDeck, when set, is a hand-written input deck that gets
	// patched per model instead of generating a deck from scratch.
	TemplateDeck string `yaml:"template_deck"`
}

type Geant4 struct {
	Enabled      bool     `yaml:"enabled"`
	CutValue     float64  `yaml:"cut_value"` // mm
	PhysicsLists []string `yaml:"physics_lists"`
}

// Simulation is the complete configuration for a comparison campaign.
type Simulation struct {
	Particle     Particle `yaml:"particle"`
	GeometryGDML string   `yaml:"geometry_gdml"`
	Events       int      `yaml:"events"`
	OutputDir    string   `yaml:"output_dir"`
	Seed         int64    `yaml:"seed"`
	Fluka        Fluka    `yaml:"fluka"`
	Geant4       Geant4   `yaml:"geant4"`
	Scoring      Scoring  `yaml:"scoring"`
}

func DefaultSimulation() *Simulation {
	return &Simulation{
		Particle: Particle{
			Type:       "neutron",
			Energy:     1.0,
			EnergyUnit: "MeV",
			Direction:  [3]float64{0, 0, 1},
		},
		Events:    DefaultEvents,
		OutputDir: DefaultOutputDir,
		Fluka: Fluka{
			Enabled:          true,
			Cycles:           DefaultCycles,
			NeutronLibraries: []string{"JEFF"},
			LowEnergyNeutron: true,
		},
		Geant4: Geant4{
			Enabled:      true,
			CutValue:     DefaultCutMM,
			PhysicsLists: []string{"QGSP_BERT_HP"},
		},
		Scoring: Scoring{
			EnergyDeposition: EdepScoring{
				Enabled: true,
				XRange:  [2]float64{-100, 100},
				YRange:  [2]float64{-100, 100},
				ZRange:  [2]float64{0, 2},
				XBins:   1,
				YBins:   1,
				ZBins:   100,
			},
			NeutronSpectrum: SpectrumScoring{
				Enabled:     true,
				EnergyRange: [2]float64{1e-11, 1e1},
				EnergyBins:  DefaultSpecBins,
			},
		},
	}
}

// LoadSimulation reads a simulation config, applying defaults for any
// omitted fields.
func LoadSimulation(path string) (*Simulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultSimulation()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func SaveSimulation(path string, cfg *Simulation) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunSpec names one (engine, model) invocation.
type RunSpec struct {
	Engine string // "fluka" or "geant4"
	Model  string // neutron library or physics list
	Subdir string // output subdirectory relative to OutputDir
}

func (s RunSpec) Label() string { return s.Engine + "/" + s.Model }

// RunSpecs expands the configuration into the ordered run list: all
// enabled FLUKA libraries first, then all enabled Geant4 physics lists.
func (c *Simulation) RunSpecs() []RunSpec {
	var specs []RunSpec
	if c.Fluka.Enabled {
		for _, lib := range c.Fluka.NeutronLibraries {
			specs = append(specs, RunSpec{
				Engine: "fluka",
				Model:  lib,
				Subdir: "fluka/" + lib,
			})
		}
	}
	if c.Geant4.Enabled {
		for _, phys := range c.Geant4.PhysicsLists {
			specs = append(specs, RunSpec{
				Engine: "geant4",
				Model:  phys,
				Subdir: "geant4/" + phys,
			})
		}
	}
	return specs
}

// EventsPerCycle splits the total primaries across FLUKA cycles.
func (c *Simulation) EventsPerCycle() int {
	if c.Fluka.Cycles <= 0 {
		return c.Events
	}
	return c.Events / c.Fluka.Cycles
}
