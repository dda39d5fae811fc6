package geant4

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
)

// AppConfig is the single-file JSON alternative to macro configuration,
// consumed directly by the comparison application.
type AppConfig struct {
	PhysicsList  string      `json:"physics_list"`
	GeometryGDML string      `json:"geometry_gdml"`
	Particle     AppParticle `json:"particle"`
	Events       int         `json:"events"`
	CutMM        float64     `json:"cut_mm"`
	Seed         int64       `json:"seed"`
	Scoring      AppScoring  `json:"scoring"`
}

type AppParticle struct {
	Type       string     `json:"type"`
	EnergyMeV  float64    `json:"energy_mev"`
	PositionCM [3]float64 `json:"position_cm"`
	Direction  [3]float64 `json:"direction"`
}

type AppScoring struct {
	EnergyDeposition config.EdepScoring     `json:"energy_deposition"`
	NeutronSpectrum  config.SpectrumScoring `json:"neutron_spectrum"`
}

// GenerateJSON builds the application config for one physics list.
func GenerateJSON(cfg *config.Simulation, physicsList string) (*AppConfig, error) {
	energyMeV, err := cfg.Particle.EnergyMeV()
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		PhysicsList:  physicsList,
		GeometryGDML: cfg.GeometryGDML,
		Particle: AppParticle{
			Type:       config.Geant4Particle(cfg.Particle.Type),
			EnergyMeV:  energyMeV,
			PositionCM: cfg.Particle.Position,
			Direction:  cfg.Particle.Direction,
		},
		Events:  cfg.Events,
		CutMM:   cfg.Geant4.CutValue,
		Seed:    cfg.Seed,
		Scoring: AppScoring{
			EnergyDeposition: cfg.Scoring.EnergyDeposition,
			NeutronSpectrum:  cfg.Scoring.NeutronSpectrum,
		},
	}, nil
}

// WriteJSON writes the application config to path with indentation.
func WriteJSON(path string, app *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(app)
}
