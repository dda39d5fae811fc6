// Package geant4 generates macro and JSON configuration files for the
// containerized Geant4 comparison application.
package geant4

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
)

// GenerateMacro renders the line-oriented Geant4 macro for one physics
// list. The physics list itself is selected on the application command
// line, not in the macro.
func GenerateMacro(cfg *config.Simulation, physicsList string) (string, error) {
	energyMeV, err := cfg.Particle.EnergyMeV()
	if err != nil {
		return "", err
	}

	particle := config.Geant4Particle(cfg.Particle.Type)

	var lines []string
	lines = append(lines,
		"# Geant4 macro for comparison framework",
		fmt.Sprintf("# Physics list: %s", physicsList),
		"",
		"# Verbosity settings",
		"/control/verbose 0",
		"/run/verbose 0",
		"/event/verbose 0",
		"/tracking/verbose 0",
		"",
		"# Initialize run",
		"/run/initialize",
		"",
		"# Production cuts",
		fmt.Sprintf("/run/setCut %g mm", cfg.Geant4.CutValue),
		"",
		"# Particle gun configuration",
		fmt.Sprintf("/gun/particle %s", particle),
		fmt.Sprintf("/gun/energy %g MeV", energyMeV),
	)

	pos := cfg.Particle.Position
	dir := cfg.Particle.Direction
	lines = append(lines,
		fmt.Sprintf("/gun/position %g %g %g cm", pos[0], pos[1], pos[2]),
		fmt.Sprintf("/gun/direction %g %g %g", dir[0], dir[1], dir[2]),
		"",
	)

	if edep := cfg.Scoring.EnergyDeposition; edep.Enabled {
		lines = append(lines,
			"# Energy deposition scoring",
			fmt.Sprintf("/scoring/edep/xBins %d", edep.XBins),
			fmt.Sprintf("/scoring/edep/yBins %d", edep.YBins),
			fmt.Sprintf("/scoring/edep/zBins %d", edep.ZBins),
			fmt.Sprintf("/scoring/edep/xRange %g %g cm", edep.XRange[0], edep.XRange[1]),
			fmt.Sprintf("/scoring/edep/yRange %g %g cm", edep.YRange[0], edep.YRange[1]),
			fmt.Sprintf("/scoring/edep/zRange %g %g cm", edep.ZRange[0], edep.ZRange[1]),
			"",
		)
	}

	if spec := cfg.Scoring.NeutronSpectrum; spec.Enabled {
		lines = append(lines,
			"# Neutron spectrum scoring",
			fmt.Sprintf("/scoring/spectrum/nBins %d", spec.EnergyBins),
			// Spectrum ranges are configured in GeV; Geant4 wants MeV.
			fmt.Sprintf("/scoring/spectrum/eMin %g MeV", spec.EnergyRange[0]*1e3),
			fmt.Sprintf("/scoring/spectrum/eMax %g MeV", spec.EnergyRange[1]*1e3),
			"",
		)
	}

	if cfg.Seed > 0 {
		lines = append(lines,
			"# Random seed",
			fmt.Sprintf("/random/setSeeds %d %d", cfg.Seed, cfg.Seed+1),
			"",
		)
	}

	lines = append(lines,
		"# Run simulation",
		fmt.Sprintf("/run/beamOn %d", cfg.Events),
		"",
	)

	return strings.Join(lines, "\n"), nil
}

// WriteMacro writes a macro to path, creating parent directories.
func WriteMacro(path, macro string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(macro), 0644)
}
