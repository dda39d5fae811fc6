package fluka

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
)

// GenerateFLUGG renders a FLUKA input deck for FLUGG mode, where the
// geometry is imported from an external GDML description instead of the
// native combinatorial geometry language.
func GenerateFLUGG(cfg *config.Simulation, library string) (string, error) {
	energyGeV, err := cfg.Particle.EnergyGeV()
	if err != nil {
		return "", err
	}

	particle := config.FlukaParticle(cfg.Particle.Type)
	sdum := config.LibrarySDUM(library)

	var lines []string
	lines = append(lines, "TITLE")
	lines = append(lines, fmt.Sprintf("FLUGG comparison run - %s library", library))
	lines = append(lines, Card("DEFAULTS", blank6, "PRECISIO"))

	// BEAM WHAT(1) < 0 means fixed momentum given as energy in GeV.
	lines = append(lines, Card("BEAM", []any{-energyGeV, 0.0, 0.0, 0.0, 0.0, 1.0}, particle))

	pos := cfg.Particle.Position
	dir := cfg.Particle.Direction
	lines = append(lines, Card("BEAMPOS", []any{pos[0], pos[1], pos[2], dir[0], dir[1], nil}, ""))

	lines = append(lines, Card("GEOBEGIN", blank6, "FLUGG"))
	lines = append(lines, "    0    0          FLUGG geometry from GDML")
	lines = append(lines, "GEOEND")

	lines = append(lines, scoringCards(cfg, sdum, "YOURMAT", "VACUUM")...)
	lines = append(lines, closingCards(cfg)...)

	return strings.Join(lines, "\n"), nil
}

// GenerateNative renders a FLUKA input deck with inline geometry: a
// borated polyethylene slab in a vacuum world.
func GenerateNative(cfg *config.Simulation, library string) (string, error) {
	energyGeV, err := cfg.Particle.EnergyGeV()
	if err != nil {
		return "", err
	}

	particle := config.FlukaParticle(cfg.Particle.Type)
	sdum := config.LibrarySDUM(library)

	var lines []string
	lines = append(lines, "TITLE")
	lines = append(lines, fmt.Sprintf("FLUKA native geometry run - %s library", library))
	lines = append(lines, Card("DEFAULTS", blank6, "PRECISIO"))
	lines = append(lines, Card("BEAM", []any{-energyGeV, 0.0, 0.0, 0.0, 0.0, 1.0}, particle))

	pos := cfg.Particle.Position
	dir := cfg.Particle.Direction
	lines = append(lines, Card("BEAMPOS", []any{pos[0], pos[1], pos[2], dir[0], dir[1], nil}, ""))

	lines = append(lines,
		"GEOBEGIN                                                              COMBNAME",
		"    0    0          BPE slab geometry",
		"RPP world      -200. 200. -200. 200. -50. 50.",
		"RPP bpeslab    -100. 100. -100. 100. 0. 1.75",
		"END",
		"WORLDREG  5 +world -bpeslab",
		"BPEREGIO  5 +bpeslab",
		"END",
		"GEOEND",
	)

	lines = append(lines, Card("ASSIGNMA", []any{"VACUUM", "WORLDREG", nil, nil, nil, nil}, ""))
	lines = append(lines, Card("ASSIGNMA", []any{"BPOLY", "BPEREGIO", nil, nil, nil, nil}, ""))
	lines = append(lines, Card("MATERIAL", []any{nil, nil, 0.95, 25, nil, nil}, "BPOLY"))
	lines = append(lines, Card("COMPOUND", []any{-0.12, "HYDROGEN", -0.63, "CARBON", -0.05, "BORON"}, "BPOLY"))
	lines = append(lines, Card("COMPOUND", []any{-0.20, "OXYGEN", nil, nil, nil, nil}, "BPOLY"))

	lines = append(lines, scoringCards(cfg, sdum, "BPEREGIO", "WORLDREG")...)
	lines = append(lines, closingCards(cfg)...)

	return strings.Join(lines, "\n"), nil
}

// scoringCards emits the LOW-PWXS library selection and the USRBIN and
// USRBDX estimator pairs. fromReg and toReg name the boundary of the
// exit-spectrum estimator.
func scoringCards(cfg *config.Simulation, librarySDUM, fromReg, toReg string) []string {
	var lines []string

	if cfg.Fluka.LowEnergyNeutron {
		lines = append(lines, Card("LOW-PWXS", []any{1.0, 0.0, 0.0, 0.0, 0.0, 0.0}, librarySDUM))
	}

	if edep := cfg.Scoring.EnergyDeposition; edep.Enabled {
		// USRBIN pair. First card: mesh type 10 (cartesian), quantity,
		// output unit -21 (binary), upper corner. Continuation: lower
		// corner and bin counts.
		lines = append(lines, Card("USRBIN",
			[]any{10.0, "ENERGY", -21.0, edep.XRange[1], edep.YRange[1], edep.ZRange[1]}, "EDEP"))
		lines = append(lines, Card("USRBIN",
			[]any{edep.XRange[0], edep.YRange[0], edep.ZRange[0], edep.XBins, edep.YBins, edep.ZBins}, "&"))
	}

	if spec := cfg.Scoring.NeutronSpectrum; spec.Enabled {
		lines = append(lines, Card("USRBDX",
			[]any{99.0, "NEUTRON", -23.0, fromReg, toReg, 1.0}, "NEUT-OUT"))
		lines = append(lines, Card("USRBDX",
			[]any{spec.EnergyRange[1], spec.EnergyRange[0], spec.EnergyBins, nil, nil, nil}, "&"))
	}

	return lines
}

func closingCards(cfg *config.Simulation) []string {
	var lines []string

	if cfg.Seed > 0 {
		lines = append(lines, Card("RANDOMIZ", []any{1.0, float64(cfg.Seed), nil, nil, nil, nil}, ""))
	} else {
		lines = append(lines, Card("RANDOMIZ", []any{1.0, nil, nil, nil, nil, nil}, ""))
	}

	lines = append(lines, Card("START", []any{cfg.EventsPerCycle(), nil, nil, nil, nil, nil}, ""))
	lines = append(lines, "STOP")
	return lines
}

// WriteDeck writes a deck to path, creating parent directories.
func WriteDeck(path, deck string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(deck), 0644)
}
