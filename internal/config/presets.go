package config

import "sort"

// Presets are canned study setups: a 1 MeV neutron on the borated
// polyethylene slab at increasing statistics, plus a thermal and a
// fast-spectrum variant.
var Presets = map[string]*Simulation{
	"bpe-quick": {
		Particle:  Particle{Type: "neutron", Energy: 1.0, EnergyUnit: "MeV", Direction: [3]float64{0, 0, 1}},
		Events:    10000,
		OutputDir: "output/bpe-quick",
		Fluka:     Fluka{Enabled: true, Cycles: 2, NeutronLibraries: []string{"JEFF"}, LowEnergyNeutron: true},
		Geant4:    Geant4{Enabled: true, CutValue: DefaultCutMM, PhysicsLists: []string{"QGSP_BERT_HP"}},
		Scoring:   DefaultSimulation().Scoring,
	},
	"bpe-scan": {
		Particle:  Particle{Type: "neutron", Energy: 1.0, EnergyUnit: "MeV", Direction: [3]float64{0, 0, 1}},
		Events:    1000000,
		OutputDir: "output/bpe-scan",
		Fluka: Fluka{
			Enabled: true, Cycles: 5,
			NeutronLibraries: []string{"JEFF", "ENDF", "JENDL", "CENDL", "BROND"},
			LowEnergyNeutron: true,
		},
		Geant4: Geant4{
			Enabled: true, CutValue: DefaultCutMM,
			PhysicsLists: []string{"QGSP_BERT_HP", "QGSP_BIC_HP", "FTFP_BERT_HP", "Shielding"},
		},
		Scoring: DefaultSimulation().Scoring,
	},
	"bpe-thermal": {
		Particle:  Particle{Type: "neutron", Energy: 0.025, EnergyUnit: "eV", Direction: [3]float64{0, 0, 1}},
		Events:    100000,
		OutputDir: "output/bpe-thermal",
		Fluka:     Fluka{Enabled: true, Cycles: 5, NeutronLibraries: []string{"JEFF", "ENDF"}, LowEnergyNeutron: true},
		Geant4:    Geant4{Enabled: true, CutValue: DefaultCutMM, PhysicsLists: []string{"QGSP_BERT_HP"}},
		Scoring:   DefaultSimulation().Scoring,
	},
	"bpe-14mev": {
		Particle:  Particle{Type: "neutron", Energy: 14.0, EnergyUnit: "MeV", Direction: [3]float64{0, 0, 1}},
		Events:    500000,
		OutputDir: "output/bpe-14mev",
		Fluka:     Fluka{Enabled: true, Cycles: 5, NeutronLibraries: []string{"JEFF", "ENDF", "JENDL"}, LowEnergyNeutron: true},
		Geant4:    Geant4{Enabled: true, CutValue: DefaultCutMM, PhysicsLists: []string{"QGSP_BERT_HP", "Shielding"}},
		Scoring:   DefaultSimulation().Scoring,
	},
}

// GetPreset returns the named preset, or nil if it does not exist.
func GetPreset(name string) *Simulation {
	return Presets[name]
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
