package config

import "strings"

// FlukaParticles maps canonical particle names to FLUKA beam names.
var FlukaParticles = map[string]string{
	"neutron":  "NEUTRON",
	"proton":   "PROTON",
	"electron": "ELECTRON",
	"positron": "POSITRON",
	"photon":   "PHOTON",
	"muon":     "MUON+",
	"muon+":    "MUON+",
	"muon-":    "MUON-",
	"pion+":    "PION+",
	"pion-":    "PION-",
}

// Geant4Particles maps canonical particle names to Geant4 gun names.
var Geant4Particles = map[string]string{
	"neutron":  "neutron",
	"proton":   "proton",
	"electron": "e-",
	"positron": "e+",
	"photon":   "gamma",
	"muon":     "mu-",
	"muon+":    "mu+",
	"muon-":    "mu-",
	"pion+":    "pi+",
	"pion-":    "pi-",
}

// NeutronLibraries maps short library names to FLUKA SDUM codes. SDUM
// fields are limited to 8 characters.
var NeutronLibraries = map[string]string{
	"JEFF":  "JEFF-3.3",
	"ENDF":  "ENDFB8.0",
	"JENDL": "JENDL4.0",
	"CENDL": "CENDL3.1",
	"BROND": "BROND3.1",
}

// FlukaParticle resolves a canonical particle name to its FLUKA beam
// name, falling back to the uppercased input for unmapped types.
func FlukaParticle(name string) string {
	if p, ok := FlukaParticles[strings.ToLower(name)]; ok {
		return p
	}
	return strings.ToUpper(name)
}

// Geant4Particle resolves a canonical particle name to its Geant4 gun
// name, falling back to the lowercased input.
func Geant4Particle(name string) string {
	if p, ok := Geant4Particles[strings.ToLower(name)]; ok {
		return p
	}
	return strings.ToLower(name)
}

// LibrarySDUM resolves a neutron library name to its FLUKA SDUM code.
// Unknown names are truncated to the 8-character SDUM limit.
func LibrarySDUM(name string) string {
	if code, ok := NeutronLibraries[name]; ok {
		return code
	}
	if len(name) > 8 {
		return name[:8]
	}
	return name
}
