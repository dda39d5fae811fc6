package config

import (
	"fmt"
	"os"
	"strings"
)

// Issue is a single configuration problem. Fatal issues prevent a
// campaign from starting; the rest are warnings.
type Issue struct {
	Message string
	Fatal   bool
}

func (i Issue) String() string { return i.Message }

// Validate checks a simulation configuration before any run starts.
func Validate(cfg *Simulation) []Issue {
	var issues []Issue

	if _, ok := FlukaParticles[strings.ToLower(cfg.Particle.Type)]; !ok {
		issues = append(issues, Issue{
			Message: fmt.Sprintf("unknown particle type: %s", cfg.Particle.Type),
		})
	}

	if _, err := cfg.Particle.EnergyGeV(); err != nil {
		issues = append(issues, Issue{Message: err.Error(), Fatal: true})
	}

	if cfg.GeometryGDML != "" {
		if _, err := os.Stat(cfg.GeometryGDML); err != nil {
			issues = append(issues, Issue{
				Message: fmt.Sprintf("GDML file not found: %s", cfg.GeometryGDML),
				Fatal:   true,
			})
		}
	}

	if cfg.Fluka.TemplateDeck != "" {
		if _, err := os.Stat(cfg.Fluka.TemplateDeck); err != nil {
			issues = append(issues, Issue{
				Message: fmt.Sprintf("template deck not found: %s", cfg.Fluka.TemplateDeck),
				Fatal:   true,
			})
		}
	}

	for _, lib := range cfg.Fluka.NeutronLibraries {
		if _, ok := NeutronLibraries[lib]; !ok {
			issues = append(issues, Issue{
				Message: fmt.Sprintf("unknown FLUKA neutron library: %s", lib),
			})
		}
	}

	if cfg.Events < 1 {
		issues = append(issues, Issue{Message: "events must be >= 1", Fatal: true})
	}

	if cfg.Fluka.Enabled && cfg.Fluka.Cycles < 1 {
		issues = append(issues, Issue{Message: "fluka cycles must be >= 1", Fatal: true})
	}

	return issues
}

// HasFatal reports whether any issue prevents the campaign from running.
func HasFatal(issues []Issue) bool {
	for _, i := range issues {
		if i.Fatal {
			return true
		}
	}
	return false
}
