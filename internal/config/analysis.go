package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plot controls a single comparison plot type.
type Plot struct {
	Enabled   bool   `yaml:"enabled"`
	LogScale  bool   `yaml:"log_scale"`
	ShowRatio bool   `yaml:"show_ratio"`
	Output    string `yaml:"output"`
}

// Style holds per-engine presentation overrides.
type Style struct {
	Colors     map[string]map[string]string `yaml:"colors"`     // engine -> model -> hex
	LineStyles map[string]string            `yaml:"linestyles"` // engine -> solid|dashed
}

// Analysis is the configuration for result post-processing and plotting.
type Analysis struct {
	ResultsDir     string          `yaml:"results_dir"`
	OutputDir      string          `yaml:"output_dir"`
	Formats        []string        `yaml:"formats"`
	DPI            int             `yaml:"dpi"`
	IncludeFluka   []string        `yaml:"-"`
	IncludeGeant4  []string        `yaml:"-"`
	ReferenceCode  string          `yaml:"-"`
	ReferenceModel string          `yaml:"-"`
	Plots          map[string]Plot `yaml:"-"`
	Style          Style           `yaml:"style"`
}

// analysisYAML mirrors the on-disk layout, which nests include/reference
// blocks and uses per-plot maps with defaults.
type analysisYAML struct {
	ResultsDir string   `yaml:"results_dir"`
	OutputDir  string   `yaml:"output_dir"`
	Formats    []string `yaml:"formats"`
	DPI        int      `yaml:"dpi"`
	Include    struct {
		Fluka  []string `yaml:"fluka"`
		Geant4 []string `yaml:"geant4"`
	} `yaml:"include"`
	Reference struct {
		Code  string `yaml:"code"`
		Model string `yaml:"model"`
	} `yaml:"reference"`
	Plots map[string]struct {
		Enabled   *bool  `yaml:"enabled"`
		LogScale  *bool  `yaml:"log_scale"`
		ShowRatio bool   `yaml:"show_ratio"`
		Output    string `yaml:"output"`
	} `yaml:"plots"`
	Style Style `yaml:"style"`
}

func DefaultAnalysis() *Analysis {
	return &Analysis{
		ResultsDir:     DefaultOutputDir,
		OutputDir:      "output/analysis",
		Formats:        []string{"png"},
		DPI:            150,
		ReferenceCode:  "fluka",
		ReferenceModel: "JEFF",
		Plots:          map[string]Plot{},
	}
}

// LoadAnalysis reads an analysis config, applying defaults for omitted
// fields. Per-plot enabled and log_scale default to true.
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw analysisYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := DefaultAnalysis()
	if raw.ResultsDir != "" {
		cfg.ResultsDir = raw.ResultsDir
	}
	if raw.OutputDir != "" {
		cfg.OutputDir = raw.OutputDir
	}
	if len(raw.Formats) > 0 {
		cfg.Formats = raw.Formats
	}
	if raw.DPI > 0 {
		cfg.DPI = raw.DPI
	}
	cfg.IncludeFluka = raw.Include.Fluka
	cfg.IncludeGeant4 = raw.Include.Geant4
	if raw.Reference.Code != "" {
		cfg.ReferenceCode = raw.Reference.Code
	}
	if raw.Reference.Model != "" {
		cfg.ReferenceModel = raw.Reference.Model
	}
	cfg.Style = raw.Style

	for name, p := range raw.Plots {
		plot := Plot{Enabled: true, LogScale: true, ShowRatio: p.ShowRatio, Output: p.Output}
		if p.Enabled != nil {
			plot.Enabled = *p.Enabled
		}
		if p.LogScale != nil {
			plot.LogScale = *p.LogScale
		}
		if plot.Output == "" {
			plot.Output = name
		}
		cfg.Plots[name] = plot
	}

	return cfg, nil
}

// Reference returns the engine/model key used as the ratio baseline.
func (a *Analysis) Reference() string {
	return a.ReferenceCode + "/" + a.ReferenceModel
}

// Models returns the engine/model pairs selected for analysis.
func (a *Analysis) Models() []RunSpec {
	var specs []RunSpec
	for _, lib := range a.IncludeFluka {
		specs = append(specs, RunSpec{Engine: "fluka", Model: lib, Subdir: "fluka/" + lib})
	}
	for _, phys := range a.IncludeGeant4 {
		specs = append(specs, RunSpec{Engine: "geant4", Model: phys, Subdir: "geant4/" + phys})
	}
	return specs
}
