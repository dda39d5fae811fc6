// Package storage keeps a history of finished campaigns so results can
// be compared across invocations.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/config"
	"github.com/lawrenceleejr/fluka-neutronstudy/internal/runner"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunRecord struct {
	Engine   string  `json:"engine"`
	Model    string  `json:"model"`
	Success  bool    `json:"success"`
	RuntimeS float64 `json:"runtime_s"`
	Error    string  `json:"error,omitempty"`
}

type CampaignMetadata struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Particle  string      `json:"particle"`
	EnergyGeV float64     `json:"energy_gev"`
	Events    int         `json:"events"`
	Seed      int64       `json:"seed"`
	OutputDir string      `json:"output_dir"`
	Runs      []RunRecord `json:"runs"`
}

// Save records one finished campaign under a timestamped ID and
// returns it.
func (s *Store) Save(cfg *config.Simulation, results []runner.Result) (string, error) {
	energy, err := cfg.Particle.EnergyGeV()
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s_%d", cfg.Particle.Type, time.Now().Unix())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := CampaignMetadata{
		ID:        id,
		Timestamp: time.Now(),
		Particle:  cfg.Particle.Type,
		EnergyGeV: energy,
		Events:    cfg.Events,
		Seed:      cfg.Seed,
		OutputDir: cfg.OutputDir,
	}
	for _, res := range results {
		meta.Runs = append(meta.Runs, RunRecord{
			Engine:   res.Engine,
			Model:    res.Model,
			Success:  res.Success,
			RuntimeS: res.Runtime.Seconds(),
			Error:    res.Err,
		})
	}

	f, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return id, nil
}

// List returns all stored campaigns, newest first. A missing base
// directory is an empty history, not an error.
func (s *Store) List() ([]CampaignMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CampaignMetadata{}, nil
		}
		return nil, err
	}

	campaigns := make([]CampaignMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		campaigns = append(campaigns, *meta)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].Timestamp.After(campaigns[j].Timestamp)
	})
	return campaigns, nil
}

func (s *Store) Load(id string) (*CampaignMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta CampaignMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: corrupt metadata for %s: %w", id, err)
	}
	return &meta, nil
}

// Failed counts the campaign's failed runs.
func (m CampaignMetadata) Failed() int {
	n := 0
	for _, r := range m.Runs {
		if !r.Success {
			n++
		}
	}
	return n
}
