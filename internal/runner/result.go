package runner

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Result records one engine invocation. It is produced once per run and
// never mutated afterwards.
type Result struct {
	Engine    string
	Model     string
	Success   bool
	OutputDir string
	Runtime   time.Duration
	Err       string
}

// Label is the engine/model key used in summaries and plots.
func (r Result) Label() string { return r.Engine + "/" + r.Model }

// SortResults orders results deterministically (engine, then model).
// Parallel completion order is nondeterministic, so callers sort before
// reporting.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Engine != results[j].Engine {
			return results[i].Engine < results[j].Engine
		}
		return results[i].Model < results[j].Model
	})
}

const maxErrorLen = 100

// Summary renders the aggregate CSV: one row per run with engine,
// model, success flag, runtime and truncated error text.
func Summary(results []Result) string {
	lines := []string{"engine,model,success,runtime_s,error"}
	for _, r := range results {
		errText := strings.ReplaceAll(r.Err, ",", ";")
		if len(errText) > maxErrorLen {
			errText = errText[:maxErrorLen]
		}
		lines = append(lines, fmt.Sprintf("%s,%s,%t,%.1f,%s",
			r.Engine, r.Model, r.Success, r.Runtime.Seconds(), errText))
	}
	return strings.Join(lines, "\n")
}

// WriteSummary writes the aggregate CSV to path.
func WriteSummary(path string, results []Result) error {
	return os.WriteFile(path, []byte(Summary(results)), 0644)
}

// Failed counts unsuccessful runs.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
