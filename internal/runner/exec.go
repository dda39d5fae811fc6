// Package runner materializes engine input artifacts and executes
// FLUKA and Geant4 comparison runs inside containers, sequentially or
// through a bounded worker pool.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Exec runs an external command with a bounded wall clock. It exists as
// an interface so tests can substitute the container runtime.
type Exec interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// SystemExec shells out through os/exec. The context deadline kills the
// process; no orphaned containers are reaped beyond --rm.
type SystemExec struct{}

func (SystemExec) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	return stdout.String(), stderr.String(), err
}

// invoke runs one container command with a timeout, classifies the
// outcome and persists the combined log next to the run's other
// artifacts for postmortem inspection.
func invoke(ctx context.Context, ex Exec, outputDir string, timeout time.Duration, name string, args ...string) (string, bool) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := ex.Run(runCtx, name, args...)

	log := fmt.Sprintf("=== STDOUT ===\n%s\n\n=== STDERR ===\n%s\n", stdout, stderr)
	if werr := os.WriteFile(filepath.Join(outputDir, "run.log"), []byte(log), 0644); werr != nil {
		// Losing the log is reported through the result error text, not
		// by failing the run.
		stderr += "\n(log write failed: " + werr.Error() + ")"
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("timed out after %s", timeout), false
	case err != nil:
		msg := stderr
		if msg == "" {
			msg = err.Error()
		}
		return msg, false
	}
	return "", true
}
