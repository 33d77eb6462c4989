// Package report persists and shares the aggregated run report. The JSON
// document written here is consumed verbatim by prior report tooling, so
// field names follow the probe.Report struct tags exactly.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/calderonlabs/lexprobe/internal/probe"
)

// WriteJSON serializes the report to path, creating parent directories as
// needed. Output is pretty-printed for side-by-side diffing between runs.
func WriteJSON(path string, rep probe.Report) error {
	if path == "" {
		return fmt.Errorf("report path is required")
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Holder shares the most recent report between the runner and the status
// API. Safe for concurrent use.
type Holder struct {
	mu     sync.RWMutex
	report probe.Report
	set    bool
}

// NewHolder creates an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Set stores the latest report.
func (h *Holder) Set(rep probe.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report = rep
	h.set = true
}

// Latest returns the most recent report, and whether one exists yet.
func (h *Holder) Latest() (probe.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report, h.set
}
