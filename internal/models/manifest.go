package models

import (
	"encoding/json"
	"time"
)

// TargetStatus is the outcome of one FetchTarget within a run.
type TargetStatus string

const (
	StatusSucceeded TargetStatus = "succeeded"
	StatusSkipped   TargetStatus = "skipped" // snapshot already present, resume run
	StatusFailed    TargetStatus = "failed"
)

// TargetOutcome records how one target ended, with any soft warnings
// raised along the way.
type TargetOutcome struct {
	Key      string       `json:"key"`
	Status   TargetStatus `json:"status"`
	Error    string       `json:"error,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// RunManifest is the user-visible account of a run: which targets
// succeeded, which were skipped, which failed. A run never finishes
// silently with gaps; the gaps are in here.
type RunManifest struct {
	RunID      string          `json:"run_id"`
	Kind       string          `json:"kind"` // scrape | extract | merge
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Succeeded  int             `json:"succeeded"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Targets    []TargetOutcome `json:"targets"`
}

// NewRunManifest starts an empty manifest for a run of the given kind.
func NewRunManifest(runID string, kind string) *RunManifest {
	return &RunManifest{
		RunID:     runID,
		Kind:      kind,
		StartedAt: time.Now(),
		Targets:   make([]TargetOutcome, 0),
	}
}

// Record appends one target outcome and updates the counters.
func (m *RunManifest) Record(outcome TargetOutcome) {
	m.Targets = append(m.Targets, outcome)
	switch outcome.Status {
	case StatusSucceeded:
		m.Succeeded++
	case StatusSkipped:
		m.Skipped++
	case StatusFailed:
		m.Failed++
	}
}

// Finish stamps the end time.
func (m *RunManifest) Finish() {
	m.FinishedAt = time.Now()
}

// ToJSON serializes the manifest for the report file.
func (m *RunManifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
