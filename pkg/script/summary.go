package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Summary describes one script run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Script    string        `json:"script"`
	Mode      string        `json:"mode"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Steps     []StepResult  `json:"steps"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index     int           `json:"index"`
	Action    Action        `json:"action"`
	Target    string        `json:"target,omitempty"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Matched   int           `json:"matched,omitempty"`
	Text      string        `json:"text,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Failed reports whether the run failed.
func (s *Summary) Failed() bool {
	return s.Status == StatusFailed
}

// WriteJSON writes the summary as indented JSON, creating parent directories.
func (s *Summary) WriteJSON(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
