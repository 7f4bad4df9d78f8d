// api/schemas/results.go
package schemas

import "time"

// ValidationOutcome is the Command Validator's verdict for one
// (command, snapshot) pair. Produced fresh per pair, never merged.
type ValidationOutcome struct {
	Valid bool `json:"valid"`

	// Issues are human-readable and ordered; all detected problems are
	// surfaced, not just the first.
	Issues []string `json:"issues,omitempty"`
}

// ExecutionResult reports the outcome of executing one command against the
// live page. Ordinary failures (selector not found, timeout) arrive here,
// not as errors; executors reserve error returns for programmer mistakes.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DecompositionResult is the final ordered command sequence produced for one
// instruction, the unit handed to the orchestrator.
type DecompositionResult struct {
	ID          string              `json:"id"`
	Instruction string              `json:"instruction"`
	Commands    []StructuredCommand `json:"commands"`
}

// StepStatus classifies how one executed command ended.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one executed command for reporting.
type StepResult struct {
	Command  StructuredCommand `json:"command"`
	Status   StepStatus        `json:"status"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// TestResult aggregates the steps of one named test.
type TestResult struct {
	Name        string        `json:"name"`
	Instruction string        `json:"instruction"`
	Steps       []StepResult  `json:"steps"`
	Passed      bool          `json:"passed"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// SuiteResult is the top-level report payload for one run.
type SuiteResult struct {
	RunID      string        `json:"run_id"`
	SuiteName  string        `json:"suite_name"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tests      []TestResult  `json:"tests"`
	Duration   time.Duration `json:"duration"`
}

// Passed reports whether every test in the suite passed.
func (s SuiteResult) Passed() bool {
	for _, t := range s.Tests {
		if !t.Passed {
			return false
		}
	}
	return true
}
