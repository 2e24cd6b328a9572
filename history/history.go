package history

import (
	"context"
	"errors"
	"time"
)

// RunStatus is the recorded lifecycle state of a launch.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusExited  RunStatus = "exited"
	StatusFailed  RunStatus = "failed"
	StatusKilled  RunStatus = "killed"
)

var (
	// ErrNotFound is returned when no record matches an id or prefix.
	ErrNotFound = errors.New("run record not found")
	// ErrAmbiguous is returned when an id prefix matches more than one record.
	ErrAmbiguous = errors.New("ambiguous run id prefix")
)

// Record is the durable trace of one preset launch. Args holds the
// preset's verbatim tokens; Argv is the full resolved command line.
type Record struct {
	ID        string    `json:"id"`
	Preset    string    `json:"preset"`
	Program   string    `json:"program"`
	Args      []string  `json:"args"`
	Argv      []string  `json:"argv"`
	Status    RunStatus `json:"status"`
	ExitCode  int       `json:"exit_code"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// ListOptions controls filtering and pagination for ListRecords.
type ListOptions struct {
	Status RunStatus
	Limit  int
	Offset int
}

// Store is the persistence interface for run history.
type Store interface {
	// CreateRecord inserts a new record. The ID field must be set by the caller.
	CreateRecord(ctx context.Context, r *Record) error

	// FinishRecord stamps the final status, exit code and end time of a run.
	FinishRecord(ctx context.Context, id string, status RunStatus, exitCode int) error

	// GetRecord returns a record by ID or unambiguous ID prefix.
	GetRecord(ctx context.Context, id string) (*Record, error)

	// ListRecords returns records ordered by started_at descending.
	ListRecords(ctx context.Context, opts ListOptions) ([]Record, error)

	// DeleteRecord removes a record by ID or unambiguous ID prefix.
	DeleteRecord(ctx context.Context, id string) error

	// RecentPresets returns distinct preset names by most recent launch,
	// capped at ten.
	RecentPresets(ctx context.Context, limit int) ([]string, error)

	// Close releases resources.
	Close() error
}
