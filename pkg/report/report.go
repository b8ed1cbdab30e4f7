// Package report stores the outcome of install runs so that past runs can
// be listed and inspected.
//
// Reports are written by the CLI after every run. Two backends exist:
// [FileStore] keeps one JSON document per run in a directory, and
// [MongoStore] keeps them in a MongoDB collection for shared history.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/stackpip/pkg/install"
)

// ErrNotFound is returned by Get when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// Report is the stored form of one run.
type Report struct {
	ID        string        `json:"id" bson:"_id"`
	Taskfile  string        `json:"taskfile" bson:"taskfile"`
	StartedAt time.Time     `json:"started_at" bson:"started_at"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Success   int           `json:"success" bson:"success"`
	Failed    int           `json:"failed" bson:"failed"`
	Skipped   int           `json:"skipped" bson:"skipped"`
	Tasks     []TaskRecord  `json:"tasks" bson:"tasks"`
}

// TaskRecord is the stored outcome of one task.
type TaskRecord struct {
	Task     string         `json:"task" bson:"task"`
	Python   string         `json:"python,omitempty" bson:"python,omitempty"`
	Status   install.Status `json:"status" bson:"status"`
	Reason   string         `json:"reason,omitempty" bson:"reason,omitempty"`
	Duration time.Duration  `json:"duration" bson:"duration"`
	Steps    []install.Step `json:"steps,omitempty" bson:"steps,omitempty"`
}

// FromResult converts an executor result. taskfile is the task file the
// run was loaded from.
func FromResult(res *install.Result, taskfile string) *Report {
	r := &Report{
		ID:        res.ID,
		Taskfile:  taskfile,
		StartedAt: res.Started.UTC(),
		Duration:  res.Duration,
		Success:   res.Count(install.StatusSuccess),
		Failed:    res.Count(install.StatusFailed),
		Skipped:   res.Count(install.StatusSkipped),
		Tasks:     make([]TaskRecord, 0, len(res.Tasks)),
	}
	for _, t := range res.Tasks {
		rec := TaskRecord{
			Task:     t.Task,
			Python:   t.Python,
			Status:   t.Status,
			Reason:   t.Reason,
			Duration: t.Duration,
		}
		if t.Plan != nil {
			rec.Steps = t.Plan.Steps
		}
		r.Tasks = append(r.Tasks, rec)
	}
	return r
}

// OK reports whether every task in the run succeeded.
func (r *Report) OK() bool { return r.Failed == 0 && r.Skipped == 0 }

// Store persists reports.
type Store interface {
	// Save stores a report, replacing any report with the same ID.
	Save(ctx context.Context, r *Report) error
	// List returns up to limit reports, newest first. A limit <= 0
	// returns all of them.
	List(ctx context.Context, limit int) ([]*Report, error)
	// Get returns the report with the given ID or [ErrNotFound].
	Get(ctx context.Context, id string) (*Report, error)
	// Close releases resources held by the store.
	Close() error
}

// NullStore discards reports.
type NullStore struct{}

// NewNullStore returns a store that keeps nothing.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Save(context.Context, *Report) error          { return nil }
func (NullStore) List(context.Context, int) ([]*Report, error) { return nil, nil }
func (NullStore) Get(context.Context, string) (*Report, error) { return nil, ErrNotFound }
func (NullStore) Close() error                                 { return nil }
