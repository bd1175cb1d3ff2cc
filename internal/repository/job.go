package repository

import (
	"context"
	"time"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

// Job is one processing request tracked from submission to its terminal
// state. Exactly one of Invoice or Order is populated on success, matching
// Kind; ErrorMessage is set on failure.
type Job struct {
	ID           string                 `json:"job_id"`
	Kind         constants.DocumentKind `json:"kind"`
	InputType    constants.InputType    `json:"input_type"`
	Status       constants.JobStatus    `json:"status"`
	Filename     string                 `json:"filename,omitempty"`
	FilePath     string                 `json:"-"`
	RawResponse  string                 `json:"-"`
	ErrorMessage string                 `json:"error,omitempty"`
	Invoice      *entity.Invoice        `json:"invoice,omitempty"`
	Order        *entity.Order          `json:"order,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// JobStore persists jobs. Implementations must be safe for concurrent use.
type JobStore interface {
	Put(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, kind constants.DocumentKind, limit int) ([]*Job, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
