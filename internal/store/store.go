package store

import (
	"context"
	"time"

	"github.com/migueg98/empleo-portal/internal/models"
)

// The stores are the application's only view of the hosted datastore:
// filtered selects, single-row writes, and (through the gorm
// implementation) a change event per write. Tests swap in in-memory fakes.

type JobStore interface {
	All(ctx context.Context) ([]models.JobPosting, error)
	Active(ctx context.Context) ([]models.JobPosting, error)
	ByID(ctx context.Context, id string) (models.JobPosting, error)
	Insert(ctx context.Context, job *models.JobPosting) error
	Update(ctx context.Context, id string, patch map[string]any) (models.JobPosting, error)
	Delete(ctx context.Context, id string) error
}

type CandidateStore interface {
	All(ctx context.Context) ([]models.Candidate, error)
	// ByEmail pushes the case-insensitive email filter into the query.
	// Candidate self-service must never fetch the whole table.
	ByEmail(ctx context.Context, email string) ([]models.Candidate, error)
	ExistsForJob(ctx context.Context, email, jobID string) (bool, error)
	Insert(ctx context.Context, c *models.Candidate) error
	UpdateStatus(ctx context.Context, id string, status string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type SectorStore interface {
	All(ctx context.Context) ([]models.Sector, error)
}
