package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/migueg98/empleo-portal/internal/apperrors"
	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/models"
)

const (
	TableJobs       = "jobs"
	TableCandidates = "candidates"
	TableSectors    = "sectors"
)

// GormStores backs all three table stores with one gorm connection and
// emits a change event after every committed write.
type GormStores struct {
	db     *gorm.DB
	feed   events.Feed
	logger *zap.Logger
}

func NewGormStores(db *gorm.DB, feed events.Feed, logger *zap.Logger) *GormStores {
	return &GormStores{db: db, feed: feed, logger: logger}
}

func (s *GormStores) Jobs() JobStore             { return (*gormJobs)(s) }
func (s *GormStores) Candidates() CandidateStore { return (*gormCandidates)(s) }
func (s *GormStores) Sectors() SectorStore       { return (*gormSectors)(s) }

// Publish failures are logged, not returned: the row write has already
// committed and subscribers resync on their next fetch.
func (s *GormStores) publish(ctx context.Context, table string, typ events.ChangeType, id string, row any) {
	ev := events.ChangeEvent{Table: table, Type: typ, ID: id}
	if row != nil {
		if data, err := json.Marshal(row); err == nil {
			ev.Row = data
		}
	}
	if err := s.feed.Publish(ctx, ev); err != nil {
		s.logger.Warn("change event not published",
			zap.String("table", table),
			zap.String("id", id),
			zap.Error(err))
	}
}

type gormJobs GormStores

func (g *gormJobs) query(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx).
		Model(&models.JobPosting{}).
		Select("jobs.*, sectors.name AS sector_name").
		Joins("LEFT JOIN sectors ON sectors.id = jobs.sector_id").
		Order("jobs.created_at DESC")
}

func (g *gormJobs) All(ctx context.Context) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	if err := g.query(ctx).Find(&jobs).Error; err != nil {
		return nil, apperrors.FetchFailed("loading jobs", err)
	}
	return jobs, nil
}

func (g *gormJobs) Active(ctx context.Context) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	if err := g.query(ctx).Where("jobs.is_active = ?", true).Find(&jobs).Error; err != nil {
		return nil, apperrors.FetchFailed("loading active jobs", err)
	}
	return jobs, nil
}

func (g *gormJobs) ByID(ctx context.Context, id string) (models.JobPosting, error) {
	var job models.JobPosting
	err := g.query(ctx).Where("jobs.id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.JobPosting{}, apperrors.NotFound("job not found", err)
	}
	if err != nil {
		return models.JobPosting{}, apperrors.FetchFailed("loading job", err)
	}
	return job, nil
}

func (g *gormJobs) Insert(ctx context.Context, job *models.JobPosting) error {
	if err := g.db.WithContext(ctx).Create(job).Error; err != nil {
		return apperrors.WriteFailed("inserting job", err)
	}
	(*GormStores)(g).publish(ctx, TableJobs, events.ChangeInsert, job.ID, job)
	return nil
}

func (g *gormJobs) Update(ctx context.Context, id string, patch map[string]any) (models.JobPosting, error) {
	res := g.db.WithContext(ctx).Model(&models.JobPosting{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return models.JobPosting{}, apperrors.WriteFailed("updating job", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.JobPosting{}, apperrors.NotFound("job not found", nil)
	}

	job, err := g.ByID(ctx, id)
	if err != nil {
		return models.JobPosting{}, err
	}
	(*GormStores)(g).publish(ctx, TableJobs, events.ChangeUpdate, id, job)
	return job, nil
}

func (g *gormJobs) Delete(ctx context.Context, id string) error {
	// Hard delete: inactive postings are hidden, deleted ones are gone.
	res := g.db.WithContext(ctx).Unscoped().Delete(&models.JobPosting{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.WriteFailed("deleting job", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("job not found", nil)
	}
	(*GormStores)(g).publish(ctx, TableJobs, events.ChangeDelete, id, nil)
	return nil
}

type gormCandidates GormStores

func (g *gormCandidates) query(ctx context.Context) *gorm.DB {
	return g.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Select("candidates.*, jobs.title AS job_title, jobs.sector AS job_sector").
		Joins("LEFT JOIN jobs ON jobs.id = candidates.job_id").
		Order("candidates.created_at DESC")
}

func (g *gormCandidates) All(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := g.query(ctx).Find(&candidates).Error; err != nil {
		return nil, apperrors.FetchFailed("loading candidates", err)
	}
	return candidates, nil
}

func (g *gormCandidates) ByEmail(ctx context.Context, email string) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := g.query(ctx).
		Where("LOWER(candidates.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.FetchFailed("loading candidate applications", err)
	}
	return candidates, nil
}

func (g *gormCandidates) ExistsForJob(ctx context.Context, email, jobID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("LOWER(email) = ? AND job_id = ?", strings.ToLower(strings.TrimSpace(email)), jobID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.FetchFailed("checking for existing application", err)
	}
	return count > 0, nil
}

func (g *gormCandidates) Insert(ctx context.Context, c *models.Candidate) error {
	if err := g.db.WithContext(ctx).Create(c).Error; err != nil {
		// The unique index over (email, job_id) closes the read-then-write
		// race the application-level guard leaves open.
		if isUniqueViolation(err) {
			return apperrors.Duplicate("application already exists for this email and job", err)
		}
		return apperrors.WriteFailed("inserting candidate", err)
	}
	(*GormStores)(g).publish(ctx, TableCandidates, events.ChangeInsert, c.ID, c)
	return nil
}

func (g *gormCandidates) UpdateStatus(ctx context.Context, id string, status string, updatedAt time.Time) error {
	res := g.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"estado_interno": status,
			"updated_at":     updatedAt,
		})
	if res.Error != nil {
		return apperrors.WriteFailed("updating candidate status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("candidate not found", nil)
	}

	var c models.Candidate
	if err := g.query(ctx).Where("candidates.id = ?", id).First(&c).Error; err == nil {
		(*GormStores)(g).publish(ctx, TableCandidates, events.ChangeUpdate, id, c)
	} else {
		(*GormStores)(g).publish(ctx, TableCandidates, events.ChangeUpdate, id, nil)
	}
	return nil
}

func (g *gormCandidates) Delete(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Unscoped().Delete(&models.Candidate{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.WriteFailed("deleting candidate", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("candidate not found", nil)
	}
	(*GormStores)(g).publish(ctx, TableCandidates, events.ChangeDelete, id, nil)
	return nil
}

type gormSectors GormStores

func (g *gormSectors) All(ctx context.Context) ([]models.Sector, error) {
	var sectors []models.Sector
	if err := g.db.WithContext(ctx).Order("name ASC").Find(&sectors).Error; err != nil {
		return nil, apperrors.FetchFailed("loading sectors", err)
	}
	return sectors, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 23505 = postgres unique_violation
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
