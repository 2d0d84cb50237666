package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/store"
)

type JobService struct {
	jobs    *cache.Jobs
	store   store.JobStore
	sectors store.SectorStore
}

func NewJobService(jobs *cache.Jobs, jobStore store.JobStore, sectors store.SectorStore) *JobService {
	return &JobService{
		jobs:    jobs,
		store:   jobStore,
		sectors: sectors,
	}
}

// List returns the cached active postings, filtered by the free-text
// query when one is given.
func (s *JobService) List(query string) []models.JobPosting {
	return SearchJobs(s.jobs.Items(), query)
}

func (s *JobService) Get(id string) (models.JobPosting, bool) {
	return s.jobs.Get(id)
}

// SearchJobs does the case-insensitive substring match over title,
// description, business and sector the public listing page offers.
func SearchJobs(jobs []models.JobPosting, query string) []models.JobPosting {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return jobs
	}

	var out []models.JobPosting
	for _, job := range jobs {
		haystack := strings.ToLower(strings.Join([]string{
			job.Title, job.Description, job.Business, job.Sector, job.SectorName,
		}, "\n"))
		if strings.Contains(haystack, query) {
			out = append(out, job)
		}
	}
	return out
}

func (s *JobService) Sectors(ctx context.Context) ([]models.Sector, error) {
	return s.sectors.All(ctx)
}

// AllVacancies is the admin view: inactive postings included, straight
// from the store.
func (s *JobService) AllVacancies(ctx context.Context) ([]models.JobPosting, error) {
	return s.store.All(ctx)
}

func (s *JobService) CreateVacancy(ctx context.Context, req *dtos.VacancyCreateRequest) (models.JobPosting, error) {
	job := models.JobPosting{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Business:    req.Business,
		City:        req.City,
		Sector:      req.Sector,
		SectorID:    req.SectorID,
		IsActive:    true,
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Sector == "" {
		job.Sector = req.Title
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}

	if err := s.jobs.Create(ctx, &job); err != nil {
		return models.JobPosting{}, err
	}
	return job, nil
}

func (s *JobService) UpdateVacancy(ctx context.Context, id string, req *dtos.VacancyUpdateRequest) (models.JobPosting, error) {
	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Business != nil {
		patch["business"] = *req.Business
	}
	if req.City != nil {
		patch["city"] = *req.City
	}
	if req.Sector != nil {
		patch["sector"] = *req.Sector
	}
	if req.SectorID != nil {
		patch["sector_id"] = *req.SectorID
	}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}

	return s.jobs.Update(ctx, id, patch)
}

func (s *JobService) DeleteVacancy(ctx context.Context, id string) error {
	return s.jobs.Delete(ctx, id)
}
