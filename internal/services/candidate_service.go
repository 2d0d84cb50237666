package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/apperrors"
	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/storage"
	"github.com/migueg98/empleo-portal/internal/store"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

// MaxCVSize matches the 5MB limit the application form advertises.
const MaxCVSize = 5 * 1024 * 1024

var allowedCVExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// CVFile is an uploaded attachment, already read into memory.
type CVFile struct {
	Filename string
	Data     []byte
}

type CandidateService struct {
	candidates *cache.Candidates
	store      store.CandidateStore
	jobs       store.JobStore
	blobs      storage.BlobStore
	logger     *zap.Logger
}

func NewCandidateService(candidates *cache.Candidates, candidateStore store.CandidateStore, jobs store.JobStore, blobs storage.BlobStore, logger *zap.Logger) *CandidateService {
	return &CandidateService{
		candidates: candidates,
		store:      candidateStore,
		jobs:       jobs,
		blobs:      blobs,
		logger:     logger,
	}
}

// Submit runs the application pipeline: duplicate guard, optional CV
// upload, insert with the initial workflow state. The guard query gives
// the friendly rejection; the unique index over (email, job_id) catches
// the race the guard cannot.
func (s *CandidateService) Submit(ctx context.Context, jobID string, req *dtos.ApplicationRequest, cv *CVFile) (*models.Candidate, error) {
	job, err := s.jobs.ByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, apperrors.NotFound("la oferta ya no está activa", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.store.ExistsForJob(ctx, email, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Duplicate(
			"ya existe una candidatura con este email para este puesto", nil)
	}

	var cvURL string
	if cv != nil {
		cvURL, err = s.uploadCV(ctx, cv)
		if err != nil {
			return nil, err
		}
	}

	candidate := &models.Candidate{
		ID:                 uuid.NewString(),
		JobID:              jobID,
		FullName:           strings.TrimSpace(req.FullName),
		Age:                req.Age,
		Email:              email,
		Phone:              strings.TrimSpace(req.Phone),
		SelectedPositions:  req.SelectedPositions,
		SectorExperience:   req.SectorExperience,
		PositionExperience: req.PositionExperience,
		Availability:       req.Availability,
		AdditionalComments: req.AdditionalComments,
		CVURL:              cvURL,
		Status:             workflow.StatusNuevo,
		ConsentGiven:       req.ConsentGiven,
	}

	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("application submitted",
		zap.String("candidate_id", candidate.ID),
		zap.String("job_id", jobID))
	return candidate, nil
}

func (s *CandidateService) uploadCV(ctx context.Context, cv *CVFile) (string, error) {
	ext := strings.ToLower(filepath.Ext(cv.Filename))
	if !allowedCVExtensions[ext] {
		return "", apperrors.InvalidInput(
			fmt.Sprintf("formato de CV no admitido %q (PDF, DOC o DOCX)", ext), nil)
	}
	if len(cv.Data) > MaxCVSize {
		return "", apperrors.InvalidInput("el CV supera el tamaño máximo de 5MB", nil)
	}

	path, err := s.blobs.Upload(ctx, "cv/"+uuid.NewString()+ext, cv.Data)
	if err != nil {
		return "", apperrors.WriteFailed("uploading CV", err)
	}
	return s.blobs.PublicURL(path), nil
}

// MyApplications is the candidate self-service lookup. The email filter
// runs in the store query; the full candidate table never reaches the
// client.
func (s *CandidateService) MyApplications(ctx context.Context, email string) ([]dtos.PublicApplication, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.InvalidInput("email is required", nil)
	}

	candidates, err := s.store.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.PublicApplication, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dtos.PublicApplication{
			ID:        c.ID,
			JobID:     c.JobID,
			JobTitle:  c.JobTitle,
			FullName:  c.FullName,
			Email:     c.Email,
			Status:    workflow.ToLegacy(workflow.Normalize(string(c.Status))),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return out, nil
}

// Delete removes a candidate row outright (admin cleanup).
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	return s.candidates.Delete(ctx, id)
}
