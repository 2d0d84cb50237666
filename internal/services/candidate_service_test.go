package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/apperrors"
	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

type noopFeed struct{}

func (noopFeed) Publish(context.Context, events.ChangeEvent) error { return nil }
func (noopFeed) Subscribe(string, func(events.ChangeEvent)) (events.Unsubscribe, error) {
	return func() error { return nil }, nil
}
func (noopFeed) Close() {}

type memCandidateStore struct {
	mu   sync.Mutex
	rows []models.Candidate
}

func (s *memCandidateStore) All(context.Context) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Candidate, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *memCandidateStore) ByEmail(_ context.Context, email string) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Candidate
	for _, row := range s.rows {
		if strings.EqualFold(row.Email, strings.TrimSpace(email)) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *memCandidateStore) ExistsForJob(_ context.Context, email, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if strings.EqualFold(row.Email, email) && row.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCandidateStore) Insert(_ context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if strings.EqualFold(row.Email, c.Email) && row.JobID == c.JobID {
			return apperrors.Duplicate("application already exists for this email and job", nil)
		}
	}
	s.rows = append(s.rows, *c)
	return nil
}

func (s *memCandidateStore) UpdateStatus(context.Context, string, string, time.Time) error {
	return nil
}

func (s *memCandidateStore) Delete(context.Context, string) error { return nil }

type memJobStore struct {
	jobs map[string]models.JobPosting
}

func (s *memJobStore) All(context.Context) ([]models.JobPosting, error) {
	var out []models.JobPosting
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (s *memJobStore) Active(ctx context.Context) ([]models.JobPosting, error) {
	jobs, _ := s.All(ctx)
	var out []models.JobPosting
	for _, job := range jobs {
		if job.IsActive {
			out = append(out, job)
		}
	}
	return out, nil
}

func (s *memJobStore) ByID(_ context.Context, id string) (models.JobPosting, error) {
	job, ok := s.jobs[id]
	if !ok {
		return models.JobPosting{}, apperrors.NotFound("job not found", nil)
	}
	return job, nil
}

func (s *memJobStore) Insert(_ context.Context, job *models.JobPosting) error {
	s.jobs[job.ID] = *job
	return nil
}

func (s *memJobStore) Update(_ context.Context, id string, _ map[string]any) (models.JobPosting, error) {
	return s.jobs[id], nil
}

func (s *memJobStore) Delete(_ context.Context, id string) error {
	delete(s.jobs, id)
	return nil
}

type memBlobStore struct {
	uploads map[string][]byte
}

func (s *memBlobStore) Upload(_ context.Context, path string, data []byte) (string, error) {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[path] = data
	return path, nil
}

func (s *memBlobStore) PublicURL(path string) string {
	return "http://localhost:8080/files/" + path
}

func newTestCandidateService(t *testing.T, jobs *memJobStore, candidates *memCandidateStore) *CandidateService {
	t.Helper()
	logger := zap.NewNop()
	candidateCache := cache.NewCandidates(candidates, noopFeed{}, logger)
	require.NoError(t, candidateCache.FetchAll(context.Background()))
	return NewCandidateService(candidateCache, candidates, jobs, &memBlobStore{}, logger)
}

func applicationRequest(email string) *dtos.ApplicationRequest {
	return &dtos.ApplicationRequest{
		FullName:           "Ana García",
		Age:                27,
		Email:              email,
		Phone:              "600123456",
		SectorExperience:   "Sí",
		PositionExperience: "No",
		Availability:       "Inmediata",
		ConsentGiven:       true,
	}
}

func activeJob(id string) *memJobStore {
	return &memJobStore{jobs: map[string]models.JobPosting{
		id: {ID: id, Title: "Camarero/a de Sala", IsActive: true},
	}}
}

func TestSubmitCreatesCandidateWithInitialStatus(t *testing.T) {
	svc := newTestCandidateService(t, activeJob("j1"), &memCandidateStore{})

	c, err := svc.Submit(context.Background(), "j1", applicationRequest("Ana@Example.com"), nil)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusNuevo, c.Status)
	assert.Equal(t, "ana@example.com", c.Email, "email is normalized on insert")
	assert.Empty(t, c.CVURL)
}

func TestSubmitDuplicateIsRejected(t *testing.T) {
	candidates := &memCandidateStore{}
	svc := newTestCandidateService(t, activeJob("j1"), candidates)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "j1", applicationRequest("ana@example.com"), nil)
	require.NoError(t, err)

	// Same email (different casing), same job: rejected, no second row.
	_, err = svc.Submit(ctx, "j1", applicationRequest("ANA@example.com"), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeDuplicate, apperrors.TypeOf(err))
	assert.Len(t, candidates.rows, 1)
}

func TestSubmitSameEmailDifferentJobIsAllowed(t *testing.T) {
	jobs := activeJob("j1")
	jobs.jobs["j2"] = models.JobPosting{ID: "j2", Title: "Cocinero/a", IsActive: true}
	candidates := &memCandidateStore{}
	svc := newTestCandidateService(t, jobs, candidates)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "j1", applicationRequest("ana@example.com"), nil)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "j2", applicationRequest("ana@example.com"), nil)
	require.NoError(t, err)
	assert.Len(t, candidates.rows, 2)
}

func TestSubmitInactiveJobRejected(t *testing.T) {
	jobs := &memJobStore{jobs: map[string]models.JobPosting{
		"j1": {ID: "j1", Title: "Camarero/a de Sala", IsActive: false},
	}}
	svc := newTestCandidateService(t, jobs, &memCandidateStore{})

	_, err := svc.Submit(context.Background(), "j1", applicationRequest("ana@example.com"), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(err))
}

func TestSubmitWithCV(t *testing.T) {
	svc := newTestCandidateService(t, activeJob("j1"), &memCandidateStore{})

	cv := &CVFile{Filename: "cv_ana.PDF", Data: []byte("%PDF-1.4 ...")}
	c, err := svc.Submit(context.Background(), "j1", applicationRequest("ana@example.com"), cv)
	require.NoError(t, err)
	assert.Contains(t, c.CVURL, "/files/cv/")
	assert.True(t, strings.HasSuffix(c.CVURL, ".pdf"))
}

func TestSubmitRejectsBadCV(t *testing.T) {
	svc := newTestCandidateService(t, activeJob("j1"), &memCandidateStore{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "j1", applicationRequest("ana@example.com"),
		&CVFile{Filename: "cv.exe", Data: []byte("MZ")})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeInvalidInput, apperrors.TypeOf(err))

	_, err = svc.Submit(ctx, "j1", applicationRequest("ana2@example.com"),
		&CVFile{Filename: "cv.pdf", Data: make([]byte, MaxCVSize+1)})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeInvalidInput, apperrors.TypeOf(err))
}

func TestMyApplicationsFiltersByEmailCaseInsensitive(t *testing.T) {
	candidates := &memCandidateStore{rows: []models.Candidate{
		{ID: "a", JobID: "j1", Email: "ana@example.com", Status: workflow.StatusPosible},
		{ID: "b", JobID: "j2", Email: "otro@example.com", Status: workflow.StatusNuevo},
	}}
	svc := newTestCandidateService(t, activeJob("j1"), candidates)

	apps, err := svc.MyApplications(context.Background(), "ANA@example.com")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "a", apps[0].ID)
	// The portal shows the public vocabulary, never the internal one.
	assert.Equal(t, workflow.LegacyReviewing, apps[0].Status)
}

func TestMyApplicationsRequiresEmail(t *testing.T) {
	svc := newTestCandidateService(t, activeJob("j1"), &memCandidateStore{})

	_, err := svc.MyApplications(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeInvalidInput, apperrors.TypeOf(err))
}
