package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

type stubFeed struct{}

func (stubFeed) Publish(context.Context, events.ChangeEvent) error { return nil }
func (stubFeed) Subscribe(string, func(events.ChangeEvent)) (events.Unsubscribe, error) {
	return func() error { return nil }, nil
}
func (stubFeed) Close() {}

type stubCandidateStore struct {
	mu      sync.Mutex
	rows    []models.Candidate
	updates int
}

func (s *stubCandidateStore) All(context.Context) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Candidate, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *stubCandidateStore) ByEmail(context.Context, string) ([]models.Candidate, error) {
	return nil, nil
}

func (s *stubCandidateStore) ExistsForJob(context.Context, string, string) (bool, error) {
	return false, nil
}

func (s *stubCandidateStore) Insert(context.Context, *models.Candidate) error { return nil }

func (s *stubCandidateStore) UpdateStatus(_ context.Context, id string, status string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Status = workflow.Status(status)
		}
	}
	return nil
}

func (s *stubCandidateStore) Delete(context.Context, string) error { return nil }

func boardRouter(t *testing.T, rows []models.Candidate) (*gin.Engine, *stubCandidateStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := &stubCandidateStore{rows: rows}
	logger := zap.NewNop()
	candidates := cache.NewCandidates(st, stubFeed{}, logger)
	require.NoError(t, candidates.FetchAll(context.Background()))
	engine := workflow.NewEngine(candidates, st, logger)

	h := NewBoardHandler(candidates, engine, nil)

	r := gin.New()
	r.GET("/board", h.Board)
	r.POST("/board/drop", h.Drop)
	r.GET("/candidates/:id/cv", h.DownloadCV)
	r.POST("/candidates/:id/move", h.Move)
	return r, st
}

func TestBoardGroupsByStatus(t *testing.T) {
	r, _ := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", Status: workflow.StatusNuevo},
		{ID: "b", FullName: "Bruno", Status: workflow.StatusPosible},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Columns []struct {
			Status string             `json:"status"`
			Count  int                `json:"count"`
			Cards  []models.Candidate `json:"cards"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 4)

	total := 0
	for _, col := range resp.Columns {
		total += col.Count
	}
	assert.Equal(t, 2, total)
}

func TestDropOnColumnTransitions(t *testing.T) {
	r, st := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", Status: workflow.StatusNuevo},
	})

	body, _ := json.Marshal(gin.H{
		"candidateId": "a",
		"columnId":    "buen_candidato",
		"distance":    42.0,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/drop", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, st.updates)
}

func TestDropBelowActivationDistanceIsNoop(t *testing.T) {
	r, st := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", Status: workflow.StatusNuevo},
	})

	body, _ := json.Marshal(gin.H{
		"candidateId": "a",
		"columnId":    "posible",
		"distance":    2.0,
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/drop", bytes.NewReader(body)))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, st.updates)
}

func TestDropWithoutDistanceRejected(t *testing.T) {
	r, st := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", Status: workflow.StatusNuevo},
	})

	body, _ := json.Marshal(gin.H{
		"candidateId": "a",
		"columnId":    "posible",
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/board/drop", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, st.updates)
}

func TestMoveRightFromTerminalFails(t *testing.T) {
	r, st := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", Status: workflow.StatusBuenCandidato},
	})

	body, _ := json.Marshal(gin.H{"direction": "right"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/candidates/a/move", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, st.updates)
}

func TestDownloadCVSynthesizesPlaceholder(t *testing.T) {
	r, _ := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana García", Email: "ana@example.com", Status: workflow.StatusNuevo},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/candidates/a/cv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Ana García")
}

func TestDownloadCVRedirectsWhenStored(t *testing.T) {
	r, _ := boardRouter(t, []models.Candidate{
		{ID: "a", FullName: "Ana", CVURL: "http://localhost:8080/files/cv/abc.pdf", Status: workflow.StatusNuevo},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/candidates/a/cv", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:8080/files/cv/abc.pdf", w.Header().Get("Location"))
}
