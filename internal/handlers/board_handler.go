package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/kanban"
	"github.com/migueg98/empleo-portal/internal/services"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

type BoardHandler struct {
	Candidates       *cache.Candidates
	Engine           *workflow.Engine
	CandidateService *services.CandidateService
}

func NewBoardHandler(candidates *cache.Candidates, engine *workflow.Engine, candidateService *services.CandidateService) *BoardHandler {
	return &BoardHandler{
		Candidates:       candidates,
		Engine:           engine,
		CandidateService: candidateService,
	}
}

// Board is GET /admin/board — candidates grouped into the fixed columns.
func (h *BoardHandler) Board(c *gin.Context) {
	if err := h.Candidates.Err(); err != nil {
		renderError(c, err)
		return
	}

	columns := kanban.Build(h.Candidates.Items())
	c.JSON(http.StatusOK, gin.H{
		"columns": columns,
		"loading": h.Candidates.Loading(),
	})
}

// Candidate is GET /admin/candidates/:id — the detail panel payload.
func (h *BoardHandler) Candidate(c *gin.Context) {
	candidate, ok := h.Candidates.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidato no encontrado"})
		return
	}
	c.JSON(http.StatusOK, candidate)
}

// UpdateStatus is PUT /admin/candidates/:id/status — a direct transition.
func (h *BoardHandler) UpdateStatus(c *gin.Context) {
	var req dtos.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	if err := h.Engine.RequestTransition(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

// Move is POST /admin/candidates/:id/move — the left/right buttons.
func (h *BoardHandler) Move(c *gin.Context) {
	var req dtos.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	var (
		status workflow.Status
		err    error
	)
	if req.Direction == "right" {
		status, err = h.Engine.MoveRight(c.Request.Context(), c.Param("id"))
	} else {
		status, err = h.Engine.MoveLeft(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": status})
}

// Drop is POST /admin/board/drop — drag-and-drop resolution. A gesture
// below the activation distance, or a target that resolves to nothing, is
// a no-op (204), never an error.
func (h *BoardHandler) Drop(c *gin.Context) {
	var req dtos.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	target := kanban.DropTarget{
		ColumnID: req.ColumnID,
		CardID:   req.CardID,
		Distance: *req.Distance,
	}
	status, ok := kanban.ResolveDrop(target, h.Candidates.Get)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.Engine.RequestTransition(c.Request.Context(), req.CandidateID, status); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.CandidateID, "status": status})
}

// DownloadCV is GET /admin/candidates/:id/cv. With a stored CV the client
// is redirected to the blob URL; without one a placeholder text file is
// generated so the action never fails.
func (h *BoardHandler) DownloadCV(c *gin.Context) {
	candidate, ok := h.Candidates.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidato no encontrado"})
		return
	}

	if candidate.CVURL != "" {
		c.Redirect(http.StatusFound, candidate.CVURL)
		return
	}

	filename, data := kanban.PlaceholderCV(candidate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// Delete is DELETE /admin/candidates/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	if err := h.CandidateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
