package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/services"
)

// EmptyStateMessage is what the listing shows when a search matches
// nothing.
const EmptyStateMessage = "No se encontraron ofertas que coincidan con tu búsqueda."

type JobsHandler struct {
	JobService *services.JobService
}

func NewJobsHandler(jobService *services.JobService) *JobsHandler {
	return &JobsHandler{JobService: jobService}
}

// List is GET /jobs?q=
func (h *JobsHandler) List(c *gin.Context) {
	jobs := h.JobService.List(c.Query("q"))

	resp := gin.H{"jobs": jobs, "count": len(jobs)}
	if len(jobs) == 0 {
		resp["message"] = EmptyStateMessage
	}
	c.JSON(http.StatusOK, resp)
}

// Get is GET /jobs/:id
func (h *JobsHandler) Get(c *gin.Context) {
	job, ok := h.JobService.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "oferta no encontrada"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Sectors is GET /sectors
func (h *JobsHandler) Sectors(c *gin.Context) {
	sectors, err := h.JobService.Sectors(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

// ListVacancies is GET /admin/jobs — inactive postings included.
func (h *JobsHandler) ListVacancies(c *gin.Context) {
	jobs, err := h.JobService.AllVacancies(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// CreateVacancy is POST /admin/jobs
func (h *JobsHandler) CreateVacancy(c *gin.Context) {
	var req dtos.VacancyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	job, err := h.JobService.CreateVacancy(c.Request.Context(), &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// UpdateVacancy is PATCH /admin/jobs/:id — partial-field update.
func (h *JobsHandler) UpdateVacancy(c *gin.Context) {
	var req dtos.VacancyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	job, err := h.JobService.UpdateVacancy(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeleteVacancy is DELETE /admin/jobs/:id — a hard delete.
func (h *JobsHandler) DeleteVacancy(c *gin.Context) {
	if err := h.JobService.DeleteVacancy(c.Request.Context(), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
