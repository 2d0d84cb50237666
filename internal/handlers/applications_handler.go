package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/migueg98/empleo-portal/internal/dtos"
	"github.com/migueg98/empleo-portal/internal/services"
)

type ApplicationsHandler struct {
	CandidateService *services.CandidateService
}

func NewApplicationsHandler(candidateService *services.CandidateService) *ApplicationsHandler {
	return &ApplicationsHandler{CandidateService: candidateService}
}

// Submit is POST /jobs/:id/applications — the multipart application form,
// with the CV riding in the optional "cv" part.
func (h *ApplicationsHandler) Submit(c *gin.Context) {
	var req dtos.ApplicationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form: " + err.Error()})
		return
	}

	var cv *services.CVFile
	if fileHeader, err := c.FormFile("cv"); err == nil {
		if fileHeader.Size > services.MaxCVSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el CV supera el tamaño máximo de 5MB"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el CV adjunto"})
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, services.MaxCVSize+1))
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el CV adjunto"})
			return
		}
		cv = &services.CVFile{Filename: fileHeader.Filename, Data: data}
	}

	candidate, err := h.CandidateService.Submit(c.Request.Context(), c.Param("id"), &req, cv)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidate)
}

// MyApplications is GET /applications?email= — candidate self-service.
// The filter runs server-side; only the caller's own rows leave the API.
func (h *ApplicationsHandler) MyApplications(c *gin.Context) {
	applications, err := h.CandidateService.MyApplications(c.Request.Context(), c.Query("email"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
}
