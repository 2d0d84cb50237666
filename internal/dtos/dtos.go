package dtos

import (
	"time"

	"github.com/migueg98/empleo-portal/internal/workflow"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ApplicationRequest is the multipart form the public application page
// submits; the CV file rides alongside as the "cv" part.
type ApplicationRequest struct {
	FullName           string   `form:"fullName" binding:"required,min=2"`
	Age                int      `form:"age" binding:"required,gte=18"`
	Email              string   `form:"email" binding:"required,email"`
	Phone              string   `form:"phone" binding:"required"`
	SelectedPositions  []string `form:"selectedPositions"`
	SectorExperience   string   `form:"sectorExperience" binding:"required,oneof=Sí No"`
	PositionExperience string   `form:"positionExperience" binding:"required,oneof=Sí No"`
	Availability       string   `form:"availability" binding:"required,oneof=Inmediata '< 1 mes' '1-3 meses' '> 3 meses'"`
	AdditionalComments string   `form:"additionalComments"`
	ConsentGiven       bool     `form:"consentGiven" binding:"required"`
}

// PublicApplication is the candidate self-service row: the stored internal
// status is never exposed, only the public vocabulary derived from it.
type PublicApplication struct {
	ID        string                `json:"id"`
	JobID     string                `json:"jobId"`
	JobTitle  string                `json:"jobTitle,omitempty"`
	FullName  string                `json:"fullName"`
	Email     string                `json:"email"`
	Status    workflow.LegacyStatus `json:"status"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type VacancyCreateRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Business    string `json:"business" binding:"required"`
	City        string `json:"city"`
	Sector      string `json:"sector"`
	SectorID    *int64 `json:"sectorId"`
	IsActive    *bool  `json:"isActive"`
}

// VacancyUpdateRequest is a partial-field update; nil means "leave alone".
type VacancyUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Business    *string `json:"business"`
	City        *string `json:"city"`
	Sector      *string `json:"sector"`
	SectorID    *int64  `json:"sectorId"`
	IsActive    *bool   `json:"isActive"`
}

type StatusUpdateRequest struct {
	Status workflow.Status `json:"status" binding:"required"`
}

type MoveRequest struct {
	Direction string `json:"direction" binding:"required,oneof=left right"`
}

// DropRequest reports a finished drag gesture. Distance is a pointer so a
// deliberate zero-motion drop stays distinguishable from a missing field.
type DropRequest struct {
	CandidateID string   `json:"candidateId" binding:"required"`
	ColumnID    string   `json:"columnId"`
	CardID      string   `json:"cardId"`
	Distance    *float64 `json:"distance" binding:"required"`
}
