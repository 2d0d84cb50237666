package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/migueg98/empleo-portal/internal/workflow"
)

// Column names stay snake_case (the original storage shape); JSON stays
// camelCase (the shape the frontend consumes).

type JobPosting struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Business    string    `gorm:"not null" json:"business"`
	City        string    `json:"city"`
	Sector      string    `json:"sector"`
	SectorID    *int64    `gorm:"column:sector_id" json:"sectorId,omitempty"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Joined from sectors at read time, never stored on the row.
	SectorName string `gorm:"->;-:migration" json:"sectorName,omitempty"`
}

func (JobPosting) TableName() string { return "jobs" }

type Candidate struct {
	ID    string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	JobID string `gorm:"column:job_id;uniqueIndex:idx_candidates_email_job" json:"jobId"`

	FullName string `gorm:"column:full_name;not null" json:"fullName"`
	Age      int    `gorm:"not null" json:"age"`
	Email    string `gorm:"not null;uniqueIndex:idx_candidates_email_job" json:"email"`
	Phone    string `gorm:"not null" json:"phone"`

	SelectedPositions  pq.StringArray `gorm:"column:selected_positions;type:text[]" json:"selectedPositions"`
	SectorExperience   string         `gorm:"column:sector_experience" json:"sectorExperience"`
	PositionExperience string         `gorm:"column:position_experience" json:"positionExperience"`
	Availability       string         `json:"availability"`
	AdditionalComments string         `gorm:"column:additional_comments;type:text" json:"additionalComments"`

	CVURL  string          `gorm:"column:cv_url" json:"cvUrl,omitempty"`
	Status workflow.Status `gorm:"column:estado_interno;default:'nuevo'" json:"status"`

	ConsentGiven bool      `gorm:"column:consent_given" json:"consentGiven"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Denormalized snapshot of the posting, filled by a read-time join.
	JobTitle  string `gorm:"->;-:migration" json:"jobTitle,omitempty"`
	JobSector string `gorm:"->;-:migration" json:"jobSector,omitempty"`
}

func (Candidate) TableName() string { return "candidates" }

type Sector struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Sector) TableName() string { return "sectors" }
