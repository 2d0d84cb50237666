package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migueg98/empleo-portal/internal/models"
)

func catalog() []models.JobPosting {
	return []models.JobPosting{
		{ID: "j1", Title: "Camarero/a de Sala", Description: "Servicio de sala y terraza",
			Business: "Negocio A", Sector: "Hostelería", IsActive: true},
		{ID: "j2", Title: "Cocinero/a", Description: "Cocina mediterránea",
			Business: "Negocio B", Sector: "Restauración", IsActive: true},
		{ID: "j3", Title: "Administrativo/a", Description: "Gestión de pedidos",
			Business: "Negocio C", Sector: "Administración", IsActive: true},
	}
}

func TestSearchJobsCaseInsensitive(t *testing.T) {
	got := SearchJobs(catalog(), "camarero")
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ID)

	got = SearchJobs(catalog(), "CAMARERO")
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ID)
}

func TestSearchJobsMatchesAnyField(t *testing.T) {
	// Business name
	got := SearchJobs(catalog(), "negocio b")
	require.Len(t, got, 1)
	assert.Equal(t, "j2", got[0].ID)

	// Description
	got = SearchJobs(catalog(), "pedidos")
	require.Len(t, got, 1)
	assert.Equal(t, "j3", got[0].ID)

	// Sector
	got = SearchJobs(catalog(), "hostelería")
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ID)
}

func TestSearchJobsNoMatchReturnsEmpty(t *testing.T) {
	got := SearchJobs(catalog(), "astronauta")
	assert.Empty(t, got)
}

func TestSearchJobsEmptyQueryReturnsAll(t *testing.T) {
	got := SearchJobs(catalog(), "   ")
	assert.Len(t, got, 3)
}
