package kanban

import (
	"fmt"
	"strings"

	"github.com/migueg98/empleo-portal/internal/models"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

// DragActivationDistance is the pointer travel (px) below which a gesture
// counts as a click, not a drag. Clients echo the measured distance back
// with the drop request.
const DragActivationDistance = 8

type Column struct {
	Status workflow.Status    `json:"status"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
	Cards  []models.Candidate `json:"cards"`
}

// Build groups candidates into the fixed column order. Legacy or unknown
// stored statuses are normalized first, so every candidate lands in
// exactly one column and flattening the board reproduces the input set.
func Build(candidates []models.Candidate) []Column {
	columns := make([]Column, len(workflow.Order))
	index := make(map[workflow.Status]int, len(workflow.Order))
	for i, status := range workflow.Order {
		columns[i] = Column{
			Status: status,
			Label:  workflow.Labels[status],
			Cards:  []models.Candidate{},
		}
		index[status] = i
	}

	for _, candidate := range candidates {
		status := workflow.Normalize(string(candidate.Status))
		candidate.Status = status
		i := index[status]
		columns[i].Cards = append(columns[i].Cards, candidate)
		columns[i].Count++
	}

	return columns
}

// Flatten is the inverse of Build.
func Flatten(columns []Column) []models.Candidate {
	var out []models.Candidate
	for _, col := range columns {
		out = append(out, col.Cards...)
	}
	return out
}

// DropTarget describes where a dragged card was released.
type DropTarget struct {
	// ColumnID is set when the card was dropped on a column surface.
	ColumnID string `json:"columnId,omitempty"`
	// CardID is set when the card was dropped on another card.
	CardID string `json:"cardId,omitempty"`
	// Distance is the pointer travel of the gesture.
	Distance float64 `json:"distance"`
}

// ResolveDrop turns a drop target into the requested status. A column id
// that names a status wins; otherwise the target card's current status is
// inherited. Gestures shorter than the activation distance, and targets
// that resolve to nothing, are a no-op.
func ResolveDrop(target DropTarget, lookup func(id string) (models.Candidate, bool)) (workflow.Status, bool) {
	if target.Distance < DragActivationDistance {
		return "", false
	}
	if s := workflow.Status(target.ColumnID); s.Valid() {
		return s, true
	}
	if target.CardID != "" {
		if card, ok := lookup(target.CardID); ok {
			return workflow.Normalize(string(card.Status)), true
		}
	}
	return "", false
}

// PlaceholderCV synthesizes a downloadable text file for candidates who
// applied without attaching a CV, so the download action never errors.
func PlaceholderCV(c models.Candidate) (filename string, data []byte) {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidatura — %s\n", c.FullName)
	fmt.Fprintf(&b, "=====================================\n\n")
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n", c.Phone)
	fmt.Fprintf(&b, "Edad: %d\n", c.Age)
	if c.JobTitle != "" {
		fmt.Fprintf(&b, "Puesto: %s\n", c.JobTitle)
	}
	fmt.Fprintf(&b, "Disponibilidad: %s\n", c.Availability)
	fmt.Fprintf(&b, "Experiencia en el sector: %s\n", c.SectorExperience)
	fmt.Fprintf(&b, "Experiencia en el puesto: %s\n", c.PositionExperience)
	if len(c.SelectedPositions) > 0 {
		fmt.Fprintf(&b, "Puestos seleccionados: %s\n", strings.Join(c.SelectedPositions, ", "))
	}
	if c.AdditionalComments != "" {
		fmt.Fprintf(&b, "\nComentarios:\n%s\n", c.AdditionalComments)
	}
	fmt.Fprintf(&b, "\nEl candidato no adjuntó CV.\n")

	name := strings.ReplaceAll(strings.TrimSpace(c.FullName), " ", "_")
	if name == "" {
		name = "candidato"
	}
	return fmt.Sprintf("CV_%s.txt", name), []byte(b.String())
}
