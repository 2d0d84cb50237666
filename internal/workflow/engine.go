package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/apperrors"
)

// CandidateCache is the slice of the candidates cache the engine needs:
// current status lookup plus the optimistic patch lifecycle.
type CandidateCache interface {
	Status(id string) (Status, bool)
	ApplyStatusPatch(id string, status Status, updatedAt time.Time)
	ConfirmStatusPatch(id string)
	RollbackStatusPatch(id string)
}

// StatusWriter performs the single-row write-through to the persistence
// collaborator (estado_interno + updated_at columns only).
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id string, status string, updatedAt time.Time) error
}

// Engine owns the candidate status transition contract: patch the cached
// record immediately so the board reflects the change with zero latency,
// write through to the store, and on failure restore the confirmed value
// instead of leaving the optimistic patch dangling.
type Engine struct {
	cache  CandidateCache
	writer StatusWriter
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(cache CandidateCache, writer StatusWriter, logger *zap.Logger) *Engine {
	return &Engine{
		cache:  cache,
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// RequestTransition moves a candidate to newStatus. Any status may move to
// any other: the column ordering is a presentation affordance, not a domain
// rule. Requesting the status the candidate already has touches the local
// timestamp and skips the server write entirely.
func (e *Engine) RequestTransition(ctx context.Context, candidateID string, newStatus Status) error {
	if !newStatus.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown status %q", newStatus), nil)
	}

	current, ok := e.cache.Status(candidateID)
	if !ok {
		return apperrors.NotFound("candidate not in cache", nil)
	}

	ts := e.now()
	if current == newStatus {
		e.cache.ApplyStatusPatch(candidateID, newStatus, ts)
		e.cache.ConfirmStatusPatch(candidateID)
		e.logger.Debug("transition to current status, skipping write",
			zap.String("candidate_id", candidateID),
			zap.String("status", string(newStatus)))
		return nil
	}

	e.cache.ApplyStatusPatch(candidateID, newStatus, ts)

	if err := e.writer.UpdateStatus(ctx, candidateID, string(newStatus), ts); err != nil {
		e.cache.RollbackStatusPatch(candidateID)
		e.logger.Error("status write-through failed, rolled back optimistic patch",
			zap.String("candidate_id", candidateID),
			zap.String("from", string(current)),
			zap.String("to", string(newStatus)),
			zap.Error(err))
		return apperrors.WriteFailed("updating candidate status", err)
	}

	e.cache.ConfirmStatusPatch(candidateID)
	e.logger.Info("candidate status updated",
		zap.String("candidate_id", candidateID),
		zap.String("from", string(current)),
		zap.String("to", string(newStatus)))
	return nil
}

// MoveRight advances the candidate one column. The terminal state has no
// right move.
func (e *Engine) MoveRight(ctx context.Context, candidateID string) (Status, error) {
	return e.move(ctx, candidateID, Next)
}

// MoveLeft is the mirror of MoveRight.
func (e *Engine) MoveLeft(ctx context.Context, candidateID string) (Status, error) {
	return e.move(ctx, candidateID, Prev)
}

func (e *Engine) move(ctx context.Context, candidateID string, step func(Status) (Status, bool)) (Status, error) {
	current, ok := e.cache.Status(candidateID)
	if !ok {
		return "", apperrors.NotFound("candidate not in cache", nil)
	}
	next, ok := step(current)
	if !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("no adjacent column from %q", current), nil)
	}
	if err := e.RequestTransition(ctx, candidateID, next); err != nil {
		return "", err
	}
	return next, nil
}
