package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

// ErrInvalidActor is returned when a completion is requested without a crew identity.
var ErrInvalidActor = errors.New("completer id and name are required")

// Outcome describes what a completion request did.
type Outcome string

const (
	OutcomeCompleted        Outcome = "completed"
	OutcomeAlreadyCompleted Outcome = "already_completed"
	// OutcomeConflict means another writer completed or deleted the item first.
	OutcomeConflict Outcome = "conflict"
)

type CompletionResult[T any] struct {
	Outcome Outcome
	// Item is the completed copy on success, otherwise the item as passed in.
	Item      T
	Successor *T
}

// RecurrenceError reports that the completion was stored but the next
// occurrence could not be created.
type RecurrenceError struct {
	ItemID string
	Err    error
}

func (e *RecurrenceError) Error() string {
	return fmt.Sprintf("item %s marked complete, but next occurrence was not scheduled: %v", e.ItemID, e.Err)
}

func (e *RecurrenceError) Unwrap() error {
	return e.Err
}

// CompletionService moves work items from OPEN to COMPLETED and spawns successors for recurring ones.
type CompletionService[T model.Item[T]] struct {
	store ItemStore[T]
	log   *zap.Logger
}

func NewCompletionService[T model.Item[T]](store ItemStore[T], log *zap.Logger) *CompletionService[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompletionService[T]{store: store, log: log}
}

// MarkComplete records completion of item by actor at now.
//
// The store write is conditional on the item still being OPEN, so of several
// concurrent callers exactly one succeeds and only that one schedules a
// successor. Losing the race yields OutcomeConflict with a nil error. A failed
// completion write returns the error and leaves item unchanged. A failed
// successor insert returns the completed result together with a *RecurrenceError.
func (s *CompletionService[T]) MarkComplete(ctx context.Context, item T, actor model.Actor, now time.Time) (CompletionResult[T], error) {
	if err := validateActor(actor); err != nil {
		return CompletionResult[T]{Item: item}, err
	}
	if !model.CanTransition(item.State(), model.StatusCompleted) {
		return CompletionResult[T]{Outcome: OutcomeAlreadyCompleted, Item: item}, nil
	}

	completion := model.Completion{At: now, ByID: actor.ID, ByName: actor.Name}
	if err := s.store.ConditionalMarkComplete(ctx, item.ItemID(), model.StatusOpen, completion); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.log.Info("completion lost race", zap.String("item_id", item.ItemID()), zap.String("actor_id", actor.ID))
			return CompletionResult[T]{Outcome: OutcomeConflict, Item: item}, nil
		}
		return CompletionResult[T]{Item: item}, fmt.Errorf("mark complete: %w", err)
	}

	result := CompletionResult[T]{Outcome: OutcomeCompleted, Item: item.WithCompletion(completion)}
	s.log.Info("item completed",
		zap.String("item_id", item.ItemID()),
		zap.String("vessel_id", item.Vessel()),
		zap.String("actor_id", actor.ID),
	)

	next, ok := ScheduleNext(result.Item, now)
	if !ok {
		return result, nil
	}
	inserted, err := s.store.Insert(ctx, next)
	if err != nil {
		s.log.Warn("schedule next occurrence", zap.String("item_id", item.ItemID()), zap.Error(err))
		return result, &RecurrenceError{ItemID: item.ItemID(), Err: err}
	}
	result.Successor = &inserted
	s.log.Info("next occurrence scheduled",
		zap.String("item_id", item.ItemID()),
		zap.String("successor_id", inserted.ItemID()),
		zap.Time("done_by", *inserted.DueDate()),
	)
	return result, nil
}

func validateActor(actor model.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(actor.Name) == "" {
		return ErrInvalidActor
	}
	return nil
}
