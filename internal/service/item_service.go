package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vessel-ops/internal/model"
)

// ErrInvalidInput wraps validation failures on new work items.
var ErrInvalidInput = errors.New("invalid input")

// itemService carries the lookup, completion and deletion flow shared by tasks and yard jobs.
type itemService[T model.Item[T]] struct {
	repo       itemRepository[T]
	completion *CompletionService[T]
}

func newItemService[T model.Item[T]](repo itemRepository[T], log *zap.Logger) *itemService[T] {
	return &itemService[T]{repo: repo, completion: NewCompletionService[T](repo, log)}
}

func (s *itemService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.repo.FindByID(ctx, id)
}

// Resolve expands a full id or an id prefix within the vessel.
func (s *itemService[T]) Resolve(ctx context.Context, vesselID, prefix string) (string, error) {
	return s.repo.ResolveID(ctx, vesselID, prefix)
}

// Complete loads the item and runs it through the completion state machine.
func (s *itemService[T]) Complete(ctx context.Context, id string, actor model.Actor, now time.Time) (CompletionResult[T], error) {
	if err := validateActor(actor); err != nil {
		return CompletionResult[T]{}, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CompletionResult[T]{}, err
	}
	return s.completion.MarkComplete(ctx, item, actor, now)
}

// Delete removes an item in any state.
func (s *itemService[T]) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateNewItem(vesselID, title string, rule model.Recurrence) error {
	if strings.TrimSpace(vesselID) == "" {
		return fmt.Errorf("%w: vessel is required", ErrInvalidInput)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if rule != model.RecurNone && !rule.IsSet() {
		return fmt.Errorf("%w: unknown recurrence %q", ErrInvalidInput, rule)
	}
	return nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := model.DateOf(*t)
	return &d
}
