package order

import (
	"context"
	"fmt"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/audit"
	"salesdesk/internal/domain/numbering"
	"salesdesk/pkg/logger"
)

// NumberAllocator writes the next number onto an order. It returns "" when
// the order lacks the data to be numbered.
type NumberAllocator interface {
	Allocate(ctx context.Context, t numbering.Target) (string, error)
}

type Service struct {
	repo      Repository
	allocator NumberAllocator
	txManager tx.Manager
	events    domain.EventPublisher
	audit     audit.Recorder
	hooks     *domain.HookRegistry[*Order]
}

// NewService wires the number allocator as a before-save hook, so a failed
// allocation rolls back the order write.
func NewService(
	repo Repository,
	allocator NumberAllocator,
	txManager tx.Manager,
	events domain.EventPublisher,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	s := &Service{
		repo:      repo,
		allocator: allocator,
		txManager: txManager,
		events:    events,
		audit:     recorder,
		hooks:     domain.NewHookRegistry[*Order](),
	}
	s.hooks.OnBeforeCreate(s.allocateNumber)
	s.hooks.OnBeforeUpdate(s.allocateNumber)
	return s
}

func (s *Service) Hooks() *domain.HookRegistry[*Order] {
	return s.hooks
}

// allocateNumber numbers the order once. Orders saved without a customer or
// date stay unnumbered until a later save supplies both.
func (s *Service) allocateNumber(ctx context.Context, o *Order) error {
	if o.HasNumber() {
		return nil
	}
	number, err := s.allocator.Allocate(ctx, o)
	if err != nil {
		return fmt.Errorf("allocate order number: %w", err)
	}
	if number == "" {
		return nil
	}
	return s.audit.Record(ctx, "order", o.ID, audit.ActionNumberAllocated, map[string]any{"number": number})
}

func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.RunBeforeCreate(ctx, o); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.audit.Record(ctx, "order", o.ID, audit.ActionCreate, nil); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return s.publishIfFinished(ctx, o)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, o); err != nil {
		logger.Warn(ctx, "after-create hook failed", "order_id", o.ID, "error", err)
	}

	logger.Info(ctx, "order created", "id", o.ID, "number", numberOf(o))
	return nil
}

func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	o.Lines = lines
	return o, nil
}

// Update saves a draft order. Number and status are kept from the stored row:
// the number is write-once and finishing goes through Finish.
func (s *Service) Update(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := current.CanModify(); err != nil {
			return err
		}
		o.Number = current.Number
		o.Status = current.Status
		o.CreatedAt = current.CreatedAt

		if err := s.hooks.RunBeforeUpdate(ctx, o); err != nil {
			return err
		}
		o.Touch()
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := s.repo.SaveLines(ctx, o.ID, o.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.audit.Record(ctx, "order", o.ID, audit.ActionUpdate, nil); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return s.publishIfFinished(ctx, o)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, o); err != nil {
		logger.Warn(ctx, "after-update hook failed", "order_id", o.ID, "error", err)
	}
	return nil
}

// Finish marks the order finished so that it counts toward its summary.
func (s *Service) Finish(ctx context.Context, docID id.ID) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := o.Finish(); err != nil {
			return err
		}
		if err := s.hooks.RunBeforeUpdate(ctx, o); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("finish order: %w", err)
		}
		if err := s.audit.Record(ctx, "order", o.ID, audit.ActionFinish, nil); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return s.publishIfFinished(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	o.Lines = lines

	logger.Info(ctx, "order finished", "id", o.ID, "number", numberOf(o))
	return o, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) publishIfFinished(ctx context.Context, o *Order) error {
	if !o.IsFinished() || s.events == nil {
		return nil
	}
	event, ok, err := newSavedEvent(o)
	if err != nil || !ok {
		return err
	}
	if err := s.events.Publish(ctx, event); err != nil {
		return apperror.NewInternal(err).WithDetail("event", EventSaved)
	}
	return nil
}

func numberOf(o *Order) string {
	if o.Number == nil {
		return ""
	}
	return *o.Number
}
