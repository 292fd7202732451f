package order_summary

import (
	"context"
	"fmt"

	"salesdesk/internal/core/id"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
	"salesdesk/internal/domain/audit"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/summary"
	"salesdesk/pkg/logger"
)

type Recomputer interface {
	Recompute(ctx context.Context, scope summary.Scope) (summary.Totals, bool, error)
}

type Options struct {
	// RecomputeOnUpdate also recomputes after an update, not only after create.
	RecomputeOnUpdate bool
}

type Service struct {
	repo       Repository
	aggregator Recomputer
	txManager  tx.Manager
	audit      audit.Recorder
	hooks      *domain.HookRegistry[*OrderSummary]
}

// NewService registers recompute as an after-create hook. It runs after the
// summary is committed; its failure is logged and does not fail the create.
func NewService(
	repo Repository,
	aggregator Recomputer,
	txManager tx.Manager,
	recorder audit.Recorder,
	opts Options,
) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	s := &Service{
		repo:       repo,
		aggregator: aggregator,
		txManager:  txManager,
		audit:      recorder,
		hooks:      domain.NewHookRegistry[*OrderSummary](),
	}
	s.hooks.OnAfterCreate(s.recomputeHook)
	if opts.RecomputeOnUpdate {
		s.hooks.OnAfterUpdate(s.recomputeHook)
	}
	return s
}

func (s *Service) Hooks() *domain.HookRegistry[*OrderSummary] {
	return s.hooks
}

func (s *Service) recomputeHook(ctx context.Context, doc *OrderSummary) error {
	_, err := s.recompute(ctx, doc)
	return err
}

func (s *Service) recompute(ctx context.Context, doc *OrderSummary) (bool, error) {
	totals, ran, err := s.aggregator.Recompute(ctx, doc.Scope())
	if err != nil || !ran {
		return ran, err
	}
	doc.ApplyTotals(totals)

	if err := s.audit.Record(ctx, "order_summary", doc.ID, audit.ActionSummaryRecomputed, map[string]any{
		"totalQuantity": totals.Quantity,
		"totalAmount":   totals.Amount.String(),
	}); err != nil {
		logger.Warn(ctx, "audit summary recompute failed", "summary_id", doc.ID, "error", err)
	}
	return true, nil
}

func (s *Service) Create(ctx context.Context, doc *OrderSummary) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create order summary: %w", err)
		}
		return s.audit.Record(ctx, "order_summary", doc.ID, audit.ActionCreate, nil)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "summary_id", doc.ID, "error", err)
	}

	logger.Info(ctx, "order summary created", "id", doc.ID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, docID id.ID) (*OrderSummary, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update changes scope fields. Totals are owned by recompute and are not written.
func (s *Service) Update(ctx context.Context, doc *OrderSummary) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
			return err
		}
		doc.Touch()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update order summary: %w", err)
		}
		return s.audit.Record(ctx, "order_summary", doc.ID, audit.ActionUpdate, nil)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "summary_id", doc.ID, "error", err)
	}
	return nil
}

// Recompute reloads the summary and recomputes it on demand. Unlike the
// after-create hook, errors are returned to the caller.
func (s *Service) Recompute(ctx context.Context, docID id.ID) (*OrderSummary, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if _, err := s.recompute(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// RecomputeScope recomputes every summary of the customer's month and returns
// how many were updated.
func (s *Service) RecomputeScope(ctx context.Context, ref customer.Ref, year, month int) (int, error) {
	docs, err := s.repo.FindByScope(ctx, ref, year, month)
	if err != nil {
		return 0, fmt.Errorf("find summaries for %s %d-%d: %w", ref, year, month, err)
	}

	updated := 0
	for _, doc := range docs {
		ran, err := s.recompute(ctx, doc)
		if err != nil {
			return updated, fmt.Errorf("recompute summary %s: %w", doc.ID, err)
		}
		if ran {
			updated++
		}
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*OrderSummary], error) {
	return s.repo.List(ctx, filter)
}
