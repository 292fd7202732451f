package contact

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
)

type Service struct {
	*domain.CatalogService[*Contact]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Contact]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "contact",
	})

	svc := &Service{CatalogService: base, repo: repo}
	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)
	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, c *Contact) error {
	exists, err := s.repo.ExistsByCode(ctx, c.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("contact", "code", c.Code)
	}
	return nil
}
