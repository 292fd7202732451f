package account

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/tx"
	"salesdesk/internal/domain"
)

type Service struct {
	*domain.CatalogService[*Account]
	repo Repository
}

func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "account",
	})

	svc := &Service{CatalogService: base, repo: repo}
	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)
	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, a *Account) error {
	exists, err := s.repo.ExistsByCode(ctx, a.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("account", "code", a.Code)
	}
	return nil
}
