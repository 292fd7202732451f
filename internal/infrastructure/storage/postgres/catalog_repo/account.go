package catalog_repo

import (
	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const accountTable = "cat_accounts"

// AccountRepo implements account.Repository.
type AccountRepo struct {
	*BaseCatalogRepo[*account.Account]
}

var _ account.Repository = (*AccountRepo)(nil)

func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			accountTable,
			"account",
			postgres.ExtractDBColumns[account.Account](),
			[]string{"code", "name"},
			func() *account.Account { return &account.Account{} },
		),
	}
}
