package catalog_repo

import (
	"salesdesk/internal/domain/catalogs/contact"
	"salesdesk/internal/infrastructure/storage/postgres"
)

const contactTable = "cat_contacts"

type ContactRepo struct {
	*BaseCatalogRepo[*contact.Contact]
}

var _ contact.Repository = (*ContactRepo)(nil)

func NewContactRepo(txManager *postgres.TxManager) *ContactRepo {
	return &ContactRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			contactTable,
			"contact",
			postgres.ExtractDBColumns[contact.Contact](),
			[]string{"code", "first_name", "last_name"},
			func() *contact.Contact { return &contact.Contact{} },
		),
	}
}
