package account

import (
	"salesdesk/internal/domain"
)

type Repository interface {
	domain.CatalogRepository[*Account]
}
