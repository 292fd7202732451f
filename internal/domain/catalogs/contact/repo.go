package contact

import (
	"salesdesk/internal/domain"
)

type Repository interface {
	domain.CatalogRepository[*Contact]
}
