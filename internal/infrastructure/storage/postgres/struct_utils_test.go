package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
)

type sampleDoc struct {
	entity.BaseDocument
	Number *string     `db:"number"`
	Amount types.Money `db:"amount"`
	Lines  []string    `db:"-"`
	note   string
}

func TestExtractDBColumns_IncludesEmbedded(t *testing.T) {
	cols := ExtractDBColumns[sampleDoc]()

	assert.Equal(t, []string{"id", "version", "created_at", "updated_at", "number", "amount"}, cols)
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[sampleDoc](), ExtractDBColumns[*sampleDoc]())
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	num := "Acme/2024/3/00001"
	doc := sampleDoc{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{ID: id.New(), Version: 3},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Number: &num,
		Amount: types.MustMoney("12.50"),
		Lines:  []string{"ignored"},
		note:   "ignored",
	}

	m := StructToMap(&doc)

	assert.Len(t, m, 6)
	assert.Equal(t, doc.ID, m["id"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, &num, m["number"])
	assert.Equal(t, now, m["created_at"])
	assert.NotContains(t, m, "lines")
}

func TestStructToMap_Except(t *testing.T) {
	doc := sampleDoc{BaseDocument: entity.NewBaseDocument()}

	m := StructToMap(doc, "id", "created_at")

	assert.NotContains(t, m, "id")
	assert.NotContains(t, m, "created_at")
	assert.Contains(t, m, "version")
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
