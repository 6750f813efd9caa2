package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may order by. The first
// entry is the fallback.
type sortColumns []string

var invoiceSortColumns = sortColumns{
	"created_at",
	"id",
	"updated_at",
	"invoice_number",
	"invoice_date",
	"due_date",
	"status",
	"total_amount",
	"balance_amount",
}

// order builds an ORDER BY term. Unknown fields use the fallback column and
// anything but "asc" sorts descending.
func (s sortColumns) order(field, dir string) clause.OrderByColumn {
	col := s[0]
	field = strings.TrimSpace(field)
	for _, c := range s {
		if c == field {
			col = c
			break
		}
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
