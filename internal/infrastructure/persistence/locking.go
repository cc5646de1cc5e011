package persistence

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withRowLock adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite serializes writers at the database level, so the clause is
// omitted there rather than producing invalid SQL.
func withRowLock(query *gorm.DB) *gorm.DB {
	if query.Dialector.Name() == "sqlite" {
		return query
	}
	return query.Clauses(clause.Locking{Strength: "UPDATE"})
}
