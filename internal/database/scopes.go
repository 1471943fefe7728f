package database

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Paginate returns a GORM scope applying page/limit (1-based page).
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// InRegion filters rows joined with schools to a province or city,
// case-insensitively.
func InRegion(region string) func(db *gorm.DB) *gorm.DB {
	r := strings.ToLower(strings.TrimSpace(region))
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(LOWER(schools.province) = ? OR LOWER(schools.city) = ?)", r, r)
	}
}

// InsertOnce creates value unless a row with the same unique key already
// exists. It reports whether a row was written.
func InsertOnce(tx *gorm.DB, value interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
