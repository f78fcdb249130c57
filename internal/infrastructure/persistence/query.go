package persistence

import (
	"errors"
	"strings"

	"github.com/hazchem/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortColumns maps the sort keys clients may send to SQL columns.
// Only mapped columns ever reach ORDER BY.
type sortColumns map[string]string

// column resolves a client sort key, falling back when it is unknown
func (s sortColumns) column(field, fallback string) string {
	if col, ok := s[strings.TrimSpace(field)]; ok {
		return col
	}
	return fallback
}

// sortDir normalizes a direction to ASC or DESC, defaulting to DESC
func sortDir(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// paginate applies ordering and paging from the shared filter
func paginate(q *gorm.DB, f shared.Filter, allowed sortColumns, fallback string) *gorm.DB {
	q = q.Order(allowed.column(f.OrderBy, fallback) + " " + sortDir(f.OrderDir))
	if f.PageSize > 0 {
		q = q.Offset(f.Offset()).Limit(f.PageSize)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereContains adds a substring match on column; blank values add nothing
func whereContains(q *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return q
	}
	return q.Where(column+` LIKE ? ESCAPE '\'`, likePattern(value))
}

// likePattern wraps value in wildcards after escaping the ones it contains
func likePattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// notFound maps gorm's missing-row error to the domain one
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// findPage counts the filtered rows and loads the requested page.
// Each step runs on its own session so the count does not leak into the select.
func findPage[T any](q *gorm.DB, f shared.Filter, allowed sortColumns, fallback string) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []T
	if err := paginate(q.Session(&gorm.Session{}), f, allowed, fallback).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
