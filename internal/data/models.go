// Package data holds the persistence models behind the data services: users
// and products in Postgres for RDS, orders and posts as Redis documents for
// MDB.
package data

import (
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrRecordNotFound is returned when a lookup matches nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned when an insert collides with an
	// existing key.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Models groups the relational models used by the RDS service.
type Models struct {
	Users    UserModel
	Products ProductModel
}

// NewModels wires every model to the given connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Users:    UserModel{DB: db},
		Products: ProductModel{DB: db},
	}
}

// translateError maps driver errors onto the package's sentinel errors.
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateRecord
	}
	return err
}

// Filters holds pagination and sorting parameters from the query string.
type Filters struct {
	Page         int
	PageSize     int
	Sort         string   // column name, "-" prefix for descending
	SortSafeList []string // allowed values of Sort
}

// sortColumn returns the validated ORDER BY column, defaulting to id.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "id"
}

func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (f Filters) limit() int  { return f.PageSize }
func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata describes the page returned by a list query.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
