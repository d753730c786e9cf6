package option

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition is a single field comparison appended to the WHERE clause.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	field := strings.TrimSpace(o.cond.Field)
	if field == "" {
		return db
	}
	return db.Where(fmt.Sprintf("%s %s ?", field, o.cond.Operator), o.cond.Value)
}

// ApplyOperator appends a field comparison condition.
func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

// QuerySortBy restricts sortable columns to an allow list.
type QuerySortBy struct {
	Allow map[string]bool
	Field string
	Desc  bool
}

type sortOption struct {
	sort QuerySortBy
}

func (o sortOption) Apply(db *gorm.DB) *gorm.DB {
	field := strings.TrimSpace(o.sort.Field)
	if field == "" || !o.sort.Allow[field] {
		field = "created_at"
	}
	direction := "asc"
	if o.sort.Desc {
		direction = "desc"
	}
	return db.Order(fmt.Sprintf("%s %s, id %s", field, direction, direction))
}

// WithSortBy orders results by an allowed column, created_at otherwise.
func WithSortBy(sort QuerySortBy) QueryOption {
	return sortOption{sort: sort}
}

type paginationOption struct {
	page pagination.Pagination
}

func (o paginationOption) Apply(db *gorm.DB) *gorm.DB {
	size := o.page.Limit()

	if token := strings.TrimSpace(o.page.PageToken); token != "" {
		if cursor, err := pagination.DecodeCursor(token); err == nil && cursor.ID != "" {
			db = db.Where("id < ?", cursor.ID)
		}
	}

	// Fetch one extra row so callers can detect a next page.
	return db.Limit(size + 1)
}

// ApplyPagination applies cursor pagination to the statement.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return paginationOption{page: page}
}
