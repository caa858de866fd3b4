package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beaconmarket/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

var ErrNotFound = errors.New("listing not found")

// ListingStore is the record store the bot and the public feed talk to.
// Results of Select are ordered by created_at, newest first.
type ListingStore interface {
	Insert(ctx context.Context, l *models.Listing) (*models.Listing, error)
	Select(ctx context.Context, q Query) ([]models.Listing, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Listing, error)
}

/**** MARK: Filter operators ****/
const (
	OP_EQ  = "eq"
	OP_NEQ = "neq"
	OP_IN  = "in"
)

// filterColumns are the only columns a Query may filter on.
var filterColumns = map[string]bool{
	"id":         true,
	"category":   true,
	"status":     true,
	"whatsapp":   true,
	"price_unit": true,
	"owner_name": true,
}

// updateColumns are the only columns Update may write.
var updateColumns = map[string]bool{
	"category":    true,
	"title":       true,
	"description": true,
	"price":       true,
	"price_unit":  true,
	"owner_name":  true,
	"status":      true,
	"image_url":   true,
}

type Filter struct {
	Column string
	Op     string
	Values []string
}

// Query selects listings. Build it with the chainable helpers:
//
//	db.NewQuery().Eq("whatsapp", phone).Eq("status", "active").Limit(1)
type Query struct {
	Filters []Filter
	Max     int // 0 means no limit
}

func NewQuery() Query { return Query{} }

func (q Query) Eq(column, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OP_EQ, Values: []string{value}})
	return q
}

func (q Query) Neq(column, value string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OP_NEQ, Values: []string{value}})
	return q
}

func (q Query) In(column string, values ...string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OP_IN, Values: values})
	return q
}

func (q Query) Limit(n int) Query {
	q.Max = n
	return q
}

// Validate rejects unknown columns and operators.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !filterColumns[f.Column] {
			return fmt.Errorf("query: column %q is not filterable", f.Column)
		}
		switch f.Op {
		case OP_EQ, OP_NEQ:
			if len(f.Values) != 1 {
				return fmt.Errorf("query: %s on %q needs one value", f.Op, f.Column)
			}
		case OP_IN:
		default:
			return fmt.Errorf("query: unknown operator %q", f.Op)
		}
	}
	if q.Max < 0 {
		return fmt.Errorf("query: negative limit")
	}
	return nil
}

func validateUpdate(fields map[string]any) error {
	if len(fields) == 0 {
		return errors.New("update: no fields")
	}
	for k := range fields {
		if !updateColumns[k] {
			return fmt.Errorf("update: column %q is not writable", k)
		}
	}
	return nil
}

func prepareInsert(l *models.Listing, now time.Time) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt == nil {
		l.CreatedAt = &now
	}
	if l.UpdatedAt == nil {
		l.UpdatedAt = &now
	}
	if missing := l.MissingFields(); missing != "" {
		return fmt.Errorf("insert: missing %s", missing)
	}
	return nil
}

/**** MARK: gorm backend ****/

// GormListings stores listings in the application database.
type GormListings struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormListings(db *gorm.DB) *GormListings {
	return &GormListings{DB: db, Now: time.Now}
}

func (s *GormListings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *GormListings) Insert(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := *l
	if err := prepareInsert(&row, s.now()); err != nil {
		return nil, err
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return &row, nil
}

func (s *GormListings) Select(ctx context.Context, q Query) ([]models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	tx := s.DB.Model(&models.Listing{})
	for _, f := range q.Filters {
		switch f.Op {
		case OP_EQ:
			tx = tx.Where(f.Column+" = ?", f.Values[0])
		case OP_NEQ:
			tx = tx.Where(f.Column+" <> ?", f.Values[0])
		case OP_IN:
			if len(f.Values) == 0 {
				return []models.Listing{}, nil
			}
			tx = tx.Where(f.Column+" IN (?)", f.Values)
		}
	}
	tx = tx.Order("created_at desc")
	if q.Max > 0 {
		tx = tx.Limit(q.Max)
	}

	listings := []models.Listing{}
	if err := tx.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	return listings, nil
}

func (s *GormListings) Update(ctx context.Context, id string, fields map[string]any) (*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateUpdate(fields); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = s.now()

	res := s.DB.Model(&models.Listing{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, fmt.Errorf("update listing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var l models.Listing
	if err := s.DB.Where("id = ?", id).First(&l).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reload listing %s: %w", id, err)
	}
	return &l, nil
}
