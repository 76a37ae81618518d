package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var errUnknownOrdering = errors.New("invalid ordering")

// Field declares how a list endpoint may search, filter and order on one attribute of T.
type Field[T any] struct {
	Name   string      // query param & ordering name
	Column string      // SQL column
	Value  func(T) any // in-memory accessor
	Search bool        // included in `search`
	Filter bool        // exact match through `?<name>=`
	Sort   bool        // allowed in `ordering`
}

// Schema is the declarative list contract of an entity, shared by every DataSource.
type Schema[T any] struct {
	Table           string
	Fields          []Field[T]
	DefaultOrdering []DBOrdering
}

func (s Schema[T]) field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Column returns the SQL column of field `name`.
func (s Schema[T]) Column(name string) string {
	if f, ok := s.field(name); ok {
		return f.Column
	}
	return name
}

// SearchColumns returns the SQL columns matched by ListQuery.Search.
func (s Schema[T]) SearchColumns() []string {
	var cols []string
	for _, f := range s.Fields {
		if f.Search {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

// DBOrdering orders by one field, as a SQL ORDER BY clause renders it.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	if ord.Ascending {
		return ord.Field + " ASC"
	}
	return ord.Field + " DESC"
}

// ListQuery is a search, filter, order & paginate request on a Schema.
type ListQuery struct {
	Search   string
	Filters  map[string]string
	Ordering []DBOrdering
	Page     int
	PageSize int
}

// Offset of the first item of the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Where returns a copy of q with an extra equality filter.
func (q ListQuery) Where(name, value string) ListQuery {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[name] = value
	q.Filters = filters
	return q
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Clean validates q against the schema:
// unknown filters are dropped, unknown ordering fields are rejected and paging is normalized.
func (s Schema[T]) Clean(q ListQuery) (ListQuery, error) {
	q.Search = CleanString(q.Search)

	filters := make(map[string]string, len(q.Filters))
	for name, val := range q.Filters {
		if f, ok := s.field(name); ok && f.Filter {
			filters[name] = CleanString(val)
		}
	}
	q.Filters = filters

	for _, ord := range q.Ordering {
		if f, ok := s.field(ord.Field); !ok || !f.Sort {
			return q, NewValidationError(errUnknownOrdering, FieldError{
				Field: "ordering",
				Error: fmt.Sprintf("cannot order by %q", ord.Field),
			})
		}
	}
	if len(q.Ordering) == 0 {
		q.Ordering = s.DefaultOrdering
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	} else if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q, nil
}

// Apply runs an already cleaned query over in-memory items.
// ID ascending breaks ties, like in SQL data sources.
func (s Schema[T]) Apply(items []T, q ListQuery, id func(T) int64) Page[T] {
	matched := make([]T, 0, len(items))
	search := strings.ToLower(q.Search)
	for _, item := range items {
		if search != "" && !s.matchSearch(item, search) {
			continue
		}
		if !s.matchFilters(item, q.Filters) {
			continue
		}
		matched = append(matched, item)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, ord := range q.Ordering {
			f, _ := s.field(ord.Field)
			c := compareValues(f.Value(matched[i]), f.Value(matched[j]))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return id(matched[i]) < id(matched[j])
	})

	page := Page[T]{Items: []T{}, Total: len(matched), Page: q.Page, PageSize: q.PageSize}
	if start := q.Offset(); start < len(matched) {
		end := start + q.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[start:end]
	}
	return page
}

func (s Schema[T]) matchSearch(item T, search string) bool {
	for _, f := range s.Fields {
		if f.Search && strings.Contains(strings.ToLower(FormatValue(f.Value(item))), search) {
			return true
		}
	}
	return false
}

func (s Schema[T]) matchFilters(item T, filters map[string]string) bool {
	for name, want := range filters {
		f, _ := s.field(name)
		if FormatValue(f.Value(item)) != want {
			return false
		}
	}
	return true
}

// FormatValue renders v the way Postgres casts it to text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *int64:
		if val == nil {
			return ""
		}
		return fmt.Sprint(*val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case civil.Date:
		if val == (civil.Date{}) {
			return ""
		}
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case int:
		bv, _ := b.(int)
		return compareOrdered(av, bv)
	case int64:
		bv, _ := b.(int64)
		return compareOrdered(av, bv)
	case *int64:
		bv, _ := b.(*int64)
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1 // NULLS LAST
		case bv == nil:
			return -1
		}
		return compareOrdered(*av, *bv)
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case civil.Date:
		bv, _ := b.(civil.Date)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	default:
		return strings.Compare(strings.ToLower(FormatValue(a)), strings.ToLower(FormatValue(b)))
	}
}

func compareOrdered[V int | int64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// All collects every item matching q, walking the pages of list.
func All[T any](ctx context.Context, q ListQuery, list func(context.Context, ListQuery) (Page[T], error)) ([]T, error) {
	q.Page = 1
	q.PageSize = MaxPageSize
	var items []T
	for {
		page, err := list(ctx, q)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.Items) < q.PageSize || len(items) >= page.Total {
			return items, nil
		}
		q.Page++
	}
}
