// Package sqlxrepos implements the repositories over Postgres, with sqlx & squirrel.
package sqlxrepos

import (
	"context"
	"database/sql"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/storage/database/pgerr"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// table maps a core entity T to its database row R.
type table[T any, R any] struct {
	db       *sqlx.DB
	schema   core.Schema[T]
	resource string
	notFound error
	id       func(T) int64
	toRow    func(T) R
	fromRow  func(R) T
}

// trapErr maps driver errors to core errors.
func (t *table[T, R]) trapErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return t.notFound
	case pgerr.IsSchemaMissing(err):
		// the data source is picked at startup only
		return core.NewShutdownError("database schema is missing: " + err.Error())
	case pgerr.IsUniqueViolation(err):
		return core.NewConflictError("%s already exists", t.resource)
	case pgerr.IsForeignKeyViolation(err):
		return core.NewValidationError(err, core.FieldError{
			Field: fkField(t.schema.Table, pgerr.Constraint(err)),
			Error: "referenced record does not exist",
		})
	case pgerr.IsCheckViolation(err):
		return core.NewValidationError(err, core.FieldError{
			Field: checkField(t.schema.Table, pgerr.Constraint(err)),
			Error: "invalid value",
		})
	}
	return errors.Wrap(err, msg)
}

// fkField turns `students_school_id_fkey` into `school_id`.
func fkField(table, constraint string) string {
	return strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_fkey")
}

// checkField turns `classes_capacity_check` into `capacity`.
func checkField(table, constraint string) string {
	return strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_check")
}

// values returns the columns of row r, except the excluded ones.
func (t *table[T, R]) values(r R, exclude ...string) map[string]interface{} {
	fields := t.db.Mapper.FieldMap(reflect.ValueOf(r))
	vals := make(map[string]interface{}, len(fields))
	for col, v := range fields {
		if strings.Contains(col, ".") {
			continue
		}
		vals[col] = v.Interface()
	}
	for _, col := range exclude {
		delete(vals, col)
	}
	return vals
}

func (t *table[T, R]) where(q core.ListQuery) sq.And {
	cond := sq.And{}
	for name, val := range q.Filters {
		cond = append(cond, sq.Expr("COALESCE("+t.schema.Column(name)+"::text, '') = ?", val))
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		search := sq.Or{}
		for _, col := range t.schema.SearchColumns() {
			search = append(search, sq.Expr(col+"::text ILIKE ?", pattern))
		}
		if len(search) > 0 {
			cond = append(cond, search)
		}
	}
	return cond
}

func (t *table[T, R]) orderBy(q core.ListQuery) []string {
	clauses := make([]string, 0, len(q.Ordering)+1)
	for _, ord := range q.Ordering {
		clauses = append(clauses, core.DBOrdering{Field: t.schema.Column(ord.Field), Ascending: ord.Ascending}.String())
	}
	return append(clauses, "id ASC")
}

func (t *table[T, R]) fromRows(rows []R) []T {
	items := make([]T, 0, len(rows))
	for _, r := range rows {
		items = append(items, t.fromRow(r))
	}
	return items
}

// List runs a cleaned ListQuery.
func (t *table[T, R]) List(ctx context.Context, q core.ListQuery) (core.Page[T], error) {
	cond := t.where(q)

	var total int
	query, args, err := psql.Select("COUNT(*)").From(t.schema.Table).Where(cond).ToSql()
	if err != nil {
		return core.Page[T]{}, errors.Wrap(err, "building count query")
	}
	if err = t.db.GetContext(ctx, &total, query, args...); err != nil {
		return core.Page[T]{}, t.trapErr(err, "counting "+t.schema.Table)
	}

	query, args, err = psql.Select("*").
		From(t.schema.Table).
		Where(cond).
		OrderBy(t.orderBy(q)...).
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return core.Page[T]{}, errors.Wrap(err, "building list query")
	}
	var rows []R
	if err = t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return core.Page[T]{}, t.trapErr(err, "listing "+t.schema.Table)
	}
	return core.Page[T]{Items: t.fromRows(rows), Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// selectWhere returns every row matching pred, in the given order.
func (t *table[T, R]) selectWhere(ctx context.Context, pred interface{}, orderBy ...string) ([]T, error) {
	query, args, err := psql.Select("*").From(t.schema.Table).Where(pred).OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}
	var rows []R
	if err = t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, t.trapErr(err, "selecting "+t.schema.Table)
	}
	return t.fromRows(rows), nil
}

// getWhere returns the first row matching pred, or notFound.
func (t *table[T, R]) getWhere(ctx context.Context, pred interface{}) (T, error) {
	var zero T
	query, args, err := psql.Select("*").From(t.schema.Table).Where(pred).OrderBy("id ASC").Limit(1).ToSql()
	if err != nil {
		return zero, errors.Wrap(err, "building get query")
	}
	var r R
	if err = t.db.GetContext(ctx, &r, query, args...); err != nil {
		return zero, t.trapErr(err, "getting "+t.resource)
	}
	return t.fromRow(r), nil
}

func (t *table[T, R]) Get(ctx context.Context, id int64) (T, error) {
	return t.getWhere(ctx, sq.Eq{"id": id})
}

func (t *table[T, R]) Create(ctx context.Context, obj T) (T, error) {
	var zero T
	query, args, err := psql.Insert(t.schema.Table).
		SetMap(t.values(t.toRow(obj), "id")).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return zero, errors.Wrap(err, "building insert query")
	}
	var r R
	if err = t.db.QueryRowxContext(ctx, query, args...).StructScan(&r); err != nil {
		return zero, t.trapErr(err, "inserting "+t.resource)
	}
	return t.fromRow(r), nil
}

// Update saves every column of obj but `id` & `created_at`.
func (t *table[T, R]) Update(ctx context.Context, obj T) (T, error) {
	var zero T
	query, args, err := psql.Update(t.schema.Table).
		SetMap(t.values(t.toRow(obj), "id", "created_at")).
		Where(sq.Eq{"id": t.id(obj)}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return zero, errors.Wrap(err, "building update query")
	}
	var r R
	if err = t.db.QueryRowxContext(ctx, query, args...).StructScan(&r); err != nil {
		return zero, t.trapErr(err, "updating "+t.resource)
	}
	return t.fromRow(r), nil
}

func (t *table[T, R]) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Delete(t.schema.Table).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = t.db.ExecContext(ctx, query, args...); err != nil {
		return t.trapErr(err, "deleting "+t.schema.Table)
	}
	return nil
}

func dateToTime(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func nullDate(d *civil.Date) null.Time {
	if d == nil {
		return null.Time{}
	}
	return null.TimeFrom(d.In(time.UTC))
}

func datePtr(t null.Time) *civil.Date {
	if !t.Valid {
		return nil
	}
	d := civil.DateOf(t.Time)
	return &d
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func nullInt64(i *int64) null.Int64 {
	return null.Int64FromPtr(i)
}

func nullTime(t time.Time) null.Time {
	return null.NewTime(t.UTC(), !t.IsZero())
}
