// Package pgerr classifies the errors of the lib/pq and pgx Postgres drivers.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
	UndefinedTable      = "42P01"
	InvalidCatalogName  = "3D000"
)

// Code returns the SQLSTATE of err, or "" when err does not come from Postgres.
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Constraint returns the name of the constraint violated by err, if any.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func IsUniqueViolation(err error) bool     { return Code(err) == UniqueViolation }
func IsForeignKeyViolation(err error) bool { return Code(err) == ForeignKeyViolation }
func IsCheckViolation(err error) bool      { return Code(err) == CheckViolation }

// IsSchemaMissing reports whether err means the database or its tables do not exist yet.
func IsSchemaMissing(err error) bool {
	switch Code(err) {
	case UndefinedTable, InvalidCatalogName:
		return true
	}
	return false
}
