package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      string
		wantUnique    bool
		wantFK        bool
		wantMissing   bool
		wantConstrain string
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{
			name: "pq unique", err: &pq.Error{Code: "23505", Constraint: "schools_code_key"},
			wantCode: UniqueViolation, wantUnique: true, wantConstrain: "schools_code_key",
		},
		{
			name: "pgx unique (wrapped)", err: pkgerrors.Wrap(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "inserting"),
			wantCode: UniqueViolation, wantUnique: true, wantConstrain: "users_email_key",
		},
		{name: "pq fk", err: &pq.Error{Code: "23503"}, wantCode: ForeignKeyViolation, wantFK: true},
		{name: "pgx fk", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), wantCode: ForeignKeyViolation, wantFK: true},
		{name: "pq undefined table", err: &pq.Error{Code: "42P01"}, wantCode: UndefinedTable, wantMissing: true},
		{name: "pgx invalid catalog", err: &pgconn.PgError{Code: "3D000"}, wantCode: InvalidCatalogName, wantMissing: true},
		{name: "pq connection failure", err: &pq.Error{Code: "08006"}, wantCode: "08006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, Code(tt.err))
			assert.Equal(t, tt.wantUnique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.wantFK, IsForeignKeyViolation(tt.err))
			assert.Equal(t, tt.wantMissing, IsSchemaMissing(tt.err))
			assert.Equal(t, tt.wantConstrain, Constraint(tt.err))
		})
	}
}
