package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/school"
)

type schoolRow struct {
	ID        int64       `db:"id"`
	Name      string      `db:"name"`
	Code      string      `db:"code"`
	Address   null.String `db:"address"`
	City      null.String `db:"city"`
	State     null.String `db:"state"`
	Phone     null.String `db:"phone"`
	Email     null.String `db:"email"`
	Principal null.String `db:"principal"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type schoolRepository struct {
	*table[school.School, schoolRow]
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{&table[school.School, schoolRow]{
		db:       db,
		schema:   school.Schema,
		resource: "school",
		notFound: school.ErrNotFound,
		id:       func(s school.School) int64 { return s.ID },
		toRow: func(s school.School) schoolRow {
			return schoolRow{
				ID:        s.ID,
				Name:      s.Name,
				Code:      s.Code,
				Address:   nullString(s.Address),
				City:      nullString(s.City),
				State:     nullString(s.State),
				Phone:     nullString(s.Phone),
				Email:     nullString(s.Email),
				Principal: nullString(s.Principal),
				IsActive:  s.IsActive,
				CreatedAt: s.CreatedAt.UTC(),
				UpdatedAt: s.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r schoolRow) school.School {
			return school.School{
				ID:        r.ID,
				Name:      r.Name,
				Code:      r.Code,
				Address:   r.Address.String,
				City:      r.City.String,
				State:     r.State.String,
				Phone:     r.Phone.String,
				Email:     r.Email.String,
				Principal: r.Principal.String,
				IsActive:  r.IsActive,
				CreatedAt: r.CreatedAt.UTC(),
				UpdatedAt: r.UpdatedAt.UTC(),
			}
		},
	}}
}
