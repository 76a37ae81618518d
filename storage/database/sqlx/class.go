package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/class"
)

type classRow struct {
	ID         int64       `db:"id"`
	SchoolID   int64       `db:"school_id"`
	TeacherID  null.Int64  `db:"teacher_id"`
	Name       string      `db:"name"`
	Grade      string      `db:"grade"`
	Shift      string      `db:"shift"`
	Capacity   int         `db:"capacity"`
	SchoolYear int         `db:"school_year"`
	Room       null.String `db:"room"`
	IsActive   bool        `db:"is_active"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

type classRepository struct {
	*table[class.Class, classRow]
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{&table[class.Class, classRow]{
		db:       db,
		schema:   class.Schema,
		resource: "class",
		notFound: class.ErrNotFound,
		id:       func(c class.Class) int64 { return c.ID },
		toRow: func(c class.Class) classRow {
			return classRow{
				ID:         c.ID,
				SchoolID:   c.SchoolID,
				TeacherID:  nullInt64(c.TeacherID),
				Name:       c.Name,
				Grade:      c.Grade,
				Shift:      c.Shift,
				Capacity:   c.Capacity,
				SchoolYear: c.SchoolYear,
				Room:       nullString(c.Room),
				IsActive:   c.IsActive,
				CreatedAt:  c.CreatedAt.UTC(),
				UpdatedAt:  c.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r classRow) class.Class {
			return class.Class{
				ID:         r.ID,
				SchoolID:   r.SchoolID,
				TeacherID:  r.TeacherID.Ptr(),
				Name:       r.Name,
				Grade:      r.Grade,
				Shift:      r.Shift,
				Capacity:   r.Capacity,
				SchoolYear: r.SchoolYear,
				Room:       r.Room.String,
				IsActive:   r.IsActive,
				CreatedAt:  r.CreatedAt.UTC(),
				UpdatedAt:  r.UpdatedAt.UTC(),
			}
		},
	}}
}
