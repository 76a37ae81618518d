package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/teacher"
)

type teacherRow struct {
	ID             int64          `db:"id"`
	SchoolID       int64          `db:"school_id"`
	UserID         null.Int64     `db:"user_id"`
	Name           string         `db:"name"`
	Document       null.String    `db:"document"`
	BirthDate      null.Time      `db:"birth_date"`
	Gender         null.String    `db:"gender"`
	Email          string         `db:"email"`
	Phone          null.String    `db:"phone"`
	Address        null.String    `db:"address"`
	City           null.String    `db:"city"`
	Degree         null.String    `db:"degree"`
	Specialization null.String    `db:"specialization"`
	Subjects       pq.StringArray `db:"subjects"`
	HireDate       null.Time      `db:"hire_date"`
	WorkloadHours  int            `db:"workload_hours"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type teacherRepository struct {
	*table[teacher.Teacher, teacherRow]
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{&table[teacher.Teacher, teacherRow]{
		db:       db,
		schema:   teacher.Schema,
		resource: "teacher",
		notFound: teacher.ErrNotFound,
		id:       func(t teacher.Teacher) int64 { return t.ID },
		toRow:    toTeacherRow,
		fromRow:  fromTeacherRow,
	}}
}

func toTeacherRow(t teacher.Teacher) teacherRow {
	subjects := t.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return teacherRow{
		ID:             t.ID,
		SchoolID:       t.SchoolID,
		UserID:         nullInt64(t.UserID),
		Name:           t.Name,
		Document:       nullString(t.Document),
		BirthDate:      nullDate(t.BirthDate),
		Gender:         nullString(t.Gender),
		Email:          t.Email,
		Phone:          nullString(t.Phone),
		Address:        nullString(t.Address),
		City:           nullString(t.City),
		Degree:         nullString(t.Degree),
		Specialization: nullString(t.Specialization),
		Subjects:       subjects,
		HireDate:       nullDate(t.HireDate),
		WorkloadHours:  t.WorkloadHours,
		IsActive:       t.IsActive,
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
	}
}

func fromTeacherRow(r teacherRow) teacher.Teacher {
	subjects := []string(r.Subjects)
	if subjects == nil {
		subjects = []string{}
	}
	return teacher.Teacher{
		ID:             r.ID,
		SchoolID:       r.SchoolID,
		UserID:         r.UserID.Ptr(),
		Name:           r.Name,
		Document:       r.Document.String,
		BirthDate:      datePtr(r.BirthDate),
		Gender:         r.Gender.String,
		Email:          r.Email,
		Phone:          r.Phone.String,
		Address:        r.Address.String,
		City:           r.City.String,
		Degree:         r.Degree.String,
		Specialization: r.Specialization.String,
		Subjects:       subjects,
		HireDate:       datePtr(r.HireDate),
		WorkloadHours:  r.WorkloadHours,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}
