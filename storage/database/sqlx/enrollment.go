package sqlxrepos

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core/enrollment"
)

type enrollmentRow struct {
	ID         int64     `db:"id"`
	StudentID  int64     `db:"student_id"`
	ClassID    int64     `db:"class_id"`
	SchoolYear int       `db:"school_year"`
	Status     string    `db:"status"`
	EnrolledAt time.Time `db:"enrolled_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type enrollmentRepository struct {
	*table[enrollment.Enrollment, enrollmentRow]
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{&table[enrollment.Enrollment, enrollmentRow]{
		db:       db,
		schema:   enrollment.Schema,
		resource: "enrollment",
		notFound: enrollment.ErrNotFound,
		id:       func(e enrollment.Enrollment) int64 { return e.ID },
		toRow: func(e enrollment.Enrollment) enrollmentRow {
			return enrollmentRow{
				ID:         e.ID,
				StudentID:  e.StudentID,
				ClassID:    e.ClassID,
				SchoolYear: e.SchoolYear,
				Status:     e.Status,
				EnrolledAt: e.EnrolledAt.UTC(),
				UpdatedAt:  e.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r enrollmentRow) enrollment.Enrollment {
			return enrollment.Enrollment{
				ID:         r.ID,
				StudentID:  r.StudentID,
				ClassID:    r.ClassID,
				SchoolYear: r.SchoolYear,
				Status:     r.Status,
				EnrolledAt: r.EnrolledAt.UTC(),
				UpdatedAt:  r.UpdatedAt.UTC(),
			}
		},
	}}
}

func (repo *enrollmentRepository) ActiveRoster(ctx context.Context, classID int64) ([]enrollment.RosterEntry, error) {
	query, args, err := psql.Select("s.id AS student_id", "s.name", "e.enrolled_at").
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Where(sq.Eq{
			"e.class_id":  classID,
			"e.status":    enrollment.StatusActive,
			"s.is_active": true,
		}).
		OrderBy("s.name ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building roster query")
	}

	var rows []struct {
		StudentID  int64     `db:"student_id"`
		Name       string    `db:"name"`
		EnrolledAt time.Time `db:"enrolled_at"`
	}
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting class roster")
	}
	roster := make([]enrollment.RosterEntry, 0, len(rows))
	for _, r := range rows {
		roster = append(roster, enrollment.RosterEntry{StudentID: r.StudentID, Name: r.Name, Since: civil.DateOf(r.EnrolledAt.UTC())})
	}
	return roster, nil
}
