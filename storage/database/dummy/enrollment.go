package dummydb

import (
	"context"
	"sort"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/student"
)

type enrollmentRepository struct {
	*table[enrollment.Enrollment]
	students *table[student.Student]
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{table: db.enrollments, students: db.students}
}

func (repo *enrollmentRepository) ActiveRoster(_ context.Context, classID int64) ([]enrollment.RosterEntry, error) {
	active := repo.find(func(e enrollment.Enrollment) bool {
		return e.ClassID == classID && e.Status == enrollment.StatusActive
	})

	repo.students.RLock()
	defer repo.students.RUnlock()

	roster := make([]enrollment.RosterEntry, 0, len(active))
	for _, e := range active {
		if std, ok := repo.students.rows[e.StudentID]; ok && std.IsActive {
			roster = append(roster, enrollment.RosterEntry{StudentID: std.ID, Name: std.Name, Since: civil.DateOf(e.EnrolledAt)})
		}
	}
	sort.SliceStable(roster, func(i, j int) bool {
		if c := strings.Compare(roster[i].Name, roster[j].Name); c != 0 {
			return c < 0
		}
		return roster[i].StudentID < roster[j].StudentID
	})
	return roster, nil
}
