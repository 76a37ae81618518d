package sqlxrepos

import (
	"database/sql"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/teacher"
)

func newTestDB() *sqlx.DB {
	return sqlx.NewDb(nil, "postgres")
}

func TestFieldFromConstraint(t *testing.T) {
	assert.Equal(t, "school_id", fkField("students", "students_school_id_fkey"))
	assert.Equal(t, "teacher_id", fkField("classes", "classes_teacher_id_fkey"))
	assert.Equal(t, "capacity", checkField("classes", "classes_capacity_check"))
	assert.Equal(t, "end_date", checkField("periods", "periods_end_date_check"))
}

func TestTrapErr(t *testing.T) {
	repo := NewSchoolRepository(newTestDB()).(*schoolRepository)

	assert.Nil(t, repo.trapErr(nil, "noop"))
	assert.Equal(t, school.ErrNotFound, repo.trapErr(sql.ErrNoRows, "getting school"))
	assert.ErrorContains(t, repo.trapErr(assert.AnError, "getting school"), "getting school")
	assert.True(t, core.IsShutdown(repo.trapErr(&pq.Error{Code: "42P01"}, "listing schools")))
}

func TestValues(t *testing.T) {
	repo := NewSchoolRepository(newTestDB()).(*schoolRepository)
	now := time.Now().UTC()

	vals := repo.values(repo.toRow(school.School{ID: 3, Name: "Central", Code: "central", IsActive: true, CreatedAt: now}), "id", "created_at")
	assert.NotContains(t, vals, "id")
	assert.NotContains(t, vals, "created_at")
	assert.Equal(t, "Central", vals["name"])
	assert.Equal(t, true, vals["is_active"])
	assert.Contains(t, vals, "city")
	for col := range vals {
		assert.NotContains(t, col, ".")
	}
}

func TestListQuery(t *testing.T) {
	repo := NewSchoolRepository(newTestDB()).(*schoolRepository)
	q, err := school.Schema.Clean(core.ListQuery{
		Search:   "north",
		Filters:  map[string]string{"city": "Recife"},
		Ordering: []core.DBOrdering{{Field: "name", Ascending: false}},
	})
	require.NoError(t, err)

	query, args, err := psql.Select("*").From("schools").Where(repo.where(q)).OrderBy(repo.orderBy(q)...).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "COALESCE(city::text, '') = $1")
	assert.Contains(t, query, "name::text ILIKE $2")
	assert.Contains(t, query, "ORDER BY name DESC, id ASC")
	assert.Equal(t, "Recife", args[0])
	assert.Equal(t, "%north%", args[1])
}

func TestTeacherRowRoundTrip(t *testing.T) {
	birth := civil.Date{Year: 1985, Month: time.March, Day: 9}
	tchr := teacher.Teacher{
		ID:        7,
		SchoolID:  1,
		UserID:    core.Int64Ptr(4),
		Name:      "Ana Lima",
		Email:     "ana@school.test",
		BirthDate: &birth,
		Subjects:  []string{"math"},
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	got := fromTeacherRow(toTeacherRow(tchr))
	assert.Equal(t, tchr, got)

	tchr.UserID = nil
	tchr.BirthDate = nil
	tchr.Subjects = nil
	got = fromTeacherRow(toTeacherRow(tchr))
	assert.Nil(t, got.UserID)
	assert.Nil(t, got.BirthDate)
	assert.Equal(t, []string{}, got.Subjects)
}

func TestDiaryRowRoundTrip(t *testing.T) {
	e := diary.Entry{
		ID:         2,
		ClassID:    1,
		Date:       civil.Date{Year: 2024, Month: time.May, Day: 6},
		Subject:    "Math",
		Attendance: []diary.AttendanceRecord{{StudentID: 1, Present: true}, {StudentID: 2}},
		CreatedAt:  time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC),
	}
	row := toDiaryRow(e)
	assert.JSONEq(t, `[{"student_id":1,"present":true},{"student_id":2,"present":false}]`, string(row.Attendance))
	assert.Equal(t, e, fromDiaryRow(row))

	e.Attendance = nil
	row = toDiaryRow(e)
	assert.Equal(t, "[]", string(row.Attendance))
	assert.Equal(t, []diary.AttendanceRecord{}, fromDiaryRow(row).Attendance)
}
