package dummydb

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/user"
)

func TestTableUniqueKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewSchoolRepository(Open())

	first, err := repo.Create(ctx, school.School{Name: "North", Code: "north"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = repo.Create(ctx, school.School{Name: "North bis", Code: "north"})
	assert.True(t, core.IsConflict(err))

	second, err := repo.Create(ctx, school.School{Name: "South", Code: "south"})
	require.NoError(t, err)

	second.Code = "north"
	_, err = repo.Update(ctx, second)
	assert.True(t, core.IsConflict(err))

	first.Name = "North (renamed)"
	updated, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "North (renamed)", updated.Name)

	_, err = repo.Update(ctx, school.School{ID: 42, Code: "x"})
	assert.True(t, core.IsNotFound(err))
	_, err = repo.Get(ctx, 42)
	assert.Equal(t, school.ErrNotFound, err)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(Open())

	jane, err := repo.Create(ctx, user.User{Name: "Jane", Username: "jane", Email: "jane@diario.local"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.User{Name: "No username", Email: "nouser@diario.local"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.User{Name: "No username either", Email: "nouser2@diario.local"})
	require.NoError(t, err, "empty usernames are not unique keys")

	tests := []struct {
		name     string
		username string
		email    string
		excluded []user.User
		wantErr  error
	}{
		{"free", "john", "john@diario.local", nil, nil},
		{"username taken", "jane", "other@diario.local", nil, user.ErrUsernameExists},
		{"email taken", "john", "jane@diario.local", nil, user.ErrEmailExists},
		{"excluded owner", "jane", "jane@diario.local", []user.User{jane}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, repo.CheckUniqueness(ctx, tc.username, tc.email, tc.excluded...))
		})
	}

	got, err := repo.GetByUsernameOrEmail(ctx, "jane@diario.local")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, got.ID)
	_, err = repo.GetByUsername(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestActiveRoster(t *testing.T) {
	ctx := context.Background()
	db := Open()
	students := NewStudentRepository(db)
	enrollments := NewEnrollmentRepository(db)

	add := func(name string, active bool, status string, classID int64) {
		std, err := students.Create(ctx, student.Student{Name: name, RegistrationNumber: name, IsActive: active})
		require.NoError(t, err)
		_, err = enrollments.Create(ctx, enrollment.Enrollment{
			StudentID: std.ID, ClassID: classID, SchoolYear: 2024, Status: status,
			EnrolledAt: time.Date(2024, time.February, 5, 9, 30, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	add("Carla", true, enrollment.StatusActive, 1)
	add("Bruno", true, enrollment.StatusActive, 1)
	add("Ana", false, enrollment.StatusActive, 1)
	add("Davi", true, enrollment.StatusTransferred, 1)
	add("Eva", true, enrollment.StatusActive, 2)

	roster, err := enrollments.ActiveRoster(ctx, 1)
	require.NoError(t, err)
	since := civil.Date{Year: 2024, Month: time.February, Day: 5}
	assert.Equal(t, []enrollment.RosterEntry{
		{StudentID: 2, Name: "Bruno", Since: since},
		{StudentID: 1, Name: "Carla", Since: since},
	}, roster)

	roster, err = enrollments.ActiveRoster(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestDiaryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDiaryRepository(Open())
	may6 := civil.Date{Year: 2024, Month: time.May, Day: 6}
	created := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	records := []diary.AttendanceRecord{{StudentID: 1, Present: false}}
	id, err := repo.Upsert(ctx, diary.Entry{ClassID: 1, Date: may6, Subject: "Math", Attendance: records, CreatedAt: created})
	require.NoError(t, err)
	records[0].Present = true // caller's slice is detached from the stored one

	again, err := repo.Upsert(ctx, diary.Entry{ClassID: 1, Date: may6, Subject: "History", CreatedAt: created.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	e, err := repo.Find(ctx, 1, may6)
	require.NoError(t, err)
	assert.Equal(t, "History", e.Subject)
	assert.Equal(t, created, e.CreatedAt)
	assert.Empty(t, e.Attendance)

	_, err = repo.Upsert(ctx, diary.Entry{ClassID: 1, Date: may6.AddDays(-3)})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, diary.Entry{ClassID: 2, Date: may6})
	require.NoError(t, err)

	entries, err := repo.Range(ctx, 1, may6.AddDays(-7), may6)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Date.Before(entries[1].Date))

	require.NoError(t, repo.Delete(ctx, 1, may6))
	_, err = repo.Find(ctx, 1, may6)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(repo.Delete(ctx, 1, may6)))
}
