package diary

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
)

type entryKey struct {
	classID int64
	date    civil.Date
}

type repoMock struct {
	entries   map[entryKey]Entry
	lastID    int64
	upsertErr error
	findErr   error
}

func newRepoMock() *repoMock { return &repoMock{entries: make(map[entryKey]Entry)} }

func (r *repoMock) List(_ context.Context, q core.ListQuery) (core.Page[Entry], error) {
	items := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		items = append(items, e)
	}
	return Schema.Apply(items, q, func(e Entry) int64 { return e.ID }), nil
}

func (r *repoMock) Find(_ context.Context, classID int64, date civil.Date) (Entry, error) {
	if r.findErr != nil {
		return Entry{}, r.findErr
	}
	if e, ok := r.entries[entryKey{classID, date}]; ok {
		return e, nil
	}
	return Entry{}, ErrNotFound
}

func (r *repoMock) Upsert(_ context.Context, e Entry) (int64, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	key := entryKey{e.ClassID, e.Date}
	if old, ok := r.entries[key]; ok {
		e.ID = old.ID
		e.CreatedAt = old.CreatedAt
	} else {
		r.lastID++
		e.ID = r.lastID
	}
	r.entries[key] = e
	return e.ID, nil
}

func (r *repoMock) Delete(_ context.Context, classID int64, date civil.Date) error {
	key := entryKey{classID, date}
	if _, ok := r.entries[key]; !ok {
		return ErrNotFound
	}
	delete(r.entries, key)
	return nil
}

func (r *repoMock) Range(_ context.Context, classID int64, from, to civil.Date) ([]Entry, error) {
	var out []Entry
	for d := from; !d.After(to); d = d.AddDays(1) {
		if e, ok := r.entries[entryKey{classID, d}]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type rosterMock struct {
	roster []enrollment.RosterEntry
	err    error
}

func (r *rosterMock) ActiveRoster(_ context.Context, classID int64) ([]enrollment.RosterEntry, error) {
	if r.err != nil {
		return nil, r.err
	}
	if classID != 1 {
		return nil, class.ErrNotFound
	}
	return r.roster, nil
}

type classesMock struct{}

func (classesMock) Get(_ context.Context, id int64) (class.Class, error) {
	if id != 1 {
		return class.Class{}, class.ErrNotFound
	}
	return class.Class{ID: 1, IsActive: true}, nil
}

func newService(repo Repository, roster RosterProvider) *Service {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return NewService(repo, roster, classesMock{}, validate)
}

var day = civil.Date{Year: 2024, Month: 3, Day: 4}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	repo := newRepoMock()
	svc := newService(repo, &rosterMock{roster: roster(1, 2, 3)})

	t.Run("nothing saved", func(t *testing.T) {
		view, err := svc.Load(ctx, 1, day)
		require.NoError(t, err)
		assert.False(t, view.Saved)
		assert.Equal(t, []StudentAttendance{{1, "A", true}, {2, "B", true}, {3, "C", true}}, view.Attendance)
	})

	t.Run("saved", func(t *testing.T) {
		repo.entries[entryKey{1, day}] = Entry{
			ID: 7, ClassID: 1, Date: day, Subject: "Maths",
			Attendance: []AttendanceRecord{{StudentID: 1, Present: false}},
		}
		view, err := svc.Load(ctx, 1, day)
		require.NoError(t, err)
		assert.True(t, view.Saved)
		assert.Equal(t, int64(7), view.ID)
		assert.Equal(t, "Maths", view.Subject)
		assert.Equal(t, []StudentAttendance{{1, "A", false}, {2, "B", true}, {3, "C", true}}, view.Attendance)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := svc.Load(ctx, 2, day)
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("entry lookup failure", func(t *testing.T) {
		repo.findErr = errors.New("connection reset")
		defer func() { repo.findErr = nil }()
		_, err := svc.Load(ctx, 1, day)
		assert.Error(t, err)
		assert.False(t, core.IsNotFound(err))
	})
}

func TestService_Load_rosterFailure(t *testing.T) {
	repo := newRepoMock()
	repo.entries[entryKey{1, day}] = Entry{ID: 1, ClassID: 1, Date: day}
	svc := newService(repo, &rosterMock{err: errors.New("connection refused")})

	view, err := svc.Load(context.Background(), 1, day)
	var rfErr *RosterFetchError
	require.ErrorAs(t, err, &rfErr)
	assert.Equal(t, int64(1), rfErr.ClassID)
	assert.Nil(t, view.Attendance)
}

func TestService_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepoMock()
	provider := &rosterMock{roster: roster(1, 2, 3)}
	svc := newService(repo, provider)

	view, err := svc.Load(ctx, 1, day)
	require.NoError(t, err)
	view.Attendance[1].Present = false

	records := make([]AttendanceRecord, 0, len(view.Attendance))
	for _, a := range view.Attendance {
		records = append(records, AttendanceRecord{StudentID: a.StudentID, Present: a.Present})
	}
	saved, err := svc.Save(ctx, 1, day, SaveEntry{Subject: " Science ", Attendance: records})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Science", saved.Subject)

	reloaded, err := svc.Load(ctx, 1, day)
	require.NoError(t, err)
	assert.True(t, reloaded.Saved)
	assert.Equal(t, saved.ID, reloaded.ID)
	assert.Equal(t, view.Attendance, reloaded.Attendance)

	// saving again replaces the entry (same id & creation time)
	again, err := svc.Save(ctx, 1, day, SaveEntry{Attendance: []AttendanceRecord{{StudentID: 3, Present: false}}})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)

	// a student leaving the class disappears from the sheet, the others keep their flags
	provider.roster = provider.roster[1:]
	reloaded, err = svc.Load(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, []StudentAttendance{{2, "B", true}, {3, "C", false}}, reloaded.Attendance)
	assert.Len(t, repo.entries[entryKey{1, day}].Attendance, 1)
}

func TestService_Save_invalid(t *testing.T) {
	ctx := context.Background()
	svc := newService(newRepoMock(), &rosterMock{roster: roster(1, 2)})

	tests := []struct {
		name string
		data SaveEntry
	}{
		{name: "duplicate student", data: SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1}, {StudentID: 1, Present: true}}}},
		{name: "student not on the roster", data: SaveEntry{Attendance: []AttendanceRecord{{StudentID: 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, 1, day, tt.data)
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "attendance", vErr.Fields[0].Field)
		})
	}

	t.Run("every offending student is listed", func(t *testing.T) {
		_, err := svc.Save(ctx, 1, day, SaveEntry{Attendance: []AttendanceRecord{
			{StudentID: 1}, {StudentID: 3}, {StudentID: 1}, {StudentID: 4}, {StudentID: 2}, {StudentID: 2}, {StudentID: 1},
		}})
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []core.FieldError{{
			Field: "attendance",
			Error: "students 1, 2 are listed more than once; students 3, 4 are not enrolled in this class",
		}}, vErr.Fields)
	})

	t.Run("missing student id", func(t *testing.T) {
		_, err := svc.Save(ctx, 1, day, SaveEntry{Attendance: []AttendanceRecord{{Present: true}}})
		var vErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &vErrs)
	})
}

func TestService_Save_persistenceFailure(t *testing.T) {
	repo := newRepoMock()
	repo.upsertErr = errors.New("unique violation")
	svc := newService(repo, &rosterMock{roster: roster(1)})

	data := SaveEntry{Subject: "History", Homework: "p. 12", Attendance: []AttendanceRecord{{StudentID: 1, Present: false}}}
	_, err := svc.Save(context.Background(), 1, day, data)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "History", pErr.Entry.Subject)
	assert.Equal(t, "p. 12", pErr.Entry.Homework)
	assert.Equal(t, data.Attendance, pErr.Entry.Attendance)
	assert.Equal(t, day, pErr.Entry.Date)
}

func TestService_Save_rosterFailure(t *testing.T) {
	repo := newRepoMock()
	svc := newService(repo, &rosterMock{err: errors.New("timeout")})

	_, err := svc.Save(context.Background(), 1, day, SaveEntry{})
	var rfErr *RosterFetchError
	assert.ErrorAs(t, err, &rfErr)
	assert.Empty(t, repo.entries)
}

func TestService_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := newRepoMock()
	svc := newService(repo, &rosterMock{roster: roster(1)})

	for i := 0; i < 3; i++ {
		_, err := svc.Save(ctx, 1, day.AddDays(i), SaveEntry{Subject: "Day"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, core.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, day.AddDays(2), page.Items[0].Date) // newest first

	require.NoError(t, svc.Delete(ctx, 1, day))
	assert.True(t, core.IsNotFound(svc.Delete(ctx, 1, day)))
	assert.True(t, core.IsNotFound(svc.Delete(ctx, 2, day)))

	_, err = svc.List(ctx, 2, core.ListQuery{})
	assert.True(t, core.IsNotFound(err))
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	repo := newRepoMock()
	svc := newService(repo, &rosterMock{roster: roster(1, 2)})

	_, err := svc.Save(ctx, 1, day, SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: false}}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, day.AddDays(1), SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: true}, {StudentID: 2, Present: false}}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, day.AddDays(10), SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: false}}})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, 1, day, day.AddDays(6))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Days)
	assert.Equal(t, []StudentSummary{
		{StudentID: 1, Name: "A", Present: 1, Absent: 1, Rate: 50},
		{StudentID: 2, Name: "B", Present: 1, Absent: 1, Rate: 50},
	}, sum.Students)

	_, err = svc.Summary(ctx, 1, day, day.AddDays(-1))
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestService_Summary_lateEnrollment(t *testing.T) {
	ctx := context.Background()
	repo := newRepoMock()
	provider := &rosterMock{roster: roster(1)}
	svc := newService(repo, provider)

	for i := 0; i < 5; i++ {
		_, err := svc.Save(ctx, 1, day.AddDays(i), SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: false}}})
		require.NoError(t, err)
	}

	// B joins the class on the 6th day
	provider.roster = append(provider.roster, enrollment.RosterEntry{StudentID: 2, Name: "B", Since: day.AddDays(5)})
	_, err := svc.Save(ctx, 1, day.AddDays(5), SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: false}}})
	require.NoError(t, err)
	// a day recorded before the enrollment still counts
	_, err = svc.Save(ctx, 1, day.AddDays(3), SaveEntry{Attendance: []AttendanceRecord{{StudentID: 1, Present: false}, {StudentID: 2, Present: false}}})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, 1, day, day.AddDays(6))
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Days)
	assert.Equal(t, []StudentSummary{
		{StudentID: 1, Name: "A", Absent: 6},
		{StudentID: 2, Name: "B", Present: 1, Absent: 1, Rate: 50},
	}, sum.Students)
}
