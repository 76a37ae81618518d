// Package dummydb is an in-memory implementation of the repositories, used for demos & tests.
package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
)

type DB struct {
	users       *table[user.User]
	schools     *table[school.School]
	students    *table[student.Student]
	teachers    *table[teacher.Teacher]
	classes     *table[class.Class]
	enrollments *table[enrollment.Enrollment]
	diary       *table[diary.Entry]
	periods     *table[calendar.Period]
	holidays    *table[calendar.Holiday]
	events      *table[calendar.Event]
}

func Open() *DB {
	return &DB{
		users: newTable(user.Schema, "user", user.ErrNotFound,
			func(u user.User) int64 { return u.ID },
			func(u *user.User, id int64) { u.ID = id },
			func(u user.User) string { return u.Username },
			func(u user.User) string { return u.Email },
		),
		schools: newTable(school.Schema, "school", school.ErrNotFound,
			func(s school.School) int64 { return s.ID },
			func(s *school.School, id int64) { s.ID = id },
			func(s school.School) string { return s.Code },
		),
		students: newTable(student.Schema, "student", student.ErrNotFound,
			func(s student.Student) int64 { return s.ID },
			func(s *student.Student, id int64) { s.ID = id },
			func(s student.Student) string { return s.RegistrationNumber },
		),
		teachers: newTable(teacher.Schema, "teacher", teacher.ErrNotFound,
			func(t teacher.Teacher) int64 { return t.ID },
			func(t *teacher.Teacher, id int64) { t.ID = id },
			func(t teacher.Teacher) string { return t.Email },
		),
		classes: newTable(class.Schema, "class", class.ErrNotFound,
			func(c class.Class) int64 { return c.ID },
			func(c *class.Class, id int64) { c.ID = id },
		),
		enrollments: newTable(enrollment.Schema, "enrollment", enrollment.ErrNotFound,
			func(e enrollment.Enrollment) int64 { return e.ID },
			func(e *enrollment.Enrollment, id int64) { e.ID = id },
			func(e enrollment.Enrollment) string {
				return key(e.StudentID, e.ClassID, int64(e.SchoolYear))
			},
		),
		diary: newTable(diary.Schema, "diary entry", diary.ErrNotFound,
			func(e diary.Entry) int64 { return e.ID },
			func(e *diary.Entry, id int64) { e.ID = id },
			func(e diary.Entry) string { return key(e.ClassID) + "/" + e.Date.String() },
		),
		periods: newTable(calendar.PeriodSchema, "period", calendar.ErrPeriodNotFound,
			func(p calendar.Period) int64 { return p.ID },
			func(p *calendar.Period, id int64) { p.ID = id },
		),
		holidays: newTable(calendar.HolidaySchema, "holiday", calendar.ErrHolidayNotFound,
			func(h calendar.Holiday) int64 { return h.ID },
			func(h *calendar.Holiday, id int64) { h.ID = id },
		),
		events: newTable(calendar.EventSchema, "event", calendar.ErrEventNotFound,
			func(e calendar.Event) int64 { return e.ID },
			func(e *calendar.Event, id int64) { e.ID = id },
		),
	}
}

// table is a mutex protected set of rows with an auto-increment ID
// and optional unique keys (an empty key is not constrained, like NULL).
type table[T any] struct {
	sync.RWMutex
	rows     map[int64]T
	lastID   int64
	schema   core.Schema[T]
	resource string
	notFound error
	getID    func(T) int64
	setID    func(*T, int64)
	unique   []func(T) string
}

func newTable[T any](
	schema core.Schema[T],
	resource string,
	notFound error,
	getID func(T) int64,
	setID func(*T, int64),
	unique ...func(T) string,
) *table[T] {
	return &table[T]{
		rows:     make(map[int64]T),
		schema:   schema,
		resource: resource,
		notFound: notFound,
		getID:    getID,
		setID:    setID,
		unique:   unique,
	}
}

// all must be called with the lock held.
func (t *table[T]) all() []T {
	items := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		items = append(items, r)
	}
	return items
}

// checkUnique must be called with the lock held.
func (t *table[T]) checkUnique(obj T) error {
	id := t.getID(obj)
	for _, keyOf := range t.unique {
		k := keyOf(obj)
		if k == "" {
			continue
		}
		for rowID, r := range t.rows {
			if rowID != id && keyOf(r) == k {
				return core.NewConflictError("%s already exists", t.resource)
			}
		}
	}
	return nil
}

func (t *table[T]) List(_ context.Context, q core.ListQuery) (core.Page[T], error) {
	t.RLock()
	defer t.RUnlock()
	return t.schema.Apply(t.all(), q, t.getID), nil
}

func (t *table[T]) Get(_ context.Context, id int64) (T, error) {
	t.RLock()
	defer t.RUnlock()
	if r, ok := t.rows[id]; ok {
		return r, nil
	}
	var zero T
	return zero, t.notFound
}

// find returns the rows matching pred, ordered by ID.
func (t *table[T]) find(pred func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()
	var found []T
	for _, r := range t.all() {
		if pred(r) {
			found = append(found, r)
		}
	}
	sortByID(found, t.getID)
	return found
}

func (t *table[T]) Create(_ context.Context, obj T) (T, error) {
	t.Lock()
	defer t.Unlock()

	t.setID(&obj, 0)
	if err := t.checkUnique(obj); err != nil {
		var zero T
		return zero, err
	}
	t.lastID++
	t.setID(&obj, t.lastID)
	t.rows[t.lastID] = obj
	return obj, nil
}

func (t *table[T]) Update(_ context.Context, obj T) (T, error) {
	t.Lock()
	defer t.Unlock()

	var zero T
	id := t.getID(obj)
	if _, ok := t.rows[id]; !ok {
		return zero, t.notFound
	}
	if err := t.checkUnique(obj); err != nil {
		return zero, err
	}
	t.rows[id] = obj
	return obj, nil
}

func (t *table[T]) Delete(_ context.Context, ids ...int64) error {
	t.Lock()
	defer t.Unlock()
	for _, id := range ids {
		delete(t.rows, id)
	}
	return nil
}
