package diary

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
)

var ErrNotFound = core.NewNotFoundError("diary entry")

// AttendanceRecord is the stored presence flag of one student, scoped to its Entry.
type AttendanceRecord struct {
	StudentID int64 `json:"student_id" validate:"required"`
	Present   bool  `json:"present"`
}

// Entry is the diary of a class for one day. There is at most one Entry per (ClassID, Date).
type Entry struct {
	ID           int64              `json:"id"`
	ClassID      int64              `json:"class_id"`
	Date         civil.Date         `json:"date"`
	Subject      string             `json:"subject"`
	Content      string             `json:"content"`
	Activities   string             `json:"activities"`
	Homework     string             `json:"homework"`
	Observations string             `json:"observations"`
	Attendance   []AttendanceRecord `json:"attendance"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// StudentAttendance is one line of the attendance sheet shown for a class & day.
type StudentAttendance struct {
	StudentID int64  `json:"student_id"`
	Name      string `json:"name"`
	Present   bool   `json:"present"`
}

// View is the diary of a class for one day, as shown to teachers.
// Saved is false when nothing was stored yet: the sheet then defaults everyone to present.
type View struct {
	ID           int64               `json:"id,omitempty"`
	ClassID      int64               `json:"class_id"`
	Date         civil.Date          `json:"date"`
	Saved        bool                `json:"saved"`
	Subject      string              `json:"subject"`
	Content      string              `json:"content"`
	Activities   string              `json:"activities"`
	Homework     string              `json:"homework"`
	Observations string              `json:"observations"`
	Attendance   []StudentAttendance `json:"attendance"`
}

var Schema = core.Schema[Entry]{
	Table: "diary_entries",
	Fields: []core.Field[Entry]{
		{Name: "id", Column: "id", Value: func(e Entry) any { return e.ID }, Sort: true},
		{Name: "class_id", Column: "class_id", Value: func(e Entry) any { return e.ClassID }, Filter: true},
		{Name: "date", Column: "date", Value: func(e Entry) any { return e.Date }, Filter: true, Sort: true},
		{Name: "subject", Column: "subject", Value: func(e Entry) any { return e.Subject }, Search: true, Filter: true, Sort: true},
		{Name: "content", Column: "content", Value: func(e Entry) any { return e.Content }, Search: true},
		{Name: "homework", Column: "homework", Value: func(e Entry) any { return e.Homework }, Search: true},
		{Name: "updated_at", Column: "updated_at", Value: func(e Entry) any { return e.UpdatedAt }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "date", Ascending: false}},
}

// SaveEntry is the submitted diary of a class for one day. Attendance replaces the stored one.
type SaveEntry struct {
	Subject      string             `json:"subject" validate:"max=255"`
	Content      string             `json:"content"`
	Activities   string             `json:"activities"`
	Homework     string             `json:"homework"`
	Observations string             `json:"observations"`
	Attendance   []AttendanceRecord `json:"attendance" validate:"dive"`
}

func (se *SaveEntry) clean() {
	se.Subject = core.CleanString(se.Subject)
	se.Content = core.CleanString(se.Content)
	se.Activities = core.CleanString(se.Activities)
	se.Homework = core.CleanString(se.Homework)
	se.Observations = core.CleanString(se.Observations)
	if se.Attendance == nil {
		se.Attendance = []AttendanceRecord{}
	}
}

type (
	Repository interface {
		List(ctx context.Context, q core.ListQuery) (core.Page[Entry], error)
		// Find returns ErrNotFound when nothing was saved for the class & date.
		Find(ctx context.Context, classID int64, date civil.Date) (Entry, error)
		// Upsert inserts or fully replaces the entry of (ClassID, Date) and returns its ID.
		Upsert(ctx context.Context, e Entry) (int64, error)
		Delete(ctx context.Context, classID int64, date civil.Date) error
		// Range returns the entries of a class between from & to (inclusive), oldest first.
		Range(ctx context.Context, classID int64, from, to civil.Date) ([]Entry, error)
	}

	RosterProvider interface {
		ActiveRoster(ctx context.Context, classID int64) ([]enrollment.RosterEntry, error)
	}

	ClassFinder interface {
		Get(ctx context.Context, id int64) (class.Class, error)
	}

	Service struct {
		repo     Repository
		roster   RosterProvider
		classes  ClassFinder
		validate *validator.Validate
	}
)

func NewService(repo Repository, roster RosterProvider, classes ClassFinder, validate *validator.Validate) *Service {
	return &Service{repo: repo, roster: roster, classes: classes, validate: validate}
}

func (svc *Service) fetchRoster(ctx context.Context, classID int64) ([]enrollment.RosterEntry, error) {
	roster, err := svc.roster.ActiveRoster(ctx, classID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, err
		}
		return nil, &RosterFetchError{ClassID: classID, Err: err}
	}
	return roster, nil
}

// Load returns the attendance sheet & lesson content of a class for a day.
func (svc *Service) Load(ctx context.Context, classID int64, date civil.Date) (View, error) {
	roster, err := svc.fetchRoster(ctx, classID)
	if err != nil {
		return View{}, err
	}

	view := View{ClassID: classID, Date: date}
	var persisted *Entry
	entry, err := svc.repo.Find(ctx, classID, date)
	switch {
	case err == nil:
		persisted = &entry
		view.ID = entry.ID
		view.Saved = true
		view.Subject = entry.Subject
		view.Content = entry.Content
		view.Activities = entry.Activities
		view.Homework = entry.Homework
		view.Observations = entry.Observations
	case !core.IsNotFound(err):
		return View{}, errors.Wrap(err, "finding diary entry")
	}

	view.Attendance = Reconcile(roster, persisted)
	return view, nil
}

// Save upserts the diary of a class for a day. Attendance may only reference students on the roster.
func (svc *Service) Save(ctx context.Context, classID int64, date civil.Date, data SaveEntry) (Entry, error) {
	data.clean()
	if err := svc.validate.Struct(data); err != nil {
		return Entry{}, err
	}

	roster, err := svc.fetchRoster(ctx, classID)
	if err != nil {
		return Entry{}, err
	}
	if err = checkAttendance(roster, data.Attendance); err != nil {
		return Entry{}, err
	}

	now := time.Now().UTC()
	entry := Entry{
		ClassID:      classID,
		Date:         date,
		Subject:      data.Subject,
		Content:      data.Content,
		Activities:   data.Activities,
		Homework:     data.Homework,
		Observations: data.Observations,
		Attendance:   data.Attendance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = svc.repo.Upsert(ctx, entry); err != nil {
		return Entry{}, &PersistenceError{Entry: entry, Err: err}
	}
	// an update keeps the stored created_at
	saved, err := svc.repo.Find(ctx, classID, date)
	if err != nil {
		return Entry{}, errors.Wrap(err, "reloading diary entry")
	}
	return saved, nil
}

func checkAttendance(roster []enrollment.RosterEntry, records []AttendanceRecord) error {
	enrolled := make(map[int64]bool, len(roster))
	for _, std := range roster {
		enrolled[std.StudentID] = true
	}

	var twice, unknown []int64
	seen := make(map[int64]int, len(records))
	for _, rec := range records {
		seen[rec.StudentID]++
		switch {
		case seen[rec.StudentID] == 2:
			twice = append(twice, rec.StudentID)
		case seen[rec.StudentID] == 1 && !enrolled[rec.StudentID]:
			unknown = append(unknown, rec.StudentID)
		}
	}

	var msgs []string
	if len(twice) > 0 {
		msgs = append(msgs, studentsMsg(twice, "is listed more than once", "are listed more than once"))
	}
	if len(unknown) > 0 {
		msgs = append(msgs, studentsMsg(unknown, "is not enrolled in this class", "are not enrolled in this class"))
	}
	if msgs == nil {
		return nil
	}
	return core.NewValidationError(nil, core.FieldError{Field: "attendance", Error: strings.Join(msgs, "; ")})
}

// studentsMsg formats eg. "student 3 is ..." or "students 3, 5 are ...".
func studentsMsg(ids []int64, one, many string) string {
	if len(ids) == 1 {
		return fmt.Sprintf("student %d %s", ids[0], one)
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("students %s %s", strings.Join(strs, ", "), many)
}

func (svc *Service) requireClass(ctx context.Context, classID int64) error {
	_, err := svc.classes.Get(ctx, classID)
	return err
}

// List returns the saved diary entries of a class.
func (svc *Service) List(ctx context.Context, classID int64, q core.ListQuery) (core.Page[Entry], error) {
	if err := svc.requireClass(ctx, classID); err != nil {
		return core.Page[Entry]{}, err
	}
	q, err := Schema.Clean(q.Where("class_id", strconv.FormatInt(classID, 10)))
	if err != nil {
		return core.Page[Entry]{}, err
	}
	return svc.repo.List(ctx, q)
}

func (svc *Service) Delete(ctx context.Context, classID int64, date civil.Date) error {
	if err := svc.requireClass(ctx, classID); err != nil {
		return err
	}
	return svc.repo.Delete(ctx, classID, date)
}
