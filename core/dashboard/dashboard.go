package dashboard

import (
	"context"
	"math"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
)

const upcomingDays = 30

var nowFunc = time.Now // mockable

type Dashboard struct {
	Date              civil.Date       `json:"date"`
	Schools           int              `json:"schools"`
	Students          int              `json:"students"`
	Teachers          int              `json:"teachers"`
	Classes           int              `json:"classes"`
	ActiveEnrollments int              `json:"active_enrollments"`
	Attendance        AttendanceToday  `json:"attendance"`
	UpcomingEvents    []calendar.Event `json:"upcoming_events"`
}

// AttendanceToday aggregates the diary entries saved today, over each class's current roster.
type AttendanceToday struct {
	Entries int     `json:"entries"`
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Rate    float64 `json:"rate"` // in %, 0 without records
}

type Service struct {
	schools     school.Repository
	students    student.Repository
	teachers    teacher.Repository
	classes     class.Repository
	enrollments enrollment.Repository
	diary       diary.Repository
	calendar    *calendar.Service
}

func NewService(
	schools school.Repository,
	students student.Repository,
	teachers teacher.Repository,
	classes class.Repository,
	enrollments enrollment.Repository,
	diaryRepo diary.Repository,
	cal *calendar.Service,
) *Service {
	return &Service{
		schools:     schools,
		students:    students,
		teachers:    teachers,
		classes:     classes,
		enrollments: enrollments,
		diary:       diaryRepo,
		calendar:    cal,
	}
}

func count[T any](ctx context.Context, schema core.Schema[T], filters map[string]string, list func(context.Context, core.ListQuery) (core.Page[T], error)) (int, error) {
	q, err := schema.Clean(core.ListQuery{Filters: filters, PageSize: 1})
	if err != nil {
		return 0, err
	}
	page, err := list(ctx, q)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// Get computes the dashboard of a school, or of every school when schoolID is 0.
func (svc *Service) Get(ctx context.Context, schoolID int64) (Dashboard, error) {
	var err error
	today := civil.DateOf(nowFunc())
	dash := Dashboard{Date: today}

	active := map[string]string{"is_active": "true"}
	if schoolID != 0 {
		if _, err = svc.schools.Get(ctx, schoolID); err != nil {
			return Dashboard{}, err
		}
		active["school_id"] = strconv.FormatInt(schoolID, 10)
		dash.Schools = 1
	} else if dash.Schools, err = count(ctx, school.Schema, active, svc.schools.List); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting schools")
	}

	if dash.Students, err = count(ctx, student.Schema, active, svc.students.List); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting students")
	}
	if dash.Teachers, err = count(ctx, teacher.Schema, active, svc.teachers.List); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting teachers")
	}

	cq, _ := class.Schema.Clean(core.ListQuery{Filters: active})
	classes, err := core.All(ctx, cq, svc.classes.List)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "listing classes")
	}
	dash.Classes = len(classes)
	classIDs := make(map[int64]bool, len(classes))
	for _, c := range classes {
		classIDs[c.ID] = true
	}

	eq, _ := enrollment.Schema.Clean(core.ListQuery{Filters: map[string]string{"status": enrollment.StatusActive}})
	enrollments, err := core.All(ctx, eq, svc.enrollments.List)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "listing enrollments")
	}
	for _, e := range enrollments {
		if classIDs[e.ClassID] {
			dash.ActiveEnrollments++
		}
	}

	dq, _ := diary.Schema.Clean(core.ListQuery{Filters: map[string]string{"date": today.String()}})
	entries, err := core.All(ctx, dq, svc.diary.List)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "listing diary entries")
	}
	for i, e := range entries {
		if !classIDs[e.ClassID] {
			continue
		}
		roster, err := svc.enrollments.ActiveRoster(ctx, e.ClassID)
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "fetching roster")
		}
		dash.Attendance.Entries++
		for _, rec := range diary.Reconcile(roster, &entries[i]) {
			if rec.Present {
				dash.Attendance.Present++
			} else {
				dash.Attendance.Absent++
			}
		}
	}
	if total := dash.Attendance.Present + dash.Attendance.Absent; total > 0 {
		dash.Attendance.Rate = math.Round(float64(dash.Attendance.Present)*10000/float64(total)) / 100
	}

	if dash.UpcomingEvents, err = svc.calendar.Upcoming(ctx, schoolID, today, upcomingDays); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}
