package calendar

import (
	"context"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/school"
)

type (
	PeriodRepository interface {
		core.Repository[Period]
		core.Deleter
	}

	HolidayRepository interface {
		core.Repository[Holiday]
		core.Deleter
	}

	EventRepository interface {
		core.Repository[Event]
		core.Deleter
	}
)

// Service manages the academic calendar of the schools.
type Service struct {
	periods  PeriodRepository
	holidays HolidayRepository
	events   EventRepository
	schools  school.Repository
	validate *validator.Validate

	Periods  *PeriodService
	Holidays *HolidayService
	Events   *EventService
}

func NewService(
	periods PeriodRepository,
	holidays HolidayRepository,
	events EventRepository,
	schools school.Repository,
	validate *validator.Validate,
) *Service {
	svc := &Service{periods: periods, holidays: holidays, events: events, schools: schools, validate: validate}
	svc.Periods = &PeriodService{svc}
	svc.Holidays = &HolidayService{svc}
	svc.Events = &EventService{svc}
	return svc
}

func schoolFilter(schoolID int64) map[string]string {
	if schoolID == 0 {
		return map[string]string{}
	}
	return map[string]string{"school_id": strconv.FormatInt(schoolID, 10)}
}

// Day returns what happens on `date` for a school (or every school when schoolID is 0).
// A school day is a week day within a period that is not a holiday.
func (svc *Service) Day(ctx context.Context, schoolID int64, date civil.Date) (DayInfo, error) {
	info := DayInfo{Date: date, Holidays: []Holiday{}, Events: []Event{}}
	wd := date.In(time.UTC).Weekday()
	info.Weekend = wd == time.Saturday || wd == time.Sunday

	pq, _ := PeriodSchema.Clean(core.ListQuery{Filters: schoolFilter(schoolID)})
	periods, err := core.All(ctx, pq, svc.periods.List)
	if err != nil {
		return DayInfo{}, errors.Wrap(err, "listing periods")
	}
	for i := range periods {
		if periods[i].Contains(date) {
			info.Period = &periods[i]
			break
		}
	}

	dq := core.ListQuery{Filters: schoolFilter(schoolID)}.Where("date", date.String())
	hq, _ := HolidaySchema.Clean(dq)
	if info.Holidays, err = core.All(ctx, hq, svc.holidays.List); err != nil {
		return DayInfo{}, errors.Wrap(err, "listing holidays")
	}
	eq, _ := EventSchema.Clean(dq)
	if info.Events, err = core.All(ctx, eq, svc.events.List); err != nil {
		return DayInfo{}, errors.Wrap(err, "listing events")
	}
	if info.Holidays == nil {
		info.Holidays = []Holiday{}
	}
	if info.Events == nil {
		info.Events = []Event{}
	}

	info.SchoolDay = info.Period != nil && !info.Weekend && len(info.Holidays) == 0
	return info, nil
}

// Upcoming returns the events between from and from+days (inclusive), soonest first.
func (svc *Service) Upcoming(ctx context.Context, schoolID int64, from civil.Date, days int) ([]Event, error) {
	q, _ := EventSchema.Clean(core.ListQuery{Filters: schoolFilter(schoolID)})
	events, err := core.All(ctx, q, svc.events.List)
	if err != nil {
		return nil, errors.Wrap(err, "listing events")
	}
	to := from.AddDays(days)
	upcoming := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Date.Before(from) && !e.Date.After(to) {
			upcoming = append(upcoming, e)
		}
	}
	return upcoming, nil
}

func (svc *Service) requireSchool(ctx context.Context, id int64) error {
	return school.RequireActive(ctx, svc.schools, id, "school_id")
}

// PeriodService manages the periods of the school years.
type PeriodService struct{ *Service }

func (svc *PeriodService) List(ctx context.Context, q core.ListQuery) (core.Page[Period], error) {
	q, err := PeriodSchema.Clean(q)
	if err != nil {
		return core.Page[Period]{}, err
	}
	return svc.periods.List(ctx, q)
}

func (svc *PeriodService) Get(ctx context.Context, id int64) (Period, error) {
	return svc.periods.Get(ctx, id)
}

func (svc *PeriodService) Create(ctx context.Context, np NewPeriod) (Period, error) {
	np.Name = core.CleanString(np.Name)
	if err := svc.validate.Struct(np); err != nil {
		return Period{}, err
	}
	if err := svc.requireSchool(ctx, np.SchoolID); err != nil {
		return Period{}, err
	}
	now := time.Now().UTC()
	return svc.periods.Create(ctx, Period{
		SchoolID:   np.SchoolID,
		Name:       np.Name,
		SchoolYear: np.SchoolYear,
		StartDate:  np.StartDate,
		EndDate:    np.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *PeriodService) Update(ctx context.Context, id int64, np NewPeriod) (Period, error) {
	np.Name = core.CleanString(np.Name)
	if err := svc.validate.Struct(np); err != nil {
		return Period{}, err
	}
	p, err := svc.periods.Get(ctx, id)
	if err != nil {
		return Period{}, err
	}
	if np.SchoolID != p.SchoolID {
		if err = svc.requireSchool(ctx, np.SchoolID); err != nil {
			return Period{}, err
		}
	}
	p.SchoolID = np.SchoolID
	p.Name = np.Name
	p.SchoolYear = np.SchoolYear
	p.StartDate = np.StartDate
	p.EndDate = np.EndDate
	p.UpdatedAt = time.Now().UTC()
	return svc.periods.Update(ctx, p)
}

func (svc *PeriodService) Delete(ctx context.Context, id int64) error {
	return svc.periods.Delete(ctx, id)
}

// HolidayService manages the school holidays.
type HolidayService struct{ *Service }

func (svc *HolidayService) List(ctx context.Context, q core.ListQuery) (core.Page[Holiday], error) {
	q, err := HolidaySchema.Clean(q)
	if err != nil {
		return core.Page[Holiday]{}, err
	}
	return svc.holidays.List(ctx, q)
}

func (svc *HolidayService) Get(ctx context.Context, id int64) (Holiday, error) {
	return svc.holidays.Get(ctx, id)
}

func (svc *HolidayService) Create(ctx context.Context, nh NewHoliday) (Holiday, error) {
	nh.Name = core.CleanString(nh.Name)
	if err := svc.validate.Struct(nh); err != nil {
		return Holiday{}, err
	}
	if err := svc.requireSchool(ctx, nh.SchoolID); err != nil {
		return Holiday{}, err
	}
	now := time.Now().UTC()
	return svc.holidays.Create(ctx, Holiday{SchoolID: nh.SchoolID, Name: nh.Name, Date: nh.Date, CreatedAt: now, UpdatedAt: now})
}

func (svc *HolidayService) Update(ctx context.Context, id int64, nh NewHoliday) (Holiday, error) {
	nh.Name = core.CleanString(nh.Name)
	if err := svc.validate.Struct(nh); err != nil {
		return Holiday{}, err
	}
	h, err := svc.holidays.Get(ctx, id)
	if err != nil {
		return Holiday{}, err
	}
	if nh.SchoolID != h.SchoolID {
		if err = svc.requireSchool(ctx, nh.SchoolID); err != nil {
			return Holiday{}, err
		}
	}
	h.SchoolID = nh.SchoolID
	h.Name = nh.Name
	h.Date = nh.Date
	h.UpdatedAt = time.Now().UTC()
	return svc.holidays.Update(ctx, h)
}

func (svc *HolidayService) Delete(ctx context.Context, id int64) error {
	return svc.holidays.Delete(ctx, id)
}

// EventService manages the school events.
type EventService struct{ *Service }

func (svc *EventService) List(ctx context.Context, q core.ListQuery) (core.Page[Event], error) {
	q, err := EventSchema.Clean(q)
	if err != nil {
		return core.Page[Event]{}, err
	}
	return svc.events.List(ctx, q)
}

func (svc *EventService) Get(ctx context.Context, id int64) (Event, error) {
	return svc.events.Get(ctx, id)
}

func (ne *NewEvent) clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.StartTime = core.CleanString(ne.StartTime)
	ne.EndTime = core.CleanString(ne.EndTime)
}

func (svc *EventService) Create(ctx context.Context, ne NewEvent) (Event, error) {
	ne.clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Event{}, err
	}
	if err := svc.requireSchool(ctx, ne.SchoolID); err != nil {
		return Event{}, err
	}
	now := time.Now().UTC()
	return svc.events.Create(ctx, Event{
		SchoolID:    ne.SchoolID,
		Title:       ne.Title,
		Description: ne.Description,
		Date:        ne.Date,
		StartTime:   ne.StartTime,
		EndTime:     ne.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *EventService) Update(ctx context.Context, id int64, ne NewEvent) (Event, error) {
	ne.clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Event{}, err
	}
	e, err := svc.events.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ne.SchoolID != e.SchoolID {
		if err = svc.requireSchool(ctx, ne.SchoolID); err != nil {
			return Event{}, err
		}
	}
	e.SchoolID = ne.SchoolID
	e.Title = ne.Title
	e.Description = ne.Description
	e.Date = ne.Date
	e.StartTime = ne.StartTime
	e.EndTime = ne.EndTime
	e.UpdatedAt = time.Now().UTC()
	return svc.events.Update(ctx, e)
}

func (svc *EventService) Delete(ctx context.Context, id int64) error {
	return svc.events.Delete(ctx, id)
}
