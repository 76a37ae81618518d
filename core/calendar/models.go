package calendar

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/diario/core"
)

var (
	ErrPeriodNotFound  = core.NewNotFoundError("period")
	ErrHolidayNotFound = core.NewNotFoundError("holiday")
	ErrEventNotFound   = core.NewNotFoundError("event")
)

// Period is a term of a school year, eg. "1st bimester".
type Period struct {
	ID         int64      `json:"id"`
	SchoolID   int64      `json:"school_id"`
	Name       string     `json:"name"`
	SchoolYear int        `json:"school_year"`
	StartDate  civil.Date `json:"start_date"`
	EndDate    civil.Date `json:"end_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Contains reports whether d falls within the period, bounds included.
func (p Period) Contains(d civil.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

type Holiday struct {
	ID        int64      `json:"id"`
	SchoolID  int64      `json:"school_id"`
	Name      string     `json:"name"`
	Date      civil.Date `json:"date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Event struct {
	ID          int64      `json:"id"`
	SchoolID    int64      `json:"school_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        civil.Date `json:"date"`
	StartTime   string     `json:"start_time"` // HH:MM
	EndTime     string     `json:"end_time"`   // HH:MM
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DayInfo describes a calendar day for a school.
type DayInfo struct {
	Date      civil.Date `json:"date"`
	Weekend   bool       `json:"weekend"`
	Period    *Period    `json:"period"`
	Holidays  []Holiday  `json:"holidays"`
	Events    []Event    `json:"events"`
	SchoolDay bool       `json:"school_day"`
}

var PeriodSchema = core.Schema[Period]{
	Table: "periods",
	Fields: []core.Field[Period]{
		{Name: "id", Column: "id", Value: func(p Period) any { return p.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(p Period) any { return p.SchoolID }, Filter: true},
		{Name: "name", Column: "name", Value: func(p Period) any { return p.Name }, Search: true, Sort: true},
		{Name: "school_year", Column: "school_year", Value: func(p Period) any { return p.SchoolYear }, Filter: true, Sort: true},
		{Name: "start_date", Column: "start_date", Value: func(p Period) any { return p.StartDate }, Sort: true},
		{Name: "end_date", Column: "end_date", Value: func(p Period) any { return p.EndDate }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "start_date", Ascending: true}},
}

var HolidaySchema = core.Schema[Holiday]{
	Table: "holidays",
	Fields: []core.Field[Holiday]{
		{Name: "id", Column: "id", Value: func(h Holiday) any { return h.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(h Holiday) any { return h.SchoolID }, Filter: true},
		{Name: "name", Column: "name", Value: func(h Holiday) any { return h.Name }, Search: true, Sort: true},
		{Name: "date", Column: "date", Value: func(h Holiday) any { return h.Date }, Filter: true, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{{Field: "date", Ascending: true}},
}

var EventSchema = core.Schema[Event]{
	Table: "events",
	Fields: []core.Field[Event]{
		{Name: "id", Column: "id", Value: func(e Event) any { return e.ID }, Sort: true},
		{Name: "school_id", Column: "school_id", Value: func(e Event) any { return e.SchoolID }, Filter: true},
		{Name: "title", Column: "title", Value: func(e Event) any { return e.Title }, Search: true, Sort: true},
		{Name: "description", Column: "description", Value: func(e Event) any { return e.Description }, Search: true},
		{Name: "date", Column: "date", Value: func(e Event) any { return e.Date }, Filter: true, Sort: true},
		{Name: "start_time", Column: "start_time", Value: func(e Event) any { return e.StartTime }, Sort: true},
	},
	DefaultOrdering: []core.DBOrdering{
		{Field: "date", Ascending: true},
		{Field: "start_time", Ascending: true},
	},
}

type NewPeriod struct {
	SchoolID   int64      `json:"school_id" validate:"required"`
	Name       string     `json:"name" validate:"required,max=100"`
	SchoolYear int        `json:"school_year" validate:"required,schoolyear"`
	StartDate  civil.Date `json:"start_date" validate:"required"`
	EndDate    civil.Date `json:"end_date" validate:"required"`
}

type NewHoliday struct {
	SchoolID int64      `json:"school_id" validate:"required"`
	Name     string     `json:"name" validate:"required,max=255"`
	Date     civil.Date `json:"date" validate:"required"`
}

type NewEvent struct {
	SchoolID    int64      `json:"school_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description"`
	Date        civil.Date `json:"date" validate:"required"`
	StartTime   string     `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime     string     `json:"end_time" validate:"omitempty,datetime=15:04"`
}
