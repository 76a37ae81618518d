package sqlxrepos

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/calendar"
)

type (
	periodRow struct {
		ID         int64     `db:"id"`
		SchoolID   int64     `db:"school_id"`
		Name       string    `db:"name"`
		SchoolYear int       `db:"school_year"`
		StartDate  time.Time `db:"start_date"`
		EndDate    time.Time `db:"end_date"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}

	holidayRow struct {
		ID        int64     `db:"id"`
		SchoolID  int64     `db:"school_id"`
		Name      string    `db:"name"`
		Date      time.Time `db:"date"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	eventRow struct {
		ID          int64       `db:"id"`
		SchoolID    int64       `db:"school_id"`
		Title       string      `db:"title"`
		Description null.String `db:"description"`
		Date        time.Time   `db:"date"`
		StartTime   null.String `db:"start_time"`
		EndTime     null.String `db:"end_time"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}
)

var (
	_ calendar.PeriodRepository  = (*table[calendar.Period, periodRow])(nil)
	_ calendar.HolidayRepository = (*table[calendar.Holiday, holidayRow])(nil)
	_ calendar.EventRepository   = (*table[calendar.Event, eventRow])(nil)
)

func NewPeriodRepository(db *sqlx.DB) calendar.PeriodRepository {
	return &table[calendar.Period, periodRow]{
		db:       db,
		schema:   calendar.PeriodSchema,
		resource: "period",
		notFound: calendar.ErrPeriodNotFound,
		id:       func(p calendar.Period) int64 { return p.ID },
		toRow: func(p calendar.Period) periodRow {
			return periodRow{
				ID:         p.ID,
				SchoolID:   p.SchoolID,
				Name:       p.Name,
				SchoolYear: p.SchoolYear,
				StartDate:  dateToTime(p.StartDate),
				EndDate:    dateToTime(p.EndDate),
				CreatedAt:  p.CreatedAt.UTC(),
				UpdatedAt:  p.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r periodRow) calendar.Period {
			return calendar.Period{
				ID:         r.ID,
				SchoolID:   r.SchoolID,
				Name:       r.Name,
				SchoolYear: r.SchoolYear,
				StartDate:  civil.DateOf(r.StartDate),
				EndDate:    civil.DateOf(r.EndDate),
				CreatedAt:  r.CreatedAt.UTC(),
				UpdatedAt:  r.UpdatedAt.UTC(),
			}
		},
	}
}

func NewHolidayRepository(db *sqlx.DB) calendar.HolidayRepository {
	return &table[calendar.Holiday, holidayRow]{
		db:       db,
		schema:   calendar.HolidaySchema,
		resource: "holiday",
		notFound: calendar.ErrHolidayNotFound,
		id:       func(h calendar.Holiday) int64 { return h.ID },
		toRow: func(h calendar.Holiday) holidayRow {
			return holidayRow{
				ID:        h.ID,
				SchoolID:  h.SchoolID,
				Name:      h.Name,
				Date:      dateToTime(h.Date),
				CreatedAt: h.CreatedAt.UTC(),
				UpdatedAt: h.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r holidayRow) calendar.Holiday {
			return calendar.Holiday{
				ID:        r.ID,
				SchoolID:  r.SchoolID,
				Name:      r.Name,
				Date:      civil.DateOf(r.Date),
				CreatedAt: r.CreatedAt.UTC(),
				UpdatedAt: r.UpdatedAt.UTC(),
			}
		},
	}
}

func NewEventRepository(db *sqlx.DB) calendar.EventRepository {
	return &table[calendar.Event, eventRow]{
		db:       db,
		schema:   calendar.EventSchema,
		resource: "event",
		notFound: calendar.ErrEventNotFound,
		id:       func(e calendar.Event) int64 { return e.ID },
		toRow: func(e calendar.Event) eventRow {
			return eventRow{
				ID:          e.ID,
				SchoolID:    e.SchoolID,
				Title:       e.Title,
				Description: nullString(e.Description),
				Date:        dateToTime(e.Date),
				StartTime:   nullString(e.StartTime),
				EndTime:     nullString(e.EndTime),
				CreatedAt:   e.CreatedAt.UTC(),
				UpdatedAt:   e.UpdatedAt.UTC(),
			}
		},
		fromRow: func(r eventRow) calendar.Event {
			return calendar.Event{
				ID:          r.ID,
				SchoolID:    r.SchoolID,
				Title:       r.Title,
				Description: r.Description.String,
				Date:        civil.DateOf(r.Date),
				StartTime:   r.StartTime.String,
				EndTime:     r.EndTime.String,
				CreatedAt:   r.CreatedAt.UTC(),
				UpdatedAt:   r.UpdatedAt.UTC(),
			}
		},
	}
}
