package calendar_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/storage"
	"github.com/trezcool/diario/tests"
)

func date(y int, m time.Month, d int) civil.Date { return civil.Date{Year: y, Month: m, Day: d} }

func setup(t *testing.T) (*calendar.Service, int64, int64) {
	ds := storage.NewFixtureStore()
	validate, _ := testutil.NewValidator()
	svc := calendar.NewService(ds.Periods(), ds.Holidays(), ds.Events(), ds.Schools(), validate)
	central := testutil.CreateSchool(t, ds.Schools(), "Central", "central", "Recife")
	north := testutil.CreateSchool(t, ds.Schools(), "North", "north", "Olinda")
	return svc, central.ID, north.ID
}

func Test_PeriodService_Create(t *testing.T) {
	svc, schoolID, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		np      calendar.NewPeriod
		wantErr bool
	}{
		{
			name:    "end before start",
			np:      calendar.NewPeriod{SchoolID: schoolID, Name: "B1", SchoolYear: 2026, StartDate: date(2026, 3, 1), EndDate: date(2026, 2, 1)},
			wantErr: true,
		},
		{
			name:    "start out of school year",
			np:      calendar.NewPeriod{SchoolID: schoolID, Name: "B1", SchoolYear: 2025, StartDate: date(2026, 2, 1), EndDate: date(2026, 4, 30)},
			wantErr: true,
		},
		{
			name:    "unknown school",
			np:      calendar.NewPeriod{SchoolID: 999, Name: "B1", SchoolYear: 2026, StartDate: date(2026, 2, 1), EndDate: date(2026, 4, 30)},
			wantErr: true,
		},
		{
			name: "valid",
			np:   calendar.NewPeriod{SchoolID: schoolID, Name: "  1st bimester ", SchoolYear: 2026, StartDate: date(2026, 2, 1), EndDate: date(2026, 4, 30)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Periods.Create(ctx, tt.np)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, p.ID)
			assert.Equal(t, "1st bimester", p.Name)
		})
	}
}

func Test_PeriodService_Create_fieldErrors(t *testing.T) {
	svc, schoolID, _ := setup(t)

	_, err := svc.Periods.Create(context.Background(), calendar.NewPeriod{
		SchoolID: schoolID, Name: "B1", SchoolYear: 2026, StartDate: date(2026, 3, 1), EndDate: date(2026, 2, 1),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "end_date", verrs[0].Field())
	assert.Equal(t, "dateorder", verrs[0].Tag())
}

func Test_EventService_Create_timeOrder(t *testing.T) {
	svc, schoolID, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Events.Create(ctx, calendar.NewEvent{
		SchoolID: schoolID, Title: "Fair", Date: date(2026, 5, 20), StartTime: "10:00", EndTime: "09:30",
	})
	assert.Error(t, err)

	e, err := svc.Events.Create(ctx, calendar.NewEvent{
		SchoolID: schoolID, Title: " Fair ", Date: date(2026, 5, 20), StartTime: "09:00", EndTime: "11:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fair", e.Title)
}

func Test_Service_Day(t *testing.T) {
	svc, central, north := setup(t)
	ctx := context.Background()

	_, err := svc.Periods.Create(ctx, calendar.NewPeriod{
		SchoolID: central, Name: "B1", SchoolYear: 2026, StartDate: date(2026, 2, 2), EndDate: date(2026, 4, 30),
	})
	require.NoError(t, err)
	_, err = svc.Holidays.Create(ctx, calendar.NewHoliday{SchoolID: central, Name: "Tiradentes", Date: date(2026, 4, 21)})
	require.NoError(t, err)
	_, err = svc.Events.Create(ctx, calendar.NewEvent{SchoolID: central, Title: "Parents meeting", Date: date(2026, 3, 10)})
	require.NoError(t, err)

	tests := []struct {
		name          string
		schoolID      int64
		date          civil.Date
		wantSchoolDay bool
		wantWeekend   bool
		wantPeriod    bool
		wantHolidays  int
		wantEvents    int
	}{
		{name: "week day in period", schoolID: central, date: date(2026, 3, 10), wantSchoolDay: true, wantPeriod: true, wantEvents: 1},
		{name: "holiday", schoolID: central, date: date(2026, 4, 21), wantPeriod: true, wantHolidays: 1},
		{name: "weekend", schoolID: central, date: date(2026, 3, 7), wantWeekend: true, wantPeriod: true},
		{name: "period end bound", schoolID: central, date: date(2026, 4, 30), wantSchoolDay: true, wantPeriod: true},
		{name: "out of period", schoolID: central, date: date(2026, 5, 4)},
		{name: "other school", schoolID: north, date: date(2026, 3, 10)},
		{name: "every school", schoolID: 0, date: date(2026, 3, 10), wantSchoolDay: true, wantPeriod: true, wantEvents: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.Day(ctx, tt.schoolID, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.date, info.Date)
			assert.Equal(t, tt.wantSchoolDay, info.SchoolDay)
			assert.Equal(t, tt.wantWeekend, info.Weekend)
			assert.Equal(t, tt.wantPeriod, info.Period != nil)
			assert.Len(t, info.Holidays, tt.wantHolidays)
			assert.Len(t, info.Events, tt.wantEvents)
		})
	}
}

func Test_Service_Upcoming(t *testing.T) {
	svc, central, north := setup(t)
	ctx := context.Background()

	for _, ne := range []calendar.NewEvent{
		{SchoolID: central, Title: "Past", Date: date(2026, 4, 30)},
		{SchoolID: central, Title: "Science fair", Date: date(2026, 5, 20), StartTime: "14:00"},
		{SchoolID: central, Title: "Opening", Date: date(2026, 5, 1)},
		{SchoolID: central, Title: "Morning fair", Date: date(2026, 5, 20), StartTime: "08:00"},
		{SchoolID: central, Title: "Last day", Date: date(2026, 5, 31)},
		{SchoolID: central, Title: "Too far", Date: date(2026, 6, 1)},
		{SchoolID: north, Title: "North party", Date: date(2026, 5, 2)},
	} {
		_, err := svc.Events.Create(ctx, ne)
		require.NoError(t, err)
	}

	titles := func(events []calendar.Event) []string {
		out := make([]string, 0, len(events))
		for _, e := range events {
			out = append(out, e.Title)
		}
		return out
	}

	events, err := svc.Upcoming(ctx, central, date(2026, 5, 1), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"Opening", "Morning fair", "Science fair", "Last day"}, titles(events))

	events, err = svc.Upcoming(ctx, 0, date(2026, 5, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Opening", "North party"}, titles(events))

	events, err = svc.Upcoming(ctx, north, date(2026, 6, 1), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func Test_HolidayService_Delete(t *testing.T) {
	svc, central, _ := setup(t)
	ctx := context.Background()

	h, err := svc.Holidays.Create(ctx, calendar.NewHoliday{SchoolID: central, Name: "Carnival", Date: date(2026, 2, 17)})
	require.NoError(t, err)
	require.NoError(t, svc.Holidays.Delete(ctx, h.ID))

	_, err = svc.Holidays.Get(ctx, h.ID)
	assert.True(t, core.IsNotFound(err))
}
