package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/dashboard"
)

const (
	defaultUpcomingDays = 30
	maxUpcomingDays     = 366
)

type calendarApi struct {
	svc *calendar.Service
}

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *calendar.Service) {
	api := calendarApi{svc: svc}
	read, write := teacherMiddleware(), staffMiddleware()

	cg := g.Group("/calendar", jwt)
	registerCRUD[calendar.Period, calendar.NewPeriod, calendar.NewPeriod](
		cg.Group("/periods"), "period", svc.Periods, read, write,
	)
	registerCRUD[calendar.Holiday, calendar.NewHoliday, calendar.NewHoliday](
		cg.Group("/holidays"), "holiday", svc.Holidays, read, write,
	)
	registerCRUD[calendar.Event, calendar.NewEvent, calendar.NewEvent](
		cg.Group("/events"), "event", svc.Events, read, write,
	)
	cg.GET("/days/:date", api.day, read)
	cg.GET("/upcoming", api.upcoming, read)
}

// day tells whether `:date` is a school day for `?school_id=` (every school when missing).
func (api *calendarApi) day(ctx echo.Context) error {
	date, err := paramDate(ctx, "date")
	if err != nil {
		return err
	}
	schoolID, err := queryID(ctx, "school_id")
	if err != nil {
		return err
	}
	info, err := api.svc.Day(ctx.Request().Context(), schoolID, date)
	if err != nil {
		return errors.Wrap(err, "describing calendar day")
	}
	return ctx.JSON(http.StatusOK, info)
}

// upcoming lists the events of the next `?days=` days (30 by default).
func (api *calendarApi) upcoming(ctx echo.Context) error {
	schoolID, err := queryID(ctx, "school_id")
	if err != nil {
		return err
	}
	days := defaultUpcomingDays
	if val := ctx.QueryParam("days"); val != "" {
		if days, err = strconv.Atoi(val); err != nil || days < 0 || days > maxUpcomingDays {
			return core.NewValidationError(err, core.FieldError{Field: "days", Error: "enter a number of days between 0 and 366"})
		}
	}
	from, err := queryDate(ctx, "from", civil.DateOf(time.Now()))
	if err != nil {
		return err
	}

	events, err := api.svc.Upcoming(ctx.Request().Context(), schoolID, from, days)
	if err != nil {
		return errors.Wrap(err, "listing upcoming events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *dashboard.Service) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		schoolID, err := queryID(ctx, "school_id")
		if err != nil {
			return err
		}
		dash, err := svc.Get(ctx.Request().Context(), schoolID)
		if err != nil {
			return errors.Wrap(err, "computing dashboard")
		}
		return ctx.JSON(http.StatusOK, dash)
	}, jwt, teacherMiddleware())
}
