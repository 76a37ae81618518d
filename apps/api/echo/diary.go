package echoapi

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core/diary"
)

const summaryDays = 30 // default span of the attendance summary

type diaryApi struct {
	svc *diary.Service
}

func registerDiaryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *diary.Service) {
	api := diaryApi{svc: svc}

	cg := g.Group("/classes/:id", jwt, teacherMiddleware())
	cg.GET("/diary", api.query)
	cg.GET("/diary/:date", api.retrieve)
	cg.PUT("/diary/:date", api.save)
	cg.DELETE("/diary/:date", api.destroy)
	cg.GET("/diary-summary", api.summary)
}

func (api *diaryApi) query(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	page, err := api.svc.List(ctx.Request().Context(), classID, bindListQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "listing diary entries")
	}
	return ctx.JSON(http.StatusOK, page)
}

// retrieve returns the attendance sheet of the day, reconciled with the current roster.
func (api *diaryApi) retrieve(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	date, err := paramDate(ctx, "date")
	if err != nil {
		return err
	}
	view, err := api.svc.Load(ctx.Request().Context(), classID, date)
	if err != nil {
		return errors.Wrap(err, "loading diary")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *diaryApi) save(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	date, err := paramDate(ctx, "date")
	if err != nil {
		return err
	}
	var data diary.SaveEntry
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveEntry")
	}
	entry, err := api.svc.Save(ctx.Request().Context(), classID, date, data)
	if err != nil {
		return errors.Wrap(err, "saving diary")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *diaryApi) destroy(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	date, err := paramDate(ctx, "date")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), classID, date); err != nil {
		return errors.Wrap(err, "deleting diary entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// summary tallies the attendance between `?from=` & `?to=`: the last 30 days by default.
func (api *diaryApi) summary(ctx echo.Context) error {
	classID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	to, err := queryDate(ctx, "to", civil.DateOf(time.Now()))
	if err != nil {
		return err
	}
	from, err := queryDate(ctx, "from", to.AddDays(-summaryDays))
	if err != nil {
		return err
	}
	sum, err := api.svc.Summary(ctx.Request().Context(), classID, from, to)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}
