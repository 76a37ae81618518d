package echoapi

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/diario/core"
)

const (
	searchParam   = "search"
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindListQuery reads `?search=&ordering=&page=&page_size=`; any other param is an equality filter.
// Invalid page numbers fall back to the defaults.
func bindListQuery(ctx echo.Context) core.ListQuery {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	q := core.ListQuery{
		Search:   ctx.QueryParam(searchParam),
		Ordering: ordering.Orderings,
		Filters:  make(map[string]string),
	}
	q.Page, _ = strconv.Atoi(ctx.QueryParam(pageParam))
	q.PageSize, _ = strconv.Atoi(ctx.QueryParam(pageSizeParam))

	for name, vals := range ctx.QueryParams() {
		switch name {
		case searchParam, orderingParam, pageParam, pageSizeParam:
			continue
		}
		if len(vals) > 0 {
			q.Filters[name] = vals[0]
		}
	}
	return q
}

// paramID reads an ID path param. Malformed IDs are not found.
func paramID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// paramDate reads a YYYY-MM-DD path param.
func paramDate(ctx echo.Context, name string) (civil.Date, error) {
	return parseDate(name, ctx.Param(name))
}

// queryDate reads a YYYY-MM-DD query param, `def` when missing.
func queryDate(ctx echo.Context, name string, def civil.Date) (civil.Date, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return def, nil
	}
	return parseDate(name, val)
}

func parseDate(name, val string) (civil.Date, error) {
	date, err := civil.ParseDate(val)
	if err != nil {
		return civil.Date{}, core.NewValidationError(err, core.FieldError{Field: name, Error: "enter a valid date (YYYY-MM-DD)"})
	}
	return date, nil
}

// queryID reads an optional ID query param, 0 when missing.
func queryID(ctx echo.Context, name string) (int64, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError(err, core.FieldError{Field: name, Error: "enter a valid ID"})
	}
	return id, nil
}
