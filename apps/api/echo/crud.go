package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
)

type (
	// crudService is implemented by the services of every listed entity.
	// N is the creation payload, U the update one.
	crudService[T, N, U any] interface {
		List(ctx context.Context, q core.ListQuery) (core.Page[T], error)
		Get(ctx context.Context, id int64) (T, error)
		Create(ctx context.Context, data N) (T, error)
		Update(ctx context.Context, id int64, data U) (T, error)
	}

	// deleteService is implemented by the services whose entities can be deleted (or deactivated).
	deleteService interface {
		Delete(ctx context.Context, id int64) error
	}

	crudApi[T, N, U any] struct {
		resource string
		svc      crudService[T, N, U]
	}
)

// registerCRUD registers the list & detail endpoints of an entity on cg.
// DELETE is only available when svc is a deleteService.
func registerCRUD[T, N, U any](cg *echo.Group, resource string, svc crudService[T, N, U], read, write echo.MiddlewareFunc) {
	api := crudApi[T, N, U]{resource: resource, svc: svc}

	cg.GET("", api.query, read)
	cg.POST("", api.create, write)
	cg.GET("/:id", api.retrieve, read)
	cg.PUT("/:id", api.update, write)
	if _, ok := svc.(deleteService); ok {
		cg.DELETE("/:id", api.destroy, write)
	}
}

func (api crudApi[T, N, U]) query(ctx echo.Context) error {
	page, err := api.svc.List(ctx.Request().Context(), bindListQuery(ctx))
	if err != nil {
		return errors.Wrapf(err, "listing %s", api.resource)
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api crudApi[T, N, U]) create(ctx echo.Context) error {
	var data N
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding new %s", api.resource)
	}
	obj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.resource)
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api crudApi[T, N, U]) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	obj, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrapf(err, "finding %s", api.resource)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api crudApi[T, N, U]) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data U
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s update", api.resource)
	}
	obj, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.resource)
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api crudApi[T, N, U]) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.(deleteService).Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrapf(err, "deleting %s", api.resource)
	}
	return ctx.NoContent(http.StatusNoContent)
}
