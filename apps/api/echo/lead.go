package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/lead"
)

type leadApi struct {
	svc lead.ServiceInterface
}

func registerLeadAPI(g *echo.Group, svc lead.ServiceInterface) {
	api := leadApi{svc: svc}

	lg := g.Group("/leads")
	lg.POST("", api.create)
	lg.GET("", api.query)

	dg := lg.Group("/:id", objectMiddleware("lead", func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}, lead.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/similar", api.similar)
}

func ctxLead(ctx echo.Context) (lead.Lead, error) {
	ld, ok := ctx.Get(objectKey).(lead.Lead)
	if !ok {
		return lead.Lead{}, errors.Wrap(errObjNotFoundInCtx, "retrieving lead from context")
	}
	return ld, nil
}

func (api *leadApi) create(ctx echo.Context) error {
	var data lead.NewLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLead")
	}
	ld, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lead")
	}
	return ctx.JSON(http.StatusCreated, ld)
}

func (api *leadApi) query(ctx echo.Context) error {
	filter := new(lead.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []lead.Lead{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	leads, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying leads")
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	return ctx.JSON(http.StatusOK, leads)
}

func (api *leadApi) retrieve(ctx echo.Context) error {
	ld, err := ctxLead(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ld)
}

func (api *leadApi) update(ctx echo.Context) error {
	ld, err := ctxLead(ctx)
	if err != nil {
		return err
	}

	var data lead.UpdateLead
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLead")
	}
	if ld, err = api.svc.Update(ctx.Request().Context(), ld, data); err != nil {
		return errors.Wrap(err, "updating lead")
	}
	return ctx.JSON(http.StatusOK, ld)
}

func (api *leadApi) destroy(ctx echo.Context) error {
	ld, err := ctxLead(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), ld.ID); err != nil {
		return errors.Wrap(err, "deleting lead")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *leadApi) similar(ctx echo.Context) error {
	ld, err := ctxLead(ctx)
	if err != nil {
		return err
	}
	leads, err := api.svc.Similar(ctx.Request().Context(), ld)
	if err != nil {
		return errors.Wrap(err, "finding similar leads")
	}
	return ctx.JSON(http.StatusOK, leads)
}
