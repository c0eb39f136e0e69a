package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
)

type meetingApi struct {
	svc schedule.ServiceInterface
}

func registerMeetingAPI(g *echo.Group, svc schedule.ServiceInterface) {
	api := meetingApi{svc: svc}

	mg := g.Group("/meetings")
	mg.GET("", api.query)
	mg.DELETE("", api.destroyMultiple)

	dg := mg.Group("/:id", objectMiddleware("meeting", func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetMeeting(ctx, id)
	}, meeting.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

type meetingQuery struct {
	SectionID    string `query:"section_id"`
	CourseID     string `query:"course_id"`
	InstructorID string `query:"instructor_id"`
	Location     string `query:"location"`
	IsArchived   *bool  `query:"is_archived"`
}

// bindMeetingFilter reads the meeting filters off the query string, dates included.
func bindMeetingFilter(ctx echo.Context) (*meeting.QueryFilter, error) {
	var q meetingQuery
	if err := ctx.Bind(&q); err != nil {
		return nil, errors.Wrap(err, "binding to meetingQuery")
	}
	from, err := parseDateParam(ctx, "date_from")
	if err != nil {
		return nil, err
	}
	to, err := parseDateParam(ctx, "date_to")
	if err != nil {
		return nil, err
	}
	return &meeting.QueryFilter{
		SectionID:    core.CleanString(q.SectionID),
		CourseID:     core.CleanString(q.CourseID),
		InstructorID: core.CleanString(q.InstructorID),
		Location:     core.CleanString(q.Location),
		DateFrom:     from,
		DateTo:       to,
		IsArchived:   q.IsArchived,
	}, nil
}

func ctxMeeting(ctx echo.Context) (meeting.Meeting, error) {
	mtg, ok := ctx.Get(objectKey).(meeting.Meeting)
	if !ok {
		return meeting.Meeting{}, errors.Wrap(errObjNotFoundInCtx, "retrieving meeting from context")
	}
	return mtg, nil
}

func (api *meetingApi) query(ctx echo.Context) error {
	filter, err := bindMeetingFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	meetings, err := api.svc.QueryMeetings(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *meetingApi) retrieve(ctx echo.Context) error {
	mtg, err := ctxMeeting(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *meetingApi) update(ctx echo.Context) error {
	mtg, err := ctxMeeting(ctx)
	if err != nil {
		return err
	}

	var data meeting.UpdateMeeting
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMeeting")
	}
	if mtg, err = api.svc.UpdateMeeting(ctx.Request().Context(), mtg, data); err != nil {
		return errors.Wrap(err, "updating meeting")
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *meetingApi) destroy(ctx echo.Context) error {
	mtg, err := ctxMeeting(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.DeleteMeetings(ctx.Request().Context(), mtg.ID); err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *meetingApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if _, err := api.svc.DeleteMeetings(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting meetings")
	}
	return ctx.NoContent(http.StatusNoContent)
}
