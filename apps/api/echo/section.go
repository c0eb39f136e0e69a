package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	calendarsvc "github.com/trezcool/academia/services/calendar"
)

const (
	defaultDatesCount = 10
	maxDatesCount     = 100
)

type sectionApi struct {
	svc      section.ServiceInterface
	courses  course.ServiceInterface
	schedule schedule.ServiceInterface
	calendar *calendarsvc.Exporter
}

func registerSectionAPI(
	g *echo.Group,
	svc section.ServiceInterface,
	courses course.ServiceInterface,
	scheduleSvc schedule.ServiceInterface,
	calendar *calendarsvc.Exporter,
) {
	api := sectionApi{svc: svc, courses: courses, schedule: scheduleSvc, calendar: calendar}

	sg := g.Group("/sections")
	sg.POST("", api.create)
	sg.GET("", api.query)

	dg := sg.Group("/:id", objectMiddleware("section", func(ctx context.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx, id)
	}, section.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)

	// meetings of the section
	dg.GET("/meetings", api.queryMeetings)
	dg.POST("/meetings", api.addMeeting)
	dg.DELETE("/meetings", api.destroyMeetings)

	// scheduling
	dg.POST("/schedule/preview", api.previewSchedule)
	dg.POST("/schedule/confirm", api.confirmSchedule)
	dg.GET("/schedule/dates", api.permittedDates)
	dg.GET("/calendar", api.calendarEvents)
	dg.GET("/calendar.ics", api.exportCalendar)
}

func ctxSection(ctx echo.Context) (section.Section, error) {
	sec, ok := ctx.Get(objectKey).(section.Section)
	if !ok {
		return section.Section{}, errors.Wrap(errObjNotFoundInCtx, "retrieving section from context")
	}
	return sec, nil
}

func (api *sectionApi) create(ctx echo.Context) error {
	var data section.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}

	sec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating section")
	}
	return ctx.JSON(http.StatusCreated, sec)
}

func (api *sectionApi) query(ctx echo.Context) error {
	filter := new(section.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []section.Section{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sections, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if sections == nil {
		sections = []section.Section{}
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *sectionApi) retrieve(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) update(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}

	var data section.UpdateSection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSection")
	}
	if sec, err = api.svc.Update(ctx.Request().Context(), sec, data); err != nil {
		return errors.Wrap(err, "updating section")
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *sectionApi) destroy(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.Delete(ctx.Request().Context(), sec.ID); err != nil {
		return errors.Wrap(err, "deleting section")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sectionApi) queryMeetings(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	filter, err := bindMeetingFilter(ctx)
	if err != nil {
		return err
	}
	filter.SectionID = sec.ID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	meetings, err := api.schedule.QueryMeetings(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying section meetings")
	}
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *sectionApi) addMeeting(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}

	var data meeting.NewMeeting
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	mtg, err := api.schedule.AddMeeting(ctx.Request().Context(), sec.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding meeting")
	}
	return ctx.JSON(http.StatusCreated, mtg)
}

func (api *sectionApi) destroyMeetings(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	if _, err = api.schedule.DeleteSectionMeetings(ctx.Request().Context(), sec.ID); err != nil {
		return errors.Wrap(err, "deleting section meetings")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sectionApi) previewSchedule(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}

	var data schedule.ScheduleInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScheduleInput")
	}
	batch, err := api.schedule.Plan(ctx.Request().Context(), sec.ID, data)
	if err != nil {
		return errors.Wrap(err, "planning schedule")
	}
	return ctx.JSON(http.StatusOK, batch)
}

func (api *sectionApi) confirmSchedule(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}

	var data schedule.ConfirmInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmInput")
	}
	meetings, err := api.schedule.Confirm(ctx.Request().Context(), sec.ID, data)
	if err != nil {
		return errors.Wrap(err, "confirming schedule")
	}
	return ctx.JSON(http.StatusCreated, meetings)
}

// permittedDates lists the next dates falling on the requested weekdays, from the earliest
// date the section can meet on. It ignores time conflicts.
func (api *sectionApi) permittedDates(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}

	weekdays := make([]time.Weekday, 0, 7)
	for _, val := range ctx.QueryParams()["weekday"] {
		day, err := strconv.Atoi(val)
		if err != nil || day < 0 || day > 6 {
			return core.NewFieldError("weekday", "weekdays must be between 0 (Sunday) and 6 (Saturday)")
		}
		weekdays = append(weekdays, time.Weekday(day))
	}
	if len(weekdays) == 0 {
		return core.NewFieldError("weekday", "at least one weekday is required")
	}

	count := defaultDatesCount
	if val := ctx.QueryParam("count"); val != "" {
		if count, err = strconv.Atoi(val); err != nil || count <= 0 || count > maxDatesCount {
			return core.NewFieldError("count", fmt.Sprintf("count must be between 1 and %d", maxDatesCount))
		}
	}

	from, err := parseDateParam(ctx, "from")
	if err != nil {
		return err
	}
	earliest := api.schedule.Today()
	if sec.StartDate.After(earliest) {
		earliest = sec.StartDate
	}
	if !from.IsValid() || from.Before(earliest) {
		from = earliest
	}

	dates, err := schedule.PermittedDates(weekdays, from, count)
	if err != nil {
		return errors.Wrap(err, "listing permitted dates")
	}
	return ctx.JSON(http.StatusOK, dates)
}

func (api *sectionApi) calendarEvents(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	events, err := api.schedule.Calendar(ctx.Request().Context(), sec.ID)
	if err != nil {
		return errors.Wrap(err, "building section calendar")
	}
	if events == nil {
		events = []schedule.CalendarInterval{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *sectionApi) exportCalendar(ctx echo.Context) error {
	sec, err := ctxSection(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	crs, err := api.courses.GetByID(reqCtx, sec.CourseID)
	if err != nil {
		return errors.Wrap(err, "getting section course")
	}
	meetings, err := api.schedule.QueryMeetings(reqCtx, &meeting.QueryFilter{SectionID: sec.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying section meetings")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+calendarsvc.Filename(crs, sec)+`"`)
	return ctx.Blob(http.StatusOK, calendarsvc.ContentType, api.calendar.Export(crs, sec, meetings))
}
