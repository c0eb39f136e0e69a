package echoapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/tests"
)

func TestSectionAPI(t *testing.T) {
	srv, env := newTestServer(t)
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go Fundamentals", 6)
	grace := testutil.CreateInstructor(t, env.UserSvc, "Grace Hopper", "grace")
	staff := testutil.CreateUser(t, env.UserSvc, "Front Desk", "desk")

	var sec section.Section
	t.Run("create", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/sections", map[string]interface{}{
			"course_id": crs.ID, "instructor_id": grace.ID, "start_date": "2030-01-06", "location": "Room A", "capacity": 12,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &sec)
		assert.Equal(t, 1, sec.SectionNumber)
		assert.Equal(t, civil.Date{Year: 2030, Month: 1, Day: 6}, sec.StartDate)
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/sections", map[string]interface{}{"course_id": "lol", "start_date": "2030-01-06"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "course_id")

		rec = doRequest(t, srv, http.MethodPost, "/v1/sections", map[string]interface{}{"course_id": crs.ID})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		decode(t, rec, &errs)
		assert.Contains(t, errs, "start_date")
	})

	t.Run("instructor must teach", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/sections/"+sec.ID, map[string]interface{}{"instructor_id": staff.ID})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Equal(t, "invalid instructor", errs["instructor_id"])
	})

	t.Run("second section", func(t *testing.T) {
		other := testutil.CreateSection(t, env.SectionSvc, crs.ID, "", civil.Date{Year: 2030, Month: 2, Day: 1}, "")
		assert.Equal(t, 2, other.SectionNumber)

		rec := doRequest(t, srv, http.MethodGet, "/v1/sections?course_id="+crs.ID+"&ordering=-section_number")
		require.Equal(t, http.StatusOK, rec.Code)
		var secs []section.Section
		decode(t, rec, &secs)
		require.Len(t, secs, 2)
		assert.Equal(t, other.ID, secs[0].ID)

		rec = doRequest(t, srv, http.MethodGet, "/v1/sections?instructor_id="+grace.ID)
		decode(t, rec, &secs)
		require.Len(t, secs, 1)
		assert.Equal(t, sec.ID, secs[0].ID)
	})

	t.Run("permitted dates", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/sections/"+sec.ID+"/schedule/dates?weekday=1&weekday=3&count=3")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dates []civil.Date
		decode(t, rec, &dates)
		assert.Equal(t, []civil.Date{{Year: 2030, Month: 1, Day: 7}, {Year: 2030, Month: 1, Day: 9}, {Year: 2030, Month: 1, Day: 14}}, dates)

		rec = doRequest(t, srv, http.MethodGet, "/v1/sections/"+sec.ID+"/schedule/dates?weekday=1&from=2030-01-15&count=1")
		decode(t, rec, &dates)
		assert.Equal(t, []civil.Date{{Year: 2030, Month: 1, Day: 21}}, dates)
	})

	runHTTPTests(t, srv, []httpTest{
		{name: "dates without weekday", method: http.MethodGet, path: "/v1/sections/" + sec.ID + "/schedule/dates", wantCode: http.StatusBadRequest},
		{name: "dates with bad weekday", method: http.MethodGet, path: "/v1/sections/" + sec.ID + "/schedule/dates?weekday=7", wantCode: http.StatusBadRequest},
		{name: "dates with bad count", method: http.MethodGet, path: "/v1/sections/" + sec.ID + "/schedule/dates?weekday=1&count=1000", wantCode: http.StatusBadRequest},
		{name: "dates with bad from", method: http.MethodGet, path: "/v1/sections/" + sec.ID + "/schedule/dates?weekday=1&from=tomorrow", wantCode: http.StatusBadRequest},
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/sections/lol", wantCode: http.StatusNotFound},
		{name: "preview unknown", method: http.MethodPost, path: "/v1/sections/lol/schedule/preview", body: map[string]string{}, wantCode: http.StatusNotFound},
	})
}

func TestSectionAPI_Schedule(t *testing.T) {
	srv, env := newTestServer(t)
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go Fundamentals", 6)
	grace := testutil.CreateInstructor(t, env.UserSvc, "Grace Hopper", "grace")
	sec := testutil.CreateSection(t, env.SectionSvc, crs.ID, grace.ID, civil.Date{Year: 2030, Month: 1, Day: 6}, "Room A")
	base := "/v1/sections/" + sec.ID

	input := map[string]interface{}{
		"weekdays": []int{1, 3}, "start_date": "2030-01-07", "start_time": "09:00", "total_meetings": 3,
	}

	var batch schedule.Batch
	t.Run("preview", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", input)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &batch)
		assert.Equal(t, 2, batch.HoursPerMeeting)
		require.Len(t, batch.Meetings, 3)
		assert.Equal(t, civil.Date{Year: 2030, Month: 1, Day: 14}, batch.Meetings[2].Date)
		assert.Equal(t, "11:00", batch.Meetings[0].EndTime.String())
	})

	t.Run("preview too early", func(t *testing.T) {
		early := map[string]interface{}{"weekdays": []int{1}, "start_date": "2030-01-02", "start_time": "09:00", "total_meetings": 1}
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", early)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Equal(t, "start date must be on or after 2030-01-06", errs["start_date"])
	})

	t.Run("preview invalid", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", map[string]interface{}{"weekdays": []int{9}, "total_meetings": 7})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "weekdays")
		assert.Contains(t, errs, "start_date")
		assert.Contains(t, errs, "start_time")
		assert.Contains(t, errs, "total_meetings")
	})

	t.Run("preview malformed time", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", `{"start_time": "25:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("preview infeasible", func(t *testing.T) {
		late := map[string]interface{}{"weekdays": []int{1}, "start_date": "2030-01-07", "start_time": "23:00", "total_meetings": 3}
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", late)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var herr httpErr
		decode(t, rec, &herr)
		assert.Equal(t, schedule.ErrInfeasible.Error(), herr.Error)
	})

	t.Run("confirm", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/confirm", map[string]interface{}{"meetings": batch.Meetings})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created []meeting.Meeting
		decode(t, rec, &created)
		require.Len(t, created, 3)
		assert.NotEmpty(t, created[0].ID)
		assert.Len(t, env.Mail.Sent(), 1)
	})

	t.Run("confirm again conflicts", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/confirm", map[string]interface{}{"meetings": batch.Meetings})
		require.Equal(t, http.StatusConflict, rec.Code)
		var resp struct {
			Error    string                    `json:"error"`
			Conflict schedule.CalendarInterval `json:"conflict"`
		}
		decode(t, rec, &resp)
		assert.True(t, strings.HasPrefix(resp.Error, "schedule conflict on 2030-01-07"), resp.Error)
		assert.Equal(t, 1, resp.Conflict.MeetingNumber)
		assert.True(t, resp.Conflict.Owned)
	})

	t.Run("preview over existing meetings conflicts", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/preview", input)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("confirm empty", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/schedule/confirm", map[string]interface{}{"meetings": []interface{}{}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add meeting", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, base+"/meetings", map[string]interface{}{
			"date": "2030-01-16", "start_time": "14:00", "end_time": "16:00", "location": "Lab 2",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var mtg meeting.Meeting
		decode(t, rec, &mtg)
		assert.Equal(t, 4, mtg.MeetingNumber)
		assert.Equal(t, "Lab 2", mtg.Location)
	})

	t.Run("section meetings", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, base+"/meetings?date_from=2030-01-09&date_to=2030-01-14")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var mtgs []meeting.Meeting
		decode(t, rec, &mtgs)
		require.Len(t, mtgs, 2)
		assert.Equal(t, 2, mtgs[0].MeetingNumber)
		assert.Equal(t, 1, mtgs[0].SectionNumber)
	})

	t.Run("calendar", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, base+"/calendar")
		require.Equal(t, http.StatusOK, rec.Code)
		var events []schedule.CalendarInterval
		decode(t, rec, &events)
		assert.Len(t, events, 4)
	})

	t.Run("calendar export", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, base+"/calendar.ics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".ics")

		cal, err := ics.ParseCalendar(strings.NewReader(rec.Body.String()))
		require.NoError(t, err)
		assert.Len(t, cal.Events(), 4)
	})

	t.Run("delete section meetings", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, base+"/meetings")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, base+"/meetings")
		var mtgs []meeting.Meeting
		decode(t, rec, &mtgs)
		assert.Empty(t, mtgs)
	})

	t.Run("delete section", func(t *testing.T) {
		testutil.CreateMeetings(t, env.Meetings, testutil.SectionMeeting(sec, 1, civil.Date{Year: 2030, Month: 1, Day: 7}, "09:00", "11:00"))

		rec := doRequest(t, srv, http.MethodDelete, base)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/v1/meetings")
		var mtgs []meeting.Meeting
		decode(t, rec, &mtgs)
		assert.Empty(t, mtgs)
	})
}

type brokenMeetings struct {
	meeting.Repository
}

func (brokenMeetings) CreateMeetings(context.Context, []meeting.Meeting, ...core.DBExecutor) ([]meeting.Meeting, error) {
	return nil, errors.New("connection reset by peer")
}

func TestSectionAPI_Schedule_SaveFails(t *testing.T) {
	_, env := newTestServer(t)
	schedSvc, err := schedule.NewService(env.Conf, brokenMeetings{env.Meetings}, env.SectionSvc, env.CourseSvc,
		env.UserSvc, env.Mail, env.DB, env.Validate, testutil.NopLogger{})
	require.NoError(t, err)
	srv := serverWith(env, schedSvc)

	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go Fundamentals", 6)
	sec := testutil.CreateSection(t, env.SectionSvc, crs.ID, "", civil.Date{Year: 2030, Month: 1, Day: 6}, "Room A")
	body := map[string]interface{}{"meetings": []map[string]string{
		{"date": "2030-01-07", "start_time": "09:00", "end_time": "11:00"},
	}}

	rec := doRequest(t, srv, http.MethodPost, "/v1/sections/"+sec.ID+"/schedule/confirm", body)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	var herr httpErr
	decode(t, rec, &herr)
	assert.Equal(t, "saving meetings: connection reset by peer", herr.Error)

	mtgs, err := env.Meetings.QueryMeetings(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, mtgs)
}
