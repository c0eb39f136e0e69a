package echoapi_test

import (
	"net/http"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/tests"
)

func TestMeetingAPI(t *testing.T) {
	srv, env := newTestServer(t)
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go Fundamentals", 6)
	grace := testutil.CreateInstructor(t, env.UserSvc, "Grace Hopper", "grace")
	secA := testutil.CreateSection(t, env.SectionSvc, crs.ID, grace.ID, civil.Date{Year: 2030, Month: 1, Day: 6}, "Room A")
	secB := testutil.CreateSection(t, env.SectionSvc, crs.ID, "", civil.Date{Year: 2030, Month: 1, Day: 6}, "Room B")

	past := testutil.SectionMeeting(secA, 1, civil.Date{Year: 2029, Month: 12, Day: 20}, "09:00", "11:00")
	past.IsArchived = true
	mtgs := testutil.CreateMeetings(t, env.Meetings,
		past,
		testutil.SectionMeeting(secA, 2, civil.Date{Year: 2030, Month: 1, Day: 7}, "09:00", "11:00"),
		testutil.SectionMeeting(secA, 3, civil.Date{Year: 2030, Month: 1, Day: 9}, "09:00", "11:00"),
		testutil.SectionMeeting(secB, 1, civil.Date{Year: 2030, Month: 1, Day: 7}, "13:00", "15:00"),
	)
	archived, a2, a3, b1 := mtgs[0], mtgs[1], mtgs[2], mtgs[3]

	query := func(t *testing.T, path string) []meeting.Meeting {
		rec := doRequest(t, srv, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res []meeting.Meeting
		decode(t, rec, &res)
		return res
	}

	t.Run("query", func(t *testing.T) {
		assert.Len(t, query(t, "/v1/meetings"), 4)
		assert.Len(t, query(t, "/v1/meetings?instructor_id="+grace.ID), 3)
		assert.Len(t, query(t, "/v1/meetings?location=room+b"), 1)
		assert.Len(t, query(t, "/v1/meetings?is_archived=false"), 3)
		assert.Len(t, query(t, "/v1/meetings?date_from=2030-01-07&date_to=2030-01-07"), 2)

		res := query(t, "/v1/meetings?section_id="+secA.ID+"&ordering=-date")
		require.Len(t, res, 3)
		assert.Equal(t, a3.ID, res[0].ID)
	})

	t.Run("move", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/meetings/"+a3.ID, map[string]string{"date": "2030-01-10", "start_time": "10:00", "end_time": "12:00"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var mtg meeting.Meeting
		decode(t, rec, &mtg)
		assert.Equal(t, civil.Date{Year: 2030, Month: 1, Day: 10}, mtg.Date)
		assert.Equal(t, 3, mtg.MeetingNumber)
	})

	t.Run("move onto another meeting of the section", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/meetings/"+a3.ID, map[string]string{"date": "2030-01-07", "start_time": "10:00", "end_time": "12:00"})
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("move onto another room is fine", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/meetings/"+b1.ID, map[string]string{"start_time": "09:00", "end_time": "11:00"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("relocate into an occupied room", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/meetings/"+a2.ID, map[string]string{"location": "room b"})
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	runHTTPTests(t, srv, []httpTest{
		{name: "bad date filter", method: http.MethodGet, path: "/v1/meetings?date_from=01/07/2030", wantCode: http.StatusBadRequest},
		{name: "retrieve", method: http.MethodGet, path: "/v1/meetings/" + a2.ID, wantCode: http.StatusOK},
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/meetings/lol", wantCode: http.StatusNotFound},
		{name: "update archived", method: http.MethodPut, path: "/v1/meetings/" + archived.ID, body: map[string]string{"location": "Room C"}, wantCode: http.StatusConflict},
		{name: "update end before start", method: http.MethodPut, path: "/v1/meetings/" + a2.ID, body: map[string]string{"end_time": "08:00"}, wantCode: http.StatusBadRequest},
		{name: "update into the past", method: http.MethodPut, path: "/v1/meetings/" + a2.ID, body: map[string]string{"date": "2029-12-31"}, wantCode: http.StatusBadRequest},
		{name: "destroy", method: http.MethodDelete, path: "/v1/meetings/" + a2.ID, wantCode: http.StatusNoContent},
		{name: "destroy again", method: http.MethodDelete, path: "/v1/meetings/" + a2.ID, wantCode: http.StatusNotFound},
		{name: "destroy multiple", method: http.MethodDelete, path: "/v1/meetings?id=" + a3.ID + "&id=" + b1.ID + "&id=lol", wantCode: http.StatusNoContent},
	})

	t.Run("left", func(t *testing.T) {
		res := query(t, "/v1/meetings")
		require.Len(t, res, 1)
		assert.Equal(t, archived.ID, res[0].ID)
	})
}
