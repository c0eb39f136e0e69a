package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/lead"
	"github.com/trezcool/academia/tests"
)

func TestLeadAPI(t *testing.T) {
	srv, env := newTestServer(t)
	crs := testutil.CreateCourse(t, env.CourseSvc, "go_101", "Go Fundamentals", 6)

	create := func(t *testing.T, body map[string]interface{}) lead.Lead {
		rec := doRequest(t, srv, http.MethodPost, "/v1/leads", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var ld lead.Lead
		decode(t, rec, &ld)
		return ld
	}

	ada := create(t, map[string]interface{}{"name": "Ada Lovelace", "email": "ADA@mail.test", "course_id": crs.ID, "source": "website"})
	assert.Equal(t, "ada@mail.test", ada.Email)
	assert.Equal(t, lead.StatusNew, ada.Status)

	adaAgain := create(t, map[string]interface{}{"name": "Ada Lovelace", "email": "ada@mail.test"})
	grace := create(t, map[string]interface{}{"name": "Grace Hopper", "email": "grace@mail.test", "status": "contacted"})
	typo := create(t, map[string]interface{}{"name": "Ada Lovelacee", "email": "ada.l@mail.test"})

	t.Run("duplicate email for the same course", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/leads", map[string]interface{}{"name": "Ada", "email": "ada@mail.test", "course_id": crs.ID})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Equal(t, lead.ErrDuplicate.Error(), errs["email"])
	})

	t.Run("invalid", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/leads", map[string]interface{}{"email": "lol", "status": "hot", "course_id": "lol"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "status")
	})

	t.Run("query", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/leads?status=contacted")
		require.Equal(t, http.StatusOK, rec.Code)
		var leads []lead.Lead
		decode(t, rec, &leads)
		require.Len(t, leads, 1)
		assert.Equal(t, grace.ID, leads[0].ID)

		rec = doRequest(t, srv, http.MethodGet, "/v1/leads?course_id="+crs.ID)
		decode(t, rec, &leads)
		require.Len(t, leads, 1)
		assert.Equal(t, ada.ID, leads[0].ID)

		rec = doRequest(t, srv, http.MethodGet, "/v1/leads?search=lovelace&ordering=email")
		decode(t, rec, &leads)
		require.Len(t, leads, 3)
		assert.Equal(t, typo.ID, leads[0].ID)
	})

	t.Run("similar", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/leads/"+ada.ID+"/similar")
		require.Equal(t, http.StatusOK, rec.Code)
		var leads []lead.Lead
		decode(t, rec, &leads)
		require.Len(t, leads, 2)
		assert.Equal(t, adaAgain.ID, leads[0].ID, "exact name first")
		assert.Equal(t, typo.ID, leads[1].ID)
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/v1/leads/"+grace.ID, map[string]interface{}{"status": "enrolled", "course_id": crs.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ld lead.Lead
		decode(t, rec, &ld)
		assert.Equal(t, lead.StatusEnrolled, ld.Status)
		assert.Equal(t, crs.ID, ld.CourseID)

		rec = doRequest(t, srv, http.MethodPut, "/v1/leads/"+adaAgain.ID, map[string]interface{}{"course_id": crs.ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "ada is already registered for the course")
	})

	runHTTPTests(t, srv, []httpTest{
		{name: "retrieve", method: http.MethodGet, path: "/v1/leads/" + ada.ID, wantCode: http.StatusOK},
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/leads/lol", wantCode: http.StatusNotFound},
		{name: "similar unknown", method: http.MethodGet, path: "/v1/leads/lol/similar", wantCode: http.StatusNotFound},
		{name: "destroy", method: http.MethodDelete, path: "/v1/leads/" + typo.ID, wantCode: http.StatusNoContent},
		{name: "destroy again", method: http.MethodDelete, path: "/v1/leads/" + typo.ID, wantCode: http.StatusNotFound},
	})
}
