package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/tests"
)

func TestUserAPI(t *testing.T) {
	srv, env := newTestServer(t)
	ada := testutil.CreateUser(t, env.UserSvc, "Ada Lovelace", "ada", user.RoleAdmin)

	t.Run("create", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/users", map[string]interface{}{
			"name": "Grace Hopper", "username": " Grace ", "email": "GRACE@academia.test", "roles": []string{user.RoleInstructor},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		decode(t, rec, &usr)
		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, "grace", usr.Username)
		assert.Equal(t, "grace@academia.test", usr.Email)
		assert.True(t, usr.IsActive)
		assert.True(t, usr.IsInstructor())
	})

	t.Run("create with taken username", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/users", map[string]interface{}{
			"name": "Ada", "username": "ada", "email": "other@academia.test",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errs map[string]string
		decode(t, rec, &errs)
		assert.Equal(t, user.ErrUsernameExists.Error(), errs["username"])
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/v1/users", map[string]interface{}{
			"name": " ", "username": "x", "email": "lol", "roles": []string{"wizard"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var errs map[string]string
		decode(t, rec, &errs)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "username")
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "roles")
	})

	t.Run("query", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/users?search=grace")
		require.Equal(t, http.StatusOK, rec.Code)
		var users []user.User
		decode(t, rec, &users)
		require.Len(t, users, 1)
		assert.Equal(t, "grace", users[0].Username)

		rec = doRequest(t, srv, http.MethodGet, "/v1/users?ordering=-username")
		decode(t, rec, &users)
		require.Len(t, users, 2)
		assert.Equal(t, "grace", users[0].Username)
	})

	t.Run("roles", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/users/roles")
		require.Equal(t, http.StatusOK, rec.Code)
		var roles []user.Role
		decode(t, rec, &roles)
		assert.Equal(t, user.Roles, roles)
	})

	t.Run("retrieve & update", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/v1/users/"+ada.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, srv, http.MethodPut, "/v1/users/"+ada.ID, map[string]interface{}{"phone": "+243 000", "is_active": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		decode(t, rec, &usr)
		assert.Equal(t, "ada", usr.Username)
		assert.Equal(t, "+243 000", usr.Phone)
		assert.False(t, usr.IsActive)
	})

	runHTTPTests(t, srv, []httpTest{
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/users/lol", wantCode: http.StatusNotFound},
		{name: "update unknown", method: http.MethodPut, path: "/v1/users/lol", body: map[string]string{}, wantCode: http.StatusNotFound},
		{name: "destroy", method: http.MethodDelete, path: "/v1/users/" + ada.ID, wantCode: http.StatusNoContent},
		{name: "destroy again", method: http.MethodDelete, path: "/v1/users/" + ada.ID, wantCode: http.StatusNotFound},
		{name: "destroy multiple without ids", method: http.MethodDelete, path: "/v1/users", wantCode: http.StatusNoContent},
	})

	t.Run("destroy multiple", func(t *testing.T) {
		a := testutil.CreateUser(t, env.UserSvc, "A", "aaa")
		b := testutil.CreateUser(t, env.UserSvc, "B", "bbb")
		rec := doRequest(t, srv, http.MethodDelete, "/v1/users?id="+a.ID+"&id="+b.ID)
		require.Equal(t, http.StatusNoContent, rec.Code)

		users, err := env.UserSvc.Query(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}
