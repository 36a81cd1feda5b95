package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-crm/pkg/auth"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

type testEnv struct {
	repo    *iam.InMemoryIamRepository
	service *iam.IamService
	users   map[rbac.Role]iam.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:  iam.NewInMemoryIamRepository(),
		users: map[rbac.Role]iam.User{},
	}
	env.service = iam.NewIamService(env.repo)
	for _, role := range rbac.AllRoles {
		u, err := env.repo.CreateUser(context.Background(), iam.User{
			Name:        role.Label(),
			Email:       role.String() + "@example.com",
			Role:        role,
			Status:      iam.StatusActive,
			Permissions: rbac.DefaultPermissions(role),
		})
		require.NoError(t, err)
		env.users[role] = u
	}
	return env
}

// do sends a request as the user holding role.
func (env *testEnv) do(t *testing.T, role rbac.Role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := Handler(NewHandle(env.service))
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = req.WithContext(auth.WithUser(req.Context(), env.users[role]))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListUsersCarriesGuardFlags(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, rbac.Manager, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []UserRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, len(rbac.AllRoles))
	for _, row := range rows {
		switch row.Role {
		case rbac.TeamLeader, rbac.CallCenter, rbac.Intern:
			assert.True(t, row.CanDelete, row.Role.String())
		default:
			assert.False(t, row.CanDelete, row.Role.String())
		}
	}
}

func TestListUsersFilters(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, rbac.TeamLeader, http.MethodGet, "/?role=hr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []UserRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "hr@example.com", rows[0].Email)

	rec = env.do(t, rbac.TeamLeader, http.MethodGet, "/?role=owner", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidRole, decodeError(t, rec).Code)
}

func TestDirectoryFollowsMenu(t *testing.T) {
	env := newTestEnv(t)
	hr := env.users[rbac.HR].ID.String()

	for role, want := range map[rbac.Role]int{
		rbac.Admin:      http.StatusOK,
		rbac.Manager:    http.StatusOK,
		rbac.TeamLeader: http.StatusOK,
		rbac.HR:         http.StatusOK,
		rbac.CallCenter: http.StatusForbidden,
		rbac.Intern:     http.StatusForbidden,
	} {
		assert.Equal(t, want, env.do(t, role, http.MethodGet, "/", "").Code, role.String())
		assert.Equal(t, want, env.do(t, role, http.MethodGet, "/"+hr, "").Code, role.String())
	}

	rec := env.do(t, rbac.Intern, http.MethodGet, "/", "")
	assert.Equal(t, DirectoryItem, decodeError(t, rec).Details["item"])
	assert.NotContains(t, rec.Body.String(), "@example.com")
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, rbac.HR, http.MethodPost, "/", `{"name":"Trainee","email":"trainee@example.com","role":"intern"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, rbac.Intern, user.Role)
	assert.Equal(t, []string{"notes_only"}, user.Permissions)
	assert.Equal(t, iam.StatusActive, user.Status)

	rec = env.do(t, rbac.HR, http.MethodPost, "/", `{"name":"Boss","email":"boss@example.com","role":"manager"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, errors.ErrCodeForbidden, resp.Code)
	assert.Equal(t, "role_not_assignable", resp.Details["reason"])

	rec = env.do(t, rbac.HR, http.MethodPost, "/", `{"name":"Ghost","email":"ghost@example.com","role":"wizard"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidRole, decodeError(t, rec).Code)

	rec = env.do(t, rbac.HR, http.MethodPost, "/", `{"name":"No Role","email":"norole@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, rbac.HR, http.MethodPost, "/", `{"name":"Dup","email":"intern@example.com","role":"intern"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChangeRole(t *testing.T) {
	env := newTestEnv(t)
	agent := env.users[rbac.CallCenter]

	rec := env.do(t, rbac.Manager, http.MethodPut, "/"+agent.ID.String()+"/role", `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, rbac.Manager, http.MethodPut, "/"+agent.ID.String()+"/role", `{"role":"team_leader"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, []string{"team_view", "call_monitoring"}, user.Permissions)

	rec = env.do(t, rbac.Manager, http.MethodPut, "/"+agent.ID.String()+"/role", `{"role":"chief"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelfMutationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.users[rbac.Admin]
	base := "/" + admin.ID.String()

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPut, base + "/role", `{"role":"intern"}`},
		{http.MethodPut, base + "/status", `{"status":"inactive"}`},
		{http.MethodPost, base + "/toggle-status", ""},
		{http.MethodDelete, base, ""},
	} {
		rec := env.do(t, rbac.Admin, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.path)
		assert.Equal(t, "self_mutation", decodeError(t, rec).Details["reason"], tc.path)
	}

	stored, err := env.service.GetUser(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.Admin, stored.Role)
	assert.Equal(t, iam.StatusActive, stored.Status)
}

func TestStatusAndDelete(t *testing.T) {
	env := newTestEnv(t)
	intern := env.users[rbac.Intern]

	rec := env.do(t, rbac.TeamLeader, http.MethodPut, "/"+intern.ID.String()+"/status", `{"status":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, rbac.TeamLeader, http.MethodPut, "/"+intern.ID.String()+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, rbac.TeamLeader, http.MethodPost, "/"+intern.ID.String()+"/toggle-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, iam.StatusActive, user.Status)

	rec = env.do(t, rbac.TeamLeader, http.MethodDelete, "/"+intern.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, rbac.TeamLeader, http.MethodDelete, "/"+intern.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, rbac.TeamLeader, http.MethodDelete, "/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequiresActor(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	Handler(NewHandle(env.service)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
