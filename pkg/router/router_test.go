package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-crm/pkg/audit"
	"github.com/tendant/simple-crm/pkg/bootstrap"
	pkgconfig "github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/profile"
	"github.com/tendant/simple-crm/pkg/ratelimit"
	"github.com/tendant/simple-crm/pkg/rbac"
	"golang.org/x/crypto/bcrypt"
)

const testDomain = "crm.test"

// newTestServer builds the in-memory CRM and seeds the demo directory.
func newTestServer(t *testing.T) (http.Handler, Config) {
	t.Helper()
	cfg, services, err := NewMinimalConfig(MinimalOptions{
		JWT: pkgconfig.JWTConfig{
			Secret:            "test-secret-key-for-testing-only",
			Issuer:            "simple-crm",
			Audience:          "simple-crm",
			AccessTokenExpiry: "PT1H",
			CookieHttpOnly:    true,
		},
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	_, err = bootstrap.SeedDemoData(context.Background(), bootstrap.DemoBootstrapConfig{
		Seed:            pkgconfig.SeedConfig{Enabled: true, DemoPassword: "password123", EmailDomain: testDomain},
		IamService:      services.Iam,
		Credentials:     services.Credentials,
		EmployeeService: services.Employees,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	SetupRoutes(r, cfg)
	return r, cfg
}

func login(t *testing.T, h http.Handler, cfg Config, role rbac.Role) string {
	t.Helper()
	body := `{"email":"` + role.String() + "@" + testDomain + `","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, cfg.PrefixConfig.Auth+"/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func call(h http.Handler, token, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestSetupRoutes tests that all routes are properly mounted
func TestSetupRoutes(t *testing.T) {
	h, cfg := newTestServer(t)
	p := cfg.PrefixConfig

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Login without body", http.MethodPost, p.Auth + "/login", http.StatusBadRequest},
		{"Logout", http.MethodPost, p.Auth + "/logout", http.StatusNoContent},
		{"Me requires token", http.MethodGet, p.Me, http.StatusUnauthorized},
		{"Users require token", http.MethodGet, p.Users, http.StatusUnauthorized},
		{"Roles require token", http.MethodGet, p.Roles, http.StatusUnauthorized},
		{"Employees require token", http.MethodGet, p.Employees, http.StatusUnauthorized},
		{"Candidates require token", http.MethodGet, p.Candidates, http.StatusUnauthorized},
		{"Private requires token", http.MethodGet, "/private", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(h, "", tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, cfg := newTestServer(t)
	rec := call(h, "", http.MethodPost, cfg.PrefixConfig.Auth+"/login",
		`{"email":"admin@crm.test","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeAndMenuFollowRole(t *testing.T) {
	h, cfg := newTestServer(t)

	for _, role := range rbac.AllRoles {
		token := login(t, h, cfg, role)

		rec := call(h, token, http.MethodGet, cfg.PrefixConfig.Me, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var me profile.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, role, me.User.Role)
		assert.ElementsMatch(t, rbac.ManageableRoles(role), me.ManageableRoles)

		rec = call(h, token, http.MethodGet, cfg.PrefixConfig.Me+"/menu", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var menu profile.Menu
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
		assert.Equal(t, rbac.Default().VisibleMenuSections(role), menu.Sections)
	}
}

// TestRouteAccessControl walks a role change end to end: the change takes
// effect on the next request without a new login.
func TestRouteAccessControl(t *testing.T) {
	h, cfg := newTestServer(t)
	p := cfg.PrefixConfig

	hrToken := login(t, h, cfg, rbac.HR)
	agentToken := login(t, h, cfg, rbac.CallCenter)
	managerToken := login(t, h, cfg, rbac.Manager)
	adminToken := login(t, h, cfg, rbac.Admin)

	assert.Equal(t, http.StatusOK, call(h, hrToken, http.MethodGet, p.Candidates, "").Code)
	assert.Equal(t, http.StatusForbidden, call(h, agentToken, http.MethodGet, p.Candidates, "").Code)
	assert.Equal(t, http.StatusForbidden, call(h, agentToken, http.MethodGet, p.Employees, "").Code)

	// Call center agents have no teammates item, so no directory either.
	assert.Equal(t, http.StatusForbidden, call(h, agentToken, http.MethodGet, p.Users, "").Code)

	rec := call(h, adminToken, http.MethodGet, p.Users+"?role=call_center", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []struct {
		ID   string    `json:"id"`
		Role rbac.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	agentID := rows[0].ID

	// A call center agent cannot change its own role.
	rec = call(h, agentToken, http.MethodPut, p.Users+"/"+agentID+"/role", `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// hr is outside the manager's hierarchy.
	rec = call(h, managerToken, http.MethodPut, p.Users+"/"+agentID+"/role", `{"role":"hr"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(h, adminToken, http.MethodPut, p.Users+"/"+agentID+"/role", `{"role":"hr"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusOK, call(h, agentToken, http.MethodGet, p.Candidates, "").Code)

	rec = call(h, adminToken, http.MethodPut, p.Users+"/"+agentID+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, agentToken, http.MethodGet, p.Me, "").Code)
}

func TestRoleCatalogRoutes(t *testing.T) {
	h, cfg := newTestServer(t)
	token := login(t, h, cfg, rbac.TeamLeader)

	rec := call(h, token, http.MethodGet, cfg.PrefixConfig.Roles, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var roles []struct {
		Tag       rbac.Role `json:"tag"`
		UserCount int       `json:"user_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	require.Len(t, roles, len(rbac.AllRoles))
	for _, r := range roles {
		assert.Equal(t, 1, r.UserCount, r.Tag.String())
	}

	rec = call(h, token, http.MethodGet, cfg.PrefixConfig.Roles+"/assignable", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"intern"`)
	assert.NotContains(t, rec.Body.String(), `"admin"`)

	assert.Equal(t, http.StatusBadRequest, call(h, token, http.MethodGet, cfg.PrefixConfig.Roles+"/superuser", "").Code)

	rec = call(h, token, http.MethodGet, cfg.PrefixConfig.Roles+"/hr/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hr@"+testDomain)

	internToken := login(t, h, cfg, rbac.Intern)
	assert.Equal(t, http.StatusOK, call(h, internToken, http.MethodGet, cfg.PrefixConfig.Roles, "").Code)
	rec = call(h, internToken, http.MethodGet, cfg.PrefixConfig.Roles+"/hr/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hr@"+testDomain)
}

// TestRecreatedEmailStartsWithoutPassword deletes a seeded user and reuses
// its email for a new admin: the old password must not sign in.
func TestRecreatedEmailStartsWithoutPassword(t *testing.T) {
	h, cfg := newTestServer(t)
	p := cfg.PrefixConfig
	adminToken := login(t, h, cfg, rbac.Admin)
	internEmail := "intern@" + testDomain

	rec := call(h, adminToken, http.MethodGet, p.Users+"?role=intern", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)

	rec = call(h, adminToken, http.MethodDelete, p.Users+"/"+rows[0].ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(h, "", http.MethodPost, p.Auth+"/login", `{"email":"`+internEmail+`","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(h, adminToken, http.MethodPost, p.Users, `{"name":"New Boss","email":"`+internEmail+`","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(h, "", http.MethodPost, p.Auth+"/login", `{"email":"`+internEmail+`","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestPrefixConfiguration(t *testing.T) {
	prefixes := pkgconfig.BuildPrefixesFromBase("/crm/")
	cfg, _, err := NewMinimalConfig(MinimalOptions{
		JWT:          pkgconfig.JWTConfig{Secret: "s", Issuer: "i", AccessTokenExpiry: "1h"},
		PrefixConfig: &prefixes,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	SetupRoutes(r, cfg)
	assert.Equal(t, http.StatusUnauthorized, call(r, "", http.MethodGet, "/crm/users", "").Code)
	assert.Equal(t, http.StatusNotFound, call(r, "", http.MethodGet, "/api/v1/crm/users", "").Code)
}

func TestNewMinimalConfigRejectsBadExpiry(t *testing.T) {
	_, _, err := NewMinimalConfig(MinimalOptions{
		JWT: pkgconfig.JWTConfig{Secret: "s", AccessTokenExpiry: "soon"},
	})
	assert.Error(t, err)
}

func TestLoginRateLimit(t *testing.T) {
	limits := ratelimit.DefaultConfig()
	limits.LoginCapacity = 2
	limits.LoginRefillRate = 0
	cfg, _, err := NewMinimalConfig(MinimalOptions{
		JWT:       pkgconfig.JWTConfig{Secret: "s", Issuer: "i", AccessTokenExpiry: "1h"},
		RateLimit: &limits,
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.RateLimit)

	r := chi.NewRouter()
	SetupRoutes(r, cfg)
	body := `{"email":"nobody@crm.test","password":"password123"}`
	assert.Equal(t, http.StatusUnauthorized, call(r, "", http.MethodPost, "/api/v1/crm/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "", http.MethodPost, "/api/v1/crm/auth/login", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, call(r, "", http.MethodPost, "/api/v1/crm/auth/login", body).Code)
}

func TestAuditTrail(t *testing.T) {
	recorder := audit.NewMemoryRecorder(0)
	cfg, services, err := NewMinimalConfig(MinimalOptions{
		JWT:        pkgconfig.JWTConfig{Secret: "s", Issuer: "i", AccessTokenExpiry: "1h"},
		BcryptCost: bcrypt.MinCost,
		Audit:      recorder,
	})
	require.NoError(t, err)
	_, err = bootstrap.SeedDemoData(context.Background(), bootstrap.DemoBootstrapConfig{
		Seed:            pkgconfig.SeedConfig{Enabled: true, DemoPassword: "password123", EmailDomain: testDomain},
		IamService:      services.Iam,
		Credentials:     services.Credentials,
		EmployeeService: services.Employees,
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	SetupRoutes(r, cfg)
	token := login(t, r, cfg, rbac.HR)

	call(r, token, http.MethodGet, cfg.PrefixConfig.Employees, "")
	rec := call(r, token, http.MethodPost, cfg.PrefixConfig.Employees,
		`{"name":"Ada","email":"ada@crm.test","department":"Sales","position":"Rep"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, rbac.HR, events[0].ActorRole)
	assert.Equal(t, http.StatusCreated, events[0].Status)
	assert.Equal(t, cfg.PrefixConfig.Employees, events[0].URI)
}
