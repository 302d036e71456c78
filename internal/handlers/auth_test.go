package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/beanie/internal/identity"
	"github.com/example/beanie/internal/models"
	"github.com/example/beanie/internal/utils"
)

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == identity.CookieName {
			return cookie
		}
	}
	return nil
}

func TestRegisterCreatesProfileAndSession(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/auth/register", map[string]string{
		"full_name": "Ada Lovelace",
		"email":     "ada@example.com",
		"password":  "espresso",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "registration must sign the user in")
	assert.NotEmpty(t, cookie.Value)

	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "full_name = ?", "Ada Lovelace").Error)
	assert.Equal(t, models.RoleCustomer, profile.Role)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"short password", map[string]string{"full_name": "A", "email": "a@b.c", "password": "abc"}},
		{"bad email", map[string]string{"full_name": "A", "email": "not-an-email", "password": "longenough"}},
		{"missing name", map[string]string{"email": "a@b.c", "password": "longenough"}},
	}

	for _, tc := range cases {
		resp := f.request(t, http.MethodPost, "/api/auth/register", tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.name)

		payload := decode(t, resp)
		assert.NotEmpty(t, payload["field"], tc.name)
	}
}

func TestLoginRedirectTarget(t *testing.T) {
	f := newFixture(t)

	hash, err := utils.HashPassword("espresso")
	require.NoError(t, err)
	user := models.User{Email: "staff@example.com", PasswordHash: hash}
	require.NoError(t, f.db.Create(&user).Error)
	require.NoError(t, f.db.Create(&models.Profile{ID: user.ID, Role: models.RoleStaff}).Error)

	resp := f.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "staff@example.com",
		"password": "espresso",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sessionCookie(resp))

	payload := decode(t, resp)
	assert.Equal(t, "/staff/dashboard", payload["redirect"])

	// The redirect parameter from the gate wins over the role home.
	resp = f.request(t, http.MethodPost, "/api/auth/login?redirect=%2Fstaff%2Fdashboard%3Ftab%3Dqueue", map[string]string{
		"email":    "staff@example.com",
		"password": "espresso",
	}, nil)
	payload = decode(t, resp)
	assert.Equal(t, "/staff/dashboard?tab=queue", payload["redirect"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)

	hash, err := utils.HashPassword("espresso")
	require.NoError(t, err)
	user := models.User{Email: "ada@example.com", PasswordHash: hash}
	require.NoError(t, f.db.Create(&user).Error)

	resp := f.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))
}

func TestCallbackExchangesCodeAndBackfillsProfile(t *testing.T) {
	f := newFixture(t)

	// A user provisioned by the identity provider, with no profile row.
	user := models.User{Email: "oauth@example.com", PasswordHash: "external"}
	require.NoError(t, f.db.Create(&user).Error)

	code, err := f.ids.IssueExchangeCode(user.ID, user.Email)
	require.NoError(t, err)

	resp := f.request(t, http.MethodGet, "/auth/callback?code="+code, nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/menu", resp.Header.Get("Location"))
	require.NotNil(t, sessionCookie(resp))

	// The safety net created the missing profile.
	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "id = ?", user.ID).Error)
	assert.Equal(t, models.RoleCustomer, profile.Role)
}

func TestCallbackProviderError(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/auth/callback?error=access_denied&error_description=user+cancelled", nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login?error=")
	assert.Nil(t, sessionCookie(resp))
}

func TestCallbackInvalidCode(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/auth/callback?code="+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login?error=")
}
