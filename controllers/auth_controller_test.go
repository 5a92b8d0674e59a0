package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/register/", "", api.Credentials{Username: "alice", Password: "secret1", RecaptchaToken: "ok"})
	expectStatus(t, w, http.StatusCreated)

	w = e.do(http.MethodPost, "/api/register/", "", api.Credentials{Username: "alice", Password: "secret1", RecaptchaToken: "ok"})
	expectStatus(t, w, http.StatusConflict)

	w = e.do(http.MethodPost, "/api-token-auth/", "", api.Credentials{Username: "alice", Password: "wrong!", RecaptchaToken: "ok"})
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(http.MethodPost, "/api-token-auth/", "", api.Credentials{Username: "alice", Password: "secret1", RecaptchaToken: "ok"})
	expectStatus(t, w, http.StatusOK)
	tok := decode[api.TokenResponse](t, w)
	require.NotEmpty(t, tok.Token)

	w = e.do(http.MethodGet, "/api/profile/me/", tok.Token, nil)
	expectStatus(t, w, http.StatusOK)
	assert.Equal(t, "alice", decode[api.Profile](t, w).Username)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name   string
		req    api.Credentials
		status int
	}{
		{"blank username", api.Credentials{Username: "  ", Password: "secret1", RecaptchaToken: "ok"}, http.StatusBadRequest},
		{"short password", api.Credentials{Username: "bob", Password: "123", RecaptchaToken: "ok"}, http.StatusBadRequest},
		{"password over 72 bytes", api.Credentials{Username: "bob", Password: strings.Repeat("x", 73), RecaptchaToken: "ok"}, http.StatusBadRequest},
		{"missing captcha", api.Credentials{Username: "bob", Password: "secret1"}, http.StatusBadRequest},
		{"rejected captcha", api.Credentials{Username: "bob", Password: "secret1", RecaptchaToken: "bad"}, http.StatusBadRequest},
		{"captcha unavailable", api.Credentials{Username: "bob", Password: "secret1", RecaptchaToken: "down"}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/register/", "", tc.req)
			expectStatus(t, w, tc.status)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	_, token := e.user("carol")

	expectStatus(t, e.do(http.MethodGet, "/api/surveys/", token, nil), http.StatusOK)
	expectStatus(t, e.do(http.MethodPost, "/api/logout/", token, nil), http.StatusNoContent)

	w := e.do(http.MethodGet, "/api/surveys/", token, nil)
	expectStatus(t, w, http.StatusUnauthorized)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)

	expectStatus(t, e.do(http.MethodGet, "/api/surveys/", "", nil), http.StatusUnauthorized)
	expectStatus(t, e.do(http.MethodGet, "/api/surveys/", "not-a-jwt", nil), http.StatusUnauthorized)
	expectStatus(t, e.do(http.MethodGet, "/api/profile/me/", "", nil), http.StatusUnauthorized)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, w, http.StatusOK)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["db"])

	w = e.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "survey_ballots_total")
}

func TestRegisterConcurrentDuplicateIsConflict(t *testing.T) {
	e := newEnv(t)

	// another registration for the same name lands between the existence
	// check and the insert
	inserted := false
	err := e.db.Callback().Create().Before("gorm:create").Register("test:register_race", func(tx *gorm.DB) {
		if inserted || tx.Statement.Table != "app_user" {
			return
		}
		inserted = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO app_user (username, password) VALUES (?, ?)", "gina", "x")
	})
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/api/register/", "", api.Credentials{Username: "gina", Password: "secret1", RecaptchaToken: "ok"})
	expectStatus(t, w, http.StatusConflict)
	assert.True(t, inserted)
}
