package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/survey-platform/config"
	"github.com/vnkhanh/survey-platform/controllers"
	"github.com/vnkhanh/survey-platform/metrics"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/routes"
	"github.com/vnkhanh/survey-platform/utils"
)

const testSecret = "test-secret"

// fakeCaptcha accepts any token except "bad" (rejected) and "down"
// (verifier unavailable).
type fakeCaptcha struct{}

func (fakeCaptcha) Verify(_ context.Context, token, _ string) error {
	switch token {
	case "":
		return fmt.Errorf("%w: missing token", utils.ErrCaptcha)
	case "bad":
		return fmt.Errorf("%w: low score", utils.ErrCaptcha)
	case "down":
		return errors.New("assessment service unreachable")
	}
	return nil
}

type fakeUploader struct {
	paths []string
}

func (f *fakeUploader) Upload(objectPath string, r io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	return "https://cdn.test/" + objectPath, nil
}

type env struct {
	t        *testing.T
	db       *gorm.DB
	h        *controllers.Handler
	router   *gin.Engine
	uploader *fakeUploader
}

// newEnv serves the real routes over a private in-memory SQLite database.
func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return newEnvDB(t, db)
}

func newEnvDB(t *testing.T, db *gorm.DB) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &fakeUploader{}
	h := &controllers.Handler{
		DB:        db,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
		Captcha:   fakeCaptcha{},
		Blacklist: utils.NewMemoryBlacklist(),
		Uploader:  up,
		Metrics:   metrics.New(),
	}
	r := gin.New()
	routes.SetupRoutes(r, h, routes.Limiters{
		Create: middleware.NewIPRateLimiter(1000, 1000, time.Minute),
		Vote:   middleware.NewIPRateLimiter(1000, 1000, time.Minute),
	})
	return &env{t: t, db: db, h: h, router: r, uploader: up}
}

// user creates an account and returns it with a valid token.
func (e *env) user(name string) (models.User, string) {
	e.t.Helper()
	hash, err := utils.HashPassword("password1")
	require.NoError(e.t, err)
	u := models.User{Username: name, Password: hash}
	require.NoError(e.t, e.db.Create(&u).Error)
	token, err := utils.GenerateToken(testSecret, u.ID, time.Hour)
	require.NoError(e.t, err)
	return u, token
}

// survey stores a survey owned by ownerID. Each question is given as its
// text followed by its choice texts.
func (e *env) survey(ownerID uint, active bool, questions ...[]string) models.Survey {
	e.t.Helper()
	s := models.Survey{OwnerID: ownerID, Title: "Survey", IsActive: active}
	for _, q := range questions {
		mq := models.Question{QuestionText: q[0], Kind: "choice"}
		for _, c := range q[1:] {
			mq.Choices = append(mq.Choices, models.Choice{ChoiceText: c})
		}
		s.Questions = append(s.Questions, mq)
	}
	require.NoError(e.t, e.db.Create(&s).Error)
	return s
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *env) votes(choiceID uint) int {
	e.t.Helper()
	var c models.Choice
	require.NoError(e.t, e.db.First(&c, choiceID).Error)
	return c.Votes
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
