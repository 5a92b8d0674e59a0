package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/metrics"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

// maxTextLen bounds titles, question texts and choice texts.
const maxTextLen = 200

// Handler carries the dependencies shared by every controller.
type Handler struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
	Captcha   utils.CaptchaVerifier
	Blacklist utils.TokenBlacklist
	Uploader  utils.Uploader // nil when uploads are not configured
	Metrics   *metrics.Metrics
}

// internalError logs err and answers with a generic message.
func internalError(c *gin.Context, msg string, err error, attrs ...any) {
	slog.Error(msg, append([]any{"error", err}, attrs...)...)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}

// fail answers with the status mapped from err; 5xx are logged.
func fail(c *gin.Context, err error, msg string) {
	status := utils.StatusFor(err)
	if status >= http.StatusInternalServerError {
		internalError(c, msg, err)
		return
	}
	c.JSON(status, gin.H{"message": msg, "error": err.Error()})
}

// checkCaptcha verifies token for action and writes the error reply when it
// fails.
func (h *Handler) checkCaptcha(c *gin.Context, token, action string) bool {
	err := h.Captcha.Verify(c.Request.Context(), token, action)
	if err == nil {
		return true
	}
	h.Metrics.CaptchaFailed.WithLabelValues(action).Inc()
	if errors.Is(err, utils.ErrCaptcha) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Captcha verification failed", "error": err.Error()})
		return false
	}
	slog.Error("captcha verification unavailable", "action", action, "error", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Captcha verification unavailable"})
	return false
}

// cleanText trims s and enforces 1..maxTextLen characters.
func cleanText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s must not be blank", utils.ErrValidation, field)
	}
	if len([]rune(s)) > maxTextLen {
		return "", fmt.Errorf("%w: %s is longer than %d characters", utils.ErrValidation, field, maxTextLen)
	}
	return s, nil
}

// surveyTree loads a survey with questions and choices in creation order.
func surveyTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (h *Handler) loadSurveyTree(c *gin.Context, id uint) (models.Survey, error) {
	var s models.Survey
	err := surveyTree(h.DB.WithContext(c.Request.Context())).First(&s, id).Error
	return s, err
}
