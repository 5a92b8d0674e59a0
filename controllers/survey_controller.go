package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

// GET /api/surveys/
func (h *Handler) ListSurveys(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var surveys []models.Survey
	if err := surveyTree(h.DB.WithContext(c.Request.Context())).
		Where("owner_id = ?", u.ID).
		Order("id ASC").
		Find(&surveys).Error; err != nil {
		internalError(c, "Cannot list surveys", err, "user_id", u.ID)
		return
	}

	out := make([]api.Survey, 0, len(surveys))
	for _, s := range surveys {
		out = append(out, s.Wire())
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/surveys/
func (h *Handler) CreateSurvey(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req api.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	title, err := cleanText("title", req.Title)
	if err != nil {
		fail(c, err, "Invalid survey")
		return
	}
	var colors [3]string
	for i, raw := range []string{req.Color1, req.Color2, req.Color3} {
		if colors[i], err = utils.NormalizeColor(raw); err != nil {
			fail(c, err, "Invalid survey")
			return
		}
	}
	if !h.checkCaptcha(c, req.RecaptchaToken, utils.ActionCreateSurvey) {
		return
	}

	s := models.Survey{
		OwnerID:     u.ID,
		Title:       title,
		Description: req.Description,
		IsActive:    req.IsActive,
		Color1:      colors[0],
		Color2:      colors[1],
		Color3:      colors[2],
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		internalError(c, "Cannot create survey", err, "user_id", u.ID)
		return
	}
	h.Metrics.SurveysCreated.Inc()

	c.JSON(http.StatusCreated, s.Wire())
}

// GET /api/surveys/:id/
func (h *Handler) GetSurvey(c *gin.Context) {
	s := c.MustGet(middleware.CtxSurvey).(models.Survey)

	full, err := h.loadSurveyTree(c, s.ID)
	if err != nil {
		fail(c, err, "Cannot read survey")
		return
	}
	c.JSON(http.StatusOK, full.Wire())
}

// PATCH /api/surveys/:id/
func (h *Handler) UpdateSurvey(c *gin.Context) {
	s := c.MustGet(middleware.CtxSurvey).(models.Survey)

	var req api.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title, err := cleanText("title", *req.Title)
		if err != nil {
			fail(c, err, "Invalid survey")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	colorPatches := []struct {
		column string
		base   string
		patch  *string
	}{
		{"color_1", s.Color1, req.Color1},
		{"color_2", s.Color2, req.Color2},
		{"color_3", s.Color3, req.Color3},
	}
	for _, cp := range colorPatches {
		if cp.patch == nil {
			continue
		}
		v, err := utils.MergeColor(cp.base, cp.patch)
		if err != nil {
			fail(c, err, "Invalid survey")
			return
		}
		updates[cp.column] = v
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Model(&models.Survey{}).
		Where("id = ?", s.ID).
		Updates(updates).Error; err != nil {
		internalError(c, "Cannot update survey", err, "survey_id", s.ID)
		return
	}

	full, err := h.loadSurveyTree(c, s.ID)
	if err != nil {
		fail(c, err, "Cannot read survey")
		return
	}
	c.JSON(http.StatusOK, full.Wire())
}

// DELETE /api/surveys/:id/
func (h *Handler) DeleteSurvey(c *gin.Context) {
	s := c.MustGet(middleware.CtxSurvey).(models.Survey)

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		questionIDs := tx.Model(&models.Question{}).Select("id").Where("survey_id = ?", s.ID)
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", s.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", s.ID).Delete(&models.Ballot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Survey{}, s.ID).Error
	})
	if err != nil {
		internalError(c, "Cannot delete survey", err, "survey_id", s.ID)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/surveys/vote_access/?code=
func (h *Handler) VoteAccess(c *gin.Context) {
	code := c.Query("code")
	if _, err := uuid.Parse(code); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Survey does not exist or is not active"})
		return
	}

	var s models.Survey
	err := surveyTree(h.DB.WithContext(c.Request.Context())).
		Where("access_code = ? AND is_active = ?", code, true).
		First(&s).Error
	if err != nil {
		if utils.StatusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Survey does not exist or is not active"})
			return
		}
		internalError(c, "Cannot read survey", err)
		return
	}
	c.JSON(http.StatusOK, s.Wire())
}
