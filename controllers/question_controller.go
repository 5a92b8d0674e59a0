package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

// ownedSurvey returns the survey with id if userID owns it.
func (h *Handler) ownedSurvey(c *gin.Context, id, userID uint) (models.Survey, error) {
	var s models.Survey
	err := h.DB.WithContext(c.Request.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&s).Error
	if err != nil {
		return s, fmt.Errorf("survey %d: %w", id, err)
	}
	return s, nil
}

// GET /api/questions/?survey=
func (h *Handler) ListQuestions(c *gin.Context) {
	u := middleware.CurrentUser(c)

	q := h.DB.WithContext(c.Request.Context()).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Joins("JOIN survey ON survey.id = question.survey_id").
		Where("survey.owner_id = ?", u.ID)
	if raw := c.Query("survey"); raw != "" {
		sid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid survey id"})
			return
		}
		q = q.Where("question.survey_id = ?", sid)
	}

	var questions []models.Question
	if err := q.Order("question.id ASC").Find(&questions).Error; err != nil {
		internalError(c, "Cannot list questions", err, "user_id", u.ID)
		return
	}

	out := make([]api.Question, 0, len(questions))
	for _, item := range questions {
		out = append(out, item.Wire())
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/questions/
func (h *Handler) CreateQuestion(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req api.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	text, err := cleanText("question_text", req.QuestionText)
	if err != nil {
		fail(c, err, "Invalid question")
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = api.KindChoice
	}
	if !kind.Valid() {
		fail(c, fmt.Errorf("%w: unknown kind %q", utils.ErrValidation, kind), "Invalid question")
		return
	}

	s, err := h.ownedSurvey(c, req.SurveyID, u.ID)
	if err != nil {
		fail(c, err, "Survey not found")
		return
	}

	q := models.Question{SurveyID: s.ID, QuestionText: text, Kind: kind}
	if err := h.DB.WithContext(c.Request.Context()).Create(&q).Error; err != nil {
		internalError(c, "Cannot create question", err, "survey_id", s.ID)
		return
	}
	c.JSON(http.StatusCreated, q.Wire())
}

// GET /api/questions/:id/
func (h *Handler) GetQuestion(c *gin.Context) {
	q := c.MustGet(middleware.CtxQuestion).(models.Question)

	if err := h.DB.WithContext(c.Request.Context()).
		Where("question_id = ?", q.ID).
		Order("id ASC").
		Find(&q.Choices).Error; err != nil {
		internalError(c, "Cannot read question", err, "question_id", q.ID)
		return
	}
	c.JSON(http.StatusOK, q.Wire())
}

// PATCH /api/questions/:id/
func (h *Handler) UpdateQuestion(c *gin.Context) {
	u := middleware.CurrentUser(c)
	q := c.MustGet(middleware.CtxQuestion).(models.Question)
	db := h.DB.WithContext(c.Request.Context())

	var req api.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.QuestionText != nil {
		text, err := cleanText("question_text", *req.QuestionText)
		if err != nil {
			fail(c, err, "Invalid question")
			return
		}
		updates["question_text"] = text
	}
	if req.SurveyID != nil && *req.SurveyID != q.SurveyID {
		if _, err := h.ownedSurvey(c, *req.SurveyID, u.ID); err != nil {
			fail(c, err, "Survey not found")
			return
		}
		updates["survey_id"] = *req.SurveyID
	}
	if req.Kind != nil && *req.Kind != q.Kind {
		if !req.Kind.Valid() {
			fail(c, fmt.Errorf("%w: unknown kind %q", utils.ErrValidation, *req.Kind), "Invalid question")
			return
		}
		if *req.Kind == api.KindRating {
			var texts []string
			if err := db.Model(&models.Choice{}).Where("question_id = ?", q.ID).
				Pluck("choice_text", &texts).Error; err != nil {
				internalError(c, "Cannot read choices", err, "question_id", q.ID)
				return
			}
			for _, t := range texts {
				if !api.IsRatingLabel(t) {
					fail(c, fmt.Errorf("%w: choice %q is not a rating label", utils.ErrValidation, t), "Invalid question")
					return
				}
			}
		}
		updates["kind"] = *req.Kind
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	if err := db.Model(&models.Question{}).Where("id = ?", q.ID).Updates(updates).Error; err != nil {
		internalError(c, "Cannot update question", err, "question_id", q.ID)
		return
	}

	var out models.Question
	if err := db.Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&out, q.ID).Error; err != nil {
		internalError(c, "Cannot read question", err, "question_id", q.ID)
		return
	}
	c.JSON(http.StatusOK, out.Wire())
}

// DELETE /api/questions/:id/
func (h *Handler) DeleteQuestion(c *gin.Context) {
	q := c.MustGet(middleware.CtxQuestion).(models.Question)

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", q.ID).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, q.ID).Error
	})
	if err != nil {
		internalError(c, "Cannot delete question", err, "question_id", q.ID)
		return
	}
	c.Status(http.StatusNoContent)
}
