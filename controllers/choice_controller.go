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

// ownedQuestion returns the question with id if its survey belongs to userID.
func (h *Handler) ownedQuestion(c *gin.Context, id, userID uint) (models.Question, error) {
	var q models.Question
	err := h.DB.WithContext(c.Request.Context()).
		Joins("JOIN survey ON survey.id = question.survey_id").
		Where("question.id = ? AND survey.owner_id = ?", id, userID).
		First(&q).Error
	if err != nil {
		return q, fmt.Errorf("question %d: %w", id, err)
	}
	return q, nil
}

// checkChoiceText cleans text and restricts rating questions to the 1..5 labels.
func checkChoiceText(q models.Question, raw string) (string, error) {
	text, err := cleanText("choice_text", raw)
	if err != nil {
		return "", err
	}
	if q.Kind == api.KindRating && !api.IsRatingLabel(text) {
		return "", fmt.Errorf("%w: rating questions only accept choices 1 to 5", utils.ErrValidation)
	}
	return text, nil
}

// GET /api/choices/?question=
func (h *Handler) ListChoices(c *gin.Context) {
	u := middleware.CurrentUser(c)

	q := h.DB.WithContext(c.Request.Context()).
		Joins("JOIN question ON question.id = choice.question_id").
		Joins("JOIN survey ON survey.id = question.survey_id").
		Where("survey.owner_id = ?", u.ID)
	if raw := c.Query("question"); raw != "" {
		qid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid question id"})
			return
		}
		q = q.Where("choice.question_id = ?", qid)
	}

	var choices []models.Choice
	if err := q.Order("choice.id ASC").Find(&choices).Error; err != nil {
		internalError(c, "Cannot list choices", err, "user_id", u.ID)
		return
	}

	out := make([]api.Choice, 0, len(choices))
	for _, ch := range choices {
		out = append(out, ch.Wire())
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/choices/
func (h *Handler) CreateChoice(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req api.CreateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	q, err := h.ownedQuestion(c, req.QuestionID, u.ID)
	if err != nil {
		fail(c, err, "Question not found")
		return
	}
	text, err := checkChoiceText(q, req.ChoiceText)
	if err != nil {
		fail(c, err, "Invalid choice")
		return
	}

	ch := models.Choice{QuestionID: q.ID, ChoiceText: text}
	if err := h.DB.WithContext(c.Request.Context()).Create(&ch).Error; err != nil {
		internalError(c, "Cannot create choice", err, "question_id", q.ID)
		return
	}
	c.JSON(http.StatusCreated, ch.Wire())
}

// GET /api/choices/:id/
func (h *Handler) GetChoice(c *gin.Context) {
	ch := c.MustGet(middleware.CtxChoice).(models.Choice)
	c.JSON(http.StatusOK, ch.Wire())
}

// PATCH /api/choices/:id/
func (h *Handler) UpdateChoice(c *gin.Context) {
	u := middleware.CurrentUser(c)
	ch := c.MustGet(middleware.CtxChoice).(models.Choice)
	db := h.DB.WithContext(c.Request.Context())

	var req api.UpdateChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	if req.QuestionID == nil && req.ChoiceText == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	targetID := ch.QuestionID
	if req.QuestionID != nil {
		targetID = *req.QuestionID
	}
	target, err := h.ownedQuestion(c, targetID, u.ID)
	if err != nil {
		fail(c, err, "Question not found")
		return
	}
	text := ch.ChoiceText
	if req.ChoiceText != nil {
		text = *req.ChoiceText
	}
	if text, err = checkChoiceText(target, text); err != nil {
		fail(c, err, "Invalid choice")
		return
	}

	if err := db.Model(&models.Choice{}).Where("id = ?", ch.ID).Updates(map[string]interface{}{
		"question_id": target.ID,
		"choice_text": text,
	}).Error; err != nil {
		internalError(c, "Cannot update choice", err, "choice_id", ch.ID)
		return
	}
	ch.QuestionID = target.ID
	ch.ChoiceText = text
	c.JSON(http.StatusOK, ch.Wire())
}

// DELETE /api/choices/:id/
func (h *Handler) DeleteChoice(c *gin.Context) {
	ch := c.MustGet(middleware.CtxChoice).(models.Choice)

	if err := h.DB.WithContext(c.Request.Context()).Delete(&models.Choice{}, ch.ID).Error; err != nil {
		internalError(c, "Cannot delete choice", err, "choice_id", ch.ID)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/choices/:id/vote/
func (h *Handler) VoteChoice(c *gin.Context) {
	id, ok := middleware.ParseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var ch models.Choice
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Joins("JOIN question ON question.id = choice.question_id").
			Joins("JOIN survey ON survey.id = question.survey_id").
			Where("choice.id = ? AND survey.is_active = ?", id, true).
			First(&ch).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Choice{}).Where("id = ?", ch.ID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Select("votes").First(&ch, ch.ID).Error
	})
	if err != nil {
		if utils.StatusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Choice not found"})
			return
		}
		internalError(c, "Cannot record vote", err, "choice_id", id)
		return
	}
	h.Metrics.VotesCast.Inc()

	c.JSON(http.StatusOK, api.VoteResponse{Status: "vote counted", Votes: ch.Votes})
}
