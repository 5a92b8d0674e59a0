package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/models"
)

const (
	CtxSurvey   = "surveyObj"
	CtxQuestion = "questionObj"
	CtxChoice   = "choiceObj"
)

func ParseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// abortLookup answers 404 for missing rows and for rows owned by someone
// else, so ids of foreign surveys are not disclosed.
func abortLookup(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": what + " not found"})
		return
	}
	slog.Error("ownership lookup failed", "what", what, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Cannot read " + what})
}

// CheckSurveyOwner loads the survey in :id if the current user owns it.
func CheckSurveyOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		id, ok := ParseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
			return
		}

		var s models.Survey
		err := db.WithContext(c.Request.Context()).
			Where("id = ? AND owner_id = ?", id, u.ID).
			First(&s).Error
		if err != nil {
			abortLookup(c, err, "survey")
			return
		}
		c.Set(CtxSurvey, s)
		c.Next()
	}
}

// CheckQuestionOwner loads the question in :id, tracing back to its survey.
func CheckQuestionOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		id, ok := ParseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
			return
		}

		var q models.Question
		err := db.WithContext(c.Request.Context()).
			Joins("JOIN survey ON survey.id = question.survey_id").
			Where("question.id = ? AND survey.owner_id = ?", id, u.ID).
			First(&q).Error
		if err != nil {
			abortLookup(c, err, "question")
			return
		}
		c.Set(CtxQuestion, q)
		c.Next()
	}
}

// CheckChoiceOwner loads the choice in :id, tracing back through its
// question to the survey.
func CheckChoiceOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		id, ok := ParseID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
			return
		}

		var ch models.Choice
		err := db.WithContext(c.Request.Context()).
			Joins("JOIN question ON question.id = choice.question_id").
			Joins("JOIN survey ON survey.id = question.survey_id").
			Where("choice.id = ? AND survey.owner_id = ?", id, u.ID).
			First(&ch).Error
		if err != nil {
			abortLookup(c, err, "choice")
			return
		}
		c.Set(CtxChoice, ch)
		c.Next()
	}
}
