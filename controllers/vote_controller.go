package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

// POST /api/surveys/:id/submit_votes/
func (h *Handler) SubmitVotes(c *gin.Context) {
	id, ok := middleware.ParseID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var req api.SubmitVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var s models.Survey
	err := surveyTree(h.DB.WithContext(c.Request.Context())).
		Where("id = ? AND is_active = ?", id, true).
		First(&s).Error
	if err != nil {
		if utils.StatusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Survey does not exist or is not active"})
			return
		}
		internalError(c, "Cannot read survey", err, "survey_id", id)
		return
	}

	// question id -> allowed choice ids
	allowed := make(map[uint]map[uint]bool, len(s.Questions))
	for _, q := range s.Questions {
		set := make(map[uint]bool, len(q.Choices))
		for _, ch := range q.Choices {
			set[ch.ID] = true
		}
		allowed[q.ID] = set
	}

	picked := make(map[uint]uint, len(req.Answers))
	for _, a := range req.Answers {
		choices, known := allowed[a.QuestionID]
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Question does not belong to this survey", "question_id": a.QuestionID})
			return
		}
		if _, dup := picked[a.QuestionID]; dup {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Question answered more than once", "question_id": a.QuestionID})
			return
		}
		if !choices[a.ChoiceID] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Choice does not belong to question", "question_id": a.QuestionID, "choice_id": a.ChoiceID})
			return
		}
		picked[a.QuestionID] = a.ChoiceID
	}

	missing := make([]uint, 0)
	for _, q := range s.Questions {
		if _, ok := picked[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Message:          "All questions must be answered",
			MissingQuestions: missing,
		})
		return
	}

	if !h.checkCaptcha(c, req.RecaptchaToken, utils.ActionVote) {
		return
	}

	choiceIDs := make([]uint, 0, len(picked))
	for _, cid := range picked {
		choiceIDs = append(choiceIDs, cid)
	}
	sort.Slice(choiceIDs, func(i, j int) bool { return choiceIDs[i] < choiceIDs[j] })

	counts := make(map[uint]int, len(choiceIDs))
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for _, cid := range choiceIDs {
			if err := tx.Model(&models.Choice{}).Where("id = ?", cid).
				UpdateColumn("votes", gorm.Expr("votes + ?", 1)).Error; err != nil {
				return err
			}
		}
		var updated []models.Choice
		if err := tx.Select("id", "votes").Where("id IN ?", choiceIDs).Find(&updated).Error; err != nil {
			return err
		}
		for _, ch := range updated {
			counts[ch.ID] = ch.Votes
		}
		return tx.Create(&models.Ballot{SurveyID: s.ID}).Error
	})
	if err != nil {
		internalError(c, "Cannot record votes", err, "survey_id", s.ID)
		return
	}
	h.Metrics.BallotsCast.Inc()
	h.Metrics.VotesCast.Add(float64(len(choiceIDs)))

	c.JSON(http.StatusOK, api.SubmitVotesResponse{Status: "votes counted", Counts: counts})
}
