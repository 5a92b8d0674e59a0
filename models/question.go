package models

import (
	"time"

	"github.com/vnkhanh/survey-platform/api"
)

type Question struct {
	ID           uint             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID     uint             `gorm:"column:survey_id;not null;index" json:"survey"`
	Survey       *Survey          `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
	QuestionText string           `gorm:"column:question_text;size:200;not null" json:"question_text"`
	Kind         api.QuestionKind `gorm:"column:kind;size:10;not null;default:'choice'" json:"kind"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"-"`
	Choices      []Choice         `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices"`
}

func (Question) TableName() string {
	return "question"
}

func (q Question) Wire() api.Question {
	out := api.Question{
		ID:           q.ID,
		SurveyID:     q.SurveyID,
		QuestionText: q.QuestionText,
		Kind:         q.Kind,
		Choices:      make([]api.Choice, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		out.Choices = append(out.Choices, c.Wire())
	}
	return out
}
