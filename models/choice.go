package models

import "github.com/vnkhanh/survey-platform/api"

type Choice struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	ChoiceText string    `gorm:"column:choice_text;size:200;not null" json:"choice_text"`
	Votes      int       `gorm:"column:votes;not null;default:0" json:"votes"`
}

func (Choice) TableName() string {
	return "choice"
}

func (c Choice) Wire() api.Choice {
	return api.Choice{
		ID:         c.ID,
		QuestionID: c.QuestionID,
		ChoiceText: c.ChoiceText,
		Votes:      c.Votes,
	}
}
