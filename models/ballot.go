package models

import "time"

// Ballot records one accepted submit_votes call. Choices are not linked;
// only per-choice counters are kept.
type Ballot struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID    uint      `gorm:"column:survey_id;not null;index" json:"survey"`
	SubmittedAt time.Time `gorm:"column:submitted_at;autoCreateTime" json:"submitted_at"`
}

func (Ballot) TableName() string {
	return "ballot"
}

// All lists every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Survey{},
		&Question{},
		&Choice{},
		&Ballot{},
	}
}
