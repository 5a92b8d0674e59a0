package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/survey-platform/api"
)

type Survey struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID     uint      `gorm:"column:owner_id;not null;index" json:"-"`
	Title       string    `gorm:"column:title;size:200;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	AccessCode  string    `gorm:"column:access_code;size:36;uniqueIndex;not null" json:"access_code"`
	IsActive    bool      `gorm:"column:is_active;not null;default:false" json:"is_active"`
	Color1      string    `gorm:"column:color_1;size:7" json:"color_1,omitempty"`
	Color2      string    `gorm:"column:color_2;size:7" json:"color_2,omitempty"`
	Color3      string    `gorm:"column:color_3;size:7" json:"color_3,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	// relations
	Questions []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
	Ballots   []Ballot   `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Survey) TableName() string {
	return "survey"
}

// BeforeCreate assigns the public access code.
func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	if s.AccessCode == "" {
		s.AccessCode = uuid.NewString()
	}
	return nil
}

// Wire converts a survey with preloaded questions and choices.
func (s Survey) Wire() api.Survey {
	out := api.Survey{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		AccessCode:  s.AccessCode,
		IsActive:    s.IsActive,
		Color1:      s.Color1,
		Color2:      s.Color2,
		Color3:      s.Color3,
		Questions:   make([]api.Question, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		out.Questions = append(out.Questions, q.Wire())
	}
	return out
}
