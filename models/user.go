package models

import (
	"time"

	"github.com/vnkhanh/survey-platform/api"
)

type User struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username        string    `gorm:"column:username;size:150;uniqueIndex;not null" json:"username"`
	Password        string    `gorm:"column:password;size:255;not null" json:"-"` // bcrypt hash
	Avatar          *string   `gorm:"column:avatar;type:text" json:"avatar"`
	BackgroundImage *string   `gorm:"column:background_image;type:text" json:"background_image"`
	Color1          string    `gorm:"column:color_1;size:7" json:"color_1"`
	Color2          string    `gorm:"column:color_2;size:7" json:"color_2"`
	Color3          string    `gorm:"column:color_3;size:7" json:"color_3"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`

	Surveys []Survey `gorm:"foreignKey:OwnerID" json:"-"`
}

func (User) TableName() string {
	return "app_user"
}

func (u User) Profile() api.Profile {
	return api.Profile{
		Username:        u.Username,
		Avatar:          u.Avatar,
		BackgroundImage: u.BackgroundImage,
		Color1:          u.Color1,
		Color2:          u.Color2,
		Color3:          u.Color3,
	}
}
