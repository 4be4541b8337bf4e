package models

import "gorm.io/gorm"

type Todo struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text;not null"`
	Completed   bool   `gorm:"not null;default:false"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Todo) TableName() string {
	return "todos"
}
