package model

import (
	"gorm.io/gorm"
)

// StaffPosition is an applyable staff role with its interview form.
type StaffPosition struct {
	gorm.Model
	Name      string `gorm:"uniqueIndex"`
	Prefix    string
	Open      bool
	Questions []StaffQuestion
}

type StaffQuestion struct {
	gorm.Model
	StaffPositionID uint `gorm:"index"`
	Position        int
	Question        string
	Placeholder     string
	Paragraph       bool
}
