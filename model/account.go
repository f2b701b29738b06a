package model

import (
	"gorm.io/gorm"
)

// LinkedAccount binds one game account to one Discord user. The unique
// index on PlayerTag is what keeps the reverse mapping single-owner.
type LinkedAccount struct {
	gorm.Model
	PlayerTag  string `gorm:"uniqueIndex"`
	PlayerName string
	UserID     string `gorm:"index"`
}
