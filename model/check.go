package model

import (
	"gorm.io/gorm"
)

// MaxChecksPerClan is enforced when checks are added, not when they are
// evaluated.
const MaxChecksPerClan = 2

type EligibilityCheck struct {
	gorm.Model
	ClanID   uint   `gorm:"index"`
	Name     string `gorm:"index"`
	MinValue int
}
