package model

import (
	"gorm.io/gorm"
)

// ClanType is the closed set of alliance clan categories.
type ClanType string

const (
	ClanTypeCompetitive ClanType = "Competitive"
	ClanTypeFWA         ClanType = "FWA"
	ClanTypeCWL         ClanType = "CWL"
)

type Clan struct {
	gorm.Model
	Tag                   string `gorm:"uniqueIndex"`
	Name                  string `gorm:"index"`
	Prefix                string
	EmojiName             string
	LeaderID              string
	RoleID                string
	GatekeeperRoleID      string
	Type                  ClanType `gorm:"index"`
	RequiredTH            int
	MaxTH                 int
	Recruitment           bool `gorm:"index"`
	ChatChannelID         string
	AnnouncementChannelID string
	Messages              string
	Questions             string
	Language              string
	Checks                []EligibilityCheck
}
