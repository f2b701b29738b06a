package model

import (
	"gorm.io/gorm"
)

// GuildSettings binds the bot to one guild's roles, categories and
// channels. Everything is a Discord snowflake stored as string.
type GuildSettings struct {
	gorm.Model
	GuildID string `gorm:"uniqueIndex"`

	ModeratorRoleID      string
	AdministrationRoleID string
	RecruitmentRoleID    string
	DevelopmentRoleID    string
	LeaderRoleID         string
	CoachRoleID          string
	FWARepRoleID         string
	FamilyRoleID         string
	VisitorRoleID        string

	ClanTicketsCategoryID string
	FWATicketsCategoryID  string
	StaffApplyCategoryID  string
	StaffTrialsCategoryID string
	AfterCWLCategoryID    string
	SupportCategoryID     string

	WelcomeChannelID string
	WelcomeWebhookID string

	MinFWATownHall int
}
