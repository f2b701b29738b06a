package model

import (
	"gorm.io/gorm"
)

type SessionState string

const (
	SessionCollecting SessionState = "collecting_selections"
	SessionConfirmed  SessionState = "confirmed"
	SessionCancelled  SessionState = "cancelled"
)

// Session tracks one applicant's in-progress clan application: the
// accounts they applied with and the clan each account is destined for.
type Session struct {
	gorm.Model
	Token      string `gorm:"uniqueIndex"`
	UserID     string `gorm:"index"`
	ChannelID  string `gorm:"index"`
	MessageID  string `gorm:"index"`
	State      SessionState
	Selections []Selection
}

// Complete reports whether every account has a clan chosen.
func (s *Session) Complete() bool {
	if len(s.Selections) == 0 {
		return false
	}
	for _, sel := range s.Selections {
		if sel.ClanTag == "" {
			return false
		}
	}
	return true
}

// Selected counts accounts with a non-empty clan mapping.
func (s *Session) Selected() int {
	n := 0
	for _, sel := range s.Selections {
		if sel.ClanTag != "" {
			n++
		}
	}
	return n
}

type Selection struct {
	gorm.Model
	SessionID  uint   `gorm:"index"`
	PlayerTag  string `gorm:"index"`
	PlayerName string
	ClanTag    string
}
