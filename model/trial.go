package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	TrialActionStart = "start"
	TrialActionEnd   = "end"
)

// TrialEvent is the single pending timer for a staff trial. The unique
// index keeps at most one event per (channel, member) pair.
type TrialEvent struct {
	gorm.Model
	ChannelID string    `gorm:"index:idx_trial_channel_member,unique"`
	MemberID  string    `gorm:"index:idx_trial_channel_member,unique"`
	FireAt    time.Time `gorm:"index"`
	Action    string
	Type      string
	Days      int
}
