package model

import (
	"time"

	"gorm.io/gorm"
)

// TicketType is the closed set of ticket categories. Dispatch happens on
// this type through TicketKinds, never on raw strings.
type TicketType string

const (
	TicketClan         TicketType = "clan"
	TicketFWA          TicketType = "fwa"
	TicketStaff        TicketType = "staff"
	TicketCoaching     TicketType = "coaching"
	TicketPartnership  TicketType = "partnership"
	TicketSupport      TicketType = "support"
	TicketChampionsCWL TicketType = "champions_cwl"
)

// Ticket is one applicant's dedicated channel. OwnerID is the source of
// truth for ownership; channel names and topics are presentation only.
type Ticket struct {
	gorm.Model
	ChannelID string     `gorm:"uniqueIndex"`
	GuildID   string     `gorm:"index"`
	OwnerID   string     `gorm:"index"`
	Type      TicketType `gorm:"index"`
}

// TicketTimer arms a ticket for deletion after inactivity. Any new
// message from the owner deletes the row.
type TicketTimer struct {
	gorm.Model
	ChannelID string `gorm:"uniqueIndex"`
	OwnerID   string `gorm:"index"`
	ArmedBy   string
	FireAt    time.Time `gorm:"index"`
}
