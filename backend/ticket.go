package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
)

// OpenTicket records a freshly created ticket channel. The one-per-type
// rule is checked here against the registry, not against channel names.
func (backend *Backend) OpenTicket(guildID, channelID, ownerID string, ticketType model.TicketType) (*model.Ticket, error) {
	existing, err := backend.OpenTicketOf(ownerID, ticketType)
	if err == nil {
		return nil, fmt.Errorf("user %s already has an open %s ticket in channel %s: %w",
			ownerID, ticketType, existing.ChannelID, common.ErrValidation)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	ticket := &model.Ticket{
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
		Type:      ticketType,
	}
	err = backend.DB.Create(ticket).Error
	if err != nil {
		return nil, err
	}
	backend.Logger.Infof("Opened %s ticket %s for user %s", ticketType, channelID, ownerID)
	return ticket, nil
}

// OpenTicketOf finds a user's open ticket of the given type.
func (backend *Backend) OpenTicketOf(ownerID string, ticketType model.TicketType) (*model.Ticket, error) {
	var ticket model.Ticket
	err := backend.DB.Where("owner_id = ? AND type = ?", ownerID, ticketType).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no open %s ticket for %s: %w", ticketType, ownerID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TicketByChannel resolves the ticket backing a channel.
func (backend *Backend) TicketByChannel(channelID string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := backend.DB.Where("channel_id = ?", channelID).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("channel %s is not a ticket: %w", channelID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TicketsOf lists every open ticket a user owns.
func (backend *Backend) TicketsOf(ownerID string) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := backend.DB.Where("owner_id = ?", ownerID).Find(&tickets).Error
	return tickets, err
}

// ArmTicketTimer schedules a ticket for deletion after the given delay.
// Re-arming replaces the previous timer.
func (backend *Backend) ArmTicketTimer(channelID, ownerID, armedBy string, delay time.Duration) (*model.TicketTimer, error) {
	timer := &model.TicketTimer{
		ChannelID: channelID,
		OwnerID:   ownerID,
		ArmedBy:   armedBy,
		FireAt:    time.Now().Add(delay),
	}
	err := backend.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channelID).Unscoped().Delete(&model.TicketTimer{}).Error; err != nil {
			return err
		}
		return tx.Create(timer).Error
	})
	if err != nil {
		return nil, err
	}
	backend.Logger.Infof("Armed deletion timer on ticket %s, fires at %s", channelID, timer.FireAt)
	return timer, nil
}

// DisarmTicketTimer cancels a pending deletion, typically because the
// owner spoke in the channel. Reports whether a timer was armed.
func (backend *Backend) DisarmTicketTimer(channelID string) (bool, error) {
	result := backend.DB.Where("channel_id = ?", channelID).Unscoped().Delete(&model.TicketTimer{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		backend.Logger.Infof("Disarmed deletion timer on ticket %s", channelID)
	}
	return result.RowsAffected > 0, nil
}

// SweepTicketTimers pushes every elapsed timer to the bot and removes
// it. The bot deletes the channel; channel-delete cleanup handles the
// rest of the rows.
func (backend *Backend) SweepTicketTimers() error {
	var timers []model.TicketTimer
	err := backend.DB.Where("fire_at <= ?", time.Now()).Find(&timers).Error
	if err != nil {
		return err
	}
	for _, timer := range timers {
		ticket, err := backend.TicketByChannel(timer.ChannelID)
		if err != nil {
			backend.Logger.Infof("Timer for %s has no ticket row, dropping: %s", timer.ChannelID, err.Error())
			backend.DB.Unscoped().Delete(&timer)
			continue
		}
		backend.TicketChan <- common.TicketExpiredNotification{Timer: timer, Ticket: *ticket}
		if err := backend.DB.Unscoped().Delete(&timer).Error; err != nil {
			return err
		}
	}
	return nil
}

// CleanupChannel removes every row referencing a deleted channel:
// sessions, the ticket itself, its timer, and any trial event. One
// transaction, so a crash cannot leave partial references.
func (backend *Backend) CleanupChannel(channelID string) error {
	backend.Logger.Debugf("Start cleanup for channel %s", channelID)
	err := backend.DB.Transaction(func(tx *gorm.DB) error {
		var sessions []model.Session
		if err := tx.Where("channel_id = ?", channelID).Find(&sessions).Error; err != nil {
			return err
		}
		for _, session := range sessions {
			if err := tx.Where("session_id = ?", session.ID).Unscoped().Delete(&model.Selection{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&session).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("channel_id = ?", channelID).Unscoped().Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channelID).Unscoped().Delete(&model.TicketTimer{}).Error; err != nil {
			return err
		}
		return tx.Where("channel_id = ?", channelID).Unscoped().Delete(&model.TrialEvent{}).Error
	})
	backend.Logger.Debugf("Finish cleanup for channel %s", channelID)
	return err
}

// MemberChannels returns the ticket channels a departing member owned,
// for the bot to delete. Row cleanup rides the channel-delete events.
func (backend *Backend) MemberChannels(ownerID string) ([]string, error) {
	tickets, err := backend.TicketsOf(ownerID)
	if err != nil {
		return nil, err
	}
	channels := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		channels = append(channels, ticket.ChannelID)
	}
	return channels, nil
}
