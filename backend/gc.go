package backend

import (
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
)

// CleanupOrphans drops rows whose channel no longer exists. The bot
// passes the set of live channel IDs; everything else is stale.
func (backend *Backend) CleanupOrphans(liveChannels map[string]bool) error {
	backend.Logger.Debugf("Start orphan cleanup against %d live channels", len(liveChannels))
	removed := 0

	var tickets []model.Ticket
	if err := backend.DB.Find(&tickets).Error; err != nil {
		return err
	}
	for _, ticket := range tickets {
		if !liveChannels[ticket.ChannelID] {
			if err := backend.CleanupChannel(ticket.ChannelID); err != nil {
				return err
			}
			removed++
		}
	}

	var sessions []model.Session
	if err := backend.DB.Find(&sessions).Error; err != nil {
		return err
	}
	for _, session := range sessions {
		if !liveChannels[session.ChannelID] {
			if err := backend.DeleteSessionsByChannel(session.ChannelID); err != nil {
				return err
			}
			removed++
		}
	}

	var timers []model.TicketTimer
	if err := backend.DB.Find(&timers).Error; err != nil {
		return err
	}
	for _, timer := range timers {
		if !liveChannels[timer.ChannelID] {
			if err := backend.DB.Unscoped().Delete(&timer).Error; err != nil {
				return err
			}
			removed++
		}
	}

	var events []model.TrialEvent
	if err := backend.DB.Find(&events).Error; err != nil {
		return err
	}
	for _, event := range events {
		if !liveChannels[event.ChannelID] {
			if err := backend.DB.Unscoped().Delete(&event).Error; err != nil {
				return err
			}
			removed++
		}
	}

	backend.Logger.Debugf("Finish orphan cleanup, removed %d stale rows", removed)
	return nil
}

// NotifyCWLEnd pushes the after-CWL tickets to the bot for owner pings.
func (backend *Backend) NotifyCWLEnd() error {
	var tickets []model.Ticket
	err := backend.DB.Where("type = ?", model.TicketChampionsCWL).Find(&tickets).Error
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return nil
	}
	backend.CWLChan <- common.CWLEndNotification{Tickets: tickets}
	return nil
}
