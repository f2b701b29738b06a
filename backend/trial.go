package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
)

const (
	MinTrialDays = 3
	MaxTrialDays = 14
	MinDelayDays = 1
	MaxDelayDays = 30
)

// ScheduleTrialEnd starts a trial now: registers the end event for the
// (channel, member) pair, replacing any pending event.
func (backend *Backend) ScheduleTrialEnd(channelID, memberID, trialType string, days int) (*model.TrialEvent, error) {
	if days < MinTrialDays || days > MaxTrialDays {
		return nil, fmt.Errorf("trial duration must be %d-%d days: %w", MinTrialDays, MaxTrialDays, common.ErrValidation)
	}
	return backend.replaceTrialEvent(&model.TrialEvent{
		ChannelID: channelID,
		MemberID:  memberID,
		FireAt:    time.Now().AddDate(0, 0, days),
		Action:    model.TrialActionEnd,
		Type:      trialType,
		Days:      days,
	})
}

// DelayTrial schedules the trial to start later. When the start event
// fires, the sweep rewrites it into an end event.
func (backend *Backend) DelayTrial(channelID, memberID, trialType string, delayDays, trialDays int) (*model.TrialEvent, error) {
	if delayDays < MinDelayDays || delayDays > MaxDelayDays {
		return nil, fmt.Errorf("trial delay must be %d-%d days: %w", MinDelayDays, MaxDelayDays, common.ErrValidation)
	}
	if trialDays < MinTrialDays || trialDays > MaxTrialDays {
		return nil, fmt.Errorf("trial duration must be %d-%d days: %w", MinTrialDays, MaxTrialDays, common.ErrValidation)
	}
	return backend.replaceTrialEvent(&model.TrialEvent{
		ChannelID: channelID,
		MemberID:  memberID,
		FireAt:    time.Now().AddDate(0, 0, delayDays),
		Action:    model.TrialActionStart,
		Type:      trialType,
		Days:      trialDays,
	})
}

func (backend *Backend) replaceTrialEvent(event *model.TrialEvent) (*model.TrialEvent, error) {
	err := backend.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ? AND member_id = ?", event.ChannelID, event.MemberID).
			Unscoped().Delete(&model.TrialEvent{}).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}
	backend.Logger.Infof("Scheduled trial %s event for member %s in channel %s at %s",
		event.Action, event.MemberID, event.ChannelID, event.FireAt)
	return event, nil
}

// TrialEventFor finds the pending event of a (channel, member) pair.
func (backend *Backend) TrialEventFor(channelID, memberID string) (*model.TrialEvent, error) {
	var event model.TrialEvent
	err := backend.DB.Where("channel_id = ? AND member_id = ?", channelID, memberID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no trial event for %s in %s: %w", memberID, channelID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// RemoveTrialEvent drops a pending trial event, e.g. on manual end or
// denial.
func (backend *Backend) RemoveTrialEvent(channelID, memberID string) error {
	return backend.DB.Where("channel_id = ? AND member_id = ?", channelID, memberID).
		Unscoped().Delete(&model.TrialEvent{}).Error
}

// SweepTrialEvents processes due events. An end event is consumed and
// handed to the bot for the vote prompt. A start event is handed over
// for its start side effects, then rewritten as the end event with a
// freshly computed future timestamp.
func (backend *Backend) SweepTrialEvents() error {
	var due []model.TrialEvent
	err := backend.DB.Where("fire_at <= ?", time.Now()).Find(&due).Error
	if err != nil {
		return err
	}
	for _, event := range due {
		switch event.Action {
		case model.TrialActionEnd:
			backend.Logger.Infof("Trial of member %s in channel %s has ended", event.MemberID, event.ChannelID)
			backend.TrialChan <- common.TrialDueNotification{Event: event, Action: model.TrialActionEnd}
			if err := backend.DB.Unscoped().Delete(&event).Error; err != nil {
				return err
			}
		case model.TrialActionStart:
			backend.Logger.Infof("Trial of member %s in channel %s is starting", event.MemberID, event.ChannelID)
			backend.TrialChan <- common.TrialDueNotification{Event: event, Action: model.TrialActionStart}
			days := event.Days
			if days < MinTrialDays {
				days = MinTrialDays
			}
			updates := map[string]any{
				"action":  model.TrialActionEnd,
				"fire_at": time.Now().AddDate(0, 0, days),
			}
			if err := backend.DB.Model(&event).Updates(updates).Error; err != nil {
				return err
			}
		default:
			backend.Logger.Infof("Dropping trial event with unknown action %q", event.Action)
			backend.DB.Unscoped().Delete(&event)
		}
	}
	return nil
}
