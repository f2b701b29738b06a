package backend

import (
	"errors"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is one applying game account at session start.
type Account struct {
	Tag  string
	Name string
}

// StartSession creates a session with an empty clan mapping per account
// and returns its token.
func (backend *Backend) StartSession(userID, channelID string, accounts []Account) (*model.Session, error) {
	session := &model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ChannelID: channelID,
		State:     model.SessionCollecting,
	}
	for _, account := range accounts {
		session.Selections = append(session.Selections, model.Selection{
			PlayerTag:  account.Tag,
			PlayerName: account.Name,
		})
	}
	err := backend.DB.Create(session).Error
	if err != nil {
		return nil, err
	}
	backend.Logger.Debugf("Created session %s for user %s with %d accounts",
		session.Token, userID, len(accounts))
	return session, nil
}

// SessionByToken loads a session with its selections.
func (backend *Backend) SessionByToken(token string) (*model.Session, error) {
	var session model.Session
	err := backend.DB.Preload("Selections").Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", token, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetSessionMessage records the Discord message backing the session UI.
func (backend *Backend) SetSessionMessage(token, messageID string) error {
	return backend.DB.Model(&model.Session{}).Where("token = ?", token).
		Update("message_id", messageID).Error
}

// SelectClan records a clan choice for one account of the session.
func (backend *Backend) SelectClan(token, actorID, playerTag, clanTag string) (*model.Session, error) {
	session, err := backend.SessionByToken(token)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID {
		return nil, fmt.Errorf("session %s owned by %s: %w", token, session.UserID, common.ErrForbidden)
	}
	if session.State == model.SessionConfirmed {
		return nil, fmt.Errorf("session %s already confirmed: %w", token, common.ErrValidation)
	}
	var target *model.Selection
	for i := range session.Selections {
		if session.Selections[i].PlayerTag == playerTag {
			target = &session.Selections[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("account %s not in session %s: %w", playerTag, token, common.ErrNotFound)
	}
	err = backend.DB.Model(target).Update("clan_tag", clanTag).Error
	if err != nil {
		return nil, err
	}
	target.ClanTag = clanTag
	return session, nil
}

// CancelSession resets every clan mapping to empty. Idempotent; a second
// cancel leaves the same all-empty state without error.
func (backend *Backend) CancelSession(token, actorID string) (*model.Session, error) {
	session, err := backend.SessionByToken(token)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID {
		return nil, fmt.Errorf("session %s owned by %s: %w", token, session.UserID, common.ErrForbidden)
	}
	if session.State == model.SessionConfirmed {
		return nil, fmt.Errorf("session %s already confirmed: %w", token, common.ErrValidation)
	}
	err = backend.DB.Model(&model.Selection{}).Where("session_id = ?", session.ID).
		Update("clan_tag", "").Error
	if err != nil {
		return nil, err
	}
	for i := range session.Selections {
		session.Selections[i].ClanTag = ""
	}
	return session, nil
}

// ConfirmSession finalizes a session. At least one account must have a
// clan chosen; unselected accounts are simply left out of the result.
func (backend *Backend) ConfirmSession(token, actorID string) (*model.Session, error) {
	session, err := backend.SessionByToken(token)
	if err != nil {
		return nil, err
	}
	if session.UserID != actorID {
		return nil, fmt.Errorf("session %s owned by %s: %w", token, session.UserID, common.ErrForbidden)
	}
	if session.State == model.SessionConfirmed {
		return nil, fmt.Errorf("session %s already confirmed: %w", token, common.ErrValidation)
	}
	if session.Selected() == 0 {
		return nil, fmt.Errorf("session %s has no clan selected: %w", token, common.ErrValidation)
	}
	err = backend.DB.Model(session).Update("state", model.SessionConfirmed).Error
	if err != nil {
		return nil, err
	}
	session.State = model.SessionConfirmed
	return session, nil
}

// DeleteSessionByToken removes a finalized session.
func (backend *Backend) DeleteSessionByToken(token string) error {
	return backend.deleteSessions(backend.DB.Where("token = ?", token))
}

// DeleteSessionByMessage removes the session backing a deleted message.
func (backend *Backend) DeleteSessionByMessage(messageID string) error {
	return backend.deleteSessions(backend.DB.Where("message_id = ?", messageID))
}

// DeleteSessionsByChannel removes every session living in a channel.
func (backend *Backend) DeleteSessionsByChannel(channelID string) error {
	return backend.deleteSessions(backend.DB.Where("channel_id = ?", channelID))
}

func (backend *Backend) deleteSessions(query *gorm.DB) error {
	var sessions []model.Session
	err := query.Find(&sessions).Error
	if err != nil {
		return err
	}
	return backend.DB.Transaction(func(tx *gorm.DB) error {
		for _, session := range sessions {
			if err := tx.Where("session_id = ?", session.ID).Unscoped().Delete(&model.Selection{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&session).Error; err != nil {
				return err
			}
			backend.Logger.Debugf("Deleted session %s", session.Token)
		}
		return nil
	})
}
