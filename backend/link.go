package backend

import (
	"errors"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
)

// LinkAccount binds a game account to a Discord user. The unique index
// on the tag rejects a second owner.
func (backend *Backend) LinkAccount(userID, playerTag, playerName string) error {
	var existing model.LinkedAccount
	err := backend.DB.Where("player_tag = ?", playerTag).First(&existing).Error
	if err == nil {
		if existing.UserID == userID {
			return fmt.Errorf("account %s already linked to you: %w", playerTag, common.ErrValidation)
		}
		return fmt.Errorf("account %s already owned by another user: %w", playerTag, common.ErrForbidden)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	link := &model.LinkedAccount{
		PlayerTag:  playerTag,
		PlayerName: playerName,
		UserID:     userID,
	}
	backend.Logger.Infof("Linking account %s (%s) to user %s", playerTag, playerName, userID)
	return backend.DB.Create(link).Error
}

// UnlinkAccount removes the binding; only the owner may do so.
func (backend *Backend) UnlinkAccount(userID, playerTag string) error {
	var link model.LinkedAccount
	err := backend.DB.Where("player_tag = ?", playerTag).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("account %s is not linked: %w", playerTag, common.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if link.UserID != userID {
		return fmt.Errorf("account %s owned by %s: %w", playerTag, link.UserID, common.ErrForbidden)
	}
	return backend.DB.Unscoped().Delete(&link).Error
}

// AccountsOf lists a user's linked accounts.
func (backend *Backend) AccountsOf(userID string) ([]model.LinkedAccount, error) {
	var links []model.LinkedAccount
	err := backend.DB.Where("user_id = ?", userID).Find(&links).Error
	return links, err
}

// OwnerOf resolves the owner of a game account, if any.
func (backend *Backend) OwnerOf(playerTag string) (string, error) {
	var link model.LinkedAccount
	err := backend.DB.Where("player_tag = ?", playerTag).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("account %s is not linked: %w", playerTag, common.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return link.UserID, nil
}
