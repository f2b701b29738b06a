package backend

import (
	"errors"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddClan registers a clan in the alliance. Duplicate tags are rejected.
func (backend *Backend) AddClan(clan *model.Clan) error {
	var existing model.Clan
	err := backend.DB.Where("tag = ?", clan.Tag).First(&existing).Error
	if err == nil {
		return fmt.Errorf("clan %s already registered: %w", clan.Tag, common.ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	backend.Logger.Infof("Adding clan %s [%s] to the alliance", clan.Name, clan.Tag)
	return backend.DB.Create(clan).Error
}

// RemoveClan deletes a clan and its checks.
func (backend *Backend) RemoveClan(tag string) error {
	clan, err := backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	return backend.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("clan_id = ?", clan.ID).Unscoped().Delete(&model.EligibilityCheck{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(clan).Error
	})
}

// ClanByTag loads a clan with its checks.
func (backend *Backend) ClanByTag(tag string) (*model.Clan, error) {
	var clan model.Clan
	err := backend.DB.Preload("Checks").Where("tag = ?", tag).First(&clan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("clan %s: %w", tag, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &clan, nil
}

// Clans lists the whole registry with checks preloaded.
func (backend *Backend) Clans() ([]model.Clan, error) {
	var clans []model.Clan
	err := backend.DB.Preload("Checks").Find(&clans).Error
	return clans, err
}

// UpdateClan upserts edited clan fields.
func (backend *Backend) UpdateClan(clan *model.Clan) error {
	return backend.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(clan).Error
}

// AddCheck attaches an eligibility check to a clan. A clan holds at most
// two checks; duplicates and unknown check names are rejected.
func (backend *Backend) AddCheck(tag, name string, minValue int) error {
	if _, ok := CheckFuncs[name]; !ok {
		return fmt.Errorf("unknown check %s: %w", name, common.ErrValidation)
	}
	if minValue < 0 {
		return fmt.Errorf("check minimum must not be negative: %w", common.ErrValidation)
	}
	clan, err := backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	if len(clan.Checks) >= model.MaxChecksPerClan {
		return fmt.Errorf("clan %s already has %d checks: %w", tag, model.MaxChecksPerClan, common.ErrValidation)
	}
	for _, check := range clan.Checks {
		if check.Name == name {
			return fmt.Errorf("clan %s already has check %s: %w", tag, name, common.ErrValidation)
		}
	}
	return backend.DB.Create(&model.EligibilityCheck{
		ClanID:   clan.ID,
		Name:     name,
		MinValue: minValue,
	}).Error
}

// RemoveCheck detaches a named check from a clan.
func (backend *Backend) RemoveCheck(tag, name string) error {
	clan, err := backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	result := backend.DB.Where("clan_id = ? AND name = ?", clan.ID, name).
		Delete(&model.EligibilityCheck{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("clan %s has no check %s: %w", tag, name, common.ErrNotFound)
	}
	return nil
}

// EditCheck updates the minimum of an existing check.
func (backend *Backend) EditCheck(tag, name string, minValue int) error {
	if minValue < 0 {
		return fmt.Errorf("check minimum must not be negative: %w", common.ErrValidation)
	}
	clan, err := backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	result := backend.DB.Model(&model.EligibilityCheck{}).
		Where("clan_id = ? AND name = ?", clan.ID, name).
		Update("min_value", minValue)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("clan %s has no check %s: %w", tag, name, common.ErrNotFound)
	}
	return nil
}
