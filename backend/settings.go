package backend

import (
	"errors"

	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultMinFWATownHall = 13

// Settings loads a guild's bindings, returning zero-value settings for
// an unconfigured guild so callers can rely on field access.
func (backend *Backend) Settings(guildID string) (*model.GuildSettings, error) {
	var settings model.GuildSettings
	err := backend.DB.Where("guild_id = ?", guildID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.GuildSettings{GuildID: guildID, MinFWATownHall: DefaultMinFWATownHall}, nil
	}
	if err != nil {
		return nil, err
	}
	if settings.MinFWATownHall == 0 {
		settings.MinFWATownHall = DefaultMinFWATownHall
	}
	return &settings, nil
}

// SaveSettings upserts a guild's bindings.
func (backend *Backend) SaveSettings(settings *model.GuildSettings) error {
	return backend.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		UpdateAll: true,
	}).Create(settings).Error
}
