package backend

import (
	"errors"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"gorm.io/gorm"
)

// AddPosition registers a staff position with its interview questions.
func (backend *Backend) AddPosition(name, prefix string, questions []string) error {
	var existing model.StaffPosition
	err := backend.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return fmt.Errorf("staff position %s already exists: %w", name, common.ErrValidation)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	position := &model.StaffPosition{Name: name, Prefix: prefix, Open: true}
	for i, question := range questions {
		position.Questions = append(position.Questions, model.StaffQuestion{
			Position:  i,
			Question:  question,
			Paragraph: true,
		})
	}
	return backend.DB.Create(position).Error
}

// RemovePosition deletes a staff position and its questions.
func (backend *Backend) RemovePosition(name string) error {
	position, err := backend.PositionByName(name)
	if err != nil {
		return err
	}
	return backend.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_position_id = ?", position.ID).Unscoped().Delete(&model.StaffQuestion{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(position).Error
	})
}

// PositionByName loads a position with its questions sorted by index.
func (backend *Backend) PositionByName(name string) (*model.StaffPosition, error) {
	var position model.StaffPosition
	err := backend.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("name = ?", name).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("staff position %s: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// Positions lists every staff position.
func (backend *Backend) Positions() ([]model.StaffPosition, error) {
	var positions []model.StaffPosition
	err := backend.DB.Preload("Questions").Find(&positions).Error
	return positions, err
}

// SetPositionOpen toggles whether a position accepts applications.
func (backend *Backend) SetPositionOpen(name string, open bool) error {
	position, err := backend.PositionByName(name)
	if err != nil {
		return err
	}
	return backend.DB.Model(position).Update("open", open).Error
}

// EditQuestion updates one question of a position's form.
func (backend *Backend) EditQuestion(name string, index int, question, placeholder string) error {
	position, err := backend.PositionByName(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(position.Questions) {
		return fmt.Errorf("position %s has no question %d: %w", name, index, common.ErrNotFound)
	}
	return backend.DB.Model(&position.Questions[index]).Updates(map[string]any{
		"question":    question,
		"placeholder": placeholder,
	}).Error
}
