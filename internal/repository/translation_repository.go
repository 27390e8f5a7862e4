package repository

import (
	"caregiver_support_backend/internal/model"

	"gorm.io/gorm"
)

type TranslationRepository struct {
	DB *gorm.DB
}

func NewTranslationRepository(db *gorm.DB) *TranslationRepository {
	return &TranslationRepository{DB: db}
}

func (r *TranslationRepository) FindByDayAndLanguage(day int, language string) (*model.DayTranslation, error) {
	var translation model.DayTranslation
	err := r.DB.Where("day_number = ? AND language = ?", day, language).First(&translation).Error
	if err != nil {
		return nil, err
	}
	return &translation, nil
}

// ListByDay returns every translation of a day ordered by language so that
// the "any available translation" fallback is deterministic.
func (r *TranslationRepository) ListByDay(day int) ([]model.DayTranslation, error) {
	var translations []model.DayTranslation
	err := r.DB.Where("day_number = ?", day).Order("language ASC").Find(&translations).Error
	return translations, err
}

func (r *TranslationRepository) Upsert(translation *model.DayTranslation) error {
	var existing model.DayTranslation
	err := r.DB.Where("day_number = ? AND language = ?", translation.DayNumber, translation.Language).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(translation).Error
	}
	if err != nil {
		return err
	}

	translation.ID = existing.ID
	translation.CreatedAt = existing.CreatedAt
	return r.DB.Save(translation).Error
}

func (r *TranslationRepository) Delete(day int, language string) error {
	return r.DB.Where("day_number = ? AND language = ?", day, language).
		Delete(&model.DayTranslation{}).Error
}
