package repository

import (
	"caregiver_support_backend/internal/model"

	"gorm.io/gorm"
)

type WaitConfigRepository struct {
	DB *gorm.DB
}

func NewWaitConfigRepository(db *gorm.DB) *WaitConfigRepository {
	return &WaitConfigRepository{DB: db}
}

// Get returns the global unlock wait configuration. The row is seeded at
// migration time; when it is somehow missing the hardcoded default applies.
func (r *WaitConfigRepository) Get() (*model.UnlockWaitConfig, error) {
	var cfg model.UnlockWaitConfig
	err := r.DB.First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		return &model.UnlockWaitConfig{
			Day0ToDay1Hours:  model.DefaultUnlockWaitHours,
			DefaultWaitHours: model.DefaultUnlockWaitHours,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *WaitConfigRepository) Update(day0Hours, defaultHours int) (*model.UnlockWaitConfig, error) {
	var cfg model.UnlockWaitConfig
	err := r.DB.First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = model.UnlockWaitConfig{Day0ToDay1Hours: day0Hours, DefaultWaitHours: defaultHours}
		if err := r.DB.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg.Day0ToDay1Hours = day0Hours
	cfg.DefaultWaitHours = defaultHours
	if err := r.DB.Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
