package repository

import (
	"caregiver_support_backend/internal/model"

	"gorm.io/gorm"
)

type MediaRepository struct {
	DB *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

func (r *MediaRepository) Create(asset *model.MediaAsset) error {
	return r.DB.Create(asset).Error
}

func (r *MediaRepository) FindByID(id string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	err := r.DB.Where("id = ?", id).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *MediaRepository) List(page, limit int) ([]model.MediaAsset, int64, error) {
	var assets []model.MediaAsset
	var total int64

	if err := r.DB.Model(&model.MediaAsset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&assets).Error
	return assets, total, err
}

func (r *MediaRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.MediaAsset{}).Error
}
