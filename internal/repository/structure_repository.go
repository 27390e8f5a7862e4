package repository

import (
	"caregiver_support_backend/internal/model"

	"gorm.io/gorm"
)

type StructureRepository struct {
	DB *gorm.DB
}

func NewStructureRepository(db *gorm.DB) *StructureRepository {
	return &StructureRepository{DB: db}
}

func (r *StructureRepository) FindByDay(day int) (*model.DayStructure, error) {
	var structure model.DayStructure
	err := r.DB.Where("day_number = ?", day).First(&structure).Error
	if err != nil {
		return nil, err
	}
	return &structure, nil
}

func (r *StructureRepository) ListAll() ([]model.DayStructure, error) {
	var structures []model.DayStructure
	err := r.DB.Order("day_number ASC").Find(&structures).Error
	return structures, err
}

func (r *StructureRepository) Upsert(structure *model.DayStructure) error {
	var existing model.DayStructure
	err := r.DB.Where("day_number = ?", structure.DayNumber).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(structure).Error
	}
	if err != nil {
		return err
	}

	structure.ID = existing.ID
	structure.CreatedAt = existing.CreatedAt
	return r.DB.Save(structure).Error
}

func (r *StructureRepository) Delete(day int) error {
	return r.DB.Where("day_number = ?", day).Delete(&model.DayStructure{}).Error
}
