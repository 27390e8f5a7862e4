package repository

import (
	"caregiver_support_backend/internal/model"

	"gorm.io/gorm"
)

type ProgramRepository struct {
	DB *gorm.DB
}

func NewProgramRepository(db *gorm.DB) *ProgramRepository {
	return &ProgramRepository{DB: db}
}

// FindByUser loads the caregiver's full program aggregate, day modules
// included. The aggregate is mutated in memory and written back with Save;
// concurrent writers race at the document level (last write wins).
func (r *ProgramRepository) FindByUser(userID uint) (*model.CaregiverProgram, error) {
	var program model.CaregiverProgram
	err := r.DB.Preload("DayModules", func(db *gorm.DB) *gorm.DB {
		return db.Order("day ASC")
	}).Where("user_id = ?", userID).First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// GetOrCreate returns the caregiver's program, creating it with an enabled
// day-0 module on first contact.
func (r *ProgramRepository) GetOrCreate(userID uint) (*model.CaregiverProgram, error) {
	program, err := r.FindByUser(userID)
	if err == nil {
		return program, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	program = &model.CaregiverProgram{
		UserID:     userID,
		CurrentDay: 0,
		DayModules: []model.DayModule{
			{Day: 0, AdminPermissionGranted: true},
		},
	}
	if err := r.DB.Create(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}

// Save writes the whole aggregate in one transaction so readers never see a
// half-updated program.
func (r *ProgramRepository) Save(program *model.CaregiverProgram) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("DayModules").Save(program).Error; err != nil {
			return err
		}
		for i := range program.DayModules {
			program.DayModules[i].ProgramID = program.ID
			if err := tx.Save(&program.DayModules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProgramRepository) ListAll(page, limit int) ([]model.CaregiverProgram, int64, error) {
	var programs []model.CaregiverProgram
	var total int64

	if err := r.DB.Model(&model.CaregiverProgram{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Preload("DayModules").
		Offset((page - 1) * limit).Limit(limit).
		Find(&programs).Error
	return programs, total, err
}
