package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContentService is the authoring side: admins write structures and
// translations through it, and every write invalidates the composed cache
// for that day.
type ContentService struct {
	StructureRepo   *repository.StructureRepository
	TranslationRepo *repository.TranslationRepository
	WaitConfigRepo  *repository.WaitConfigRepository
	Composer        *ComposerService
}

func NewContentService(
	structureRepo *repository.StructureRepository,
	translationRepo *repository.TranslationRepository,
	waitConfigRepo *repository.WaitConfigRepository,
	composer *ComposerService,
) *ContentService {
	return &ContentService{
		StructureRepo:   structureRepo,
		TranslationRepo: translationRepo,
		WaitConfigRepo:  waitConfigRepo,
		Composer:        composer,
	}
}

// UpsertStructure validates and stores a day structure. Overlapping score
// ranges are accepted (first match wins at runtime) but logged so authors
// notice.
func (s *ContentService) UpsertStructure(structure *model.DayStructure) (*model.DayStructure, error) {
	if err := structure.Validate(); err != nil {
		return nil, err
	}

	if test, _ := structure.TestStructure(); test != nil {
		for _, pair := range model.OverlappingRanges(test.ScoreRanges) {
			logger.Log.Warn("score ranges overlap, first match wins",
				zap.Int("day", structure.DayNumber),
				zap.String("levelA", pair[0]),
				zap.String("levelB", pair[1]),
			)
		}
	}

	if err := s.StructureRepo.Upsert(structure); err != nil {
		return nil, err
	}
	s.Composer.InvalidateDay(structure.DayNumber)
	return structure, nil
}

func (s *ContentService) GetStructure(day int) (*model.DayStructure, error) {
	return s.StructureRepo.FindByDay(day)
}

func (s *ContentService) ListStructures() ([]model.DayStructure, error) {
	return s.StructureRepo.ListAll()
}

func (s *ContentService) DeleteStructure(day int) error {
	if err := s.StructureRepo.Delete(day); err != nil {
		return err
	}
	s.Composer.InvalidateDay(day)
	return nil
}

// UpsertTranslation validates and stores a translation overlay for a day.
func (s *ContentService) UpsertTranslation(translation *model.DayTranslation) (*model.DayTranslation, error) {
	if err := translation.Validate(); err != nil {
		return nil, err
	}
	if err := s.TranslationRepo.Upsert(translation); err != nil {
		return nil, err
	}
	s.Composer.InvalidateDay(translation.DayNumber)
	return translation, nil
}

func (s *ContentService) ListTranslations(day int) ([]model.DayTranslation, error) {
	return s.TranslationRepo.ListByDay(day)
}

func (s *ContentService) DeleteTranslation(day int, language string) error {
	if err := s.TranslationRepo.Delete(day, language); err != nil {
		return err
	}
	s.Composer.InvalidateDay(day)
	return nil
}

func (s *ContentService) GetWaitConfig() (*model.UnlockWaitConfig, error) {
	return s.WaitConfigRepo.Get()
}

func (s *ContentService) UpdateWaitConfig(day0Hours, defaultHours int) (*model.UnlockWaitConfig, error) {
	return s.WaitConfigRepo.Update(day0Hours, defaultHours)
}
