package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"fmt"
	"time"
)

// ProgramService is the participant-facing entry point: it resolves unlock
// state lazily, composes the day for the caregiver's language and level and
// folds in the branch-derived follow-up tasks.
type ProgramService struct {
	ProgramRepo   *repository.ProgramRepository
	StructureRepo *repository.StructureRepository
	Composer      *ComposerService
	Branch        *BranchService
	Unlock        *UnlockService
}

func NewProgramService(
	programRepo *repository.ProgramRepository,
	structureRepo *repository.StructureRepository,
	composer *ComposerService,
	branch *BranchService,
	unlock *UnlockService,
) *ProgramService {
	return &ProgramService{
		ProgramRepo:   programRepo,
		StructureRepo: structureRepo,
		Composer:      composer,
		Branch:        branch,
		Unlock:        unlock,
	}
}

// DayContentView is the full payload a client needs to render a day.
type DayContentView struct {
	Config      *model.ComposedDayConfig `json:"config"`
	State       model.DayState           `json:"state"`
	Progress    int                      `json:"progress"`
	TestResult  *model.DayTestResult     `json:"testResult,omitempty"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
}

// GetDayContent returns a day's composed content for a caregiver. Due
// unlocks are applied on the way in, so a caregiver who waited out the
// window sees the day open without any background job having run.
func (s *ProgramService) GetDayContent(userID uint, day int, language string) (*DayContentView, error) {
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if s.Unlock.EvaluateUnlocks(program, time.Now()) {
		if err := s.ProgramRepo.Save(program); err != nil {
			return nil, err
		}
	}

	module := program.Module(day)
	if module == nil || !module.AdminPermissionGranted {
		return nil, util.ErrDayLocked
	}

	config, err := s.Composer.ComposeDay(day, language, module.ContentLevel)
	if err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, util.ErrDayDisabled
	}

	view := &DayContentView{
		Config:      config,
		State:       DayStateFor(module),
		Progress:    module.ProgressPercentage,
		CompletedAt: module.CompletedAt,
	}

	if module.DynamicTestCompleted {
		result, err := module.TestResultDoc()
		if err != nil {
			return nil, err
		}
		view.TestResult = result
		followups := s.Branch.BuildFollowupTasks(day, config.Test, result, NextTaskOrder(config.Tasks), followupsEnabled(config))
		if len(followups) > 0 {
			config.Tasks = append(config.Tasks, followups...)
		}
	}

	return view, nil
}

// DayOverview is one row of the program overview.
type DayOverview struct {
	Day               int            `json:"day"`
	DayName           string         `json:"dayName"`
	Enabled           bool           `json:"enabled"`
	State             model.DayState `json:"state"`
	Progress          int            `json:"progress"`
	ScheduledUnlockAt *time.Time     `json:"scheduledUnlockAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
}

type ProgramOverview struct {
	CurrentDay      int           `json:"currentDay"`
	OverallProgress int           `json:"overallProgress"`
	BurdenLevel     string        `json:"burdenLevel,omitempty"`
	Days            []DayOverview `json:"days"`
}

// GetOverview summarizes all program days for a caregiver, configured or not.
func (s *ProgramService) GetOverview(userID uint, language string) (*ProgramOverview, error) {
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if s.Unlock.EvaluateUnlocks(program, time.Now()) {
		if err := s.ProgramRepo.Save(program); err != nil {
			return nil, err
		}
	}

	configured := make(map[int]bool)
	structures, err := s.StructureRepo.ListAll()
	if err != nil {
		return nil, err
	}
	for _, structure := range structures {
		configured[structure.DayNumber] = structure.Enabled
	}

	overview := &ProgramOverview{
		CurrentDay:      program.CurrentDay,
		OverallProgress: program.OverallProgress,
		BurdenLevel:     program.BurdenLevel,
		Days:            make([]DayOverview, 0, model.TotalProgramDays),
	}

	for day := 0; day < model.TotalProgramDays; day++ {
		module := program.Module(day)
		entry := DayOverview{
			Day:     day,
			DayName: fmt.Sprintf("Day %d", day),
			State:   DayStateFor(module),
			Enabled: configured[day],
		}
		if module != nil {
			entry.Progress = module.ProgressPercentage
			entry.ScheduledUnlockAt = module.ScheduledUnlockAt
			entry.CompletedAt = module.CompletedAt
		}
		overview.Days = append(overview.Days, entry)
	}

	return overview, nil
}

// AdminUnlockDay force-opens a day for a caregiver.
func (s *ProgramService) AdminUnlockDay(userID uint, day int) (*model.DayModule, error) {
	if day < 0 || day >= model.TotalProgramDays {
		return nil, fmt.Errorf("%w: day %d outside program", util.ErrValidationFailure, day)
	}
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	module := s.Unlock.GrantDay(program, day)
	if err := s.ProgramRepo.Save(program); err != nil {
		return nil, err
	}
	return module, nil
}

// SetWaitOverrides stores per-caregiver unlock wait overrides; nil clears
// one back to the global configuration.
func (s *ProgramService) SetWaitOverrides(userID uint, day0Hours, defaultHours *int) (*model.CaregiverProgram, error) {
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	program.Day0WaitHoursOverride = day0Hours
	program.WaitHoursOverride = defaultHours
	if err := s.ProgramRepo.Save(program); err != nil {
		return nil, err
	}
	return program, nil
}

// ListPrograms pages through every caregiver program for the admin console.
func (s *ProgramService) ListPrograms(page, limit int) ([]model.CaregiverProgram, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ProgramRepo.ListAll(page, limit)
}
