package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"caregiver_support_backend/pkg/monitoring"
	"strconv"
	"time"
)

// ProgressService records task responses and keeps day and overall progress
// in sync. All writes go through the caregiver's program aggregate so a
// request mutates and saves one document.
type ProgressService struct {
	ProgramRepo *repository.ProgramRepository
	Composer    *ComposerService
	Branch      *BranchService
	Unlock      *UnlockService
}

func NewProgressService(
	programRepo *repository.ProgramRepository,
	composer *ComposerService,
	branch *BranchService,
	unlock *UnlockService,
) *ProgressService {
	return &ProgressService{
		ProgramRepo: programRepo,
		Composer:    composer,
		Branch:      branch,
		Unlock:      unlock,
	}
}

type TaskResponseRequest struct {
	ResponseText string                 `json:"responseText,omitempty"`
	ResponseData map[string]interface{} `json:"responseData,omitempty"`
}

// ProgressSnapshot is what a write returns so clients can update their UI
// without a second read.
type ProgressSnapshot struct {
	Day             int  `json:"day"`
	DayProgress     int  `json:"dayProgress"`
	OverallProgress int  `json:"overallProgress"`
	DayCompleted    bool `json:"dayCompleted"`
}

// RecordResponse stores a completion for a task, latest submission wins.
// The task must exist in the day's current composition, follow-up tasks
// included.
func (s *ProgressService) RecordResponse(userID uint, day int, language, taskID string, req TaskResponseRequest) (*ProgressSnapshot, error) {
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	// A due unlock counts even when the write is the first touch of the day.
	if s.Unlock != nil {
		s.Unlock.EvaluateUnlocks(program, time.Now())
	}

	module := program.Module(day)
	if module == nil || !module.AdminPermissionGranted {
		return nil, util.ErrDayLocked
	}

	config, err := s.Composer.ComposeDay(day, language, module.ContentLevel)
	if err != nil {
		return nil, err
	}

	tasks, err := s.dayTaskUniverse(module, config)
	if err != nil {
		return nil, err
	}

	var target *model.ComposedTask
	for i := range tasks {
		if tasks[i].TaskID == taskID {
			target = &tasks[i]
			break
		}
	}
	if target == nil {
		return nil, util.ErrTaskNotFound
	}

	responses, err := module.Responses()
	if err != nil {
		return nil, err
	}
	responses[taskID] = model.TaskResponse{
		TaskID:       taskID,
		TaskType:     target.TaskType,
		ResponseText: req.ResponseText,
		ResponseData: req.ResponseData,
		Completed:    true,
		CompletedAt:  time.Now(),
	}
	if err := module.SetResponses(responses); err != nil {
		return nil, err
	}

	// Keep the legacy flags coherent for days still read through them.
	switch target.TaskType {
	case model.TaskVideo:
		module.VideoCompleted = true
	case model.TaskAudio:
		module.AudioCompleted = true
	}

	if err := s.RecalculateDay(program, module, config); err != nil {
		return nil, err
	}
	if err := s.ProgramRepo.Save(program); err != nil {
		return nil, err
	}

	return &ProgressSnapshot{
		Day:             day,
		DayProgress:     module.ProgressPercentage,
		OverallProgress: program.OverallProgress,
		DayCompleted:    module.CompletedAt != nil,
	}, nil
}

// RecalculateDay recomputes a module's percentage from the day's current
// composition and rolls the result up into the program. It does not save.
func (s *ProgressService) RecalculateDay(program *model.CaregiverProgram, module *model.DayModule, config *model.ComposedDayConfig) error {
	percentage, err := s.computeDayPercentage(module, config)
	if err != nil {
		return err
	}
	module.ProgressPercentage = percentage

	// Completion is latched: once a day completed, a later recomputation
	// (level change, content edit) never clears the timestamp.
	if percentage >= 100 && module.CompletedAt == nil {
		now := time.Now()
		module.CompletedAt = &now
		monitoring.DaysCompleted.WithLabelValues(strconv.Itoa(module.Day)).Inc()
		if s.Unlock != nil {
			if err := s.Unlock.ScheduleNextDay(program, module); err != nil {
				return err
			}
		}
	}

	program.OverallProgress = OverallProgress(program)
	if module.Day > program.CurrentDay {
		program.CurrentDay = module.Day
	}
	return nil
}

// OverallProgress averages day percentages over the full program length.
// Days without a module yet count as zero, so the denominator never moves.
func OverallProgress(program *model.CaregiverProgram) int {
	total := 0
	for i := range program.DayModules {
		total += clampPercent(program.DayModules[i].ProgressPercentage)
	}
	return (total + model.TotalProgramDays/2) / model.TotalProgramDays
}

// computeDayPercentage applies the task-based formula when the composition
// carries a task list, and the legacy flag-based weights otherwise.
func (s *ProgressService) computeDayPercentage(module *model.DayModule, config *model.ComposedDayConfig) (int, error) {
	tasks, err := s.dayTaskUniverse(module, config)
	if err != nil {
		return 0, err
	}

	if len(tasks) == 0 && !config.HasTest {
		return legacyDayPercentage(module), nil
	}

	responses, err := module.Responses()
	if err != nil {
		return 0, err
	}

	actionableDone := 0
	totalActionable := 0
	passiveCount := 0
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		if task.TaskType.Classification() == model.ClassPassive {
			passiveCount++
			continue
		}
		totalActionable++
		if r, ok := responses[task.TaskID]; ok && r.Completed {
			actionableDone++
		}
	}

	totalUnits := totalActionable + passiveCount
	doneUnits := actionableDone
	// Passive tasks complete for free once the participant has done any
	// actionable work, so reminder-only remainders cannot block 100%.
	if actionableDone > 0 || totalActionable == 0 {
		doneUnits += passiveCount
	}

	// The dynamic test is its own unit of work on top of the task list.
	if config.HasTest {
		totalUnits++
		if module.DynamicTestCompleted {
			doneUnits++
		}
	}

	if totalUnits == 0 {
		return legacyDayPercentage(module), nil
	}
	// 四舍五入, 2/3 完成应显示 67 而不是 66
	return clampPercent((doneUnits*100 + totalUnits/2) / totalUnits), nil
}

// dayTaskUniverse is the full set of tasks counted for a day: the level's
// composed tasks plus any follow-ups the completed test branched into.
func (s *ProgressService) dayTaskUniverse(module *model.DayModule, config *model.ComposedDayConfig) ([]model.ComposedTask, error) {
	tasks := config.Tasks
	if config.Test == nil || !module.DynamicTestCompleted {
		return tasks, nil
	}
	result, err := module.TestResultDoc()
	if err != nil {
		return nil, err
	}
	followups := s.Branch.BuildFollowupTasks(module.Day, config.Test, result, NextTaskOrder(tasks), followupsEnabled(config))
	if len(followups) == 0 {
		return tasks, nil
	}
	combined := make([]model.ComposedTask, 0, len(tasks)+len(followups))
	combined = append(combined, tasks...)
	combined = append(combined, followups...)
	return combined, nil
}

// followupsEnabled resolves the day-level flag against the test-level one;
// with neither set, defined follow-ups imply intent.
func followupsEnabled(config *model.ComposedDayConfig) bool {
	if config.EnableFollowupTasks != nil {
		return *config.EnableFollowupTasks
	}
	if config.Test != nil && config.Test.EnableFollowupTasks != nil {
		return *config.Test.EnableFollowupTasks
	}
	return true
}

// legacyDayPercentage keeps the original flag-based weighting for days that
// never got a task list: the welcome day is video and audio only, later
// days add a generic tasks bucket.
func legacyDayPercentage(module *model.DayModule) int {
	progress := 0
	if module.Day == 0 {
		if module.VideoCompleted {
			progress += 50
		}
		if module.AudioCompleted {
			progress += 50
		}
		return progress
	}
	if module.VideoCompleted {
		progress += 40
	}
	if module.AudioCompleted {
		progress += 30
	}
	if module.TasksCompleted {
		progress += 30
	}
	return clampPercent(progress)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
