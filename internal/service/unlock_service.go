package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/pkg/logger"
	"caregiver_support_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// WaitConfigSource yields the global unlock wait configuration.
type WaitConfigSource interface {
	Get() (*model.UnlockWaitConfig, error)
}

// UnlockService controls when the next day of the program opens. Unlocks are
// evaluated lazily on read, there is no background scheduler to miss a
// deadline: a due unlock takes effect the first time anyone looks.
type UnlockService struct {
	WaitConfig WaitConfigSource
}

func NewUnlockService(waitConfig WaitConfigSource) *UnlockService {
	return &UnlockService{WaitConfig: waitConfig}
}

// waitHours resolves the wait before a given day opens, in precedence order:
// caregiver override, global config row, hardcoded default. Day 1 has its
// own knob because the welcome day is much shorter than the rest.
func (s *UnlockService) waitHours(program *model.CaregiverProgram, nextDay int) int {
	if nextDay == 1 {
		if program.Day0WaitHoursOverride != nil {
			return *program.Day0WaitHoursOverride
		}
	} else if program.WaitHoursOverride != nil {
		return *program.WaitHoursOverride
	}

	cfg, err := s.WaitConfig.Get()
	if err != nil {
		logger.Log.Warn("unlock wait config unavailable, using default",
			zap.Error(err), zap.Int("nextDay", nextDay))
		return model.DefaultUnlockWaitHours
	}
	if nextDay == 1 {
		return cfg.Day0ToDay1Hours
	}
	return cfg.DefaultWaitHours
}

// ScheduleNextDay sets the unlock time of the day after a completed one,
// creating its module if this is the first touch. Scheduling never regresses
// a day that is already open. The caller saves the aggregate.
func (s *UnlockService) ScheduleNextDay(program *model.CaregiverProgram, completed *model.DayModule) error {
	nextDay := completed.Day + 1
	if nextDay >= model.TotalProgramDays {
		return nil
	}

	next := program.Module(nextDay)
	if next == nil {
		program.DayModules = append(program.DayModules, model.DayModule{
			ProgramID: program.ID,
			Day:       nextDay,
		})
		next = program.Module(nextDay)
	}
	if next.AdminPermissionGranted || next.ScheduledUnlockAt != nil {
		return nil
	}

	wait := s.waitHours(program, nextDay)
	base := time.Now()
	if completed.CompletedAt != nil {
		base = *completed.CompletedAt
	}

	if wait <= 0 {
		next.AdminPermissionGranted = true
		monitoring.DaysUnlocked.WithLabelValues("immediate").Inc()
		return nil
	}

	unlockAt := base.Add(time.Duration(wait) * time.Hour)
	next.ScheduledUnlockAt = &unlockAt
	return nil
}

// EvaluateUnlocks opens every day whose scheduled time has passed. It is
// idempotent and reports whether anything changed so callers only save when
// needed.
func (s *UnlockService) EvaluateUnlocks(program *model.CaregiverProgram, now time.Time) bool {
	changed := false
	for i := range program.DayModules {
		module := &program.DayModules[i]
		if module.AdminPermissionGranted || module.ScheduledUnlockAt == nil {
			continue
		}
		if now.Before(*module.ScheduledUnlockAt) {
			continue
		}
		module.AdminPermissionGranted = true
		changed = true
		monitoring.DaysUnlocked.WithLabelValues("scheduled").Inc()
	}
	return changed
}

// GrantDay force-opens a day on an admin's behalf, creating the module if
// needed. The caller saves the aggregate.
func (s *UnlockService) GrantDay(program *model.CaregiverProgram, day int) *model.DayModule {
	module := program.Module(day)
	if module == nil {
		program.DayModules = append(program.DayModules, model.DayModule{
			ProgramID: program.ID,
			Day:       day,
		})
		module = program.Module(day)
	}
	if !module.AdminPermissionGranted {
		module.AdminPermissionGranted = true
		module.ScheduledUnlockAt = nil
		monitoring.DaysUnlocked.WithLabelValues("admin").Inc()
	}
	return module
}

// DayStateFor maps a module onto the participant-facing state machine.
// A missing module is simply locked.
func DayStateFor(module *model.DayModule) model.DayState {
	switch {
	case module == nil || !module.AdminPermissionGranted:
		return model.DayLocked
	case module.CompletedAt != nil:
		return model.DayCompleted
	case module.ProgressPercentage > 0 || module.DynamicTestCompleted:
		return model.DayInProgress
	default:
		return model.DayAvailable
	}
}
