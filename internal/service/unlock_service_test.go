package service

import (
	"caregiver_support_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticWaitConfig struct {
	cfg model.UnlockWaitConfig
}

func (s staticWaitConfig) Get() (*model.UnlockWaitConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

func newTestUnlockService(day0, defaultHours int) *UnlockService {
	return NewUnlockService(staticWaitConfig{cfg: model.UnlockWaitConfig{
		Day0ToDay1Hours:  day0,
		DefaultWaitHours: defaultHours,
	}})
}

func completedModule(day int, at time.Time) model.DayModule {
	return model.DayModule{
		Day:                    day,
		AdminPermissionGranted: true,
		ProgressPercentage:     100,
		CompletedAt:            &at,
	}
}

func TestScheduleNextDayTwentyFourHourWait(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	completedAt := time.Now()
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{completedModule(1, completedAt)},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(1)))

	next := program.Module(2)
	require.NotNil(t, next)
	assert.False(t, next.AdminPermissionGranted)
	require.NotNil(t, next.ScheduledUnlockAt)
	assert.WithinDuration(t, completedAt.Add(24*time.Hour), *next.ScheduledUnlockAt, time.Second)

	// 23 hours in: still locked
	assert.False(t, svc.EvaluateUnlocks(program, completedAt.Add(23*time.Hour)))
	assert.False(t, program.Module(2).AdminPermissionGranted)

	// 25 hours in: open
	assert.True(t, svc.EvaluateUnlocks(program, completedAt.Add(25*time.Hour)))
	assert.True(t, program.Module(2).AdminPermissionGranted)

	// evaluating again changes nothing
	assert.False(t, svc.EvaluateUnlocks(program, completedAt.Add(26*time.Hour)))
	assert.True(t, program.Module(2).AdminPermissionGranted)
}

func TestScheduleNextDayDayZeroUsesOwnWait(t *testing.T) {
	svc := newTestUnlockService(2, 24)
	completedAt := time.Now()
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{completedModule(0, completedAt)},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(0)))

	next := program.Module(1)
	require.NotNil(t, next.ScheduledUnlockAt)
	assert.WithinDuration(t, completedAt.Add(2*time.Hour), *next.ScheduledUnlockAt, time.Second)
}

func TestScheduleNextDayCaregiverOverrideWins(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	override := 6
	completedAt := time.Now()
	program := &model.CaregiverProgram{
		WaitHoursOverride: &override,
		DayModules:        []model.DayModule{completedModule(3, completedAt)},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(3)))

	next := program.Module(4)
	require.NotNil(t, next.ScheduledUnlockAt)
	assert.WithinDuration(t, completedAt.Add(6*time.Hour), *next.ScheduledUnlockAt, time.Second)
}

func TestScheduleNextDayZeroWaitOpensImmediately(t *testing.T) {
	svc := newTestUnlockService(24, 0)
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{completedModule(2, time.Now())},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(2)))
	assert.True(t, program.Module(3).AdminPermissionGranted)
}

func TestScheduleNextDayNeverRegresses(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{
			completedModule(1, time.Now()),
			{Day: 2, AdminPermissionGranted: true},
		},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(1)))
	next := program.Module(2)
	assert.True(t, next.AdminPermissionGranted)
	assert.Nil(t, next.ScheduledUnlockAt)
}

func TestScheduleNextDayLastDayHasNoSuccessor(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	lastDay := model.TotalProgramDays - 1
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{completedModule(lastDay, time.Now())},
	}

	require.NoError(t, svc.ScheduleNextDay(program, program.Module(lastDay)))
	assert.Len(t, program.DayModules, 1)
}

func TestGrantDayIsIdempotent(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	program := &model.CaregiverProgram{}

	module := svc.GrantDay(program, 4)
	assert.True(t, module.AdminPermissionGranted)

	again := svc.GrantDay(program, 4)
	assert.Same(t, program.Module(4), again)
	assert.Len(t, program.DayModules, 1)
}

func TestGrantDayClearsPendingSchedule(t *testing.T) {
	svc := newTestUnlockService(24, 24)
	at := time.Now().Add(10 * time.Hour)
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{{Day: 5, ScheduledUnlockAt: &at}},
	}

	module := svc.GrantDay(program, 5)
	assert.True(t, module.AdminPermissionGranted)
	assert.Nil(t, module.ScheduledUnlockAt)
}

func TestDayStateFor(t *testing.T) {
	assert.Equal(t, model.DayLocked, DayStateFor(nil))
	assert.Equal(t, model.DayLocked, DayStateFor(&model.DayModule{}))
	assert.Equal(t, model.DayAvailable, DayStateFor(&model.DayModule{AdminPermissionGranted: true}))
	assert.Equal(t, model.DayInProgress, DayStateFor(&model.DayModule{AdminPermissionGranted: true, ProgressPercentage: 30}))

	now := time.Now()
	assert.Equal(t, model.DayCompleted, DayStateFor(&model.DayModule{AdminPermissionGranted: true, ProgressPercentage: 100, CompletedAt: &now}))
}
