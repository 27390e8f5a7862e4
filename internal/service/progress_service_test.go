package service

import (
	"caregiver_support_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progressFixture(t *testing.T, completedTasks ...string) (*ProgressService, *model.DayModule, *model.ComposedDayConfig) {
	t.Helper()

	svc := &ProgressService{Branch: NewBranchService()}
	module := &model.DayModule{Day: 2, AdminPermissionGranted: true}

	responses := make(map[string]model.TaskResponse)
	for _, id := range completedTasks {
		responses[id] = model.TaskResponse{TaskID: id, Completed: true, CompletedAt: time.Now()}
	}
	require.NoError(t, module.SetResponses(responses))

	config := &model.ComposedDayConfig{
		Day:     2,
		Enabled: true,
		Tasks: []model.ComposedTask{
			{TaskID: "video", TaskType: model.TaskVideo, Enabled: true},
			{TaskID: "reflection", TaskType: model.TaskReflection, Enabled: true},
			{TaskID: "checklist", TaskType: model.TaskChecklist, Enabled: true},
			{TaskID: "evening_reminder", TaskType: model.TaskReminder, Enabled: true},
		},
	}
	return svc, module, config
}

func TestDayPercentagePassiveAutoCompletes(t *testing.T) {
	svc, module, config := progressFixture(t, "video", "reflection")

	// 2 of 3 actionable done; the reminder counts complete once any
	// actionable work exists: 3 of 4 units
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 75, pct)
}

func TestDayPercentageRoundsHalfUp(t *testing.T) {
	svc, module, config := progressFixture(t, "video", "reflection")

	// drop the reminder: 2 of 3 units is 66.67, shown as 67
	config.Tasks = config.Tasks[:3]
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 67, pct)
}

func TestDayPercentageNoWorkYet(t *testing.T) {
	svc, module, config := progressFixture(t)

	// nothing done: the passive reminder does not count either
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
}

func TestDayPercentageReachesHundred(t *testing.T) {
	svc, module, config := progressFixture(t, "video", "reflection", "checklist")

	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestDayPercentageCountsDynamicTestUnit(t *testing.T) {
	svc, module, config := progressFixture(t, "video", "reflection", "checklist")
	config.HasTest = true
	config.Test = &model.TestStructure{TestType: "daily_check"}

	// all tasks done but the test is pending: 4 of 5 units
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 80, pct)

	module.DynamicTestCompleted = true
	pct, err = svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestDayPercentageDisabledTasksIgnored(t *testing.T) {
	svc, module, config := progressFixture(t, "video")
	config.Tasks[1].Enabled = false
	config.Tasks[2].Enabled = false

	// 1 of 1 actionable plus the auto-completed reminder
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestLegacyWeightsDayZero(t *testing.T) {
	module := &model.DayModule{Day: 0}
	assert.Equal(t, 0, legacyDayPercentage(module))

	module.VideoCompleted = true
	assert.Equal(t, 50, legacyDayPercentage(module))

	module.AudioCompleted = true
	assert.Equal(t, 100, legacyDayPercentage(module))
}

func TestLegacyWeightsLaterDays(t *testing.T) {
	module := &model.DayModule{Day: 3, VideoCompleted: true}
	assert.Equal(t, 40, legacyDayPercentage(module))

	module.AudioCompleted = true
	assert.Equal(t, 70, legacyDayPercentage(module))

	module.TasksCompleted = true
	assert.Equal(t, 100, legacyDayPercentage(module))
}

func TestRecalculateDayLatchesCompletion(t *testing.T) {
	svc, module, config := progressFixture(t, "video", "reflection", "checklist")
	program := &model.CaregiverProgram{DayModules: []model.DayModule{*module}}
	module = &program.DayModules[0]

	require.NoError(t, svc.RecalculateDay(program, module, config))
	require.NotNil(t, module.CompletedAt)
	completedAt := *module.CompletedAt

	// recomputation after content changes never clears the timestamp
	config.Tasks = append(config.Tasks, model.ComposedTask{
		TaskID: "extra", TaskType: model.TaskText, Enabled: true,
	})
	require.NoError(t, svc.RecalculateDay(program, module, config))
	assert.True(t, module.ProgressPercentage < 100)
	require.NotNil(t, module.CompletedAt)
	assert.Equal(t, completedAt, *module.CompletedAt)
}

func TestOverallProgressFixedDenominator(t *testing.T) {
	program := &model.CaregiverProgram{
		DayModules: []model.DayModule{
			{Day: 0, ProgressPercentage: 100},
			{Day: 1, ProgressPercentage: 100},
			{Day: 2, ProgressPercentage: 50},
		},
	}

	// (100+100+50) / 8 days, missing days count as zero
	assert.Equal(t, 31, OverallProgress(program))

	all := &model.CaregiverProgram{}
	for day := 0; day < model.TotalProgramDays; day++ {
		all.DayModules = append(all.DayModules, model.DayModule{Day: day, ProgressPercentage: 100})
	}
	assert.Equal(t, 100, OverallProgress(all))

	// 300 / 8 = 37.5, rounded up
	three := &model.CaregiverProgram{
		DayModules: []model.DayModule{
			{Day: 0, ProgressPercentage: 100},
			{Day: 1, ProgressPercentage: 100},
			{Day: 2, ProgressPercentage: 100},
		},
	}
	assert.Equal(t, 38, OverallProgress(three))
}

func TestDayTaskUniverseIncludesFollowups(t *testing.T) {
	svc, module, config := progressFixture(t, "video")
	config.HasTest = true
	config.Test = branchingTestFixture()

	// before the test completes, only level tasks count
	tasks, err := svc.dayTaskUniverse(module, config)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	module.DynamicTestCompleted = true
	require.NoError(t, module.SetTestResult(&model.DayTestResult{
		Answers: []model.AnswerDetail{{QuestionID: "sleep", OptionKey: "poor", Score: 2}},
	}))

	tasks, err = svc.dayTaskUniverse(module, config)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	assert.Equal(t, "day2_sleep_poor_followup", tasks[4].TaskID)

	// the new follow-up is an open actionable unit, so it lowers the
	// percentage until it gets a response
	pct, err := svc.computeDayPercentage(module, config)
	require.NoError(t, err)
	// done: video + reminder + test = 3 of 6 units
	assert.Equal(t, 50, pct)
}

func TestFollowupsEnabledResolution(t *testing.T) {
	off := false
	on := true

	assert.True(t, followupsEnabled(&model.ComposedDayConfig{}))
	assert.False(t, followupsEnabled(&model.ComposedDayConfig{EnableFollowupTasks: &off}))
	assert.True(t, followupsEnabled(&model.ComposedDayConfig{EnableFollowupTasks: &on}))

	// day-level flag wins over the test-level one
	assert.False(t, followupsEnabled(&model.ComposedDayConfig{
		EnableFollowupTasks: &off,
		Test:                &model.TestStructure{EnableFollowupTasks: &on},
	}))
	assert.False(t, followupsEnabled(&model.ComposedDayConfig{
		Test: &model.TestStructure{EnableFollowupTasks: &off},
	}))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, clampPercent(-5))
	assert.Equal(t, 100, clampPercent(140))
	assert.Equal(t, 60, clampPercent(60))
}
