package service

import (
	"caregiver_support_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchingTestFixture() *model.TestStructure {
	return &model.TestStructure{
		TestType: "needs_check",
		QuestionSequence: []model.TestQuestion{
			{
				QuestionID: "sleep",
				Options: []model.QuestionOption{
					{OptionKey: "good", Score: 0},
					{
						OptionKey:   "poor",
						AnswerValue: "poor",
						Score:       2,
						FollowupTask: &model.FollowupTaskDef{
							TaskType: model.TaskAudio,
							Title:    "Sleep hygiene audio",
						},
					},
				},
			},
			{
				QuestionID: "stress",
				Options: []model.QuestionOption{
					{OptionKey: "low", Score: 0},
					{
						OptionKey: "high",
						Score:     3,
						FollowupTask: &model.FollowupTaskDef{
							Title: "Breathing exercise",
						},
					},
				},
			},
		},
	}
}

func TestBuildFollowupTasksDeterministicIDs(t *testing.T) {
	branch := NewBranchService()
	test := branchingTestFixture()
	result := &model.DayTestResult{
		Answers: []model.AnswerDetail{
			// answer order reversed on purpose
			{QuestionID: "stress", OptionKey: "high", Score: 3},
			{QuestionID: "sleep", OptionKey: "poor", Score: 2},
		},
	}

	tasks := branch.BuildFollowupTasks(3, test, result, 4, true)
	require.Len(t, tasks, 2)

	// question sequence order, not answer order
	assert.Equal(t, "day3_sleep_poor_followup", tasks[0].TaskID)
	assert.Equal(t, "day3_stress_high_followup", tasks[1].TaskID)

	assert.Equal(t, model.TaskAudio, tasks[0].TaskType)
	assert.Equal(t, model.TaskFollowup, tasks[1].TaskType) // default type

	// numbered consecutively from the requested slot
	assert.Equal(t, 4, tasks[0].TaskOrder)
	assert.Equal(t, 5, tasks[1].TaskOrder)

	require.NotNil(t, tasks[0].BranchingSource)
	assert.Equal(t, "sleep", tasks[0].BranchingSource.QuestionID)
	assert.Equal(t, "poor", tasks[0].BranchingSource.OptionKey)

	// re-running yields the same tasks
	again := branch.BuildFollowupTasks(3, test, result, 4, true)
	assert.Equal(t, tasks, again)
}

func TestBuildFollowupTasksSkipsNonBranchingAnswers(t *testing.T) {
	branch := NewBranchService()
	test := branchingTestFixture()
	result := &model.DayTestResult{
		Answers: []model.AnswerDetail{
			{QuestionID: "sleep", OptionKey: "good", Score: 0},
			{QuestionID: "stress", OptionKey: "low", Score: 0},
		},
	}

	assert.Empty(t, branch.BuildFollowupTasks(3, test, result, 4, true))
}

func TestBuildFollowupTasksDisabled(t *testing.T) {
	branch := NewBranchService()
	test := branchingTestFixture()
	result := &model.DayTestResult{
		Answers: []model.AnswerDetail{{QuestionID: "sleep", OptionKey: "poor", Score: 2}},
	}

	// day-level switch off
	assert.Empty(t, branch.BuildFollowupTasks(3, test, result, 4, false))

	// single definition switched off
	off := false
	test.QuestionSequence[0].Options[1].FollowupTask.Enabled = &off
	tasks := branch.BuildFollowupTasks(3, test, result, 4, true)
	assert.Empty(t, tasks)
}

func TestBuildFollowupTasksNilInputs(t *testing.T) {
	branch := NewBranchService()
	assert.Empty(t, branch.BuildFollowupTasks(3, nil, &model.DayTestResult{}, 1, true))
	assert.Empty(t, branch.BuildFollowupTasks(3, branchingTestFixture(), nil, 1, true))
}

func TestFollowupTaskID(t *testing.T) {
	assert.Equal(t, "day5_q2_b_followup", FollowupTaskID(5, "q2", "b"))
}

func TestNextTaskOrder(t *testing.T) {
	assert.Equal(t, 1, NextTaskOrder(nil))
	assert.Equal(t, 4, NextTaskOrder([]model.ComposedTask{
		{TaskOrder: 3}, {TaskOrder: 1},
	}))
}
