package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStructure(t *testing.T) *DayStructure {
	t.Helper()

	levels, err := json.Marshal([]ContentLevel{
		{
			LevelKey: "mild",
			Tasks: []StructureTask{
				{TaskID: "t1", TaskOrder: 1, TaskType: TaskVideo},
				{TaskID: "t2", TaskOrder: 2, TaskType: TaskReflection},
			},
		},
	})
	require.NoError(t, err)

	test, err := json.Marshal(TestStructure{
		TestType: "daily_check",
		QuestionSequence: []TestQuestion{
			{
				QuestionID: "q1",
				Options: []QuestionOption{
					{OptionKey: "a", Score: 0},
					{OptionKey: "b", Score: 2},
				},
			},
		},
		ScoreRanges: []ScoreRange{
			{LevelKey: "mild", MinScore: 0, MaxScore: 2},
		},
	})
	require.NoError(t, err)

	return &DayStructure{
		DayNumber:     1,
		BaseLanguage:  "english",
		Enabled:       true,
		HasTest:       true,
		Test:          test,
		ContentLevels: levels,
	}
}

func TestValidateAcceptsWellFormedStructure(t *testing.T) {
	assert.NoError(t, validStructure(t).Validate())
}

func TestValidateRejectsDuplicateLevelKeys(t *testing.T) {
	s := validStructure(t)
	levels, _ := json.Marshal([]ContentLevel{
		{LevelKey: "mild"},
		{LevelKey: "mild"},
	})
	s.ContentLevels = levels
	assert.Error(t, s.Validate())
}

func TestValidateRejectsDuplicateTaskIDs(t *testing.T) {
	s := validStructure(t)
	levels, _ := json.Marshal([]ContentLevel{
		{
			LevelKey: "mild",
			Tasks: []StructureTask{
				{TaskID: "t1", TaskType: TaskVideo},
				{TaskID: "t1", TaskType: TaskAudio},
			},
		},
	})
	s.ContentLevels = levels
	assert.Error(t, s.Validate())
}

func TestValidateRejectsInvertedScoreRange(t *testing.T) {
	s := validStructure(t)
	test, _ := json.Marshal(TestStructure{
		TestType: "daily_check",
		QuestionSequence: []TestQuestion{
			{QuestionID: "q1", Options: []QuestionOption{{OptionKey: "a"}}},
		},
		ScoreRanges: []ScoreRange{
			{LevelKey: "mild", MinScore: 10, MaxScore: 5},
		},
	})
	s.Test = test
	assert.Error(t, s.Validate())
}

func TestValidateRejectsDuplicateOptionKeys(t *testing.T) {
	s := validStructure(t)
	test, _ := json.Marshal(TestStructure{
		TestType: "daily_check",
		QuestionSequence: []TestQuestion{
			{
				QuestionID: "q1",
				Options: []QuestionOption{
					{OptionKey: "a"},
					{OptionKey: "a"},
				},
			},
		},
	})
	s.Test = test
	assert.Error(t, s.Validate())
}

func TestValidateRejectsMissingTestDocument(t *testing.T) {
	s := validStructure(t)
	s.Test = nil
	assert.Error(t, s.Validate())
}

func TestOverlappingRangesDetection(t *testing.T) {
	overlaps := OverlappingRanges([]ScoreRange{
		{LevelKey: "mild", MinScore: 0, MaxScore: 40},
		{LevelKey: "moderate", MinScore: 41, MaxScore: 60},
	})
	assert.Empty(t, overlaps)

	overlaps = OverlappingRanges([]ScoreRange{
		{LevelKey: "mild", MinScore: 0, MaxScore: 45},
		{LevelKey: "moderate", MinScore: 41, MaxScore: 60},
	})
	require.Len(t, overlaps, 1)
	assert.Equal(t, [2]string{"mild", "moderate"}, overlaps[0])
}

func TestMaxPossibleScore(t *testing.T) {
	test := TestStructure{
		QuestionSequence: []TestQuestion{
			{Options: []QuestionOption{{Score: 0}, {Score: 4}}},
			{Options: []QuestionOption{{Score: 1}, {Score: 3}}},
		},
	}
	assert.Equal(t, 7, test.MaxPossibleScore())
}

func TestTaskClassification(t *testing.T) {
	assert.Equal(t, ClassPassive, TaskReminder.Classification())
	assert.Equal(t, ClassPassive, TaskDynamicTest.Classification())
	assert.Equal(t, ClassActionable, TaskVideo.Classification())
	assert.Equal(t, ClassActionable, TaskFollowup.Classification())
	// unknown types still demand a response
	assert.Equal(t, ClassActionable, TaskType("mystery").Classification())
}

func TestScoreRangeContains(t *testing.T) {
	r := ScoreRange{MinScore: 41, MaxScore: 60}
	assert.False(t, r.Contains(40))
	assert.True(t, r.Contains(41))
	assert.True(t, r.Contains(60))
	assert.False(t, r.Contains(61))
}
