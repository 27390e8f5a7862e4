package service

import (
	"caregiver_support_backend/internal/model"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structureFixture(t *testing.T) *model.DayStructure {
	t.Helper()

	levels, err := json.Marshal([]model.ContentLevel{
		{
			LevelKey: "mild",
			Tasks: []model.StructureTask{
				{
					TaskID:    "day2_video",
					TaskOrder: 1,
					TaskType:  model.TaskVideo,
					Content: map[string]interface{}{
						"url":      "/media/day2_mild.mp4",
						"duration": float64(300),
						"captions": map[string]interface{}{"english": "/captions/en.vtt"},
					},
				},
				{TaskID: "day2_reflection", TaskOrder: 2, TaskType: model.TaskReflection},
			},
		},
		{
			LevelKey: "severe",
			Tasks: []model.StructureTask{
				{TaskID: "day2_video", TaskOrder: 1, TaskType: model.TaskVideo},
			},
		},
	})
	require.NoError(t, err)

	test, err := json.Marshal(model.TestStructure{
		TestName: "Daily Check",
		TestType: "daily_check",
		QuestionSequence: []model.TestQuestion{
			{
				QuestionID: "q1",
				Text:       "How are you feeling?",
				Options: []model.QuestionOption{
					{OptionKey: "a", OptionText: "Fine", Score: 1},
					{OptionKey: "b", OptionText: "Struggling", Score: 3},
				},
			},
		},
		ScoreRanges: []model.ScoreRange{
			{LevelKey: "mild", MinScore: 0, MaxScore: 1},
			{LevelKey: "severe", MinScore: 2, MaxScore: 3},
		},
	})
	require.NoError(t, err)

	return &model.DayStructure{
		DayNumber:     2,
		BaseLanguage:  "english",
		Enabled:       true,
		HasTest:       true,
		Test:          test,
		ContentLevels: levels,
	}
}

func translationFixture(t *testing.T) *model.DayTranslation {
	t.Helper()

	levelContent, err := json.Marshal([]model.LevelTranslation{
		{
			LevelKey: "mild",
			Tasks: []model.TaskTranslation{
				{
					TaskID:      "day2_video",
					Title:       "Entspannungsvideo",
					Description: "Ein kurzes Video.",
					ContentOverrides: map[string]interface{}{
						"url":      "", // empty values must not erase the default
						"captions": map[string]interface{}{"german": "/captions/de.vtt"},
					},
				},
			},
		},
	})
	require.NoError(t, err)

	testContent, err := json.Marshal(model.TestTranslation{
		TestName: "Tagescheck",
		Questions: []model.QuestionTranslation{
			{
				QuestionID: "q1",
				Text:       "Wie fühlen Sie sich?",
				Options: []model.OptionTranslation{
					{OptionKey: "a", OptionText: "Gut"},
				},
			},
		},
	})
	require.NoError(t, err)

	return &model.DayTranslation{
		DayNumber:    2,
		Language:     "german",
		DayName:      "Tag 2",
		LevelContent: levelContent,
		TestContent:  testContent,
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	structure := structureFixture(t)
	translation := translationFixture(t)

	first, err := Compose(structure, translation, "mild")
	require.NoError(t, err)
	second, err := Compose(structure, translation, "mild")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposeOverlaysTranslation(t *testing.T) {
	structure := structureFixture(t)
	translation := translationFixture(t)

	config, err := Compose(structure, translation, "mild")
	require.NoError(t, err)

	assert.Equal(t, "Tag 2", config.DayName)
	assert.Equal(t, "german", config.Language)
	assert.Equal(t, "mild", config.LevelKey)
	assert.False(t, config.FallbackLevelUsed)

	require.Len(t, config.Tasks, 2)
	video := config.Tasks[0]
	assert.Equal(t, "Entspannungsvideo", video.Title)
	// empty override must keep the structure default
	assert.Equal(t, "/media/day2_mild.mp4", video.Content["url"])
	// nested maps merge key by key
	captions := video.Content["captions"].(map[string]interface{})
	assert.Equal(t, "/captions/en.vtt", captions["english"])
	assert.Equal(t, "/captions/de.vtt", captions["german"])

	// untranslated task falls through untouched
	assert.Empty(t, config.Tasks[1].Title)
}

func TestComposeEmptyOverlayEqualsNoTranslation(t *testing.T) {
	structure := structureFixture(t)

	empty := &model.DayTranslation{DayNumber: 2, Language: "english"}
	withEmpty, err := Compose(structure, empty, "mild")
	require.NoError(t, err)
	without, err := Compose(structure, nil, "mild")
	require.NoError(t, err)

	assert.Equal(t, without.Tasks, withEmpty.Tasks)
	assert.Equal(t, without.Test, withEmpty.Test)
}

func TestComposeTestOverlayKeepsScoring(t *testing.T) {
	structure := structureFixture(t)
	translation := translationFixture(t)

	config, err := Compose(structure, translation, "mild")
	require.NoError(t, err)

	require.NotNil(t, config.Test)
	assert.Equal(t, "Tagescheck", config.Test.TestName)
	assert.Equal(t, "Wie fühlen Sie sich?", config.Test.QuestionSequence[0].Text)
	assert.Equal(t, "Gut", config.Test.QuestionSequence[0].Options[0].OptionText)
	// scoring and ranges come from the structure only
	assert.Equal(t, 1, config.Test.QuestionSequence[0].Options[0].Score)
	assert.Equal(t, structureMustTest(t, structure).ScoreRanges, config.Test.ScoreRanges)
	// untranslated option keeps its structure text
	assert.Equal(t, "Struggling", config.Test.QuestionSequence[0].Options[1].OptionText)
}

func structureMustTest(t *testing.T, s *model.DayStructure) *model.TestStructure {
	t.Helper()
	test, err := s.TestStructure()
	require.NoError(t, err)
	require.NotNil(t, test)
	return test
}

func TestComposeLevelFallback(t *testing.T) {
	structure := structureFixture(t)

	config, err := Compose(structure, nil, "unknown_level")
	require.NoError(t, err)
	assert.Equal(t, "mild", config.LevelKey)
	assert.True(t, config.FallbackLevelUsed)

	// no level requested yet: first level without the flag
	config, err = Compose(structure, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "mild", config.LevelKey)
	assert.False(t, config.FallbackLevelUsed)
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	structure := structureFixture(t)
	translation := translationFixture(t)

	config, err := Compose(structure, translation, "mild")
	require.NoError(t, err)

	config.Tasks[0].Content["url"] = "mutated"
	again, err := Compose(structure, translation, "mild")
	require.NoError(t, err)
	assert.Equal(t, "/media/day2_mild.mp4", again.Tasks[0].Content["url"])
}

func TestComposeNilStructure(t *testing.T) {
	config, err := Compose(nil, nil, "")
	require.NoError(t, err)
	assert.Nil(t, config)
}
