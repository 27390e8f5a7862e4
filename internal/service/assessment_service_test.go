package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burdenTestFixture() *model.TestStructure {
	return &model.TestStructure{
		TestName: "Zarit Burden Interview",
		TestType: "zarit_burden",
		QuestionSequence: []model.TestQuestion{
			{
				QuestionID: "q1",
				Options: []model.QuestionOption{
					{OptionKey: "never", OptionText: "Never", AnswerValue: "never", Score: 0},
					{OptionKey: "sometimes", OptionText: "Sometimes", AnswerValue: "sometimes", Score: 2},
					{OptionKey: "always", OptionText: "Nearly always", AnswerValue: "always", Score: 4},
				},
			},
			{
				QuestionID: "q2",
				Options: []model.QuestionOption{
					{OptionKey: "no", OptionText: "No", Score: 0},
					{OptionKey: "yes", OptionText: "Yes", Score: 4},
				},
			},
		},
		ScoreRanges: []model.ScoreRange{
			{LevelKey: "mild", MinScore: 0, MaxScore: 40},
			{LevelKey: "moderate", MinScore: 41, MaxScore: 60},
			{LevelKey: "severe", MinScore: 61, MaxScore: 88},
		},
	}
}

func TestAssignLevelFirstMatchingRange(t *testing.T) {
	test := burdenTestFixture()

	assert.Equal(t, "mild", AssignLevel(test, 0))
	assert.Equal(t, "mild", AssignLevel(test, 40))
	assert.Equal(t, "moderate", AssignLevel(test, 41))
	assert.Equal(t, "moderate", AssignLevel(test, 44))
	assert.Equal(t, "severe", AssignLevel(test, 61))
	assert.Equal(t, "severe", AssignLevel(test, 88))
}

func TestAssignLevelOutOfRangeFallsBackToFirst(t *testing.T) {
	test := burdenTestFixture()
	// scores the ranges never cover still resolve rather than fail
	assert.Equal(t, "mild", AssignLevel(test, 89))
	assert.Equal(t, "mild", AssignLevel(test, -1))
}

func TestAssignLevelOverlappingRangesFirstWins(t *testing.T) {
	test := burdenTestFixture()
	test.ScoreRanges = []model.ScoreRange{
		{LevelKey: "mild", MinScore: 0, MaxScore: 50},
		{LevelKey: "moderate", MinScore: 40, MaxScore: 60},
	}
	assert.Equal(t, "mild", AssignLevel(test, 45))
}

func TestAssignLevelDisabled(t *testing.T) {
	test := burdenTestFixture()
	test.DisableLevels = true
	assert.Equal(t, "", AssignLevel(test, 44))

	test = burdenTestFixture()
	test.ScoreRanges = nil
	assert.Equal(t, "", AssignLevel(test, 44))
}

func TestResolveSelectedOptionByKey(t *testing.T) {
	q := &burdenTestFixture().QuestionSequence[0]

	option := ResolveSelectedOption(q, model.AnswerDetail{OptionKey: "sometimes"}, 0)
	require.NotNil(t, option)
	assert.Equal(t, "sometimes", option.OptionKey)
}

func TestResolveSelectedOptionByValue(t *testing.T) {
	q := &burdenTestFixture().QuestionSequence[0]

	// normalized against answerValue
	option := ResolveSelectedOption(q, model.AnswerDetail{Answer: "  ALWAYS "}, 0)
	require.NotNil(t, option)
	assert.Equal(t, "always", option.OptionKey)

	// and against the display text
	option = ResolveSelectedOption(q, model.AnswerDetail{Answer: "nearly always"}, 0)
	require.NotNil(t, option)
	assert.Equal(t, "always", option.OptionKey)
}

func TestResolveSelectedOptionByScore(t *testing.T) {
	q := &burdenTestFixture().QuestionSequence[0]

	option := ResolveSelectedOption(q, model.AnswerDetail{Score: 2}, 0)
	require.NotNil(t, option)
	assert.Equal(t, "sometimes", option.OptionKey)

	// raw score fallback when the detail carries nothing
	option = ResolveSelectedOption(q, model.AnswerDetail{}, 4)
	require.NotNil(t, option)
	assert.Equal(t, "always", option.OptionKey)
}

func TestResolveSelectedOptionNoMatch(t *testing.T) {
	q := &burdenTestFixture().QuestionSequence[0]
	// no branch taken is a nil result, not an error
	assert.Nil(t, ResolveSelectedOption(q, model.AnswerDetail{OptionKey: "missing", Answer: "nope", Score: 99}, 99))
}

func TestNormalizeAnswersUsesOptionScore(t *testing.T) {
	test := burdenTestFixture()

	details, total, err := normalizeAnswers(test, []SubmittedAnswer{
		{QuestionID: "q1", OptionKey: "always", Score: 1}, // client score ignored
		{QuestionID: "q2", OptionKey: "yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Equal(t, 4, details[0].Score)
	assert.Equal(t, 4, details[1].Score)
}

func TestNormalizeAnswersRejectsUnknownQuestion(t *testing.T) {
	test := burdenTestFixture()
	_, _, err := normalizeAnswers(test, []SubmittedAnswer{{QuestionID: "bogus", Score: 1}})
	assert.ErrorIs(t, err, util.ErrValidationFailure)
}

func TestNormalizeAnswersRejectsDuplicateQuestion(t *testing.T) {
	test := burdenTestFixture()
	_, _, err := normalizeAnswers(test, []SubmittedAnswer{
		{QuestionID: "q1", OptionKey: "always"},
		{QuestionID: "q1", OptionKey: "always"}, // would double the score
	})
	assert.ErrorIs(t, err, util.ErrValidationFailure)
}

func TestNormalizeAnswersRejectsOutOfBoundsScore(t *testing.T) {
	test := burdenTestFixture()
	_, _, err := normalizeAnswers(test, []SubmittedAnswer{{QuestionID: "q1", Score: 9}})
	assert.ErrorIs(t, err, util.ErrValidationFailure)
}

func TestOneTimeGuardCoversBurdenTest(t *testing.T) {
	test := burdenTestFixture()
	assert.True(t, test.IsOneTime())

	repeatable := &model.TestStructure{TestType: "daily_check"}
	assert.False(t, repeatable.IsOneTime())

	flagged := &model.TestStructure{TestType: "daily_check", OneTime: true}
	assert.True(t, flagged.IsOneTime())
}
