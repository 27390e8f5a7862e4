package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"caregiver_support_backend/pkg/logger"
	"caregiver_support_backend/pkg/monitoring"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AssessmentService scores a day's dynamic test, assigns the content level
// and records the result on the caregiver's day module.
type AssessmentService struct {
	ProgramRepo *repository.ProgramRepository
	Composer    *ComposerService
	Progress    *ProgressService
}

func NewAssessmentService(
	programRepo *repository.ProgramRepository,
	composer *ComposerService,
	progress *ProgressService,
) *AssessmentService {
	return &AssessmentService{
		ProgramRepo: programRepo,
		Composer:    composer,
		Progress:    progress,
	}
}

type SubmittedAnswer struct {
	QuestionID string `json:"questionId" binding:"required"`
	OptionKey  string `json:"optionKey,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Score      int    `json:"score,omitempty"`
}

type AssessmentSubmissionRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required"`
}

type AssessmentResult struct {
	AssignedLevel string `json:"assignedLevel,omitempty"`
	TotalScore    int    `json:"totalScore"`
	TestCompleted bool   `json:"testCompleted"`
}

// SubmitAssessment validates and scores a submission, then writes level,
// result and recomputed progress back in a single aggregate save. A repeat
// submission of a one-time test returns the stored result unchanged together
// with ErrDuplicateSubmission.
func (s *AssessmentService) SubmitAssessment(userID uint, day int, language string, req AssessmentSubmissionRequest) (*AssessmentResult, error) {
	program, err := s.ProgramRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	module := program.Module(day)
	if module == nil || !module.AdminPermissionGranted {
		return nil, util.ErrDayLocked
	}

	config, err := s.Composer.ComposeDay(day, language, module.ContentLevel)
	if err != nil {
		return nil, err
	}
	if config.Test == nil {
		return nil, util.ErrTestNotConfigured
	}
	test := config.Test

	if module.DynamicTestCompleted && test.IsOneTime() {
		previous, err := module.TestResultDoc()
		if err != nil {
			return nil, err
		}
		result := &AssessmentResult{TestCompleted: true}
		if previous != nil {
			result.AssignedLevel = previous.AssignedLevel
			result.TotalScore = previous.TotalScore
		}
		return result, util.ErrDuplicateSubmission
	}

	details, totalScore, err := normalizeAnswers(test, req.Answers)
	if err != nil {
		return nil, err
	}

	assignedLevel := AssignLevel(test, totalScore)
	if assignedLevel == "" && len(config.LevelKey) > 0 {
		// Level assignment disabled or unconfigured: stay on the default level.
		assignedLevel = config.LevelKey
	}

	now := time.Now()
	module.ContentLevel = assignedLevel
	module.DynamicTestCompleted = true
	if err := module.SetTestResult(&model.DayTestResult{
		TestName:      test.TestName,
		TestType:      test.TestType,
		TotalScore:    totalScore,
		AssignedLevel: assignedLevel,
		CompletedAt:   &now,
		Answers:       details,
	}); err != nil {
		return nil, err
	}

	if test.TestType == "zarit_burden" {
		program.BurdenLevel = assignedLevel
	}

	// The assigned level can change the day's task list, so progress is
	// recomputed against the level's composition before the single save.
	levelConfig, err := s.Composer.ComposeDay(day, language, assignedLevel)
	if err != nil {
		return nil, err
	}
	if err := s.Progress.RecalculateDay(program, module, levelConfig); err != nil {
		return nil, err
	}

	if err := s.ProgramRepo.Save(program); err != nil {
		return nil, err
	}

	monitoring.AssessmentsSubmitted.WithLabelValues(test.TestType, assignedLevel).Inc()

	return &AssessmentResult{
		AssignedLevel: assignedLevel,
		TotalScore:    totalScore,
		TestCompleted: true,
	}, nil
}

// normalizeAnswers resolves every submitted answer against the test
// definition. When an option resolves, its declared score is authoritative;
// otherwise the submitted score must stay within the question's declared
// bounds.
func normalizeAnswers(test *model.TestStructure, answers []SubmittedAnswer) ([]model.AnswerDetail, int, error) {
	questions := make(map[string]*model.TestQuestion, len(test.QuestionSequence))
	for i := range test.QuestionSequence {
		questions[test.QuestionSequence[i].QuestionID] = &test.QuestionSequence[i]
	}

	details := make([]model.AnswerDetail, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	total := 0
	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: unknown question %q", util.ErrValidationFailure, answer.QuestionID)
		}
		// 同一题重复作答会虚增总分
		if seen[answer.QuestionID] {
			return nil, 0, fmt.Errorf("%w: duplicate answer for question %q", util.ErrValidationFailure, answer.QuestionID)
		}
		seen[answer.QuestionID] = true

		detail := model.AnswerDetail{
			QuestionID: answer.QuestionID,
			OptionKey:  answer.OptionKey,
			Answer:     answer.Answer,
			Score:      answer.Score,
		}

		if option := ResolveSelectedOption(question, detail, answer.Score); option != nil {
			detail.OptionKey = option.OptionKey
			detail.Score = option.Score
		} else {
			min, max := scoreBounds(question)
			if detail.Score < min || detail.Score > max {
				return nil, 0, fmt.Errorf("%w: question %q score %d outside [%d,%d]",
					util.ErrValidationFailure, answer.QuestionID, detail.Score, min, max)
			}
		}

		total += detail.Score
		details = append(details, detail)
	}

	return details, total, nil
}

func scoreBounds(question *model.TestQuestion) (int, int) {
	if len(question.Options) == 0 {
		return 0, 0
	}
	min, max := question.Options[0].Score, question.Options[0].Score
	for _, o := range question.Options[1:] {
		if o.Score < min {
			min = o.Score
		}
		if o.Score > max {
			max = o.Score
		}
	}
	return min, max
}

// AssignLevel maps a total score to a content level key. Per product
// decision, a score outside every configured range falls back to the first
// range rather than failing the participant flow; the anomaly is logged.
// disableLevels skips assignment entirely (the test only drives branching).
func AssignLevel(test *model.TestStructure, totalScore int) string {
	if test.DisableLevels || len(test.ScoreRanges) == 0 {
		return ""
	}

	for _, r := range test.ScoreRanges {
		if r.Contains(totalScore) {
			return r.LevelKey
		}
	}

	fallback := test.ScoreRanges[0]
	logger.Log.Warn("assessment score matched no configured range, using first range",
		zap.String("testType", test.TestType),
		zap.Int("totalScore", totalScore),
		zap.String("fallbackLevel", fallback.LevelKey),
	)
	return fallback.LevelKey
}

// optionMatcher is one step of the ordered option-resolution strategy.
type optionMatcher func(question *model.TestQuestion, detail model.AnswerDetail, fallbackScore int) *model.QuestionOption

var optionMatchers = []optionMatcher{
	matchByOptionKey,
	matchByAnswerValue,
	matchByDetailScore,
	matchByFallbackScore,
}

// ResolveSelectedOption finds which option a submitted answer refers to,
// trying exact key, normalized value, detail score and raw score in order.
// nil means no branch is taken; callers must not treat that as an error.
func ResolveSelectedOption(question *model.TestQuestion, detail model.AnswerDetail, fallbackScore int) *model.QuestionOption {
	for _, match := range optionMatchers {
		if option := match(question, detail, fallbackScore); option != nil {
			return option
		}
	}
	return nil
}

func matchByOptionKey(question *model.TestQuestion, detail model.AnswerDetail, _ int) *model.QuestionOption {
	if detail.OptionKey == "" {
		return nil
	}
	for i := range question.Options {
		if question.Options[i].OptionKey == detail.OptionKey {
			return &question.Options[i]
		}
	}
	return nil
}

func matchByAnswerValue(question *model.TestQuestion, detail model.AnswerDetail, _ int) *model.QuestionOption {
	value := normalizeAnswerValue(detail.Answer)
	if value == "" {
		return nil
	}
	for i := range question.Options {
		if normalizeAnswerValue(question.Options[i].AnswerValue) == value ||
			normalizeAnswerValue(question.Options[i].OptionText) == value {
			return &question.Options[i]
		}
	}
	return nil
}

func matchByDetailScore(question *model.TestQuestion, detail model.AnswerDetail, _ int) *model.QuestionOption {
	return matchByScore(question, detail.Score, detail.OptionKey == "" && detail.Answer == "")
}

func matchByFallbackScore(question *model.TestQuestion, _ model.AnswerDetail, fallbackScore int) *model.QuestionOption {
	return matchByScore(question, fallbackScore, true)
}

// matchByScore resolves by numeric score. A zero score only matches when the
// submission carried nothing else to match on, because zero is also the
// zero-value of an absent field.
func matchByScore(question *model.TestQuestion, score int, allowZero bool) *model.QuestionOption {
	if score == 0 && !allowZero {
		return nil
	}
	for i := range question.Options {
		if question.Options[i].Score == score {
			return &question.Options[i]
		}
	}
	return nil
}

func normalizeAnswerValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
