package service

import (
	"caregiver_support_backend/internal/model"
	"fmt"
)

// BranchService derives follow-up tasks from a completed test's answers.
// Synthesis is deterministic: the same result always yields the same task
// IDs in question-sequence order, so re-running it is harmless.
type BranchService struct{}

func NewBranchService() *BranchService {
	return &BranchService{}
}

// FollowupTaskID builds the stable identifier for a branched task.
func FollowupTaskID(day int, questionID, optionKey string) string {
	return fmt.Sprintf("day%d_%s_%s_followup", day, questionID, optionKey)
}

// NextTaskOrder returns the first order slot after the given task list,
// so branched tasks render behind the level's own tasks.
func NextTaskOrder(tasks []model.ComposedTask) int {
	order := 0
	for _, t := range tasks {
		if t.TaskOrder > order {
			order = t.TaskOrder
		}
	}
	return order + 1
}

// BuildFollowupTasks walks the recorded answers against the test definition
// and returns the follow-up tasks the chosen options trigger, numbered from
// nextOrder. Options that resolve to nothing, disabled follow-up definitions
// and tests without follow-up support all yield no tasks.
func (s *BranchService) BuildFollowupTasks(day int, test *model.TestStructure, result *model.DayTestResult, nextOrder int, followupsEnabled bool) []model.ComposedTask {
	if test == nil || result == nil || !followupsEnabled || !test.HasFollowups() {
		return nil
	}

	answers := make(map[string]model.AnswerDetail, len(result.Answers))
	for _, a := range result.Answers {
		answers[a.QuestionID] = a
	}

	var tasks []model.ComposedTask
	// Question-sequence order keeps output stable regardless of answer order.
	for i := range test.QuestionSequence {
		question := &test.QuestionSequence[i]
		detail, ok := answers[question.QuestionID]
		if !ok {
			continue
		}

		option := ResolveSelectedOption(question, detail, detail.Score)
		if option == nil || option.FollowupTask == nil || !option.FollowupTask.IsEnabled() {
			continue
		}

		def := option.FollowupTask
		taskType := def.TaskType
		if taskType == "" {
			taskType = model.TaskFollowup
		}
		tasks = append(tasks, model.ComposedTask{
			TaskID:      FollowupTaskID(day, question.QuestionID, option.OptionKey),
			TaskOrder:   nextOrder,
			TaskType:    taskType,
			Title:       def.Title,
			Description: def.Description,
			Content:     def.Content,
			Enabled:     true,
			BranchingSource: &model.BranchingSource{
				QuestionID:  question.QuestionID,
				OptionKey:   option.OptionKey,
				AnswerValue: option.AnswerValue,
			},
		})
		nextOrder++
	}
	return tasks
}
