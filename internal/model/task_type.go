package model

// TaskType 任务类型
type TaskType string

const (
	TaskVideo       TaskType = "video"
	TaskAudio       TaskType = "audio"
	TaskText        TaskType = "text"
	TaskExercise    TaskType = "exercise"
	TaskChecklist   TaskType = "checklist"
	TaskReflection  TaskType = "reflection"
	TaskReminder    TaskType = "reminder"
	TaskDynamicTest TaskType = "dynamic-test"
	TaskFollowup    TaskType = "followup"
)

// TaskClassification 区分需要参与者动作的任务与被动任务
type TaskClassification string

const (
	ClassActionable TaskClassification = "actionable"
	ClassPassive    TaskClassification = "passive"
)

// Classification reports how a task of this type counts toward day progress.
// Reminders never require a participant action; the dynamic test is tracked
// through its own completion record rather than a task response.
func (t TaskType) Classification() TaskClassification {
	switch t {
	case TaskReminder, TaskDynamicTest:
		return ClassPassive
	case TaskVideo, TaskAudio, TaskText, TaskExercise, TaskChecklist, TaskReflection, TaskFollowup:
		return ClassActionable
	default:
		// Unknown types still count toward progress so a content typo
		// cannot strand a participant below 100%.
		return ClassActionable
	}
}
