package model

// ComposedDayConfig 结构与翻译合并后的运行时配置（只缓存，不落库）
// swagger:model ComposedDayConfig
type ComposedDayConfig struct {
	Day               int            `json:"day"`
	DayName           string         `json:"dayName"`
	Language          string         `json:"language"` // language the content resolved to
	Enabled           bool           `json:"enabled"`
	HasTest           bool           `json:"hasTest"`
	LevelKey          string         `json:"levelKey"`
	FallbackLevelUsed bool           `json:"fallbackLevelUsed,omitempty"`
	Tasks             []ComposedTask `json:"tasks"`
	Test              *TestStructure `json:"test,omitempty"`

	// EnableFollowupTasks carries the day-level flag through to branch
	// resolution; nil means "presence of followups implies intent".
	EnableFollowupTasks *bool `json:"enableFollowupTasks,omitempty"`
}

type ComposedTask struct {
	TaskID          string                 `json:"taskId"`
	TaskOrder       int                    `json:"taskOrder"`
	TaskType        TaskType               `json:"taskType"`
	Title           string                 `json:"title,omitempty"`
	Description     string                 `json:"description,omitempty"`
	Content         map[string]interface{} `json:"content,omitempty"`
	Enabled         bool                   `json:"enabled"`
	BranchingSource *BranchingSource       `json:"branchingSource,omitempty"`
}

// BranchingSource records which test answer produced a follow-up task.
type BranchingSource struct {
	QuestionID  string `json:"questionId"`
	OptionKey   string `json:"optionKey"`
	AnswerValue string `json:"answerValue,omitempty"`
}
