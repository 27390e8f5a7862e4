package model

import (
	"encoding/json"
	"fmt"
)

// DayStructure 某一天的语言无关结构定义
// swagger:model DayStructure
type DayStructure struct {
	BaseModel
	DayNumber           int             `gorm:"uniqueIndex;not null" json:"dayNumber"`
	BaseLanguage        string          `gorm:"size:20;default:'english'" json:"baseLanguage"`
	Enabled             bool            `gorm:"default:true" json:"enabled"`
	HasTest             bool            `gorm:"default:false" json:"hasTest"`
	EnableFollowupTasks *bool           `json:"enableFollowupTasks,omitempty"`
	Test                json.RawMessage `gorm:"type:json" json:"test,omitempty"`          // TestStructure
	ContentLevels       json.RawMessage `gorm:"type:json" json:"contentLevels,omitempty"` // []ContentLevel
}

func (DayStructure) TableName() string {
	return "day_structures"
}

// ContentLevel 内容变体（按评估等级区分）
type ContentLevel struct {
	LevelKey string          `json:"levelKey"`
	Tasks    []StructureTask `json:"tasks"`
}

type StructureTask struct {
	TaskID    string                 `json:"taskId"`
	TaskOrder int                    `json:"taskOrder"`
	TaskType  TaskType               `json:"taskType"`
	Content   map[string]interface{} `json:"content,omitempty"`
	Enabled   *bool                  `json:"enabled,omitempty"` // nil means enabled
}

func (t StructureTask) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// TestStructure 动态测试定义（问题、选项、分数区间）
type TestStructure struct {
	TestName            string         `json:"testName"`
	TestType            string         `json:"testType"`
	OneTime             bool           `json:"oneTime,omitempty"`
	DisableLevels       bool           `json:"disableLevels,omitempty"`
	EnableFollowupTasks *bool          `json:"enableFollowupTasks,omitempty"`
	QuestionSequence    []TestQuestion `json:"questionSequence"`
	ScoreRanges         []ScoreRange   `json:"scoreRanges,omitempty"`
}

type TestQuestion struct {
	QuestionID string           `json:"questionId"`
	Text       string           `json:"text"`
	Options    []QuestionOption `json:"options"`
}

type QuestionOption struct {
	OptionKey    string           `json:"optionKey"`
	OptionText   string           `json:"optionText"`
	AnswerValue  string           `json:"answerValue,omitempty"`
	Score        int              `json:"score"`
	FollowupTask *FollowupTaskDef `json:"followupTask,omitempty"`
}

// FollowupTaskDef 随答案注入的跟进任务定义
type FollowupTaskDef struct {
	Enabled     *bool                  `json:"enabled,omitempty"`
	TaskType    TaskType               `json:"taskType,omitempty"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Content     map[string]interface{} `json:"content,omitempty"`
}

func (f *FollowupTaskDef) IsEnabled() bool {
	return f != nil && (f.Enabled == nil || *f.Enabled)
}

type ScoreRange struct {
	LevelKey string `json:"levelKey"`
	MinScore int    `json:"minScore"`
	MaxScore int    `json:"maxScore"`
}

func (r ScoreRange) Contains(score int) bool {
	return score >= r.MinScore && score <= r.MaxScore
}

// MaxPossibleScore is the sum of the highest-scoring option of every question.
func (t *TestStructure) MaxPossibleScore() int {
	total := 0
	for _, q := range t.QuestionSequence {
		max := 0
		for _, o := range q.Options {
			if o.Score > max {
				max = o.Score
			}
		}
		total += max
	}
	return total
}

// IsOneTime reports whether repeat submissions are rejected for this test.
// The burden assessment is one-time regardless of how the document was authored.
func (t *TestStructure) IsOneTime() bool {
	return t.OneTime || t.TestType == "zarit_burden"
}

// HasFollowups reports whether any option defines a follow-up task.
func (t *TestStructure) HasFollowups() bool {
	for _, q := range t.QuestionSequence {
		for _, o := range q.Options {
			if o.FollowupTask != nil {
				return true
			}
		}
	}
	return false
}

// Levels decodes the content level documents of the structure row.
func (s *DayStructure) Levels() ([]ContentLevel, error) {
	if len(s.ContentLevels) == 0 {
		return nil, nil
	}
	var levels []ContentLevel
	if err := json.Unmarshal(s.ContentLevels, &levels); err != nil {
		return nil, fmt.Errorf("day %d: decode content levels: %w", s.DayNumber, err)
	}
	return levels, nil
}

// TestStructure decodes the dynamic test document, nil when the day has none.
func (s *DayStructure) TestStructure() (*TestStructure, error) {
	if !s.HasTest || len(s.Test) == 0 {
		return nil, nil
	}
	var test TestStructure
	if err := json.Unmarshal(s.Test, &test); err != nil {
		return nil, fmt.Errorf("day %d: decode test structure: %w", s.DayNumber, err)
	}
	return &test, nil
}

// Validate runs the ingestion checks for an authored structure document.
// Overlapping score ranges are accepted (first match wins at runtime), the
// caller is expected to log them.
func (s *DayStructure) Validate() error {
	if s.DayNumber < 0 {
		return fmt.Errorf("dayNumber must not be negative")
	}

	levels, err := s.Levels()
	if err != nil {
		return err
	}

	seenLevels := make(map[string]bool)
	seenTasks := make(map[string]bool)
	for _, level := range levels {
		if level.LevelKey == "" {
			return fmt.Errorf("day %d: content level with empty levelKey", s.DayNumber)
		}
		if seenLevels[level.LevelKey] {
			return fmt.Errorf("day %d: duplicate content level %q", s.DayNumber, level.LevelKey)
		}
		seenLevels[level.LevelKey] = true

		for _, task := range level.Tasks {
			if task.TaskID == "" {
				return fmt.Errorf("day %d level %q: task with empty taskId", s.DayNumber, level.LevelKey)
			}
			key := level.LevelKey + "/" + task.TaskID
			if seenTasks[key] {
				return fmt.Errorf("day %d level %q: duplicate taskId %q", s.DayNumber, level.LevelKey, task.TaskID)
			}
			seenTasks[key] = true
		}
	}

	test, err := s.TestStructure()
	if err != nil {
		return err
	}
	if s.HasTest && test == nil {
		return fmt.Errorf("day %d: hasTest set but no test document", s.DayNumber)
	}
	if test != nil {
		seenQuestions := make(map[string]bool)
		for _, q := range test.QuestionSequence {
			if q.QuestionID == "" {
				return fmt.Errorf("day %d test: question with empty questionId", s.DayNumber)
			}
			if seenQuestions[q.QuestionID] {
				return fmt.Errorf("day %d test: duplicate questionId %q", s.DayNumber, q.QuestionID)
			}
			seenQuestions[q.QuestionID] = true
			if len(q.Options) == 0 {
				return fmt.Errorf("day %d test question %q: no options", s.DayNumber, q.QuestionID)
			}
			seenOptions := make(map[string]bool)
			for _, o := range q.Options {
				if o.OptionKey == "" {
					return fmt.Errorf("day %d test question %q: option with empty optionKey", s.DayNumber, q.QuestionID)
				}
				if seenOptions[o.OptionKey] {
					return fmt.Errorf("day %d test question %q: duplicate optionKey %q", s.DayNumber, q.QuestionID, o.OptionKey)
				}
				seenOptions[o.OptionKey] = true
			}
		}
		for _, r := range test.ScoreRanges {
			if r.LevelKey == "" {
				return fmt.Errorf("day %d test: score range with empty levelKey", s.DayNumber)
			}
			if r.MinScore > r.MaxScore {
				return fmt.Errorf("day %d test: score range %q has minScore > maxScore", s.DayNumber, r.LevelKey)
			}
		}
	}

	return nil
}

// OverlappingRanges returns pairs of level keys whose score ranges intersect.
// Misconfigured overlaps are tolerated but should be surfaced to authors.
func OverlappingRanges(ranges []ScoreRange) [][2]string {
	var overlaps [][2]string
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].MinScore <= ranges[j].MaxScore && ranges[j].MinScore <= ranges[i].MaxScore {
				overlaps = append(overlaps, [2]string{ranges[i].LevelKey, ranges[j].LevelKey})
			}
		}
	}
	return overlaps
}
