package model

import (
	"encoding/json"
	"fmt"
)

// DayTranslation 某天在某种语言下的文本覆盖层
// swagger:model DayTranslation
type DayTranslation struct {
	BaseModel
	DayNumber    int             `gorm:"not null;uniqueIndex:idx_day_language" json:"dayNumber"`
	Language     string          `gorm:"size:20;not null;uniqueIndex:idx_day_language" json:"language"`
	DayName      string          `gorm:"size:255" json:"dayName"`
	LevelContent json.RawMessage `gorm:"type:json" json:"levelContent,omitempty"` // []LevelTranslation
	TestContent  json.RawMessage `gorm:"type:json" json:"testContent,omitempty"`  // TestTranslation
}

func (DayTranslation) TableName() string {
	return "day_translations"
}

type LevelTranslation struct {
	LevelKey string            `json:"levelKey"`
	Tasks    []TaskTranslation `json:"tasks"`
}

type TaskTranslation struct {
	TaskID           string                 `json:"taskId"`
	Title            string                 `json:"title,omitempty"`
	Description      string                 `json:"description,omitempty"`
	ContentOverrides map[string]interface{} `json:"contentOverrides,omitempty"`
}

type TestTranslation struct {
	TestName  string                `json:"testName,omitempty"`
	Questions []QuestionTranslation `json:"questions,omitempty"`
}

type QuestionTranslation struct {
	QuestionID string              `json:"questionId"`
	Text       string              `json:"text,omitempty"`
	Options    []OptionTranslation `json:"options,omitempty"`
}

type OptionTranslation struct {
	OptionKey  string `json:"optionKey"`
	OptionText string `json:"optionText,omitempty"`
}

// Levels decodes the per-level translation overlay.
func (t *DayTranslation) Levels() ([]LevelTranslation, error) {
	if len(t.LevelContent) == 0 {
		return nil, nil
	}
	var levels []LevelTranslation
	if err := json.Unmarshal(t.LevelContent, &levels); err != nil {
		return nil, fmt.Errorf("day %d translation %q: decode level content: %w", t.DayNumber, t.Language, err)
	}
	return levels, nil
}

// TestTranslation decodes the test text overlay, nil when absent.
func (t *DayTranslation) TestTranslation() (*TestTranslation, error) {
	if len(t.TestContent) == 0 {
		return nil, nil
	}
	var test TestTranslation
	if err := json.Unmarshal(t.TestContent, &test); err != nil {
		return nil, fmt.Errorf("day %d translation %q: decode test content: %w", t.DayNumber, t.Language, err)
	}
	return &test, nil
}

func (t *DayTranslation) Validate() error {
	if t.DayNumber < 0 {
		return fmt.Errorf("dayNumber must not be negative")
	}
	if t.Language == "" {
		return fmt.Errorf("language is required")
	}
	if _, err := t.Levels(); err != nil {
		return err
	}
	if _, err := t.TestTranslation(); err != nil {
		return err
	}
	return nil
}
