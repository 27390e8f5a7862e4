package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TotalProgramDays 程序固定天数（第0天到第7天）
const TotalProgramDays = 8

// DayState 每日模块状态机
type DayState string

const (
	DayLocked     DayState = "locked"
	DayAvailable  DayState = "available"
	DayInProgress DayState = "in_progress"
	DayCompleted  DayState = "completed"
)

// CaregiverProgram 每个照护者的程序聚合根
// swagger:model CaregiverProgram
type CaregiverProgram struct {
	BaseModel
	UserID          uint   `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	CurrentDay      int    `gorm:"default:0" json:"currentDay"`
	OverallProgress int    `gorm:"default:0" json:"overallProgress"`
	BurdenLevel     string `gorm:"size:50" json:"burdenLevel,omitempty"`

	// Per-caregiver unlock wait overrides; nil falls through to the
	// global config and then to the 24h default.
	WaitHoursOverride     *int `json:"waitHoursOverride,omitempty"`
	Day0WaitHoursOverride *int `json:"day0WaitHoursOverride,omitempty"`

	DayModules []DayModule `gorm:"foreignKey:ProgramID" json:"dayModules,omitempty"`
}

func (CaregiverProgram) TableName() string {
	return "caregiver_programs"
}

// Module returns the day module for a day, nil when not yet created.
func (p *CaregiverProgram) Module(day int) *DayModule {
	for i := range p.DayModules {
		if p.DayModules[i].Day == day {
			return &p.DayModules[i]
		}
	}
	return nil
}

// DayModule 每个照护者每一天的状态
// swagger:model DayModule
type DayModule struct {
	BaseModel
	ProgramID              uint            `gorm:"index:idx_program_day,unique;type:bigint unsigned;not null" json:"programId"`
	Day                    int             `gorm:"index:idx_program_day,unique;not null" json:"day"`
	ContentLevel           string          `gorm:"size:50" json:"contentLevel,omitempty"`
	DynamicTestCompleted   bool            `gorm:"default:false" json:"dynamicTestCompleted"`
	TestResult             json.RawMessage `gorm:"type:json" json:"testResult,omitempty"`      // DayTestResult
	TaskResponses          json.RawMessage `gorm:"type:json" json:"taskResponses,omitempty"`   // map[taskId]TaskResponse
	ReminderFirings        json.RawMessage `gorm:"type:json" json:"reminderFirings,omitempty"` // map[taskId]time.Time
	ProgressPercentage     int             `gorm:"default:0" json:"progressPercentage"`
	AdminPermissionGranted bool            `gorm:"default:false" json:"adminPermissionGranted"`
	ScheduledUnlockAt      *time.Time      `json:"scheduledUnlockAt,omitempty"`
	CompletedAt            *time.Time      `json:"completedAt,omitempty"`

	// Legacy per-day completion flags, used when a day has no task list.
	VideoCompleted bool `gorm:"default:false" json:"videoCompleted"`
	AudioCompleted bool `gorm:"default:false" json:"audioCompleted"`
	TasksCompleted bool `gorm:"default:false" json:"tasksCompleted"`
}

func (DayModule) TableName() string {
	return "day_modules"
}

// TaskResponse 任务完成记录，同一 taskId 最新一条为准
type TaskResponse struct {
	TaskID       string                 `json:"taskId"`
	TaskType     TaskType               `json:"taskType"`
	ResponseText string                 `json:"responseText,omitempty"`
	ResponseData map[string]interface{} `json:"responseData,omitempty"`
	Completed    bool                   `json:"completed"`
	CompletedAt  time.Time              `json:"completedAt"`
}

// DayTestResult 动态测试的评估结果
type DayTestResult struct {
	TestName      string         `json:"testName,omitempty"`
	TestType      string         `json:"testType,omitempty"`
	TotalScore    int            `json:"totalScore"`
	AssignedLevel string         `json:"assignedLevel,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
	Answers       []AnswerDetail `json:"answers,omitempty"`
}

// AnswerDetail 单题作答；Answer 保留原始提交值用于按值匹配
type AnswerDetail struct {
	QuestionID string `json:"questionId"`
	OptionKey  string `json:"optionKey,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Score      int    `json:"score"`
}

// Responses decodes the keyed response map, never nil.
func (m *DayModule) Responses() (map[string]TaskResponse, error) {
	responses := make(map[string]TaskResponse)
	if len(m.TaskResponses) == 0 {
		return responses, nil
	}
	if err := json.Unmarshal(m.TaskResponses, &responses); err != nil {
		return nil, fmt.Errorf("day %d module: decode task responses: %w", m.Day, err)
	}
	return responses, nil
}

func (m *DayModule) SetResponses(responses map[string]TaskResponse) error {
	raw, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	m.TaskResponses = raw
	return nil
}

// TestResultDoc decodes the stored test result, nil when the test has not
// been taken.
func (m *DayModule) TestResultDoc() (*DayTestResult, error) {
	if len(m.TestResult) == 0 {
		return nil, nil
	}
	var result DayTestResult
	if err := json.Unmarshal(m.TestResult, &result); err != nil {
		return nil, fmt.Errorf("day %d module: decode test result: %w", m.Day, err)
	}
	return &result, nil
}

func (m *DayModule) SetTestResult(result *DayTestResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	m.TestResult = raw
	return nil
}

// Firings decodes the per-reminder last-fired map, never nil.
func (m *DayModule) Firings() (map[string]time.Time, error) {
	firings := make(map[string]time.Time)
	if len(m.ReminderFirings) == 0 {
		return firings, nil
	}
	if err := json.Unmarshal(m.ReminderFirings, &firings); err != nil {
		return nil, fmt.Errorf("day %d module: decode reminder firings: %w", m.Day, err)
	}
	return firings, nil
}

func (m *DayModule) SetFirings(firings map[string]time.Time) error {
	raw, err := json.Marshal(firings)
	if err != nil {
		return err
	}
	m.ReminderFirings = raw
	return nil
}
