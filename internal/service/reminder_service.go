package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"strings"
	"time"
)

// ReminderService evaluates a day's reminder tasks on demand. Firings are
// recorded per task on the day module, so polling the endpoint repeatedly
// within a window returns each reminder once.
type ReminderService struct {
	ProgramRepo *repository.ProgramRepository
	Composer    *ComposerService
}

func NewReminderService(programRepo *repository.ProgramRepository, composer *ComposerService) *ReminderService {
	return &ReminderService{ProgramRepo: programRepo, Composer: composer}
}

type DueReminder struct {
	TaskID      string                 `json:"taskId"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Content     map[string]interface{} `json:"content,omitempty"`
	FiredAt     time.Time              `json:"firedAt"`
}

// CheckReminders returns the reminders due now for a day and records the
// firing times. An empty slice, not an error, means nothing is due.
func (s *ReminderService) CheckReminders(userID uint, day int, language string) ([]DueReminder, error) {
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

	firings, err := module.Firings()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var due []DueReminder
	changed := false
	for _, task := range config.Tasks {
		if task.TaskType != model.TaskReminder || !task.Enabled {
			continue
		}
		if !audienceMatches(task.Content, program.BurdenLevel) {
			continue
		}
		last, fired := firings[task.TaskID]
		if fired && now.Sub(last) < reminderInterval(task.Content) {
			continue
		}
		due = append(due, DueReminder{
			TaskID:      task.TaskID,
			Title:       task.Title,
			Description: task.Description,
			Content:     task.Content,
			FiredAt:     now,
		})
		firings[task.TaskID] = now
		changed = true
	}

	if changed {
		if err := module.SetFirings(firings); err != nil {
			return nil, err
		}
		if err := s.ProgramRepo.Save(program); err != nil {
			return nil, err
		}
	}
	return due, nil
}

// reminderInterval reads the repeat window out of the task content.
// Unrecognized or absent frequency falls back to daily.
func reminderInterval(content map[string]interface{}) time.Duration {
	frequency, _ := content["frequency"].(string)
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "weekly":
		return 7 * 24 * time.Hour
	case "custom":
		if hours := numericValue(content["intervalHours"]); hours > 0 {
			return time.Duration(hours) * time.Hour
		}
		return 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// audienceMatches checks the optional burden-level audience list. No list
// means the reminder applies to everyone.
func audienceMatches(content map[string]interface{}, burdenLevel string) bool {
	raw, ok := content["audience"]
	if !ok || raw == nil {
		return true
	}
	switch audience := raw.(type) {
	case string:
		return audience == "" || strings.EqualFold(audience, burdenLevel)
	case []interface{}:
		if len(audience) == 0 {
			return true
		}
		for _, entry := range audience {
			if level, ok := entry.(string); ok && strings.EqualFold(level, burdenLevel) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// numericValue tolerates the types JSON decoding can hand us for a number.
func numericValue(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
