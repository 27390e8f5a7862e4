package service

import (
	"caregiver_support_backend/internal/model"
	"caregiver_support_backend/internal/repository"
	"caregiver_support_backend/internal/util"
	"caregiver_support_backend/pkg/logger"
	"caregiver_support_backend/pkg/tracing"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dayConfigKeyPrefix = "daycfg:"

// ComposerService merges a day's language-neutral structure with a
// translation overlay into the effective runtime configuration.
type ComposerService struct {
	StructureRepo   *repository.StructureRepository
	TranslationRepo *repository.TranslationRepository
	Redis           *redis.Client
	FallbackLang    string
	CacheTTL        time.Duration
}

func NewComposerService(
	structureRepo *repository.StructureRepository,
	translationRepo *repository.TranslationRepository,
	rdb *redis.Client,
	fallbackLang string,
	cacheTTL time.Duration,
) *ComposerService {
	if fallbackLang == "" {
		fallbackLang = "english"
	}
	return &ComposerService{
		StructureRepo:   structureRepo,
		TranslationRepo: translationRepo,
		Redis:           rdb,
		FallbackLang:    fallbackLang,
		CacheTTL:        cacheTTL,
	}
}

// ComposeDay resolves the translation for the requested language and merges
// it with the day's structure. levelKey selects the content variant; an
// empty levelKey means "no assessment yet", which resolves to the first
// defined level without raising the fallback flag.
func (s *ComposerService) ComposeDay(day int, language, levelKey string) (*model.ComposedDayConfig, error) {
	cacheKey := fmt.Sprintf("%s%d:%s:%s", dayConfigKeyPrefix, day, language, levelKey)
	if s.Redis != nil {
		if val, err := s.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var cached model.ComposedDayConfig
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	_, span := tracing.Tracer.Start(context.Background(), "composer.ComposeDay",
		trace.WithAttributes(
			attribute.Int("program.day", day),
			attribute.String("program.language", language),
			attribute.String("program.level", levelKey),
		))
	defer span.End()

	structure, err := s.StructureRepo.FindByDay(day)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrDayNotConfigured
	}
	if err != nil {
		return nil, err
	}

	translation, err := s.resolveTranslation(day, language)
	if err != nil {
		return nil, err
	}

	config, err := Compose(structure, translation, levelKey)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(config); err == nil {
			s.Redis.Set(context.Background(), cacheKey, raw, s.CacheTTL)
		}
	}

	return config, nil
}

// InvalidateDay drops every cached composition of a day. Called after
// authoring writes so stale content never outlives one save.
func (s *ComposerService) InvalidateDay(day int) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	pattern := fmt.Sprintf("%s%d:*", dayConfigKeyPrefix, day)
	iter := s.Redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("day config cache invalidation failed", zap.Int("day", day), zap.Error(err))
	}
}

// resolveTranslation walks the fallback chain: requested language, then the
// configured fallback, then any available translation (lowest language code
// first so the result is deterministic), then none at all.
func (s *ComposerService) resolveTranslation(day int, language string) (*model.DayTranslation, error) {
	if language != "" {
		translation, err := s.TranslationRepo.FindByDayAndLanguage(day, language)
		if err == nil {
			return translation, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	if language != s.FallbackLang {
		translation, err := s.TranslationRepo.FindByDayAndLanguage(day, s.FallbackLang)
		if err == nil {
			return translation, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	available, err := s.TranslationRepo.ListByDay(day)
	if err != nil {
		return nil, err
	}
	if len(available) > 0 {
		return &available[0], nil
	}

	// Untranslated day: composition proceeds on structure defaults.
	return nil, nil
}

// Compose merges a structure with a translation overlay. It is a pure
// function of its inputs: neither argument is mutated and repeated calls
// yield identical output. A nil structure yields nil (day not configured).
func Compose(structure *model.DayStructure, translation *model.DayTranslation, levelKey string) (*model.ComposedDayConfig, error) {
	if structure == nil {
		return nil, nil
	}

	levels, err := structure.Levels()
	if err != nil {
		return nil, err
	}
	test, err := structure.TestStructure()
	if err != nil {
		return nil, err
	}

	config := &model.ComposedDayConfig{
		Day:                 structure.DayNumber,
		DayName:             fmt.Sprintf("Day %d", structure.DayNumber),
		Language:            structure.BaseLanguage,
		Enabled:             structure.Enabled,
		HasTest:             structure.HasTest && test != nil,
		EnableFollowupTasks: structure.EnableFollowupTasks,
	}

	level, fallbackUsed := selectLevel(levels, levelKey)
	config.FallbackLevelUsed = fallbackUsed
	if level != nil {
		config.LevelKey = level.LevelKey
	}

	var levelOverlay *model.LevelTranslation
	var testOverlay *model.TestTranslation
	if translation != nil {
		config.Language = translation.Language
		if translation.DayName != "" {
			config.DayName = translation.DayName
		}

		translatedLevels, err := translation.Levels()
		if err != nil {
			return nil, err
		}
		if level != nil {
			for i := range translatedLevels {
				if translatedLevels[i].LevelKey == level.LevelKey {
					levelOverlay = &translatedLevels[i]
					break
				}
			}
		}

		testOverlay, err = translation.TestTranslation()
		if err != nil {
			return nil, err
		}
	}

	if level != nil {
		config.Tasks = composeTasks(level.Tasks, levelOverlay)
	}
	if test != nil {
		config.Test = composeTest(test, testOverlay)
	}

	return config, nil
}

// selectLevel returns the requested content level, or the first defined one.
// The fallback flag is raised only when a specific level was requested and
// had to be substituted.
func selectLevel(levels []model.ContentLevel, levelKey string) (*model.ContentLevel, bool) {
	if len(levels) == 0 {
		return nil, false
	}
	if levelKey == "" {
		return &levels[0], false
	}
	for i := range levels {
		if levels[i].LevelKey == levelKey {
			return &levels[i], false
		}
	}
	return &levels[0], true
}

func composeTasks(tasks []model.StructureTask, overlay *model.LevelTranslation) []model.ComposedTask {
	overrides := make(map[string]model.TaskTranslation)
	if overlay != nil {
		for _, t := range overlay.Tasks {
			overrides[t.TaskID] = t
		}
	}

	composed := make([]model.ComposedTask, 0, len(tasks))
	for _, task := range tasks {
		out := model.ComposedTask{
			TaskID:    task.TaskID,
			TaskOrder: task.TaskOrder,
			TaskType:  task.TaskType,
			Content:   copyContent(task.Content),
			Enabled:   task.IsEnabled(),
		}

		if tr, ok := overrides[task.TaskID]; ok {
			if tr.Title != "" {
				out.Title = tr.Title
			}
			if tr.Description != "" {
				out.Description = tr.Description
			}
			out.Content = mergeContent(out.Content, tr.ContentOverrides)
		}

		composed = append(composed, out)
	}
	return composed
}

// composeTest overlays translated test text without touching scores, ranges
// or branching definitions.
func composeTest(test *model.TestStructure, overlay *model.TestTranslation) *model.TestStructure {
	out := *test
	out.QuestionSequence = make([]model.TestQuestion, len(test.QuestionSequence))
	copy(out.QuestionSequence, test.QuestionSequence)

	if overlay == nil {
		return &out
	}

	if overlay.TestName != "" {
		out.TestName = overlay.TestName
	}

	questionOverlays := make(map[string]model.QuestionTranslation)
	for _, q := range overlay.Questions {
		questionOverlays[q.QuestionID] = q
	}

	for i, q := range out.QuestionSequence {
		qo, ok := questionOverlays[q.QuestionID]
		if !ok {
			continue
		}
		if qo.Text != "" {
			out.QuestionSequence[i].Text = qo.Text
		}

		optionOverlays := make(map[string]model.OptionTranslation)
		for _, o := range qo.Options {
			optionOverlays[o.OptionKey] = o
		}

		options := make([]model.QuestionOption, len(q.Options))
		copy(options, q.Options)
		for j, o := range options {
			if oo, ok := optionOverlays[o.OptionKey]; ok && oo.OptionText != "" {
				options[j].OptionText = oo.OptionText
			}
		}
		out.QuestionSequence[i].Options = options
	}

	return &out
}

// mergeContent deep-merges overrides onto base. Empty override values never
// erase structure defaults; nested maps merge key by key.
func mergeContent(base, overrides map[string]interface{}) map[string]interface{} {
	out := copyContent(base)
	if len(overrides) == 0 {
		return out
	}
	if out == nil {
		out = make(map[string]interface{})
	}
	for key, value := range overrides {
		if isEmptyValue(value) {
			continue
		}
		if sub, ok := value.(map[string]interface{}); ok {
			if baseSub, ok := out[key].(map[string]interface{}); ok {
				out[key] = mergeContent(baseSub, sub)
				continue
			}
		}
		out[key] = value
	}
	return out
}

func copyContent(content map[string]interface{}) map[string]interface{} {
	if content == nil {
		return nil
	}
	out := make(map[string]interface{}, len(content))
	for key, value := range content {
		if sub, ok := value.(map[string]interface{}); ok {
			out[key] = copyContent(sub)
			continue
		}
		out[key] = value
	}
	return out
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
