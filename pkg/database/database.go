package database

import (
	"caregiver_support_backend/internal/config"
	"caregiver_support_backend/internal/model"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := &cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.DayStructure{},
		&model.DayTranslation{},
		&model.CaregiverProgram{},
		&model.DayModule{},
		&model.UnlockWaitConfig{},
		&model.MediaAsset{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认解锁等待配置（单行）
	var waitCount int64
	db.Model(&model.UnlockWaitConfig{}).Count(&waitCount)
	if waitCount == 0 {
		day0 := cfg.Program.Day0WaitHours
		if day0 == 0 {
			day0 = model.DefaultUnlockWaitHours
		}
		defaultWait := cfg.Program.DefaultWaitHours
		if defaultWait == 0 {
			defaultWait = model.DefaultUnlockWaitHours
		}
		db.Create(&model.UnlockWaitConfig{
			Day0ToDay1Hours:  day0,
			DefaultWaitHours: defaultWait,
		})
	}

	// 第0天默认结构：新部署时保证程序可以立即开始
	var dayCount int64
	db.Model(&model.DayStructure{}).Where("day_number = ?", 0).Count(&dayCount)
	if dayCount == 0 {
		levels, _ := json.Marshal([]model.ContentLevel{
			{
				LevelKey: "default",
				Tasks: []model.StructureTask{
					{TaskID: "day0_welcome_video", TaskOrder: 1, TaskType: model.TaskVideo},
					{TaskID: "day0_relaxation_audio", TaskOrder: 2, TaskType: model.TaskAudio},
				},
			},
		})
		db.Create(&model.DayStructure{
			DayNumber:     0,
			BaseLanguage:  "english",
			Enabled:       true,
			ContentLevels: levels,
		})
	}

	return db, nil
}
