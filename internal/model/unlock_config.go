package model

// DefaultUnlockWaitHours 未配置等待时间时的兜底值
const DefaultUnlockWaitHours = 24

// UnlockWaitConfig 全局解锁等待配置（单行，启动时播种）
// swagger:model UnlockWaitConfig
type UnlockWaitConfig struct {
	BaseModel
	Day0ToDay1Hours  int `gorm:"default:24" json:"day0ToDay1Hours"`
	DefaultWaitHours int `gorm:"default:24" json:"defaultWaitHours"`
}

func (UnlockWaitConfig) TableName() string {
	return "unlock_wait_configs"
}
