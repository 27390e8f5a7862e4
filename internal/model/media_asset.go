package model

// MediaAsset 上传的视频/音频素材记录
// swagger:model MediaAsset
type MediaAsset struct {
	UUIDBase
	FileName        string  `gorm:"size:255;not null" json:"fileName"`
	URL             string  `gorm:"size:512" json:"url"`
	ContentType     string  `gorm:"size:100" json:"contentType"`
	SizeBytes       int64   `gorm:"default:0" json:"sizeBytes"`
	DurationSeconds float64 `gorm:"default:0" json:"durationSeconds"`
	UploadedBy      uint    `gorm:"index;type:bigint unsigned" json:"uploadedBy"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
