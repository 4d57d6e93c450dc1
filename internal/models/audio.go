package models

import "time"

// AudioFile is the metadata row for one uploaded recording. The blob
// itself lives in object storage under FilePath
// ("{userId}/{timestamp}_{fileName}" in the audio-recordings bucket).
type AudioFile struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"size:64;index"`
	FileName   string `gorm:"size:512"`
	FilePath   string `gorm:"size:1024"`
	FileSize   int64
	MimeType   string `gorm:"size:128"`
	UploadedAt time.Time
}

func (AudioFile) TableName() string { return "audio_files" }
