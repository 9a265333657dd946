package models

import "time"

// OptionModel is a key-value store for runtime configuration blobs.
type OptionModel struct {
	Base
	Name  string `json:"name" gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (OptionModel) TableName() string { return "options" }

// File reference kinds.
const (
	FileRefDreamImage = "dream_image"
	FileRefAvatar     = "avatar"
	FileRefAudio      = "audio"
)

// FileReferenceModel tracks uploaded and generated files so orphans can be
// swept by the cleanup job.
type FileReferenceModel struct {
	Base
	UserID    string     `json:"user_id"   gorm:"index"`
	RefType   string     `json:"ref_type"  gorm:"size:20;index;not null"`
	RefID     string     `json:"ref_id"    gorm:"index"`
	Path      string     `json:"path"      gorm:"not null"`
	Size      int64      `json:"size"`
	MIME      string     `json:"mime"      gorm:"size:100"`
	DeletedBy *time.Time `json:"-"`
}

func (FileReferenceModel) TableName() string { return "file_references" }
