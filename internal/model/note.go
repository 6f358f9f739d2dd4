package model

// Note is a single daily reflection, text or audio.
// swagger:model Note
type Note struct {
	UUIDBase
	UserID   uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Content  string `gorm:"type:text" json:"content"`
	AudioURL string `gorm:"size:255" json:"audioUrl"`
	// Duration in seconds for audio notes, probed at upload time.
	Duration float64 `gorm:"default:0" json:"duration"`
	// BundleTag is reserved for the future memory-bundling feature; stored
	// but never interpreted.
	BundleTag string `gorm:"size:64" json:"bundleTag"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Note) TableName() string {
	return "notes"
}
