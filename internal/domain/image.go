package domain

import "time"

// Image represents a registered image backed by object storage.
// Rows are created when an uploaded asset is registered through the
// pipeline and are never mutated or deleted afterwards.
type Image struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	IsCommon  bool      `gorm:"column:is_common_use;default:false" json:"is_common_use"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string {
	return "images"
}
