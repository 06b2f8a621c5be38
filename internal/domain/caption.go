package domain

import "time"

// Caption represents a generated caption attached to an image.
// Content is nullable until generation completes and immutable afterwards.
// LikeCount is a denormalized, eventually-consistent cache of the caption's
// vote total, refreshed after each confirmed vote write.
type Caption struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	ImageID   string    `gorm:"type:text;not null;index:idx_captions_image" json:"image_id"`
	Content   *string   `gorm:"type:text" json:"content"`
	LikeCount *int      `gorm:"column:like_count" json:"like_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Caption.
func (Caption) TableName() string {
	return "captions"
}

// Text returns the caption content or an empty string when generation
// has not filled it in yet.
func (c Caption) Text() string {
	if c.Content == nil {
		return ""
	}
	return *c.Content
}

// Likes returns the cached like count, defaulting to zero when unset.
func (c Caption) Likes() int {
	if c.LikeCount == nil {
		return 0
	}
	return *c.LikeCount
}
