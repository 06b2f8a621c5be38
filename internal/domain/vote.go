package domain

import "time"

// Vote values allowed for a caption vote.
const (
	VoteUp   = 1
	VoteDown = -1
)

// CaptionVote represents one voter's vote on one caption.
// At most one row exists per (caption, profile) pair; callers choose
// insert vs. update based on whether the pair already has a row.
type CaptionVote struct {
	CaptionID  string    `gorm:"type:text;not null;uniqueIndex:idx_caption_votes_caption_profile" json:"caption_id"`
	ProfileID  string    `gorm:"type:text;not null;uniqueIndex:idx_caption_votes_caption_profile" json:"profile_id"`
	VoteValue  int       `gorm:"not null" json:"vote_value"`
	CreatedAt  time.Time `gorm:"column:created_datetime_utc" json:"created_datetime_utc"`
	ModifiedAt time.Time `gorm:"column:modified_datetime_utc" json:"modified_datetime_utc"`
}

// TableName returns the database table name for CaptionVote.
func (CaptionVote) TableName() string {
	return "caption_votes"
}

// NormalizeVote clamps an arbitrary stored value to the {-1, 0, +1}
// voter-state domain. Anything that is not an explicit up or down vote
// is treated as no vote.
func NormalizeVote(value int) int {
	if value == VoteUp || value == VoteDown {
		return value
	}
	return 0
}
