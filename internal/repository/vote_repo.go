package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"gorm.io/gorm"
)

// VoteRepository handles caption vote data operations.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VoteRepository: repository instance bound to db.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Insert creates a new vote row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - vote: vote record to persist.
// Returns:
//   - error: non-nil if the insert fails (including uniqueness violations).
func (r *VoteRepository) Insert(ctx context.Context, vote *domain.CaptionVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// UpdateValue updates the existing vote row for a (caption, profile) pair.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captionID: caption the vote belongs to.
//   - profileID: voter profile.
//   - value: new vote value (+1 or -1).
// Returns:
//   - error: non-nil if the update fails or no row matched.
func (r *VoteRepository) UpdateValue(ctx context.Context, captionID, profileID string, value int) error {
	result := r.db.WithContext(ctx).
		Model(&domain.CaptionVote{}).
		Where("caption_id = ? AND profile_id = ?", captionID, profileID).
		Updates(map[string]interface{}{
			"vote_value":            value,
			"modified_datetime_utc": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Get retrieves the vote for a (caption, profile) pair.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captionID: caption the vote belongs to.
//   - profileID: voter profile.
// Returns:
//   - *domain.CaptionVote: vote record, or nil when the pair has no vote.
//   - error: non-nil if the lookup fails.
func (r *VoteRepository) Get(ctx context.Context, captionID, profileID string) (*domain.CaptionVote, error) {
	var vote domain.CaptionVote
	err := r.db.WithContext(ctx).
		First(&vote, "caption_id = ? AND profile_id = ?", captionID, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListByCaptionIDs retrieves votes for the given caption set.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captionIDs: list of caption IDs.
// Returns:
//   - []domain.CaptionVote: matching vote records.
//   - error: non-nil if the query fails.
func (r *VoteRepository) ListByCaptionIDs(ctx context.Context, captionIDs []string) ([]domain.CaptionVote, error) {
	if len(captionIDs) == 0 {
		return []domain.CaptionVote{}, nil
	}
	var votes []domain.CaptionVote
	if err := r.db.WithContext(ctx).Where("caption_id IN ?", captionIDs).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes by caption IDs: %w", err)
	}
	return votes, nil
}

// ListAll retrieves every vote. Used by the client-ranked gallery mode.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.CaptionVote: all vote records.
//   - error: non-nil if the query fails.
func (r *VoteRepository) ListAll(ctx context.Context) ([]domain.CaptionVote, error) {
	var votes []domain.CaptionVote
	if err := r.db.WithContext(ctx).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// SumByCaption computes the vote total for a single caption.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captionID: caption to sum votes for.
// Returns:
//   - int: summed vote values (zero when no votes exist).
//   - error: non-nil if the query fails.
func (r *VoteRepository) SumByCaption(ctx context.Context, captionID string) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&domain.CaptionVote{}).
		Select("SUM(vote_value)").
		Where("caption_id = ?", captionID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
