package repository

import (
	"context"
	"fmt"

	"github.com/almostcrackd/captionboard/internal/domain"
	"gorm.io/gorm"
)

// CaptionRepository handles caption data operations.
type CaptionRepository struct {
	db *gorm.DB
}

// NewCaptionRepository creates a new CaptionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CaptionRepository: repository instance bound to db.
func NewCaptionRepository(db *gorm.DB) *CaptionRepository {
	return &CaptionRepository{db: db}
}

// CreateBatch inserts a batch of caption records.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captions: caption records to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *CaptionRepository) CreateBatch(ctx context.Context, captions []domain.Caption) error {
	if len(captions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&captions).Error
}

// GetByID retrieves a caption by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: caption ID.
// Returns:
//   - *domain.Caption: caption record if found.
//   - error: non-nil if lookup fails.
func (r *CaptionRepository) GetByID(ctx context.Context, id string) (*domain.Caption, error) {
	var caption domain.Caption
	if err := r.db.WithContext(ctx).First(&caption, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &caption, nil
}

// ListByImageIDs retrieves captions whose parent image is in the given set.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageIDs: list of parent image IDs.
// Returns:
//   - []domain.Caption: matching caption records in store order.
//   - error: non-nil if the query fails.
func (r *CaptionRepository) ListByImageIDs(ctx context.Context, imageIDs []string) ([]domain.Caption, error) {
	if len(imageIDs) == 0 {
		return []domain.Caption{}, nil
	}
	var captions []domain.Caption
	if err := r.db.WithContext(ctx).
		Where("image_id IN ?", imageIDs).
		Order("created_at ASC").
		Find(&captions).Error; err != nil {
		return nil, fmt.Errorf("failed to list captions by image IDs: %w", err)
	}
	return captions, nil
}

// ListAll retrieves every caption. Used by the client-ranked gallery mode,
// which must materialize the full caption set to compute an aggregate the
// store cannot order by.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Caption: all caption records in store order.
//   - error: non-nil if the query fails.
func (r *CaptionRepository) ListAll(ctx context.Context) ([]domain.Caption, error) {
	var captions []domain.Caption
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&captions).Error; err != nil {
		return nil, fmt.Errorf("failed to list captions: %w", err)
	}
	return captions, nil
}

// UpdateLikeCount refreshes the denormalized like-count cache on a caption.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - captionID: caption to update.
//   - likeCount: new cached vote total.
// Returns:
//   - error: non-nil if the update fails.
func (r *CaptionRepository) UpdateLikeCount(ctx context.Context, captionID string, likeCount int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Caption{}).
		Where("id = ?", captionID).
		Update("like_count", likeCount).Error
}
