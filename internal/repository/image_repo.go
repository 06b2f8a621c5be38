package repository

import (
	"context"
	"fmt"

	"github.com/almostcrackd/captionboard/internal/domain"
	"gorm.io/gorm"
)

// ImageRepository handles image data operations.
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ImageRepository: repository instance bound to db.
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts a new image record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - image: image record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ImageRepository) Create(ctx context.Context, image *domain.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetByID retrieves an image by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: image ID.
// Returns:
//   - *domain.Image: image record if found.
//   - error: non-nil if lookup fails.
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByIDs retrieves images by a list of IDs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: list of image IDs.
// Returns:
//   - []domain.Image: matching image records.
//   - error: non-nil if the query fails.
func (r *ImageRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Image, error) {
	if len(ids) == 0 {
		return []domain.Image{}, nil
	}
	var images []domain.Image
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to get images by IDs: %w", err)
	}
	return images, nil
}

// ListOrderedByCaptionCount retrieves one page of images ordered by the
// number of captions each image has, descending. The ordering aggregate is
// computed by the store itself, so only the requested page is fetched.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Image: matching image records in ranked order.
//   - error: non-nil if the query fails.
func (r *ImageRepository) ListOrderedByCaptionCount(ctx context.Context, limit, offset int) ([]domain.Image, error) {
	var images []domain.Image
	if err := r.db.WithContext(ctx).
		Model(&domain.Image{}).
		Order("(SELECT COUNT(*) FROM captions WHERE captions.image_id = images.id) DESC, images.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images by caption count: %w", err)
	}
	return images, nil
}

// ListIDs retrieves the IDs of all images, ascending. The client-ranked
// gallery mode ranks over the full ID set so images without captions keep
// their place with an aggregate of zero.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []string: all image IDs.
//   - error: non-nil if the query fails.
func (r *ImageRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Image{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list image IDs: %w", err)
	}
	return ids, nil
}

// Count returns the total number of images.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of image records.
//   - error: non-nil if the query fails.
func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Image{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
