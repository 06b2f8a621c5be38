package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/repository"
)

// GalleryService assembles ranked, paginated gallery pages by joining the
// image, caption, and vote collections in memory.
type GalleryService struct {
	images   *repository.ImageRepository
	captions *repository.CaptionRepository
	votes    *repository.VoteRepository
	logger   *logger.Logger

	defaultPageSize int
	maxPageSize     int
	defaultSort     domain.GallerySort
}

// GalleryConfig holds configuration for the gallery service.
type GalleryConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	DefaultSort     domain.GallerySort
}

// NewGalleryService creates a new gallery service.
// Parameters:
//   - images: repository for image records.
//   - captions: repository for caption records.
//   - votes: repository for vote records.
//   - log: logger instance.
//   - cfg: gallery configuration settings.
//
// Returns:
//   - *GalleryService: initialized gallery service.
func NewGalleryService(
	images *repository.ImageRepository,
	captions *repository.CaptionRepository,
	votes *repository.VoteRepository,
	log *logger.Logger,
	cfg *GalleryConfig,
) *GalleryService {
	defaultPageSize := 12
	maxPageSize := 50
	defaultSort := domain.GallerySortLikes
	if cfg != nil {
		if cfg.DefaultPageSize > 0 {
			defaultPageSize = cfg.DefaultPageSize
		}
		if cfg.MaxPageSize > 0 {
			maxPageSize = cfg.MaxPageSize
		}
		if cfg.DefaultSort != "" {
			defaultSort = cfg.DefaultSort
		}
	}
	return &GalleryService{
		images:          images,
		captions:        captions,
		votes:           votes,
		logger:          log,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		defaultSort:     defaultSort,
	}
}

// PageRequest selects one gallery page.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     domain.GallerySort
}

// Page fetches, ranks, and slices one gallery page. Out-of-range page
// numbers clamp to the valid range instead of erroring. The page is
// recomputed on every call and never cached.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - req: page number, page size, and ranking mode.
// Returns:
//   - *domain.GalleryPage: assembled page.
//   - error: non-nil if any collection fetch fails; no partial page is
//     returned.
func (s *GalleryService) Page(ctx context.Context, req PageRequest) (*domain.GalleryPage, error) {
	start := time.Now()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	sortMode := req.Sort
	if sortMode == "" {
		sortMode = s.defaultSort
	}

	totalItems, err := s.images.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count images: %w", err)
	}
	totalPages := totalPageCount(totalItems, pageSize)
	page := clampPage(req.Page, totalPages)

	var (
		images   []domain.Image
		captions []domain.Caption
		votes    []domain.CaptionVote
	)

	switch sortMode {
	case domain.GallerySortCaptions:
		images, captions, votes, err = s.fetchStoreOrdered(ctx, page, pageSize)
	default:
		images, captions, votes, err = s.fetchClientRanked(ctx, page, pageSize)
	}
	if err != nil {
		return nil, err
	}

	entries := assembleEntries(images, captions, votes)

	logger.With(logger.Fields{
		logger.FieldPage:       page,
		logger.FieldCount:      len(entries),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Debug(ctx, "Gallery page assembled: sort=%s", sortMode)

	return &domain.GalleryPage{
		Entries:    entries,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: totalItems,
		Sort:       sortMode,
	}, nil
}

// fetchStoreOrdered lets the store rank by caption count and fetches only
// the requested page, then one follow-up in-set fetch for that page's
// captions and their votes.
func (s *GalleryService) fetchStoreOrdered(ctx context.Context, page, pageSize int) ([]domain.Image, []domain.Caption, []domain.CaptionVote, error) {
	offset := (page - 1) * pageSize
	images, err := s.images.ListOrderedByCaptionCount(ctx, pageSize, offset)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch gallery page: %w", err)
	}

	imageIDs := make([]string, len(images))
	for i, img := range images {
		imageIDs[i] = img.ID
	}
	captions, err := s.captions.ListByImageIDs(ctx, imageIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch gallery captions: %w", err)
	}

	captionIDs := make([]string, len(captions))
	for i, c := range captions {
		captionIDs[i] = c.ID
	}
	votes, err := s.votes.ListByCaptionIDs(ctx, captionIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch gallery votes: %w", err)
	}

	return images, captions, votes, nil
}

// fetchClientRanked materializes the full caption and vote sets (the store
// cannot order by summed vote totals), ranks all image IDs by aggregate,
// slices the sorted ID list to the requested page, and only then fetches
// that page's image rows. Sort-then-slice: slicing first would miscompute
// page boundaries under ties. Full materialization grows with total row
// count, which caps how far this mode scales.
func (s *GalleryService) fetchClientRanked(ctx context.Context, page, pageSize int) ([]domain.Image, []domain.Caption, []domain.CaptionVote, error) {
	var (
		wg          sync.WaitGroup
		imageIDs    []string
		allCaptions []domain.Caption
		allVotes    []domain.CaptionVote
		idErr       error
		captionErr  error
		voteErr     error
	)

	// The three collection fetches share no write dependency, so they are
	// issued concurrently; the join below waits for all of them.
	wg.Add(3)
	go func() {
		defer wg.Done()
		imageIDs, idErr = s.images.ListIDs(ctx)
	}()
	go func() {
		defer wg.Done()
		allCaptions, captionErr = s.captions.ListAll(ctx)
	}()
	go func() {
		defer wg.Done()
		allVotes, voteErr = s.votes.ListAll(ctx)
	}()
	wg.Wait()

	if idErr != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch image IDs: %w", idErr)
	}
	if captionErr != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch captions: %w", captionErr)
	}
	if voteErr != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch votes: %w", voteErr)
	}

	totals := imageVoteTotals(allCaptions, allVotes)
	ranked := rankImageIDs(imageIDs, totals)

	pageIDs := slicePage(ranked, page, pageSize)
	images, err := s.images.GetByIDs(ctx, pageIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to fetch gallery page: %w", err)
	}

	// GetByIDs returns store order; restore ranked order.
	byID := make(map[string]domain.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}
	ordered := make([]domain.Image, 0, len(pageIDs))
	for _, id := range pageIDs {
		if img, ok := byID[id]; ok {
			ordered = append(ordered, img)
		}
	}

	return ordered, allCaptions, allVotes, nil
}

// imageVoteTotals sums vote values per caption, then groups the caption
// totals by parent image. Both indices are maps, keeping the join linear
// in total row count.
func imageVoteTotals(captions []domain.Caption, votes []domain.CaptionVote) map[string]int {
	captionTotals := make(map[string]int, len(captions))
	for _, v := range votes {
		captionTotals[v.CaptionID] += v.VoteValue
	}

	imageTotals := make(map[string]int, len(captions))
	for _, c := range captions {
		imageTotals[c.ImageID] += captionTotals[c.ID]
	}
	return imageTotals
}

// rankImageIDs sorts image IDs descending by aggregate total with a stable
// ascending-ID tie-break. IDs missing from totals rank with zero.
func rankImageIDs(ids []string, totals map[string]int) []string {
	ranked := make([]string, len(ids))
	copy(ranked, ids)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := totals[ranked[i]], totals[ranked[j]]
		if ti != tj {
			return ti > tj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// slicePage returns the ids for one page of an already-ranked list.
func slicePage(ranked []string, page, pageSize int) []string {
	start := (page - 1) * pageSize
	if start >= len(ranked) {
		return nil
	}
	end := start + pageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[start:end]
}

// totalPageCount computes ceil(totalItems / pageSize) with a floor of one
// page, so an empty gallery still renders page 1 of 1.
func totalPageCount(totalItems int64, pageSize int) int {
	pages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}

// clampPage clamps a requested page into [1, totalPages] instead of
// erroring on out-of-range requests.
func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// assembleEntries joins the fetched collections into page entries. Captions
// whose parent image is not in the fetched index are dropped rather than
// rendered image-less; images without captions keep an empty caption list.
func assembleEntries(images []domain.Image, captions []domain.Caption, votes []domain.CaptionVote) []domain.GalleryEntry {
	captionTotals := make(map[string]int, len(captions))
	for _, v := range votes {
		captionTotals[v.CaptionID] += v.VoteValue
	}

	captionsByImage := make(map[string][]domain.Caption, len(images))
	imageIndex := make(map[string]struct{}, len(images))
	for _, img := range images {
		imageIndex[img.ID] = struct{}{}
	}
	for _, c := range captions {
		if _, ok := imageIndex[c.ImageID]; !ok {
			continue
		}
		captionsByImage[c.ImageID] = append(captionsByImage[c.ImageID], c)
	}

	entries := make([]domain.GalleryEntry, 0, len(images))
	for _, img := range images {
		imageCaptions := captionsByImage[img.ID]
		sortCaptionsByLikes(imageCaptions)

		voteTotal := 0
		for _, c := range imageCaptions {
			voteTotal += captionTotals[c.ID]
		}

		if imageCaptions == nil {
			imageCaptions = []domain.Caption{}
		}
		entries = append(entries, domain.GalleryEntry{
			Image:     img,
			Captions:  imageCaptions,
			VoteTotal: voteTotal,
		})
	}
	return entries
}

// sortCaptionsByLikes orders captions descending by their cached like
// count when any caption carries one; otherwise fetch order is preserved.
func sortCaptionsByLikes(captions []domain.Caption) {
	hasLikes := false
	for _, c := range captions {
		if c.LikeCount != nil {
			hasLikes = true
			break
		}
	}
	if !hasLikes {
		return
	}
	sort.SliceStable(captions, func(i, j int) bool {
		return captions[i].Likes() > captions[j].Likes()
	})
}
