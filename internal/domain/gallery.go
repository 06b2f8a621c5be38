package domain

// GallerySort selects the ranking key for a gallery page.
type GallerySort string

const (
	// GallerySortLikes ranks images by the summed vote totals of their
	// captions. The store cannot order by this aggregate, so the ranking
	// is computed client-side over fully materialized captions and votes.
	GallerySortLikes GallerySort = "likes"

	// GallerySortCaptions ranks images by caption count, which the store
	// can order by directly.
	GallerySortCaptions GallerySort = "captions"
)

// GalleryEntry is one image on a gallery page together with its captions
// (ordered by like count when available) and the aggregate vote total
// across all of its captions.
type GalleryEntry struct {
	Image     Image     `json:"image"`
	Captions  []Caption `json:"captions"`
	VoteTotal int       `json:"vote_total"`
}

// GalleryPage is a derived, ephemeral view recomputed on every fetch.
type GalleryPage struct {
	Entries    []GalleryEntry `json:"entries"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	TotalItems int64          `json:"total_items"`
	Sort       GallerySort    `json:"sort"`
}
