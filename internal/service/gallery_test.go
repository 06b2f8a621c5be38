package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes
	// concurrent fetches.
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "text"})
}

func strPtr(s string) *string { return &s }

func seedImage(t *testing.T, db *gorm.DB, id string, createdAt time.Time) {
	t.Helper()
	img := domain.Image{ID: id, URL: "https://cdn.example.com/" + id + ".png", CreatedAt: createdAt}
	if err := db.Create(&img).Error; err != nil {
		t.Fatalf("failed to seed image %s: %v", id, err)
	}
}

func seedCaption(t *testing.T, db *gorm.DB, id, imageID, content string) {
	t.Helper()
	c := domain.Caption{ID: id, ImageID: imageID, Content: strPtr(content), CreatedAt: time.Now().UTC()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed caption %s: %v", id, err)
	}
}

func seedVote(t *testing.T, db *gorm.DB, captionID, profileID string, value int) {
	t.Helper()
	now := time.Now().UTC()
	vote := domain.CaptionVote{
		CaptionID:  captionID,
		ProfileID:  profileID,
		VoteValue:  value,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := db.Create(&vote).Error; err != nil {
		t.Fatalf("failed to seed vote on %s by %s: %v", captionID, profileID, err)
	}
}

// newGalleryFixture seeds four images:
//   - "apple": one caption with +8 in votes
//   - "cherry": one caption with +8 in votes (ties with apple)
//   - "banana": two captions summing +3
//   - "durian": no captions at all
func newGalleryFixture(t *testing.T) (*GalleryService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seedImage(t, db, "apple", base)
	seedImage(t, db, "banana", base.Add(time.Hour))
	seedImage(t, db, "cherry", base.Add(2*time.Hour))
	seedImage(t, db, "durian", base.Add(3*time.Hour))

	seedCaption(t, db, "cap-apple-1", "apple", "apple one")
	seedCaption(t, db, "cap-banana-1", "banana", "banana one")
	seedCaption(t, db, "cap-banana-2", "banana", "banana two")
	seedCaption(t, db, "cap-cherry-1", "cherry", "cherry one")

	for i := 0; i < 8; i++ {
		seedVote(t, db, "cap-apple-1", "voter-a-"+string(rune('0'+i)), 1)
		seedVote(t, db, "cap-cherry-1", "voter-c-"+string(rune('0'+i)), 1)
	}
	seedVote(t, db, "cap-banana-1", "voter-b-1", 1)
	seedVote(t, db, "cap-banana-2", "voter-b-2", 1)
	seedVote(t, db, "cap-banana-2", "voter-b-3", 1)

	svc := NewGalleryService(
		repository.NewImageRepository(db),
		repository.NewCaptionRepository(db),
		repository.NewVoteRepository(db),
		testLogger(),
		&GalleryConfig{DefaultPageSize: 2, MaxPageSize: 10, DefaultSort: domain.GallerySortLikes},
	)
	return svc, db
}

func entryIDs(page *domain.GalleryPage) []string {
	ids := make([]string, len(page.Entries))
	for i, e := range page.Entries {
		ids[i] = e.Image.ID
	}
	return ids
}

func TestGalleryPageRankedByLikes(t *testing.T) {
	svc, _ := newGalleryFixture(t)
	ctx := context.Background()

	page1, err := svc.Page(ctx, PageRequest{Page: 1, PageSize: 2, Sort: domain.GallerySortLikes})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	// apple and cherry tie at 8; ascending image ID breaks the tie.
	if got := entryIDs(page1); len(got) != 2 || got[0] != "apple" || got[1] != "cherry" {
		t.Errorf("page 1 order = %v, want [apple cherry]", got)
	}
	if page1.Entries[0].VoteTotal != 8 || page1.Entries[1].VoteTotal != 8 {
		t.Errorf("page 1 totals = %d, %d, want 8, 8",
			page1.Entries[0].VoteTotal, page1.Entries[1].VoteTotal)
	}
	if page1.TotalItems != 4 {
		t.Errorf("TotalItems = %d, want 4", page1.TotalItems)
	}
	if page1.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", page1.TotalPages)
	}

	page2, err := svc.Page(ctx, PageRequest{Page: 2, PageSize: 2, Sort: domain.GallerySortLikes})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if got := entryIDs(page2); len(got) != 2 || got[0] != "banana" || got[1] != "durian" {
		t.Errorf("page 2 order = %v, want [banana durian]", got)
	}
	if page2.Entries[0].VoteTotal != 3 {
		t.Errorf("banana total = %d, want 3", page2.Entries[0].VoteTotal)
	}

	// An image without captions still appears, with an empty caption list.
	durian := page2.Entries[1]
	if durian.Captions == nil || len(durian.Captions) != 0 {
		t.Errorf("captionless image should carry an empty caption slice, got %v", durian.Captions)
	}
	if durian.VoteTotal != 0 {
		t.Errorf("captionless image total = %d, want 0", durian.VoteTotal)
	}
}

func TestGalleryPageOrderedByCaptionCount(t *testing.T) {
	svc, _ := newGalleryFixture(t)
	ctx := context.Background()

	page1, err := svc.Page(ctx, PageRequest{Page: 1, PageSize: 2, Sort: domain.GallerySortCaptions})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	// banana has two captions; apple and cherry tie at one, ID ascending.
	if got := entryIDs(page1); len(got) != 2 || got[0] != "banana" || got[1] != "apple" {
		t.Errorf("page 1 order = %v, want [banana apple]", got)
	}

	page2, err := svc.Page(ctx, PageRequest{Page: 2, PageSize: 2, Sort: domain.GallerySortCaptions})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if got := entryIDs(page2); len(got) != 2 || got[0] != "cherry" || got[1] != "durian" {
		t.Errorf("page 2 order = %v, want [cherry durian]", got)
	}
}

func TestGalleryPageClampsOutOfRange(t *testing.T) {
	svc, _ := newGalleryFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		reqPage  int
		wantPage int
	}{
		{name: "past the end clamps to last", reqPage: 99, wantPage: 2},
		{name: "zero clamps to first", reqPage: 0, wantPage: 1},
		{name: "negative clamps to first", reqPage: -7, wantPage: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.Page(ctx, PageRequest{Page: tc.reqPage, PageSize: 2})
			if err != nil {
				t.Fatalf("Page() error = %v", err)
			}
			if page.Page != tc.wantPage {
				t.Errorf("Page = %d, want %d", page.Page, tc.wantPage)
			}
			if len(page.Entries) == 0 {
				t.Error("clamped page should not be empty")
			}
		})
	}
}

func TestGalleryPageEmptyStore(t *testing.T) {
	db := newTestDB(t)
	svc := NewGalleryService(
		repository.NewImageRepository(db),
		repository.NewCaptionRepository(db),
		repository.NewVoteRepository(db),
		testLogger(),
		nil,
	)

	page, err := svc.Page(context.Background(), PageRequest{Page: 1})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if page.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1 (floor for empty store)", page.TotalPages)
	}
	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if len(page.Entries) != 0 {
		t.Errorf("Entries = %v, want none", page.Entries)
	}
}

func TestTotalPageCount(t *testing.T) {
	testCases := []struct {
		name       string
		totalItems int64
		pageSize   int
		want       int
	}{
		{name: "empty floors at one", totalItems: 0, pageSize: 10, want: 1},
		{name: "exact multiple", totalItems: 20, pageSize: 10, want: 2},
		{name: "partial last page", totalItems: 21, pageSize: 10, want: 3},
		{name: "fewer than one page", totalItems: 3, pageSize: 10, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := totalPageCount(tc.totalItems, tc.pageSize); got != tc.want {
				t.Errorf("totalPageCount(%d, %d) = %d, want %d", tc.totalItems, tc.pageSize, got, tc.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	testCases := []struct {
		name       string
		page       int
		totalPages int
		want       int
	}{
		{name: "in range untouched", page: 2, totalPages: 5, want: 2},
		{name: "too high clamps down", page: 9, totalPages: 5, want: 5},
		{name: "zero clamps up", page: 0, totalPages: 5, want: 1},
		{name: "negative clamps up", page: -3, totalPages: 5, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampPage(tc.page, tc.totalPages); got != tc.want {
				t.Errorf("clampPage(%d, %d) = %d, want %d", tc.page, tc.totalPages, got, tc.want)
			}
		})
	}
}

func TestRankImageIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	totals := map[string]int{"a": 3, "b": 7, "c": 3}

	ranked := rankImageIDs(ids, totals)

	want := []string{"b", "a", "c", "d"}
	for i := range want {
		if ranked[i] != want[i] {
			t.Fatalf("rankImageIDs = %v, want %v", ranked, want)
		}
	}
}

func TestSlicePage(t *testing.T) {
	ranked := []string{"a", "b", "c", "d", "e"}

	testCases := []struct {
		name     string
		page     int
		pageSize int
		want     []string
	}{
		{name: "first page", page: 1, pageSize: 2, want: []string{"a", "b"}},
		{name: "middle page", page: 2, pageSize: 2, want: []string{"c", "d"}},
		{name: "short last page", page: 3, pageSize: 2, want: []string{"e"}},
		{name: "beyond the end", page: 9, pageSize: 2, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slicePage(ranked, tc.page, tc.pageSize)
			if len(got) != len(tc.want) {
				t.Fatalf("slicePage(page=%d) = %v, want %v", tc.page, got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("slicePage(page=%d)[%d] = %q, want %q", tc.page, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestAssembleEntriesDropsOrphanCaptions(t *testing.T) {
	images := []domain.Image{{ID: "a"}}
	captions := []domain.Caption{
		{ID: "cap-1", ImageID: "a", Content: strPtr("kept")},
		{ID: "cap-orphan", ImageID: "ghost", Content: strPtr("dropped")},
	}
	votes := []domain.CaptionVote{
		{CaptionID: "cap-1", ProfileID: "p1", VoteValue: 1},
		{CaptionID: "cap-orphan", ProfileID: "p2", VoteValue: 1},
	}

	entries := assembleEntries(images, captions, votes)

	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if len(entries[0].Captions) != 1 || entries[0].Captions[0].ID != "cap-1" {
		t.Errorf("entry captions = %v, want just cap-1", entries[0].Captions)
	}
	if entries[0].VoteTotal != 1 {
		t.Errorf("VoteTotal = %d, want 1 (orphan votes excluded)", entries[0].VoteTotal)
	}
}
