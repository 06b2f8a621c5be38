package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/repository"
)

// fakeStorage satisfies storage.ObjectStorage without a live backend.
type fakeStorage struct {
	presigned []string
}

func (f *fakeStorage) EnsureBucket(context.Context) error { return nil }

func (f *fakeStorage) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	f.presigned = append(f.presigned, key)
	return "https://storage.example.com/presigned/" + key, nil
}

func (f *fakeStorage) Upload(context.Context, string, io.Reader, int64, string) error { return nil }

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeStorage) GetURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (f *fakeStorage) Delete(context.Context, string) error { return nil }

func (f *fakeStorage) Exists(context.Context, string) (bool, error) { return false, nil }

func newPipelineFixture(t *testing.T) (*PipelineService, *fakeStorage, *repository.ImageRepository) {
	t.Helper()
	db := newTestDB(t)
	images := repository.NewImageRepository(db)
	captions := repository.NewCaptionRepository(db)
	store := &fakeStorage{}
	svc := NewPipelineService(images, captions, store, nil, testLogger(), nil)
	return svc, store, images
}

func TestCreateUploadSlot(t *testing.T) {
	svc, store, _ := newPipelineFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name        string
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{name: "jpeg", contentType: "image/jpeg", wantExt: ".jpg"},
		{name: "jpg alias", contentType: "image/jpg", wantExt: ".jpg"},
		{name: "png", contentType: "image/png", wantExt: ".png"},
		{name: "webp", contentType: "image/webp", wantExt: ".webp"},
		{name: "gif", contentType: "image/gif", wantExt: ".gif"},
		{name: "heic", contentType: "image/heic", wantExt: ".heic"},
		{name: "mixed case accepted", contentType: "Image/PNG", wantExt: ".png"},
		{name: "pdf rejected", contentType: "application/pdf", wantErr: true},
		{name: "svg rejected", contentType: "image/svg+xml", wantErr: true},
		{name: "empty rejected", contentType: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slot, err := svc.CreateUploadSlot(ctx, tc.contentType)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("CreateUploadSlot(%q) should fail", tc.contentType)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateUploadSlot(%q) error = %v", tc.contentType, err)
			}
			if !strings.HasSuffix(slot.Key, tc.wantExt) {
				t.Errorf("key %q should end in %s", slot.Key, tc.wantExt)
			}
			if !strings.HasPrefix(slot.Key, "uploads/") {
				t.Errorf("key %q should live under uploads/", slot.Key)
			}
			if !strings.Contains(slot.PresignedURL, slot.Key) {
				t.Errorf("presigned URL %q should reference key %q", slot.PresignedURL, slot.Key)
			}
			if slot.CDNURL != "https://cdn.example.com/"+slot.Key {
				t.Errorf("CDN URL = %q, want the public URL for %q", slot.CDNURL, slot.Key)
			}
		})
	}

	if len(store.presigned) == 0 {
		t.Error("no presign calls reached storage")
	}
}

func TestCreateUploadSlotKeysAreUnique(t *testing.T) {
	svc, _, _ := newPipelineFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		slot, err := svc.CreateUploadSlot(ctx, "image/png")
		if err != nil {
			t.Fatalf("CreateUploadSlot() error = %v", err)
		}
		if seen[slot.Key] {
			t.Fatalf("duplicate key %q", slot.Key)
		}
		seen[slot.Key] = true
	}
}

func TestRegisterImage(t *testing.T) {
	svc, _, images := newPipelineFixture(t)
	ctx := context.Background()
	session := domain.Session{ProfileID: "alice"}

	img, err := svc.RegisterImage(ctx, session, "https://cdn.example.com/uploads/x.png", true)
	if err != nil {
		t.Fatalf("RegisterImage() error = %v", err)
	}
	if img.ID == "" {
		t.Error("registered image should get an ID")
	}
	if !img.IsCommon {
		t.Error("IsCommon flag should persist")
	}

	stored, err := images.GetByID(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.URL != "https://cdn.example.com/uploads/x.png" {
		t.Errorf("stored URL = %q", stored.URL)
	}
}

func TestRegisterImageValidation(t *testing.T) {
	svc, _, _ := newPipelineFixture(t)
	ctx := context.Background()

	t.Run("anonymous rejected", func(t *testing.T) {
		if _, err := svc.RegisterImage(ctx, domain.Session{}, "https://cdn.example.com/x.png", false); err == nil {
			t.Error("RegisterImage() should require a session")
		}
	})

	t.Run("empty URL rejected", func(t *testing.T) {
		if _, err := svc.RegisterImage(ctx, domain.Session{ProfileID: "alice"}, "   ", false); err == nil {
			t.Error("RegisterImage() should reject a blank URL")
		}
	})
}
