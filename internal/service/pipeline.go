package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/repository"
	"github.com/almostcrackd/captionboard/internal/storage"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// allowedContentTypes is the fixed allow-set of upload content types and
// the storage key extension each one maps to.
var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/heic": "heic",
}

// PipelineService implements the server side of the upload/caption pipeline:
// presigned slot issuance, asset registration, and caption generation.
type PipelineService struct {
	images     *repository.ImageRepository
	captions   *repository.CaptionRepository
	storage    storage.ObjectStorage
	captioner  *CaptionerService
	httpClient *resty.Client
	logger     *logger.Logger
	presignTTL time.Duration
}

// PipelineConfig holds configuration for the pipeline service.
type PipelineConfig struct {
	PresignTTL time.Duration
}

// NewPipelineService creates a new pipeline service.
// Parameters:
//   - images: repository for image records.
//   - captions: repository for caption records.
//   - objectStorage: object storage client for presigning and fetches.
//   - captioner: caption generation client.
//   - log: logger instance.
//   - cfg: pipeline configuration settings.
//
// Returns:
//   - *PipelineService: initialized pipeline service.
func NewPipelineService(
	images *repository.ImageRepository,
	captions *repository.CaptionRepository,
	objectStorage storage.ObjectStorage,
	captioner *CaptionerService,
	log *logger.Logger,
	cfg *PipelineConfig,
) *PipelineService {
	ttl := 15 * time.Minute
	if cfg != nil && cfg.PresignTTL > 0 {
		ttl = cfg.PresignTTL
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	return &PipelineService{
		images:     images,
		captions:   captions,
		storage:    objectStorage,
		captioner:  captioner,
		httpClient: client,
		logger:     log,
		presignTTL: ttl,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *PipelineService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// UploadSlot is the result of a presigned-URL request: a one-shot PUT
// target and the public URL the object will be readable at.
type UploadSlot struct {
	PresignedURL string `json:"presignedUrl"`
	CDNURL       string `json:"cdnUrl"`
	Key          string `json:"-"`
}

// CreateUploadSlot issues a presigned PUT URL for one upload with the
// given content type.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentType: declared MIME type; must be in the fixed allow-set.
// Returns:
//   - *UploadSlot: presigned target and public URL.
//   - error: non-nil if the content type is unsupported or presigning fails.
func (s *PipelineService) CreateUploadSlot(ctx context.Context, contentType string) (*UploadSlot, error) {
	ext, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("unsupported content type: %q", contentType)
	}

	key := fmt.Sprintf("uploads/%s.%s", uuid.New().String(), ext)
	presignedURL, err := s.storage.PresignPut(ctx, key, contentType, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload slot: %w", err)
	}

	return &UploadSlot{
		PresignedURL: presignedURL,
		CDNURL:       s.storage.GetURL(key),
		Key:          key,
	}, nil
}

// RegisterImage records an uploaded asset as an image row. Dimension
// probing is best-effort: a registration never fails because the bytes
// could not be decoded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - session: authenticated caller.
//   - imageURL: public URL of the uploaded asset.
//   - isCommonUse: whether the image is shared for common use.
// Returns:
//   - *domain.Image: created image record.
//   - error: non-nil if validation or the insert fails.
func (s *PipelineService) RegisterImage(ctx context.Context, session domain.Session, imageURL string, isCommonUse bool) (*domain.Image, error) {
	if !session.Authenticated() {
		return nil, fmt.Errorf("authentication required")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("imageUrl is required")
	}

	img := &domain.Image{
		ID:        uuid.New().String(),
		URL:       imageURL,
		IsCommon:  isCommonUse,
		CreatedAt: time.Now().UTC(),
	}

	if width, height, err := s.probeDimensions(ctx, imageURL); err != nil {
		s.log(ctx).WithError(err).Warn("Failed to probe image dimensions")
	} else {
		img.Width = width
		img.Height = height
	}

	if err := s.images.Create(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to register image: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldImageID: img.ID,
	}).Info("Image registered")

	return img, nil
}

// probeDimensions fetches the asset and decodes just its header. Objects
// under our own public prefix are read from storage directly.
func (s *PipelineService) probeDimensions(ctx context.Context, imageURL string) (int, int, error) {
	data, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (s *PipelineService) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	prefix := s.storage.GetURL("")
	if prefix != "/" && strings.HasPrefix(imageURL, prefix) {
		key := strings.TrimPrefix(imageURL, prefix)
		body, err := s.storage.Download(ctx, key)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(body); err != nil {
			return nil, fmt.Errorf("failed to read object: %w", err)
		}
		return buf.Bytes(), nil
	}

	resp, err := s.httpClient.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("failed to fetch image: HTTP %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// GenerateCaptions runs the captioning model for a registered image and
// persists the resulting captions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - session: authenticated caller.
//   - imageID: previously registered image ID.
// Returns:
//   - []domain.Caption: persisted caption records.
//   - error: non-nil if the image is unknown, the model call fails, or
//     persistence fails.
func (s *PipelineService) GenerateCaptions(ctx context.Context, session domain.Session, imageID string) ([]domain.Caption, error) {
	if !session.Authenticated() {
		return nil, fmt.Errorf("authentication required")
	}

	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("unknown image %q: %w", imageID, err)
	}

	start := time.Now()
	lines, err := s.captioner.GenerateCaptions(ctx, img.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate captions: %w", err)
	}

	captions := make([]domain.Caption, 0, len(lines))
	now := time.Now().UTC()
	for _, line := range lines {
		content := line
		captions = append(captions, domain.Caption{
			ID:        uuid.New().String(),
			ImageID:   img.ID,
			Content:   &content,
			CreatedAt: now,
		})
	}

	if err := s.captions.CreateBatch(ctx, captions); err != nil {
		return nil, fmt.Errorf("failed to persist captions: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldImageID:    img.ID,
		logger.FieldCount:      len(captions),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Captions generated")

	return captions, nil
}
