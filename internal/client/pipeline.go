package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Stage labels exposed while a pipeline run is in flight.
const (
	StageIdle        = "idle"
	StageRequesting  = "requesting upload URL"
	StageUploading   = "uploading image"
	StageRegistering = "registering image"
	StageGenerating  = "generating captions"
)

// Upload is one user-selected file handed to the orchestrator.
type Upload struct {
	Reader       io.Reader
	Filename     string
	DeclaredType string
}

// Orchestrator drives the four-step upload/caption protocol against the
// remote pipeline service. Stages run strictly sequentially because each
// stage's output is required input for the next; any stage failure aborts
// the run with that stage's typed error and no compensating rollback (an
// uploaded-but-unregistered object is simply abandoned).
type Orchestrator struct {
	client  *resty.Client
	baseURL string

	stage  atomic.Value // current stage label, for observability
	runSeq atomic.Uint64
}

// NewOrchestrator creates an orchestrator for the pipeline service at
// baseURL.
func NewOrchestrator(baseURL string) *Orchestrator {
	client := resty.New()
	client.SetTimeout(120 * time.Second)
	o := &Orchestrator{
		client:  client,
		baseURL: baseURL,
	}
	o.stage.Store(StageIdle)
	return o
}

// Stage returns the label of the stage the latest run is currently in.
func (o *Orchestrator) Stage() string {
	return o.stage.Load().(string)
}

func (o *Orchestrator) setStage(stage string) {
	o.stage.Store(stage)
}

// slotResponse is the stage-1 payload.
type slotResponse struct {
	PresignedURL string `json:"presignedUrl"`
	CDNURL       string `json:"cdnUrl"`
}

// registerResponse is the stage-3 payload.
type registerResponse struct {
	ImageID string `json:"imageId"`
}

// Run executes the full pipeline for one upload and returns the resolved
// caption texts. A run started after this one supersedes it: the stale
// run's result is discarded with ErrRunSuperseded instead of being
// surfaced. In-flight requests are never cancelled by a newer run.
func (o *Orchestrator) Run(ctx context.Context, token string, upload Upload) ([]string, error) {
	seq := o.runSeq.Add(1)
	defer o.setStage(StageIdle)

	contentType, ok := ResolveContentType(upload.DeclaredType, upload.Filename)
	if !ok {
		return nil, ErrUnsupportedType
	}
	if token == "" {
		return nil, ErrAuthRequired
	}

	// Stage 1: request an upload slot.
	o.setStage(StageRequesting)
	var slot slotResponse
	if err := o.postJSON(ctx, token, "/pipeline/generate-presigned-url",
		map[string]interface{}{"contentType": contentType},
		&slot,
		func(s stageError) error { return &SlotRequestError{s} },
	); err != nil {
		return nil, err
	}
	if slot.PresignedURL == "" || slot.CDNURL == "" {
		return nil, &SlotRequestError{stageError{
			Stage:   StageRequesting,
			Message: "malformed response: missing presigned or cdn URL",
		}}
	}

	// Stage 2: upload the bytes straight to the presigned target.
	o.setStage(StageUploading)
	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(upload.Reader).
		Put(slot.PresignedURL)
	if err != nil {
		return nil, &UploadError{stageError{Stage: StageUploading, Message: err.Error()}}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &UploadError{stageError{
			Stage:   StageUploading,
			Status:  resp.StatusCode(),
			Message: bodyMessage(resp.StatusCode(), resp.Body()),
		}}
	}

	// Stage 3: register the uploaded asset.
	o.setStage(StageRegistering)
	var registered registerResponse
	if err := o.postJSON(ctx, token, "/pipeline/upload-image-from-url",
		map[string]interface{}{"imageUrl": slot.CDNURL, "isCommonUse": false},
		&registered,
		func(s stageError) error { return &RegistrationError{s} },
	); err != nil {
		return nil, err
	}
	if registered.ImageID == "" {
		return nil, &RegistrationError{stageError{
			Stage:   StageRegistering,
			Message: "malformed response: missing imageId",
		}}
	}

	// Stage 4: generate captions for the registered image.
	o.setStage(StageGenerating)
	var records []CaptionRecord
	if err := o.postJSON(ctx, token, "/pipeline/generate-captions",
		map[string]interface{}{"imageId": registered.ImageID},
		&records,
		func(s stageError) error { return &GenerationError{s} },
	); err != nil {
		return nil, err
	}

	captions := make([]string, 0, len(records))
	for _, record := range records {
		captions = append(captions, CaptionText(record))
	}

	// Liveness check captured at run start: a newer run owns the UI now.
	if o.runSeq.Load() != seq {
		return nil, ErrRunSuperseded
	}
	return captions, nil
}

// postJSON posts one authenticated JSON request and decodes the response
// into out. Non-success statuses and transport failures are converted to
// the caller's stage error.
func (o *Orchestrator) postJSON(ctx context.Context, token, path string, body interface{}, out interface{}, wrap func(stageError) error) error {
	stage := o.Stage()
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(o.baseURL + path)
	if err != nil {
		return wrap(stageError{Stage: stage, Message: err.Error()})
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return wrap(stageError{
			Stage:   stage,
			Status:  resp.StatusCode(),
			Message: bodyMessage(resp.StatusCode(), resp.Body()),
		})
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return wrap(stageError{Stage: stage, Message: "malformed response: " + err.Error()})
		}
	}
	return nil
}

// bodyMessage extracts the error message from a failed response: the JSON
// body's "message" field when present, else the HTTP status text.
func bodyMessage(status int, body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg, ok := payload["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return http.StatusText(status)
}
