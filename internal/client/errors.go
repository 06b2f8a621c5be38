package client

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced before any network call is made.
var (
	// ErrUnsupportedType rejects an upload whose content type cannot be
	// resolved. Recoverable: the user picks a supported file.
	ErrUnsupportedType = errors.New("unsupported file type: use jpeg, jpg, png, webp, gif, or heic")

	// ErrAuthRequired aborts a pipeline run before stage 1 when no
	// session token is available.
	ErrAuthRequired = errors.New("sign in before generating captions")

	// ErrRunSuperseded marks a pipeline run whose result arrived after a
	// newer run started; the stale result is discarded, not surfaced.
	ErrRunSuperseded = errors.New("pipeline run superseded by a newer run")

	// ErrVoteInFlight rejects a vote action while a prior submission for
	// the same widget has not resolved yet.
	ErrVoteInFlight = errors.New("vote submission already in flight")
)

// stageError carries the failure detail shared by all pipeline stage
// errors: the failing stage label, the HTTP status (zero for transport
// errors), and the message extracted from the response body.
type stageError struct {
	Stage   string
	Status  int
	Message string
}

func (e stageError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Stage, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

// SlotRequestError reports a failed presigned-URL request (stage 1).
type SlotRequestError struct{ stageError }

// UploadError reports a failed direct upload to the presigned target
// (stage 2). Uploads are never retried; one failure aborts the run.
type UploadError struct{ stageError }

// RegistrationError reports a failed asset registration (stage 3).
type RegistrationError struct{ stageError }

// GenerationError reports a failed caption generation call (stage 4).
type GenerationError struct{ stageError }

// VoteSubmissionError reports a vote insert or update the store rejected.
// Local optimistic state is never applied when this is returned.
type VoteSubmissionError struct {
	CaptionID string
	Err       error
}

func (e *VoteSubmissionError) Error() string {
	return fmt.Sprintf("vote on caption %s rejected: %v", e.CaptionID, e.Err)
}

func (e *VoteSubmissionError) Unwrap() error {
	return e.Err
}
