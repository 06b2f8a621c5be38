package service

import (
	"context"
	"fmt"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/repository"
)

// VoteService applies caption votes with upsert semantics: at most one
// vote row per (caption, profile) pair, chosen as insert or update based
// on whether the pair already has a row. There is no server-side lock;
// concurrent writers from different devices resolve last-write-wins at
// the store.
type VoteService struct {
	votes    *repository.VoteRepository
	captions *repository.CaptionRepository
	logger   *logger.Logger
}

// NewVoteService creates a new vote service.
// Parameters:
//   - votes: repository for vote records.
//   - captions: repository for caption records (like-count cache refresh).
//   - log: logger instance.
//
// Returns:
//   - *VoteService: initialized vote service.
func NewVoteService(
	votes *repository.VoteRepository,
	captions *repository.CaptionRepository,
	log *logger.Logger,
) *VoteService {
	return &VoteService{
		votes:    votes,
		captions: captions,
		logger:   log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *VoteService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// VoteResult reports the caption's vote state after an Apply.
type VoteResult struct {
	CaptionID  string `json:"caption_id"`
	Total      int    `json:"total"`
	VoterState int    `json:"voter_state"`
}

// Apply records one profile's vote on one caption.
// Re-submitting the current direction is a no-op. After a confirmed write
// the caption's denormalized like-count cache is refreshed; a cache
// refresh failure does not fail the vote.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - session: authenticated voter.
//   - captionID: caption being voted on.
//   - direction: +1 or -1.
// Returns:
//   - *VoteResult: resulting total and the voter's state for this caption.
//   - error: non-nil if validation or the vote write fails.
func (s *VoteService) Apply(ctx context.Context, session domain.Session, captionID string, direction int) (*VoteResult, error) {
	if !session.Authenticated() {
		return nil, fmt.Errorf("authentication required")
	}
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return nil, fmt.Errorf("invalid vote value: %d", direction)
	}
	if _, err := s.captions.GetByID(ctx, captionID); err != nil {
		return nil, fmt.Errorf("unknown caption %q: %w", captionID, err)
	}

	existing, err := s.votes.Get(ctx, captionID, session.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing vote: %w", err)
	}

	switch {
	case existing == nil:
		now := time.Now().UTC()
		vote := &domain.CaptionVote{
			CaptionID:  captionID,
			ProfileID:  session.ProfileID,
			VoteValue:  direction,
			CreatedAt:  now,
			ModifiedAt: now,
		}
		if err := s.votes.Insert(ctx, vote); err != nil {
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}
	case existing.VoteValue == direction:
		// Idempotent re-click: nothing to write.
	default:
		if err := s.votes.UpdateValue(ctx, captionID, session.ProfileID, direction); err != nil {
			return nil, fmt.Errorf("failed to update vote: %w", err)
		}
	}

	total, err := s.votes.SumByCaption(ctx, captionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}

	// Eventually-consistent cache; the vote itself already succeeded.
	if err := s.captions.UpdateLikeCount(ctx, captionID, total); err != nil {
		s.log(ctx).WithFields(logger.Fields{
			logger.FieldCaptionID: captionID,
		}).WithError(err).Warn("Failed to refresh like-count cache")
	}

	return &VoteResult{
		CaptionID:  captionID,
		Total:      total,
		VoterState: direction,
	}, nil
}

// Seed captures the initial vote state for a caption as the client sees
// it: total is the sum of all fetched vote values and the voter's own
// state is normalized to {-1, 0, +1}.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - session: requesting profile; may be anonymous.
//   - captionID: caption to seed state for.
// Returns:
//   - *VoteResult: current total and voter state.
//   - error: non-nil if the fetch fails.
func (s *VoteService) Seed(ctx context.Context, session domain.Session, captionID string) (*VoteResult, error) {
	total, err := s.votes.SumByCaption(ctx, captionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}

	voterState := 0
	if session.Authenticated() {
		existing, err := s.votes.Get(ctx, captionID, session.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up existing vote: %w", err)
		}
		if existing != nil {
			voterState = domain.NormalizeVote(existing.VoteValue)
		}
	}

	return &VoteResult{
		CaptionID:  captionID,
		Total:      total,
		VoterState: voterState,
	}, nil
}
