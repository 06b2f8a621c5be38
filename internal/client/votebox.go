package client

import (
	"context"
	"sync"
)

// VoteState is the lifecycle of a vote widget's latest submission.
type VoteState int

const (
	VoteIdle VoteState = iota
	VoteSubmitting
	VoteApplied
	VoteFailed
)

// VoteSubmitter persists a vote for a (caption, voter) pair. Insert is
// used when the voter has no recorded vote yet, Update when one exists.
type VoteSubmitter interface {
	Insert(ctx context.Context, captionID, profileID string, value int) error
	Update(ctx context.Context, captionID, profileID string, value int) error
}

// VoteBox tracks one caption's vote tally and the local voter's state,
// applying changes optimistically only after the store confirms the
// write. One vote row per voter: a changed mind updates the existing row
// instead of inserting a second one.
type VoteBox struct {
	mu sync.Mutex

	captionID string
	profileID string

	total      int
	voterState int
	state      VoteState
	submitting bool

	submitter VoteSubmitter
}

// NewVoteBox seeds a vote box from the caption's fetched vote values.
// The voter's own prior value is normalized to a direction so a stored
// weight outside {-1, 0, +1} cannot skew the delta arithmetic.
func NewVoteBox(captionID, profileID string, votes []int, voterValue int, submitter VoteSubmitter) *VoteBox {
	total := 0
	for _, v := range votes {
		total += v
	}
	return &VoteBox{
		captionID:  captionID,
		profileID:  profileID,
		total:      total,
		voterState: normalizeDirection(voterValue),
		state:      VoteIdle,
		submitter:  submitter,
	}
}

func normalizeDirection(value int) int {
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}

// Total returns the caption's locally tracked vote total.
func (b *VoteBox) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// VoterState returns the local voter's recorded direction: -1, 0, or +1.
func (b *VoteBox) VoterState() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.voterState
}

// State returns the lifecycle state of the latest submission.
func (b *VoteBox) State() VoteState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Apply submits a vote in the given direction (+1 or -1).
//
// Anonymous voters are a silent no-op. Re-clicking the current direction
// is a no-op. While a submission is in flight further clicks return
// ErrVoteInFlight. Local state changes only after the store confirms:
// on failure the tally and voter state are exactly what they were before
// the click, and the error is surfaced as a VoteSubmissionError.
func (b *VoteBox) Apply(ctx context.Context, direction int) error {
	b.mu.Lock()
	if b.profileID == "" {
		b.mu.Unlock()
		return nil
	}
	if b.submitting {
		b.mu.Unlock()
		return ErrVoteInFlight
	}
	prev := b.voterState
	if prev == direction {
		b.mu.Unlock()
		return nil
	}
	b.submitting = true
	b.state = VoteSubmitting
	captionID, profileID := b.captionID, b.profileID
	b.mu.Unlock()

	var err error
	if prev == 0 {
		err = b.submitter.Insert(ctx, captionID, profileID, direction)
	} else {
		err = b.submitter.Update(ctx, captionID, profileID, direction)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitting = false
	if err != nil {
		b.state = VoteFailed
		return &VoteSubmissionError{CaptionID: captionID, Err: err}
	}

	b.total += direction - prev
	b.voterState = direction
	b.state = VoteApplied
	return nil
}
