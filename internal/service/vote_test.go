package service

import (
	"context"
	"testing"
	"time"

	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/repository"
)

func newVoteFixture(t *testing.T) (*VoteService, *repository.VoteRepository, *repository.CaptionRepository) {
	t.Helper()
	db := newTestDB(t)

	seedImage(t, db, "img-1", time.Now().UTC())
	seedCaption(t, db, "cap-1", "img-1", "caption under test")
	seedCaption(t, db, "cap-2", "img-1", "second caption")

	votes := repository.NewVoteRepository(db)
	captions := repository.NewCaptionRepository(db)
	svc := NewVoteService(votes, captions, testLogger())
	return svc, votes, captions
}

func TestVoteApplyInsertsFirstVote(t *testing.T) {
	svc, votes, captions := newVoteFixture(t)
	ctx := context.Background()
	session := domain.Session{ProfileID: "alice"}

	result, err := svc.Apply(ctx, session, "cap-1", domain.VoteUp)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Total)
	}
	if result.VoterState != 1 {
		t.Errorf("VoterState = %d, want 1", result.VoterState)
	}

	stored, err := votes.Get(ctx, "cap-1", "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored == nil || stored.VoteValue != 1 {
		t.Fatalf("stored vote = %+v, want value 1", stored)
	}

	// The denormalized like count follows the vote.
	cap1, err := captions.GetByID(ctx, "cap-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if cap1.Likes() != 1 {
		t.Errorf("cached like count = %d, want 1", cap1.Likes())
	}
}

func TestVoteApplyChangedMindUpdatesRow(t *testing.T) {
	svc, votes, _ := newVoteFixture(t)
	ctx := context.Background()
	session := domain.Session{ProfileID: "alice"}

	if _, err := svc.Apply(ctx, session, "cap-1", domain.VoteUp); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	result, err := svc.Apply(ctx, session, "cap-1", domain.VoteDown)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	if result.Total != -1 {
		t.Errorf("Total = %d, want -1 (vote replaced, not stacked)", result.Total)
	}

	all, err := votes.ListByCaptionIDs(ctx, []string{"cap-1"})
	if err != nil {
		t.Fatalf("ListByCaptionIDs() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("vote rows = %d, want exactly 1 per (caption, profile)", len(all))
	}
	if all[0].VoteValue != -1 {
		t.Errorf("stored value = %d, want -1", all[0].VoteValue)
	}
}

func TestVoteApplyRepeatDirectionIsIdempotent(t *testing.T) {
	svc, votes, _ := newVoteFixture(t)
	ctx := context.Background()
	session := domain.Session{ProfileID: "alice"}

	for i := 0; i < 3; i++ {
		result, err := svc.Apply(ctx, session, "cap-1", domain.VoteUp)
		if err != nil {
			t.Fatalf("Apply() #%d error = %v", i, err)
		}
		if result.Total != 1 {
			t.Errorf("Apply() #%d Total = %d, want 1", i, result.Total)
		}
	}

	all, err := votes.ListByCaptionIDs(ctx, []string{"cap-1"})
	if err != nil {
		t.Fatalf("ListByCaptionIDs() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("vote rows = %d, want 1", len(all))
	}
}

func TestVoteApplyMultipleVoters(t *testing.T) {
	svc, _, _ := newVoteFixture(t)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, domain.Session{ProfileID: "alice"}, "cap-1", domain.VoteUp); err != nil {
		t.Fatalf("alice Apply() error = %v", err)
	}
	if _, err := svc.Apply(ctx, domain.Session{ProfileID: "bob"}, "cap-1", domain.VoteUp); err != nil {
		t.Fatalf("bob Apply() error = %v", err)
	}
	result, err := svc.Apply(ctx, domain.Session{ProfileID: "carol"}, "cap-1", domain.VoteDown)
	if err != nil {
		t.Fatalf("carol Apply() error = %v", err)
	}

	if result.Total != 1 {
		t.Errorf("Total = %d, want 1 (+1 +1 -1)", result.Total)
	}
}

func TestVoteApplyRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newVoteFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name      string
		session   domain.Session
		captionID string
		direction int
	}{
		{name: "anonymous", session: domain.Session{}, captionID: "cap-1", direction: 1},
		{name: "zero direction", session: domain.Session{ProfileID: "alice"}, captionID: "cap-1", direction: 0},
		{name: "oversized direction", session: domain.Session{ProfileID: "alice"}, captionID: "cap-1", direction: 2},
		{name: "unknown caption", session: domain.Session{ProfileID: "alice"}, captionID: "cap-missing", direction: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(ctx, tc.session, tc.captionID, tc.direction); err == nil {
				t.Error("Apply() should fail")
			}
		})
	}
}

func TestVoteSeed(t *testing.T) {
	svc, _, _ := newVoteFixture(t)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, domain.Session{ProfileID: "alice"}, "cap-1", domain.VoteUp); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := svc.Apply(ctx, domain.Session{ProfileID: "bob"}, "cap-1", domain.VoteUp); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	t.Run("voter sees own state", func(t *testing.T) {
		state, err := svc.Seed(ctx, domain.Session{ProfileID: "alice"}, "cap-1")
		if err != nil {
			t.Fatalf("Seed() error = %v", err)
		}
		if state.Total != 2 || state.VoterState != 1 {
			t.Errorf("Seed() = total %d state %d, want total 2 state 1", state.Total, state.VoterState)
		}
	})

	t.Run("anonymous sees zero state", func(t *testing.T) {
		state, err := svc.Seed(ctx, domain.Session{}, "cap-1")
		if err != nil {
			t.Fatalf("Seed() error = %v", err)
		}
		if state.Total != 2 || state.VoterState != 0 {
			t.Errorf("Seed() = total %d state %d, want total 2 state 0", state.Total, state.VoterState)
		}
	})

	t.Run("unvoted caption", func(t *testing.T) {
		state, err := svc.Seed(ctx, domain.Session{ProfileID: "alice"}, "cap-2")
		if err != nil {
			t.Fatalf("Seed() error = %v", err)
		}
		if state.Total != 0 || state.VoterState != 0 {
			t.Errorf("Seed() = total %d state %d, want zeros", state.Total, state.VoterState)
		}
	})
}
