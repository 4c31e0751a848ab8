package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

func newSelector(db *gorm.DB, seed int64) *AssignmentSelector {
	return NewAssignmentSelector(
		repository.NewMemeRepository(db),
		repository.NewDescriptionRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewVoteRepository(db),
		testLimits(),
		rand.New(rand.NewSource(seed)),
	)
}

// seedCorpus inserts n memes owned by fresh anonymous sessions.
func seedCorpus(t *testing.T, db *gorm.DB, n int) []*domain.Meme {
	t.Helper()
	memes := make([]*domain.Meme, 0, n)
	for i := 0; i < n; i++ {
		memes = append(memes, seedMeme(t, db, anonActor()))
	}
	return memes
}

func TestAssignmentSelector_CorpusTooSmall(t *testing.T) {
	db := newTestDB(t)
	seedCorpus(t, db, testLimits().MinMemeCount-1)
	selector := newSelector(db, 1)

	_, err := selector.NextTask(context.Background(), anonActor())
	if !errors.Is(err, ErrCorpusTooSmall) {
		t.Errorf("expected ErrCorpusTooSmall, got %v", err)
	}
}

func TestAssignmentSelector_NeverAssignsOwnMeme(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	// One meme by the actor, the rest by others
	own := seedMeme(t, db, actor)
	seedCorpus(t, db, testLimits().MinMemeCount)
	selector := newSelector(db, 2)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		task, err := selector.NextTask(ctx, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Meme.ID == own.ID {
			t.Fatal("selector offered the actor's own meme")
		}
	}
}

func TestAssignmentSelector_NeverAssignsOwnDescription(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	memes := seedCorpus(t, db, testLimits().MinMemeCount)
	// The actor authored a description on every meme
	for _, m := range memes {
		seedDescription(t, db, m.ID, actor, false)
	}
	selector := newSelector(db, 3)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		task, err := selector.NextTask(ctx, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Description != nil && task.Description.AuthorSession == actor.SessionID {
			t.Fatal("selector offered the actor's own description")
		}
	}
}

func TestAssignmentSelector_CompletedPairsExcluded(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	memes := seedCorpus(t, db, testLimits().MinMemeCount)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	// Fully evaluate every meme: all three facets plus a vote on each description
	for _, m := range memes {
		desc := seedDescription(t, db, m.ID, anonActor(), true)
		if _, err := svc.Submit(ctx, actor, &EvaluationSubmission{
			MemeID:          m.ID,
			HumorType:       strPtr("Absurd/Random"),
			Emotions:        []string{"Joy"},
			ContextLevel:    strPtr("None"),
			DescriptionID:   &desc.ID,
			DescriptionVote: strPtr(domain.VoteLike),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Guess-complete memes also lose their placeholder slot, so nothing remains
	selector := newSelector(db, 4)
	_, err := selector.NextTask(ctx, actor)
	if !errors.Is(err, ErrNothingToEvaluate) {
		t.Errorf("expected ErrNothingToEvaluate, got %v", err)
	}
}

func TestAssignmentSelector_PartialPairStaysEligible(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	memes := seedCorpus(t, db, testLimits().MinMemeCount)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	// Answer only the humor facet everywhere; pairs must remain open
	for _, m := range memes {
		seedDescription(t, db, m.ID, anonActor(), true)
		if _, err := svc.Submit(ctx, actor, &EvaluationSubmission{
			MemeID:    m.ID,
			HumorType: strPtr("Relatability"),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	selector := newSelector(db, 5)
	task, err := selector.NextTask(ctx, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.Status.Humor {
		t.Error("expected humor facet to be reported as recorded")
	}
	if task.Status.Emotions || task.Status.Context {
		t.Error("expected emotion and context facets to be reported as open")
	}
}

func TestAssignmentSelector_PlaceholderRespectsDescriptionCap(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	memes := seedCorpus(t, db, testLimits().MinMemeCount)

	// Fill every meme to the description cap
	for _, m := range memes {
		for i := 0; i < testLimits().MaxDescriptionsPerMeme; i++ {
			seedDescription(t, db, m.ID, anonActor(), i == 0)
		}
	}

	selector := newSelector(db, 6)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		task, err := selector.NextTask(ctx, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Description == nil {
			t.Fatal("expected no placeholder slot for capped memes")
		}
	}
}

func TestAssignmentSelector_PlaceholderOfferedBelowCap(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	// Memes with no descriptions at all only offer the placeholder slot
	seedCorpus(t, db, testLimits().MinMemeCount)

	selector := newSelector(db, 7)
	task, err := selector.NextTask(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Description != nil {
		t.Error("expected placeholder task for description-free meme")
	}
}

func TestAssignmentSelector_UniformOverPairsNotMemes(t *testing.T) {
	db := newTestDB(t)
	actor := anonActor()
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	memes := seedCorpus(t, db, testLimits().MinMemeCount)

	// All but two memes are finished for the actor and drop out of the draw
	for _, m := range memes[2:] {
		desc := seedDescription(t, db, m.ID, anonActor(), true)
		if _, err := svc.Submit(ctx, actor, &EvaluationSubmission{
			MemeID:          m.ID,
			HumorType:       strPtr("Absurd/Random"),
			Emotions:        []string{"Joy"},
			ContextLevel:    strPtr("None"),
			DescriptionID:   &desc.ID,
			DescriptionVote: strPtr(domain.VoteLike),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// First meme contributes only its placeholder slot; second contributes
	// two description pairs plus the placeholder, so four open pairs total
	lopsided := memes[1]
	seedDescription(t, db, lopsided.ID, anonActor(), true)
	seedDescription(t, db, lopsided.ID, anonActor(), false)

	selector := newSelector(db, 9)
	const draws = 2000
	freq := make(map[string]int)
	for i := 0; i < draws; i++ {
		task, err := selector.NextTask(ctx, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		key := task.Meme.ID + "/placeholder"
		if task.Description != nil {
			key = task.Meme.ID + "/" + task.Description.ID
		}
		freq[key]++
	}

	if len(freq) != 4 {
		t.Fatalf("expected 4 distinct pairs drawn, got %d: %v", len(freq), freq)
	}
	// Each pair should land near 1/4 of the draws. A per-meme draw would
	// put half the mass on the single-slot meme instead.
	for key, n := range freq {
		share := float64(n) / draws
		if share < 0.19 || share > 0.31 {
			t.Errorf("pair %s drawn with share %.3f, want about 0.25", key, share)
		}
	}
	lopsidedShare := 0.0
	for key, n := range freq {
		if strings.HasPrefix(key, lopsided.ID+"/") {
			lopsidedShare += float64(n) / draws
		}
	}
	if lopsidedShare < 0.65 {
		t.Errorf("three-slot meme drawn with share %.3f, want about 0.75", lopsidedShare)
	}
}

func TestAssignmentSelector_RegisteredOwnershipByAccount(t *testing.T) {
	db := newTestDB(t)
	acc := seedAccount(t, db, "dave@example.com")
	actor := domain.Actor{SessionID: anonActor().SessionID, Account: acc}

	// The actor's meme was uploaded under a different session but carries
	// their account id, so ownership must still match
	own := seedMeme(t, db, domain.Actor{SessionID: anonActor().SessionID, Account: acc})
	seedCorpus(t, db, testLimits().MinMemeCount)

	selector := newSelector(db, 8)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		task, err := selector.NextTask(ctx, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Meme.ID == own.ID {
			t.Fatal("selector offered a meme owned by the actor's account")
		}
	}
}
