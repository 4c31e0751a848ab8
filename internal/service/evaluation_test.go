package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Account{},
		&domain.Session{},
		&domain.Meme{},
		&domain.Description{},
		&domain.Evaluation{},
		&domain.DescriptionVote{},
		&domain.MemeLike{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedMeme inserts a meme owned by the given actor with full guess metadata.
func seedMeme(t *testing.T, db *gorm.DB, owner domain.Actor) *domain.Meme {
	t.Helper()
	meme := &domain.Meme{
		ID:              uuid.New().String(),
		StorageKey:      "memes/" + uuid.New().String() + ".png",
		Format:          "png",
		OriginCountry:   "United States",
		Platform:        "Reddit",
		ContentSummary:  "a cat staring at a cucumber",
		TimeRange:       "2021-2025",
		CulturalReach:   "Global",
		HumorType:       "Absurd/Random",
		Emotions:        domain.StringArray{"Joy", "Surprise"},
		ContextLevel:    "None",
		UploaderSession: owner.SessionID,
		AccountID:       owner.AccountID(),
	}
	if err := db.Create(meme).Error; err != nil {
		t.Fatalf("failed to seed meme: %v", err)
	}
	return meme
}

// seedDescription inserts a description authored by the given actor.
func seedDescription(t *testing.T, db *gorm.DB, memeID string, author domain.Actor, original bool) *domain.Description {
	t.Helper()
	desc := &domain.Description{
		ID:            uuid.New().String(),
		MemeID:        memeID,
		Text:          "it subverts the expected reaction",
		IsOriginal:    original,
		AuthorSession: author.SessionID,
		AccountID:     author.AccountID(),
	}
	if err := db.Create(desc).Error; err != nil {
		t.Fatalf("failed to seed description: %v", err)
	}
	return desc
}

func seedAccount(t *testing.T, db *gorm.DB, email string) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		ID:          uuid.New().String(),
		DisplayName: "Test Contributor",
		Email:       email,
	}
	if err := db.Create(acc).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	return acc
}

func anonActor() domain.Actor {
	return domain.Actor{SessionID: uuid.New().String()}
}

func strPtr(s string) *string { return &s }

func TestEvaluationService_FirstSubmissionScoresAndCounts(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)

	svc := NewEvaluationService(db, testLimits())
	outcome, err := svc.Submit(context.Background(), evaluator, &EvaluationSubmission{
		MemeID:       meme.ID,
		HumorType:    strPtr("Absurd/Random"),
		Emotions:     []string{"Joy", "Trust"},
		ContextLevel: strPtr("None"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outcome.FirstSubmission {
		t.Error("expected first submission")
	}
	if outcome.HumorMatch == nil || !*outcome.HumorMatch {
		t.Error("expected humor match to be true")
	}
	if outcome.EmotionOverlap == nil || *outcome.EmotionOverlap != 1.0/3.0 {
		t.Errorf("expected emotion overlap 1/3, got %v", outcome.EmotionOverlap)
	}

	var updated domain.Meme
	if err := db.First(&updated, "id = ?", meme.ID).Error; err != nil {
		t.Fatalf("failed to reload meme: %v", err)
	}
	if updated.EvaluationCount != 1 {
		t.Errorf("expected evaluation count 1, got %d", updated.EvaluationCount)
	}
}

func TestEvaluationService_RepeatSubmissionMergesWithoutRecount(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, evaluator, &EvaluationSubmission{
		MemeID:    meme.ID,
		HumorType: strPtr("Relatability"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := svc.Submit(ctx, evaluator, &EvaluationSubmission{
		MemeID:   meme.ID,
		Emotions: []string{"Joy", "Surprise"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.FirstSubmission {
		t.Error("expected repeat submission, got first")
	}
	if outcome.EmotionOverlap == nil || *outcome.EmotionOverlap != 1.0 {
		t.Errorf("expected emotion overlap 1.0, got %v", outcome.EmotionOverlap)
	}
	// Earlier humor guess survives the merge
	if outcome.HumorMatch == nil || *outcome.HumorMatch {
		t.Error("expected earlier false humor match to survive")
	}

	var evalCount int64
	if err := db.Model(&domain.Evaluation{}).Count(&evalCount).Error; err != nil {
		t.Fatalf("failed to count evaluations: %v", err)
	}
	if evalCount != 1 {
		t.Errorf("expected one evaluation row, got %d", evalCount)
	}

	var updated domain.Meme
	if err := db.First(&updated, "id = ?", meme.ID).Error; err != nil {
		t.Fatalf("failed to reload meme: %v", err)
	}
	if updated.EvaluationCount != 1 {
		t.Errorf("expected evaluation count to stay 1, got %d", updated.EvaluationCount)
	}
}

func TestEvaluationService_SelfEvaluationRejected(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	meme := seedMeme(t, db, uploader)
	svc := NewEvaluationService(db, testLimits())

	_, err := svc.Submit(context.Background(), uploader, &EvaluationSubmission{
		MemeID:    meme.ID,
		HumorType: strPtr("Absurd/Random"),
	})
	if !errors.Is(err, ErrSelfEvaluation) {
		t.Errorf("expected ErrSelfEvaluation, got %v", err)
	}
}

func TestEvaluationService_ValidationFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()
	actor := anonActor()

	tests := []struct {
		name string
		sub  *EvaluationSubmission
	}{
		{
			name: "missing meme id",
			sub:  &EvaluationSubmission{HumorType: strPtr("Relatability")},
		},
		{
			name: "empty submission",
			sub:  &EvaluationSubmission{MemeID: "some-meme"},
		},
		{
			name: "unknown humor type",
			sub:  &EvaluationSubmission{MemeID: "some-meme", HumorType: strPtr("Slapstick")},
		},
		{
			name: "unknown emotion",
			sub:  &EvaluationSubmission{MemeID: "some-meme", Emotions: []string{"Nostalgia"}},
		},
		{
			name: "vote without description id",
			sub:  &EvaluationSubmission{MemeID: "some-meme", DescriptionVote: strPtr("like")},
		},
		{
			name: "invalid vote value",
			sub: &EvaluationSubmission{
				MemeID:          "some-meme",
				DescriptionID:   strPtr("some-desc"),
				DescriptionVote: strPtr("meh"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, actor, tt.sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEvaluationService_VoteLastWins(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)
	desc := seedDescription(t, db, meme.ID, uploader, true)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, evaluator, &EvaluationSubmission{
		MemeID:          meme.ID,
		DescriptionID:   &desc.ID,
		DescriptionVote: strPtr(domain.VoteLike),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(ctx, evaluator, &EvaluationSubmission{
		MemeID:          meme.ID,
		DescriptionID:   &desc.ID,
		DescriptionVote: strPtr(domain.VoteDislike),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var voteCount int64
	if err := db.Model(&domain.DescriptionVote{}).Count(&voteCount).Error; err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	if voteCount != 1 {
		t.Errorf("expected one vote row, got %d", voteCount)
	}

	var updated domain.Description
	if err := db.First(&updated, "id = ?", desc.ID).Error; err != nil {
		t.Fatalf("failed to reload description: %v", err)
	}
	if updated.Likes != 0 || updated.Dislikes != 1 {
		t.Errorf("expected tally 0 likes / 1 dislike, got %d / %d", updated.Likes, updated.Dislikes)
	}
}

func TestEvaluationService_OwnDescriptionVoteRejected(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)
	desc := seedDescription(t, db, meme.ID, evaluator, false)
	svc := NewEvaluationService(db, testLimits())

	_, err := svc.Submit(context.Background(), evaluator, &EvaluationSubmission{
		MemeID:          meme.ID,
		DescriptionID:   &desc.ID,
		DescriptionVote: strPtr(domain.VoteLike),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error for own-description vote, got %v", err)
	}
}

func TestEvaluationService_DescriptionCapWarnsWithoutFailing(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)
	limits := testLimits()
	for i := 0; i < limits.MaxDescriptionsPerMeme; i++ {
		seedDescription(t, db, meme.ID, anonActor(), i == 0)
	}
	svc := NewEvaluationService(db, limits)

	outcome, err := svc.Submit(context.Background(), evaluator, &EvaluationSubmission{
		MemeID:             meme.ID,
		HumorType:          strPtr("Absurd/Random"),
		NewDescriptionText: "one description too many",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.DescriptionRejected {
		t.Error("expected description to be rejected at the cap")
	}
	if outcome.DescriptionSaved {
		t.Error("expected description not to be saved at the cap")
	}
	// The humor guess still lands
	if outcome.HumorMatch == nil || !*outcome.HumorMatch {
		t.Error("expected humor facet to be persisted despite the cap warning")
	}

	var descCount int64
	if err := db.Model(&domain.Description{}).Where("meme_id = ?", meme.ID).Count(&descCount).Error; err != nil {
		t.Fatalf("failed to count descriptions: %v", err)
	}
	if descCount != int64(limits.MaxDescriptionsPerMeme) {
		t.Errorf("expected description count to stay at %d, got %d", limits.MaxDescriptionsPerMeme, descCount)
	}
}

func TestEvaluationService_NewDescriptionSavedUnderCap(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	evaluator := anonActor()
	meme := seedMeme(t, db, uploader)
	seedDescription(t, db, meme.ID, uploader, true)
	svc := NewEvaluationService(db, testLimits())

	outcome, err := svc.Submit(context.Background(), evaluator, &EvaluationSubmission{
		MemeID:             meme.ID,
		NewDescriptionText: "  the cat expects danger that never comes  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.DescriptionSaved {
		t.Error("expected description to be saved")
	}

	var saved domain.Description
	if err := db.First(&saved, "author_session = ?", evaluator.SessionID).Error; err != nil {
		t.Fatalf("failed to load saved description: %v", err)
	}
	if saved.Text != "the cat expects danger that never comes" {
		t.Errorf("expected trimmed text, got %q", saved.Text)
	}
	if saved.IsOriginal {
		t.Error("expected supplementary description, got original")
	}
}

func TestEvaluationService_RegisteredCountersAndAccuracy(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	meme := seedMeme(t, db, uploader)
	acc := seedAccount(t, db, "carol@example.com")
	evaluator := domain.Actor{SessionID: uuid.New().String(), Account: acc}
	svc := NewEvaluationService(db, testLimits())

	if _, err := svc.Submit(context.Background(), evaluator, &EvaluationSubmission{
		MemeID:       meme.ID,
		HumorType:    strPtr("Absurd/Random"),
		Emotions:     []string{"Joy", "Surprise"},
		ContextLevel: strPtr("None"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var updated domain.Account
	if err := db.First(&updated, "id = ?", acc.ID).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if updated.TotalEvaluations != 1 {
		t.Errorf("expected total evaluations 1, got %d", updated.TotalEvaluations)
	}
	// Perfect humor match and perfect overlap score 1.0
	if updated.EvaluationAccuracy != 1.0 {
		t.Errorf("expected accuracy 1.0, got %v", updated.EvaluationAccuracy)
	}
}

func TestEvaluationService_MemeNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewEvaluationService(db, testLimits())

	_, err := svc.Submit(context.Background(), anonActor(), &EvaluationSubmission{
		MemeID:    uuid.New().String(),
		HumorType: strPtr("Relatability"),
	})
	if !errors.Is(err, ErrMemeNotFound) {
		t.Errorf("expected ErrMemeNotFound, got %v", err)
	}
}

func TestEvaluationService_ToggleLike(t *testing.T) {
	db := newTestDB(t)
	uploader := anonActor()
	actor := anonActor()
	meme := seedMeme(t, db, uploader)
	svc := NewEvaluationService(db, testLimits())
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, actor, meme.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !liked {
		t.Error("expected meme to be liked after first toggle")
	}

	liked, err = svc.ToggleLike(ctx, actor, meme.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liked {
		t.Error("expected meme to be unliked after second toggle")
	}

	var updated domain.Meme
	if err := db.First(&updated, "id = ?", meme.ID).Error; err != nil {
		t.Fatalf("failed to reload meme: %v", err)
	}
	if updated.LikeCount != 0 {
		t.Errorf("expected like count 0, got %d", updated.LikeCount)
	}
}
