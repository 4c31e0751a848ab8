package service

import (
	"context"
	"testing"

	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

func newStats(db *gorm.DB) *StatsService {
	return NewStatsService(
		repository.NewMemeRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewAccountRepository(db),
	)
}

func TestStatsService_Global(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEvaluationService(db, testLimits())

	meme := seedMeme(t, db, anonActor())
	seedAccount(t, db, "olga@example.com")
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, anonActor(), &EvaluationSubmission{
			MemeID:    meme.ID,
			HumorType: strPtr("Relatability"),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats, err := newStats(db).Global(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalMemes != 1 {
		t.Errorf("expected 1 meme, got %d", stats.TotalMemes)
	}
	if stats.TotalEvaluations != 3 {
		t.Errorf("expected 3 evaluations, got %d", stats.TotalEvaluations)
	}
	if stats.UniqueEvaluators != 3 {
		t.Errorf("expected 3 unique evaluators, got %d", stats.UniqueEvaluators)
	}
	if stats.RegisteredAccounts != 1 {
		t.Errorf("expected 1 account, got %d", stats.RegisteredAccounts)
	}
}

func TestStatsService_Distributions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedMeme(t, db, anonActor())
	seedMeme(t, db, anonActor())

	dists, err := newStats(db).Distributions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	platforms, ok := dists["platform"]
	if !ok {
		t.Fatal("expected a platform distribution")
	}
	if len(platforms) != 1 || platforms[0].Value != "Reddit" || platforms[0].Count != 2 {
		t.Errorf("expected Reddit with count 2, got %+v", platforms)
	}
}

func TestStatsService_MemeAnalyticsThreshold(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEvaluationService(db, testLimits())

	scored := seedMeme(t, db, anonActor())
	sparse := seedMeme(t, db, anonActor())

	// Three correct-humor, full-overlap evaluations for the scored meme
	for i := 0; i < analyticsMinEvaluations; i++ {
		if _, err := svc.Submit(ctx, anonActor(), &EvaluationSubmission{
			MemeID:    scored.ID,
			HumorType: strPtr("Absurd/Random"),
			Emotions:  []string{"Joy", "Surprise"},
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// A single evaluation keeps the sparse meme below the threshold
	if _, err := svc.Submit(ctx, anonActor(), &EvaluationSubmission{
		MemeID:    sparse.ID,
		HumorType: strPtr("Relatability"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := newStats(db).MemeAnalytics(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one analytics row, got %d", len(rows))
	}
	row := rows[0]
	if row.MemeID != scored.ID {
		t.Errorf("expected analytics for the well-evaluated meme, got %q", row.MemeID)
	}
	if row.Accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0, got %v", row.Accuracy)
	}
	if row.Difficulty != 0.0 {
		t.Errorf("expected difficulty 0.0, got %v", row.Difficulty)
	}
}

func TestStatsService_ExportStripsIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEvaluationService(db, testLimits())

	meme := seedMeme(t, db, anonActor())
	if _, err := svc.Submit(ctx, anonActor(), &EvaluationSubmission{
		MemeID:    meme.ID,
		HumorType: strPtr("Absurd/Random"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	export, err := newStats(db).Export(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(export.Memes) != 1 {
		t.Fatalf("expected one exported meme, got %d", len(export.Memes))
	}
	if len(export.Evaluations) != 1 {
		t.Fatalf("expected one exported evaluation, got %d", len(export.Evaluations))
	}
	if export.Evaluations[0].Registered {
		t.Error("expected anonymous evaluation to be marked unregistered")
	}
	if export.Evaluations[0].HumorMatch == nil || !*export.Evaluations[0].HumorMatch {
		t.Error("expected humor match to be exported")
	}
}

func TestStatsService_ProfilePercentile(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	top := seedAccount(t, db, "pia@example.com")
	if err := db.Model(top).Update("total_evaluations", 10).Error; err != nil {
		t.Fatalf("failed to set counters: %v", err)
	}
	top.TotalEvaluations = 10
	for _, email := range []string{"q@example.com", "r@example.com"} {
		seedAccount(t, db, email)
	}

	profile, err := newStats(db).ProfileFor(ctx, top)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two of the other two accounts rank below: 100th percentile
	if profile.RankPercentile != 100 {
		t.Errorf("expected rank percentile 100, got %v", profile.RankPercentile)
	}
}
