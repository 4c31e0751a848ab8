package service

import (
	"context"
	"fmt"

	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

// LedgerService reports and repairs per-actor contribution totals.
//
// Registered accounts read their denormalized counter fields; anonymous
// sessions are counted from the underlying rows every time. The asymmetry is
// intentional: counters avoid aggregate queries for the hot registered path
// but must always be rebuildable by Recount.
type LedgerService struct {
	db          *gorm.DB
	memeRepo    *repository.MemeRepository
	evalRepo    *repository.EvaluationRepository
	accountRepo *repository.AccountRepository
}

// NewLedgerService creates a new ledger service.
// Parameters:
//   - db: database handle for recount transactions.
//   - memeRepo: repository for meme records.
//   - evalRepo: repository for evaluation records.
//   - accountRepo: repository for account records.
// Returns:
//   - *LedgerService: initialized service.
func NewLedgerService(
	db *gorm.DB,
	memeRepo *repository.MemeRepository,
	evalRepo *repository.EvaluationRepository,
	accountRepo *repository.AccountRepository,
) *LedgerService {
	return &LedgerService{
		db:          db,
		memeRepo:    memeRepo,
		evalRepo:    evalRepo,
		accountRepo: accountRepo,
	}
}

// Counts returns the actor's contribution totals.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: actor to report on.
// Returns:
//   - Counts: uploads, evaluations, and accuracy (nil for anonymous actors).
//   - error: non-nil if a count query fails.
func (s *LedgerService) Counts(ctx context.Context, actor domain.Actor) (Counts, error) {
	if actor.IsRegistered() {
		acc := actor.Account
		accuracy := acc.EvaluationAccuracy
		return Counts{
			Uploads:     acc.TotalSubmissions,
			Evaluations: acc.TotalEvaluations,
			Accuracy:    &accuracy,
		}, nil
	}

	uploads, err := s.memeRepo.CountByActor(ctx, actor)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count uploads: %w", err)
	}
	evals, err := s.evalRepo.CountByActor(ctx, actor)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return Counts{Uploads: int(uploads), Evaluations: int(evals)}, nil
}

// Recount recomputes an account's denormalized counters from the source rows
// and overwrites the stored values. Safe to run repeatedly.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - accountID: account to repair.
// Returns:
//   - error: non-nil if the recount transaction fails.
func (s *LedgerService) Recount(ctx context.Context, accountID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recountAccount(ctx, tx, accountID)
	})
	if err != nil {
		return fmt.Errorf("failed to recount account %s: %w", accountID, err)
	}
	logger.CtxInfo(ctx, "Ledger recount completed: account_id=%s", accountID)
	return nil
}

// recountAccount overwrites an account's counters and accuracy from a full
// recount within the given transaction.
func recountAccount(ctx context.Context, tx *gorm.DB, accountID string) error {
	var uploads, evals int64
	if err := tx.WithContext(ctx).Model(&domain.Meme{}).
		Where("account_id = ?", accountID).
		Count(&uploads).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Model(&domain.Evaluation{}).
		Where("account_id = ?", accountID).
		Count(&evals).Error; err != nil {
		return err
	}

	accuracy, err := accountAccuracy(ctx, tx, accountID)
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"total_submissions":   uploads,
			"total_evaluations":   evals,
			"evaluation_accuracy": accuracy,
		}).Error
}

// accountAccuracy averages the per-evaluation score (half humor match, half
// emotion overlap) over the account's scored evaluations. Unscored rows, such
// as guesses on memes with no recorded humor type, are excluded.
func accountAccuracy(ctx context.Context, tx *gorm.DB, accountID string) (float64, error) {
	var row struct {
		Accuracy *float64
	}
	err := tx.WithContext(ctx).Model(&domain.Evaluation{}).
		Select("AVG(0.5 * (CASE WHEN humor_match THEN 1.0 ELSE 0.0 END) + 0.5 * COALESCE(emotion_overlap, 0)) AS accuracy").
		Where("account_id = ? AND humor_match IS NOT NULL", accountID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Accuracy == nil {
		return 0, nil
	}
	return *row.Accuracy, nil
}
