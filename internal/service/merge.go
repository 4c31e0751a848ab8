package service

import (
	"context"
	"fmt"

	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"gorm.io/gorm"
)

// MergeService reattributes anonymous-session contributions to an account
// when the visitor logs in or registers.
type MergeService struct {
	db *gorm.DB
}

// NewMergeService creates a new merge service.
// Parameters:
//   - db: database handle for the merge transaction.
// Returns:
//   - *MergeService: initialized service.
func NewMergeService(db *gorm.DB) *MergeService {
	return &MergeService{db: db}
}

// Merge reassigns every unattributed contribution of the session to the
// account, then rebuilds the account's denormalized counters by full recount.
// The recount, rather than an additive update, makes a repeated merge a no-op.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sessionID: anonymous session whose contributions to claim.
//   - accountID: receiving account.
// Returns:
//   - error: non-nil if the merge transaction fails.
func (s *MergeService) Merge(ctx context.Context, sessionID, accountID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reassign := []struct {
			model      interface{}
			sessionCol string
		}{
			{&domain.Meme{}, "uploader_session"},
			{&domain.Evaluation{}, "evaluator_session"},
			{&domain.Description{}, "author_session"},
			{&domain.DescriptionVote{}, "voter_session"},
			{&domain.MemeLike{}, "session"},
		}
		for _, r := range reassign {
			if err := tx.WithContext(ctx).Model(r.model).
				Where(r.sessionCol+" = ? AND account_id IS NULL", sessionID).
				Update("account_id", accountID).Error; err != nil {
				return fmt.Errorf("failed to reassign contributions: %w", err)
			}
		}
		return recountAccount(ctx, tx, accountID)
	})
	if err != nil {
		return fmt.Errorf("failed to merge session %s into account %s: %w", sessionID, accountID, err)
	}

	logger.CtxInfo(ctx, "Identity merge completed: session_id=%s, account_id=%s", sessionID, accountID)
	return nil
}
