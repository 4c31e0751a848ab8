package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

// EvaluationSubmission is the typed payload of one evaluation form submit.
// All fields except MemeID are optional; partial submissions are legal and
// merged into any existing evaluation row for the same (actor, meme).
type EvaluationSubmission struct {
	MemeID             string   `json:"meme_id"`
	HumorType          *string  `json:"humor_type,omitempty"`
	Emotions           []string `json:"emotions,omitempty"`
	ContextLevel       *string  `json:"context_level,omitempty"`
	DescriptionID      *string  `json:"description_id,omitempty"`
	DescriptionVote    *string  `json:"description_vote,omitempty"`
	NewDescriptionText string   `json:"new_description_text,omitempty"`
}

// EvaluationOutcome reports what a submission did, including correctness
// feedback. DescriptionRejected is a warning, not a failure: the rest of the
// submission is still persisted when the description cap is hit.
type EvaluationOutcome struct {
	FirstSubmission     bool     `json:"first_submission"`
	HumorMatch          *bool    `json:"humor_match,omitempty"`
	EmotionOverlap      *float64 `json:"emotion_overlap,omitempty"`
	VoteRecorded        bool     `json:"vote_recorded"`
	DescriptionSaved    bool     `json:"description_saved"`
	DescriptionRejected bool     `json:"description_rejected"`
}

// EvaluationService validates and persists evaluation submissions. All writes
// of one submission share a single transaction: evaluation upsert, vote
// upsert, new-description insert, and counter updates succeed or fail
// together.
type EvaluationService struct {
	db     *gorm.DB
	limits config.LimitsConfig
}

// NewEvaluationService creates a new evaluation service.
// Parameters:
//   - db: database handle for transactional writes.
//   - limits: contribution limits including the description cap.
// Returns:
//   - *EvaluationService: initialized service.
func NewEvaluationService(db *gorm.DB, limits config.LimitsConfig) *EvaluationService {
	return &EvaluationService{db: db, limits: limits}
}

// Submit records one actor's evaluation of a meme.
//
// Upsert semantics: the first submission for an (actor, meme) pair inserts the
// evaluation row and increments the registered ledger counter once; later
// submissions only merge the newly provided facets. Self-evaluation is
// rejected here regardless of what the selector offered, since selector
// filtering is a convenience, not a boundary.
//
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: submitting actor.
//   - sub: typed submission payload.
// Returns:
//   - *EvaluationOutcome: feedback and warning flags.
//   - error: validation error, ErrMemeNotFound, ErrSelfEvaluation, or a
//     persistence failure after rollback.
func (s *EvaluationService) Submit(ctx context.Context, actor domain.Actor, sub *EvaluationSubmission) (*EvaluationOutcome, error) {
	if err := s.validate(sub); err != nil {
		return nil, err
	}

	outcome := &EvaluationOutcome{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memeRepo := repository.NewMemeRepository(tx)
		meme, err := memeRepo.GetByID(ctx, sub.MemeID)
		if err != nil {
			return ErrMemeNotFound
		}
		if meme.OwnedBy(actor) {
			return ErrSelfEvaluation
		}

		if err := s.upsertEvaluation(ctx, tx, actor, meme, sub, outcome); err != nil {
			return err
		}
		if err := s.upsertVote(ctx, tx, actor, meme, sub, outcome); err != nil {
			return err
		}
		if err := s.insertDescription(ctx, tx, actor, meme, sub, outcome); err != nil {
			return err
		}
		if outcome.FirstSubmission {
			if err := s.bumpCounters(ctx, tx, actor, meme); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Evaluation recorded: meme_id=%s, first=%t, vote=%t, new_description=%t",
		sub.MemeID, outcome.FirstSubmission, outcome.VoteRecorded, outcome.DescriptionSaved)
	return outcome, nil
}

// validate rejects malformed submissions before any write happens.
func (s *EvaluationService) validate(sub *EvaluationSubmission) error {
	if sub.MemeID == "" {
		return NewValidationError("meme_id", "required")
	}
	if sub.HumorType == nil && len(sub.Emotions) == 0 && sub.ContextLevel == nil &&
		sub.DescriptionVote == nil && strings.TrimSpace(sub.NewDescriptionText) == "" {
		return NewValidationError("submission", "no evaluation fields provided")
	}
	if sub.HumorType != nil && !domain.ValidHumorType(*sub.HumorType) {
		return NewValidationError("humor_type", "unknown humor type")
	}
	if len(sub.Emotions) > 0 && !domain.ValidEmotions(sub.Emotions) {
		return NewValidationError("emotions", "unknown emotion tag")
	}
	if sub.ContextLevel != nil && !domain.ValidContextLevel(*sub.ContextLevel) {
		return NewValidationError("context_level", "unknown context level")
	}
	if (sub.DescriptionID == nil) != (sub.DescriptionVote == nil) {
		return NewValidationError("description_vote", "description_id and description_vote must be provided together")
	}
	if sub.DescriptionVote != nil &&
		*sub.DescriptionVote != domain.VoteLike && *sub.DescriptionVote != domain.VoteDislike {
		return NewValidationError("description_vote", "must be like or dislike")
	}
	return nil
}

// upsertEvaluation merges the guess facets into the (actor, meme) row,
// scoring the newly provided ones against the meme's recorded metadata.
func (s *EvaluationService) upsertEvaluation(ctx context.Context, tx *gorm.DB, actor domain.Actor, meme *domain.Meme, sub *EvaluationSubmission, outcome *EvaluationOutcome) error {
	evalRepo := repository.NewEvaluationRepository(tx)
	eval, err := evalRepo.GetByActorAndMeme(ctx, actor, meme.ID)
	if err != nil {
		return fmt.Errorf("failed to load evaluation: %w", err)
	}

	if eval == nil {
		outcome.FirstSubmission = true
		eval = &domain.Evaluation{
			ID:               uuid.New().String(),
			MemeID:           meme.ID,
			EvaluatorSession: actor.SessionID,
			AccountID:        actor.AccountID(),
		}
	}

	// COALESCE merge: only provided facets change, recorded ones survive
	if sub.HumorType != nil {
		eval.HumorType = sub.HumorType
		eval.HumorMatch = scoreHumor(*sub.HumorType, meme.HumorType)
	}
	if len(sub.Emotions) > 0 {
		eval.Emotions = domain.StringArray(sub.Emotions)
		overlap := emotionOverlap(sub.Emotions, meme.Emotions)
		eval.EmotionOverlap = &overlap
	}
	if sub.ContextLevel != nil {
		eval.ContextLevel = sub.ContextLevel
	}
	eval.UpdatedAt = time.Now()

	if outcome.FirstSubmission {
		if err := evalRepo.Create(ctx, eval); err != nil {
			return fmt.Errorf("failed to insert evaluation: %w", err)
		}
	} else {
		if err := evalRepo.Update(ctx, eval); err != nil {
			return fmt.Errorf("failed to update evaluation: %w", err)
		}
	}

	outcome.HumorMatch = eval.HumorMatch
	outcome.EmotionOverlap = eval.EmotionOverlap
	return nil
}

// upsertVote records the description vote, last value wins, and refreshes the
// description's tally mirror.
func (s *EvaluationService) upsertVote(ctx context.Context, tx *gorm.DB, actor domain.Actor, meme *domain.Meme, sub *EvaluationSubmission, outcome *EvaluationOutcome) error {
	if sub.DescriptionID == nil {
		return nil
	}

	descRepo := repository.NewDescriptionRepository(tx)
	desc, err := descRepo.GetByID(ctx, *sub.DescriptionID)
	if err != nil {
		return NewValidationError("description_id", "unknown description")
	}
	if desc.MemeID != meme.ID {
		return NewValidationError("description_id", "description does not belong to this meme")
	}
	if desc.OwnedBy(actor) {
		return NewValidationError("description_id", "cannot vote on your own description")
	}

	voteRepo := repository.NewVoteRepository(tx)
	vote, err := voteRepo.GetByActorAndDescription(ctx, actor, desc.ID)
	if err != nil {
		return fmt.Errorf("failed to load vote: %w", err)
	}
	if vote == nil {
		vote = &domain.DescriptionVote{
			ID:            uuid.New().String(),
			DescriptionID: desc.ID,
			MemeID:        meme.ID,
			VoterSession:  actor.SessionID,
			AccountID:     actor.AccountID(),
			Vote:          *sub.DescriptionVote,
		}
		if err := voteRepo.Create(ctx, vote); err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	} else {
		vote.Vote = *sub.DescriptionVote
		vote.UpdatedAt = time.Now()
		if err := voteRepo.Update(ctx, vote); err != nil {
			return fmt.Errorf("failed to update vote: %w", err)
		}
	}

	likes, dislikes, err := voteRepo.TallyByDescription(ctx, desc.ID)
	if err != nil {
		return fmt.Errorf("failed to tally votes: %w", err)
	}
	if err := tx.WithContext(ctx).Model(&domain.Description{}).
		Where("id = ?", desc.ID).
		Updates(map[string]interface{}{"likes": likes, "dislikes": dislikes}).Error; err != nil {
		return fmt.Errorf("failed to refresh vote tallies: %w", err)
	}

	outcome.VoteRecorded = true
	return nil
}

// insertDescription adds the supplementary description when the meme is under
// the cap; at or above it the insert is skipped with a warning and the rest of
// the submission stands.
func (s *EvaluationService) insertDescription(ctx context.Context, tx *gorm.DB, actor domain.Actor, meme *domain.Meme, sub *EvaluationSubmission, outcome *EvaluationOutcome) error {
	text := strings.TrimSpace(sub.NewDescriptionText)
	if text == "" {
		return nil
	}

	descRepo := repository.NewDescriptionRepository(tx)
	count, err := descRepo.CountByMeme(ctx, meme.ID)
	if err != nil {
		return fmt.Errorf("failed to count descriptions: %w", err)
	}
	if count >= int64(s.limits.MaxDescriptionsPerMeme) {
		outcome.DescriptionRejected = true
		logger.CtxWarn(ctx, "Description cap reached: meme_id=%s, cap=%d", meme.ID, s.limits.MaxDescriptionsPerMeme)
		return nil
	}

	desc := &domain.Description{
		ID:            uuid.New().String(),
		MemeID:        meme.ID,
		Text:          text,
		IsOriginal:    false,
		AuthorSession: actor.SessionID,
		AccountID:     actor.AccountID(),
	}
	if err := descRepo.Create(ctx, desc); err != nil {
		return fmt.Errorf("failed to insert description: %w", err)
	}
	outcome.DescriptionSaved = true
	return nil
}

// bumpCounters updates the meme's evaluation count and, for registered actors,
// the denormalized account totals. Runs only on the first insert of an
// (actor, meme) pair.
func (s *EvaluationService) bumpCounters(ctx context.Context, tx *gorm.DB, actor domain.Actor, meme *domain.Meme) error {
	if err := tx.WithContext(ctx).Model(&domain.Meme{}).
		Where("id = ?", meme.ID).
		Update("evaluation_count", gorm.Expr("evaluation_count + 1")).Error; err != nil {
		return fmt.Errorf("failed to bump meme evaluation count: %w", err)
	}

	if !actor.IsRegistered() {
		return nil
	}

	accountID := actor.Account.ID
	if err := tx.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", accountID).
		Update("total_evaluations", gorm.Expr("total_evaluations + 1")).Error; err != nil {
		return fmt.Errorf("failed to bump account evaluation counter: %w", err)
	}

	accuracy, err := accountAccuracy(ctx, tx, accountID)
	if err != nil {
		return fmt.Errorf("failed to recompute accuracy: %w", err)
	}
	if err := tx.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", accountID).
		Update("evaluation_accuracy", accuracy).Error; err != nil {
		return fmt.Errorf("failed to store accuracy: %w", err)
	}
	return nil
}

// ToggleLike flips the actor's favorite marker on a meme and refreshes the
// meme's like count. Returns the new liked state.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: toggling actor.
//   - memeID: meme to toggle.
// Returns:
//   - bool: true when the meme is now liked by the actor.
//   - error: ErrMemeNotFound or a persistence failure.
func (s *EvaluationService) ToggleLike(ctx context.Context, actor domain.Actor, memeID string) (bool, error) {
	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memeRepo := repository.NewMemeRepository(tx)
		if _, err := memeRepo.GetByID(ctx, memeID); err != nil {
			return ErrMemeNotFound
		}

		voteRepo := repository.NewVoteRepository(tx)
		existing, err := voteRepo.GetLike(ctx, actor, memeID)
		if err != nil {
			return fmt.Errorf("failed to load like: %w", err)
		}
		if existing != nil {
			if err := voteRepo.DeleteLike(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
			liked = false
		} else {
			like := &domain.MemeLike{
				ID:        uuid.New().String(),
				MemeID:    memeID,
				Session:   actor.SessionID,
				AccountID: actor.AccountID(),
			}
			if err := voteRepo.CreateLike(ctx, like); err != nil {
				return fmt.Errorf("failed to insert like: %w", err)
			}
			liked = true
		}

		count, err := voteRepo.CountLikesByMeme(ctx, memeID)
		if err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		return tx.WithContext(ctx).Model(&domain.Meme{}).
			Where("id = ?", memeID).
			Update("like_count", count).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
