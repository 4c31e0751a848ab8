package repository

import (
	"context"
	"errors"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// EvaluationRepository handles evaluation data operations.
type EvaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository creates a new EvaluationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *EvaluationRepository: repository instance bound to db.
func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// actorScope filters evaluation rows to the given actor. Registered actors
// match on account id, anonymous actors on session id with no account.
func actorScope(q *gorm.DB, actor domain.Actor) *gorm.DB {
	if actor.IsRegistered() {
		return q.Where("account_id = ?", actor.Account.ID)
	}
	return q.Where("evaluator_session = ? AND account_id IS NULL", actor.SessionID)
}

// Create inserts a new evaluation record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - eval: evaluation record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *EvaluationRepository) Create(ctx context.Context, eval *domain.Evaluation) error {
	return r.db.WithContext(ctx).Create(eval).Error
}

// Update updates an existing evaluation record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - eval: evaluation record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *EvaluationRepository) Update(ctx context.Context, eval *domain.Evaluation) error {
	return r.db.WithContext(ctx).Save(eval).Error
}

// GetByActorAndMeme retrieves the actor's evaluation of a meme, or nil if the
// actor has not evaluated it yet.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: evaluating actor.
//   - memeID: evaluated meme ID.
// Returns:
//   - *domain.Evaluation: evaluation record, nil when absent.
//   - error: non-nil if the lookup fails.
func (r *EvaluationRepository) GetByActorAndMeme(ctx context.Context, actor domain.Actor, memeID string) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	q := actorScope(r.db.WithContext(ctx), actor).Where("meme_id = ?", memeID)
	if err := q.First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &eval, nil
}

// ListByActor retrieves all of an actor's evaluations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: evaluating actor.
// Returns:
//   - []domain.Evaluation: evaluation records for the actor.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) ListByActor(ctx context.Context, actor domain.Actor) ([]domain.Evaluation, error) {
	var evals []domain.Evaluation
	q := actorScope(r.db.WithContext(ctx), actor)
	if err := q.Find(&evals).Error; err != nil {
		return nil, err
	}
	return evals, nil
}

// CountByActor counts an actor's evaluation rows. Rows are unique per
// (actor, meme), so this counts evaluated memes, not per-facet submissions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: evaluating actor.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) CountByActor(ctx context.Context, actor domain.Actor) (int64, error) {
	var count int64
	q := actorScope(r.db.WithContext(ctx).Model(&domain.Evaluation{}), actor)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListAll retrieves every evaluation record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Evaluation: all evaluation records.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) ListAll(ctx context.Context) ([]domain.Evaluation, error) {
	var evals []domain.Evaluation
	if err := r.db.WithContext(ctx).Find(&evals).Error; err != nil {
		return nil, err
	}
	return evals, nil
}

// Count returns the total number of evaluation rows.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of evaluation records.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Evaluation{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountDistinctEvaluators counts distinct evaluating identities, registered
// accounts and anonymous sessions combined.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of distinct evaluators.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) CountDistinctEvaluators(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Evaluation{}).
		Distinct("COALESCE(account_id, evaluator_session)").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MemeAccuracy aggregates per-meme scoring across evaluations.
type MemeAccuracy struct {
	MemeID            string
	Evaluations       int64
	AvgHumorMatch     float64
	AvgEmotionOverlap float64
}

// AggregateByMeme computes per-meme evaluation counts and average scores for
// memes with at least minEvaluations scored evaluations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - minEvaluations: minimum evaluation count for a meme to be included.
// Returns:
//   - []MemeAccuracy: per-meme aggregates.
//   - error: non-nil if the query fails.
func (r *EvaluationRepository) AggregateByMeme(ctx context.Context, minEvaluations int) ([]MemeAccuracy, error) {
	var rows []MemeAccuracy
	if err := r.db.WithContext(ctx).Model(&domain.Evaluation{}).
		Select("meme_id, COUNT(*) AS evaluations, "+
			"AVG(CASE WHEN humor_match THEN 1.0 ELSE 0.0 END) AS avg_humor_match, "+
			"AVG(COALESCE(emotion_overlap, 0)) AS avg_emotion_overlap").
		Where("humor_match IS NOT NULL").
		Group("meme_id").
		Having("COUNT(*) >= ?", minEvaluations).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
