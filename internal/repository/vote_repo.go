package repository

import (
	"context"
	"errors"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// VoteRepository handles description vote and meme like data operations.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VoteRepository: repository instance bound to db.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func voteActorScope(q *gorm.DB, actor domain.Actor) *gorm.DB {
	if actor.IsRegistered() {
		return q.Where("account_id = ?", actor.Account.ID)
	}
	return q.Where("voter_session = ? AND account_id IS NULL", actor.SessionID)
}

// Create inserts a new vote record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - vote: vote record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *VoteRepository) Create(ctx context.Context, vote *domain.DescriptionVote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

// Update updates an existing vote record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - vote: vote record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *VoteRepository) Update(ctx context.Context, vote *domain.DescriptionVote) error {
	return r.db.WithContext(ctx).Save(vote).Error
}

// GetByActorAndDescription retrieves the actor's vote on a description, or nil
// if no vote has been recorded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: voting actor.
//   - descriptionID: voted description ID.
// Returns:
//   - *domain.DescriptionVote: vote record, nil when absent.
//   - error: non-nil if the lookup fails.
func (r *VoteRepository) GetByActorAndDescription(ctx context.Context, actor domain.Actor, descriptionID string) (*domain.DescriptionVote, error) {
	var vote domain.DescriptionVote
	q := voteActorScope(r.db.WithContext(ctx), actor).Where("description_id = ?", descriptionID)
	if err := q.First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// VotedDescriptionIDs retrieves the ids of descriptions the actor has voted on.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: voting actor.
// Returns:
//   - []string: description ids with a recorded vote from the actor.
//   - error: non-nil if the query fails.
func (r *VoteRepository) VotedDescriptionIDs(ctx context.Context, actor domain.Actor) ([]string, error) {
	var ids []string
	q := voteActorScope(r.db.WithContext(ctx).Model(&domain.DescriptionVote{}), actor)
	if err := q.Pluck("description_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// TallyByDescription counts likes and dislikes for a description.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - descriptionID: description ID to tally.
// Returns:
//   - int64: like count.
//   - int64: dislike count.
//   - error: non-nil if the query fails.
func (r *VoteRepository) TallyByDescription(ctx context.Context, descriptionID string) (int64, int64, error) {
	var likes, dislikes int64
	if err := r.db.WithContext(ctx).Model(&domain.DescriptionVote{}).
		Where("description_id = ? AND vote = ?", descriptionID, domain.VoteLike).
		Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&domain.DescriptionVote{}).
		Where("description_id = ? AND vote = ?", descriptionID, domain.VoteDislike).
		Count(&dislikes).Error; err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

// GetLike retrieves the actor's like marker on a meme, or nil if absent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: liking actor.
//   - memeID: liked meme ID.
// Returns:
//   - *domain.MemeLike: like record, nil when absent.
//   - error: non-nil if the lookup fails.
func (r *VoteRepository) GetLike(ctx context.Context, actor domain.Actor, memeID string) (*domain.MemeLike, error) {
	var like domain.MemeLike
	q := r.db.WithContext(ctx).Where("meme_id = ?", memeID)
	if actor.IsRegistered() {
		q = q.Where("account_id = ?", actor.Account.ID)
	} else {
		q = q.Where("session = ? AND account_id IS NULL", actor.SessionID)
	}
	if err := q.First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// CreateLike inserts a new like marker.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - like: like record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *VoteRepository) CreateLike(ctx context.Context, like *domain.MemeLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteLike removes a like marker by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: like record ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *VoteRepository) DeleteLike(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.MemeLike{}, "id = ?", id).Error
}

// CountLikesByMeme counts like markers on a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: liked meme ID.
// Returns:
//   - int64: number of like records.
//   - error: non-nil if the query fails.
func (r *VoteRepository) CountLikesByMeme(ctx context.Context, memeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.MemeLike{}).
		Where("meme_id = ?", memeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
