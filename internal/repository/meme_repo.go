package repository

import (
	"context"
	"fmt"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// MemeRepository handles meme data operations.
type MemeRepository struct {
	db *gorm.DB
}

// NewMemeRepository creates a new MemeRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *MemeRepository: repository instance bound to db.
func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create inserts a new meme record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - meme: meme record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *MemeRepository) Create(ctx context.Context, meme *domain.Meme) error {
	return r.db.WithContext(ctx).Create(meme).Error
}

// GetByID retrieves a meme by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: meme ID.
// Returns:
//   - *domain.Meme: meme record if found.
//   - error: non-nil if lookup fails.
func (r *MemeRepository) GetByID(ctx context.Context, id string) (*domain.Meme, error) {
	var meme domain.Meme
	if err := r.db.WithContext(ctx).First(&meme, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

// List retrieves memes with pagination, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Meme: matching meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) List(ctx context.Context, limit, offset int) ([]domain.Meme, error) {
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// ListAll retrieves every meme record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Meme: all meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) ListAll(ctx context.Context) ([]domain.Meme, error) {
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// Count returns the total number of memes in the corpus.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Meme{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByActor counts memes uploaded by the given actor. Anonymous uploads are
// matched on session id with no account attached; registered uploads on
// account id.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: actor whose uploads to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) CountByActor(ctx context.Context, actor domain.Actor) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Meme{})
	if actor.IsRegistered() {
		q = q.Where("account_id = ?", actor.Account.ID)
	} else {
		q = q.Where("uploader_session = ? AND account_id IS NULL", actor.SessionID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// OwnedIDs retrieves the ids of all memes uploaded by the given actor.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: actor whose memes to list.
// Returns:
//   - []string: meme ids owned by the actor.
//   - error: non-nil if the query fails.
func (r *MemeRepository) OwnedIDs(ctx context.Context, actor domain.Actor) ([]string, error) {
	var ids []string
	q := r.db.WithContext(ctx).Model(&domain.Meme{})
	if actor.IsRegistered() {
		q = q.Where("account_id = ?", actor.Account.ID)
	} else {
		q = q.Where("uploader_session = ? AND account_id IS NULL", actor.SessionID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list owned meme ids: %w", err)
	}
	return ids, nil
}

// ListByAccount retrieves memes uploaded by an account, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - accountID: uploading account id.
//   - limit: maximum number of records to return.
// Returns:
//   - []domain.Meme: matching meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Meme, error) {
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&memes).Error; err != nil {
		return nil, err
	}
	return memes, nil
}

// DistributionRow is one bucket of a metadata distribution.
type DistributionRow struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Distribution counts memes grouped by the given metadata column. The column
// name must come from a trusted whitelist, never from user input.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - column: metadata column to group by.
// Returns:
//   - []DistributionRow: buckets sorted by descending count.
//   - error: non-nil if the query fails.
func (r *MemeRepository) Distribution(ctx context.Context, column string) ([]DistributionRow, error) {
	var rows []DistributionRow
	if err := r.db.WithContext(ctx).Model(&domain.Meme{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to compute distribution for %s: %w", column, err)
	}
	return rows, nil
}

// GetByIDs retrieves memes by a list of IDs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: list of meme IDs.
// Returns:
//   - []domain.Meme: matching meme records.
//   - error: non-nil if the query fails.
func (r *MemeRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Meme, error) {
	if len(ids) == 0 {
		return []domain.Meme{}, nil
	}
	var memes []domain.Meme
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&memes).Error; err != nil {
		return nil, fmt.Errorf("failed to get memes by IDs: %w", err)
	}
	return memes, nil
}
