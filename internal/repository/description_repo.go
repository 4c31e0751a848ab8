package repository

import (
	"context"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// DescriptionRepository handles description data operations.
type DescriptionRepository struct {
	db *gorm.DB
}

// NewDescriptionRepository creates a new DescriptionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *DescriptionRepository: repository instance bound to db.
func NewDescriptionRepository(db *gorm.DB) *DescriptionRepository {
	return &DescriptionRepository{db: db}
}

// Create inserts a new description record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - desc: description record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *DescriptionRepository) Create(ctx context.Context, desc *domain.Description) error {
	return r.db.WithContext(ctx).Create(desc).Error
}

// GetByID retrieves a description by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: description ID.
// Returns:
//   - *domain.Description: description record if found.
//   - error: non-nil if lookup fails.
func (r *DescriptionRepository) GetByID(ctx context.Context, id string) (*domain.Description, error) {
	var desc domain.Description
	if err := r.db.WithContext(ctx).First(&desc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &desc, nil
}

// ListByMeme retrieves all descriptions attached to a meme, oldest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: owning meme ID.
// Returns:
//   - []domain.Description: matching description records.
//   - error: non-nil if the query fails.
func (r *DescriptionRepository) ListByMeme(ctx context.Context, memeID string) ([]domain.Description, error) {
	var descs []domain.Description
	if err := r.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("created_at ASC").
		Find(&descs).Error; err != nil {
		return nil, err
	}
	return descs, nil
}

// ListByMemes retrieves the descriptions for a set of memes in one query.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeIDs: owning meme IDs.
// Returns:
//   - []domain.Description: matching description records.
//   - error: non-nil if the query fails.
func (r *DescriptionRepository) ListByMemes(ctx context.Context, memeIDs []string) ([]domain.Description, error) {
	if len(memeIDs) == 0 {
		return []domain.Description{}, nil
	}
	var descs []domain.Description
	if err := r.db.WithContext(ctx).
		Where("meme_id IN ?", memeIDs).
		Order("created_at ASC").
		Find(&descs).Error; err != nil {
		return nil, err
	}
	return descs, nil
}

// CountByMeme counts descriptions attached to a meme.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - memeID: owning meme ID.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *DescriptionRepository) CountByMeme(ctx context.Context, memeID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Description{}).
		Where("meme_id = ?", memeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
