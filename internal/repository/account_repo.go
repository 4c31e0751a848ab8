package repository

import (
	"context"
	"strings"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// AccountRepository handles registered account data operations.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *AccountRepository: repository instance bound to db.
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - account: account record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Update updates an existing account record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - account: account record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// GetByID retrieves an account by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: account ID.
// Returns:
//   - *domain.Account: account record if found.
//   - error: non-nil if lookup fails.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByEmail retrieves an account by email, matched case-insensitively.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - email: account email address.
// Returns:
//   - *domain.Account: account record if found.
//   - error: non-nil if lookup fails.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).
		First(&account, "lower(email) = ?", strings.ToLower(email)).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Count returns the total number of registered accounts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of account records.
//   - error: non-nil if the query fails.
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountWithFewerEvaluations counts accounts with strictly fewer evaluations
// than the given total. Used for contributor rank percentiles.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - total: evaluation total to compare against.
// Returns:
//   - int64: number of accounts below the total.
//   - error: non-nil if the query fails.
func (r *AccountRepository) CountWithFewerEvaluations(ctx context.Context, total int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("total_evaluations < ?", total).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
