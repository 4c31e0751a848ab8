package repository

import (
	"context"
	"errors"
	"time"

	"github.com/memelab/memeqa/internal/domain"
	"gorm.io/gorm"
)

// SessionRepository handles visitor session data operations.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SessionRepository: repository instance bound to db.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetByID retrieves a session by its ID, or nil if unknown.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: session ID.
// Returns:
//   - *domain.Session: session record, nil when absent.
//   - error: non-nil if the lookup fails.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	if err := r.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

// Create inserts a new session record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sess: session record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *SessionRepository) Create(ctx context.Context, sess *domain.Session) error {
	return r.db.WithContext(ctx).Create(sess).Error
}

// Touch updates the session's last-seen timestamp.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: session ID.
// Returns:
//   - error: non-nil if the update fails.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}

// Bind attaches an account to a session.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: session ID.
//   - accountID: account to bind.
// Returns:
//   - error: non-nil if the update fails.
func (r *SessionRepository) Bind(ctx context.Context, id, accountID string) error {
	return r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", id).
		Update("account_id", accountID).Error
}

// Unbind detaches any account from a session.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: session ID.
// Returns:
//   - error: non-nil if the update fails.
func (r *SessionRepository) Unbind(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", id).
		Update("account_id", nil).Error
}
