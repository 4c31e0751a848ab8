package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/repository"
)

// IdentityService resolves the current visitor to an Actor value: an anonymous
// session or a registered account. Absence of an account is a normal state,
// never an error.
type IdentityService struct {
	sessionRepo *repository.SessionRepository
	accountRepo *repository.AccountRepository
}

// NewIdentityService creates a new identity service.
// Parameters:
//   - sessionRepo: repository for session records.
//   - accountRepo: repository for account records.
// Returns:
//   - *IdentityService: initialized service.
func NewIdentityService(
	sessionRepo *repository.SessionRepository,
	accountRepo *repository.AccountRepository,
) *IdentityService {
	return &IdentityService{
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
	}
}

// Resolve maps the visitor's session token to an Actor, minting a fresh
// session when the token is empty or unknown.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sessionID: session token from the client, possibly empty.
// Returns:
//   - domain.Actor: resolved actor.
//   - bool: true when a new session was minted and must be set on the client.
//   - error: non-nil if persistence fails.
func (s *IdentityService) Resolve(ctx context.Context, sessionID string) (domain.Actor, bool, error) {
	if sessionID != "" {
		sess, err := s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return domain.Actor{}, false, fmt.Errorf("failed to load session: %w", err)
		}
		if sess != nil {
			_ = s.sessionRepo.Touch(ctx, sess.ID)
			actor := domain.Actor{SessionID: sess.ID}
			if sess.AccountID != nil {
				account, err := s.accountRepo.GetByID(ctx, *sess.AccountID)
				if err != nil {
					// A dangling binding degrades to anonymous rather than failing the request
					logger.CtxWarn(ctx, "Session bound to missing account: session_id=%s, account_id=%s", sess.ID, *sess.AccountID)
				} else {
					actor.Account = account
				}
			}
			return actor, false, nil
		}
	}

	sess := &domain.Session{
		ID:         uuid.New().String(),
		LastSeenAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return domain.Actor{}, false, fmt.Errorf("failed to create session: %w", err)
	}
	logger.CtxDebug(ctx, "Minted new anonymous session: session_id=%s", sess.ID)
	return domain.Actor{SessionID: sess.ID}, true, nil
}

// Logout detaches any bound account from the session. The session itself
// survives so the visitor continues as anonymous.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sessionID: session token to unbind.
// Returns:
//   - error: non-nil if the update fails.
func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Unbind(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to unbind session: %w", err)
	}
	return nil
}
