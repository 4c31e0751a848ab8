package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/mail"
	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

// RegistrationSubmission is the typed payload of an account registration.
type RegistrationSubmission struct {
	DisplayName        string   `json:"display_name"`
	Email              string   `json:"email"`
	Country            string   `json:"country"`
	Languages          []string `json:"languages"`
	BirthYear          int      `json:"birth_year"`
	NotifyOnMilestones bool     `json:"notify_on_milestones"`
}

// AuthService handles registration and the emailed login-link flow. Logging in
// or registering binds the visitor's session to the account and merges any
// anonymous contributions made under that session.
type AuthService struct {
	accountRepo *repository.AccountRepository
	sessionRepo *repository.SessionRepository
	tokens      *TokenService
	mailer      mail.Mailer
	merge       *MergeService
	baseURL     string
}

// NewAuthService creates a new auth service.
// Parameters:
//   - accountRepo: repository for account records.
//   - sessionRepo: repository for session records.
//   - tokens: login token issuer/verifier.
//   - mailer: outbound mail delivery.
//   - merge: identity merge service.
//   - baseURL: public base URL used to build login links.
// Returns:
//   - *AuthService: initialized service.
func NewAuthService(
	accountRepo *repository.AccountRepository,
	sessionRepo *repository.SessionRepository,
	tokens *TokenService,
	mailer mail.Mailer,
	merge *MergeService,
	baseURL string,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		mailer:      mailer,
		merge:       merge,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

// Register creates an account, binds the current session to it, and claims the
// session's anonymous contributions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: current (anonymous) actor.
//   - sub: registration payload.
// Returns:
//   - *domain.Account: the created account.
//   - error: validation error, ErrAccountExists, or a persistence failure.
func (s *AuthService) Register(ctx context.Context, actor domain.Actor, sub *RegistrationSubmission) (*domain.Account, error) {
	if strings.TrimSpace(sub.DisplayName) == "" {
		return nil, NewValidationError("display_name", "required")
	}
	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "valid email required")
	}

	if _, err := s.accountRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	account := &domain.Account{
		ID:                 uuid.New().String(),
		DisplayName:        strings.TrimSpace(sub.DisplayName),
		Email:              email,
		Country:            sub.Country,
		Languages:          domain.StringArray(sub.Languages),
		BirthYear:          sub.BirthYear,
		NotifyOnMilestones: sub.NotifyOnMilestones,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.bindAndMerge(ctx, actor.SessionID, account.ID); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Account registered: account_id=%s", account.ID)
	return s.accountRepo.GetByID(ctx, account.ID)
}

// RequestLogin issues a login token for the account with the given email and
// mails the login link.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - email: address to send the login link to.
// Returns:
//   - error: ErrAccountNotFound, or a token/mail failure.
func (s *AuthService) RequestLogin(ctx context.Context, email string) error {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.tokens.Generate(account.Email)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/api/v1/auth/login?token=%s", s.baseURL, token)

	body := fmt.Sprintf("Hi %s,\n\nUse this link to sign in to MemeQA (valid for 24 hours):\n\n%s\n",
		account.DisplayName, link)
	if err := s.mailer.Send(ctx, account.Email, "Your MemeQA login link", body); err != nil {
		return fmt.Errorf("failed to send login mail: %w", err)
	}

	logger.CtxInfo(ctx, "Login link issued: account_id=%s", account.ID)
	return nil
}

// LoginWithToken verifies a login token, binds the session to the account, and
// claims the session's anonymous contributions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sessionID: current session token.
//   - token: login token from the emailed link.
// Returns:
//   - *domain.Account: the logged-in account with refreshed counters.
//   - error: ErrInvalidToken, ErrAccountNotFound, or a persistence failure.
func (s *AuthService) LoginWithToken(ctx context.Context, sessionID, token string) (*domain.Account, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.bindAndMerge(ctx, sessionID, account.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	logger.CtxInfo(ctx, "Login completed: account_id=%s", account.ID)
	return s.accountRepo.GetByID(ctx, account.ID)
}

func (s *AuthService) bindAndMerge(ctx context.Context, sessionID, accountID string) error {
	if err := s.sessionRepo.Bind(ctx, sessionID, accountID); err != nil {
		return fmt.Errorf("failed to bind session: %w", err)
	}
	if err := s.merge.Merge(ctx, sessionID, accountID); err != nil {
		return err
	}
	return nil
}
