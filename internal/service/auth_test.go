package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/repository"
	"gorm.io/gorm"
)

// captureMailer records sent messages for assertions.
type captureMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *captureMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to = to
	m.subject = subject
	m.body = body
	m.sent++
	return nil
}

func newAuth(db *gorm.DB, mailer *captureMailer) *AuthService {
	tokens := NewTokenService(config.AuthConfig{SecretKey: "test-secret", TokenTTL: time.Hour})
	return NewAuthService(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		tokens,
		mailer,
		NewMergeService(db),
		"http://localhost:8080/",
	)
}

func seedSession(t *testing.T, db *gorm.DB, actor domain.Actor) {
	t.Helper()
	if err := repository.NewSessionRepository(db).Create(context.Background(), &domain.Session{
		ID: actor.SessionID,
	}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

func TestAuthService_RegisterClaimsSessionWork(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	actor := anonActor()
	seedSession(t, db, actor)
	seedMeme(t, db, actor)

	auth := newAuth(db, &captureMailer{})
	account, err := auth.Register(ctx, actor, &RegistrationSubmission{
		DisplayName: "Kai",
		Email:       "Kai@Example.com",
		Country:     "Germany",
		Languages:   []string{"de", "en"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Email != "kai@example.com" {
		t.Errorf("expected lowercased email, got %q", account.Email)
	}
	// The anonymous upload is claimed during registration
	if account.TotalSubmissions != 1 {
		t.Errorf("expected 1 submission after registration, got %d", account.TotalSubmissions)
	}

	session, err := repository.NewSessionRepository(db).GetByID(ctx, actor.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session == nil || session.AccountID == nil || *session.AccountID != account.ID {
		t.Error("expected session to be bound to the new account")
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	db := newTestDB(t)
	auth := newAuth(db, &captureMailer{})
	ctx := context.Background()
	actor := anonActor()

	tests := []struct {
		name string
		sub  *RegistrationSubmission
	}{
		{name: "missing display name", sub: &RegistrationSubmission{Email: "a@b.c"}},
		{name: "missing email", sub: &RegistrationSubmission{DisplayName: "Kai"}},
		{name: "malformed email", sub: &RegistrationSubmission{DisplayName: "Kai", Email: "not-an-email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, actor, tt.sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth := newAuth(db, &captureMailer{})

	first := anonActor()
	seedSession(t, db, first)
	if _, err := auth.Register(ctx, first, &RegistrationSubmission{
		DisplayName: "Kai",
		Email:       "kai@example.com",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := anonActor()
	seedSession(t, db, second)
	_, err := auth.Register(ctx, second, &RegistrationSubmission{
		DisplayName: "Other Kai",
		Email:       "KAI@example.com",
	})
	if !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthService_LoginLinkRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	mailer := &captureMailer{}
	auth := newAuth(db, mailer)

	registrant := anonActor()
	seedSession(t, db, registrant)
	if _, err := auth.Register(ctx, registrant, &RegistrationSubmission{
		DisplayName: "Lena",
		Email:       "lena@example.com",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := auth.RequestLogin(ctx, "lena@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mailer.sent != 1 {
		t.Fatalf("expected one mail, got %d", mailer.sent)
	}
	if mailer.to != "lena@example.com" {
		t.Errorf("expected mail to lena@example.com, got %q", mailer.to)
	}

	// Extract the token from the mailed link
	idx := strings.Index(mailer.body, "token=")
	if idx < 0 {
		t.Fatalf("expected login link in mail body, got %q", mailer.body)
	}
	token := strings.TrimSpace(mailer.body[idx+len("token="):])

	// A returning visitor on a fresh device logs in with the link
	visitor := anonActor()
	seedSession(t, db, visitor)
	seedMeme(t, db, visitor)

	account, err := auth.LoginWithToken(ctx, visitor.SessionID, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.LastLoginAt == nil {
		t.Error("expected last login timestamp to be set")
	}
	// The new device's anonymous upload is claimed on login
	if account.TotalSubmissions != 1 {
		t.Errorf("expected 1 submission after login merge, got %d", account.TotalSubmissions)
	}
}

func TestAuthService_RequestLoginUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	auth := newAuth(db, &captureMailer{})

	err := auth.RequestLogin(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_LoginWithBadToken(t *testing.T) {
	db := newTestDB(t)
	auth := newAuth(db, &captureMailer{})

	_, err := auth.LoginWithToken(context.Background(), anonActor().SessionID, "garbage")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
