package domain

import "time"

// Account represents a registered contributor, uniquely keyed by email.
// TotalSubmissions, TotalEvaluations, and EvaluationAccuracy are denormalized
// mirrors of the underlying contribution rows; they are updated transactionally
// on each contribution and can always be rebuilt by a full recount.
type Account struct {
	ID                 string      `gorm:"type:text;primaryKey" json:"id"`
	DisplayName        string      `gorm:"type:text;not null" json:"display_name"`
	Email              string      `gorm:"type:text;not null;uniqueIndex:idx_accounts_email" json:"email"`
	Country            string      `gorm:"type:text" json:"country"`
	Languages          StringArray `gorm:"type:text" json:"languages"`
	BirthYear          int         `json:"birth_year,omitempty"`
	NotifyOnMilestones bool        `gorm:"default:true" json:"notify_on_milestones"`
	TotalSubmissions   int         `gorm:"default:0" json:"total_submissions"`
	TotalEvaluations   int         `gorm:"default:0" json:"total_evaluations"`
	EvaluationAccuracy float64     `gorm:"default:0" json:"evaluation_accuracy"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	LastLoginAt        *time.Time  `json:"last_login_at,omitempty"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string {
	return "accounts"
}

// Actor identifies who is performing an upload or evaluation: an anonymous
// session (Account nil) or a registered account. Every core operation takes an
// Actor value explicitly rather than reading ambient request state.
type Actor struct {
	SessionID string
	Account   *Account
}

// IsRegistered reports whether the actor is backed by a registered account.
func (a Actor) IsRegistered() bool {
	return a.Account != nil
}

// AccountID returns the account id or nil for anonymous actors.
func (a Actor) AccountID() *string {
	if a.Account == nil {
		return nil
	}
	return &a.Account.ID
}
