package domain

import "time"

// Session is the persisted server-side record of a visitor session. The ID is
// the opaque token stored in the visitor's cookie; AccountID is set once the
// visitor logs in, binding the session to an account.
type Session struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	AccountID  *string   `gorm:"type:text;index:idx_sessions_account" json:"account_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string {
	return "sessions"
}
