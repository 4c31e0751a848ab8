package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Contains reports whether the array holds the given value.
func (a StringArray) Contains(v string) bool {
	for _, s := range a {
		if s == v {
			return true
		}
	}
	return false
}

// Meme represents an uploaded meme image plus the contributor's classification
// metadata. Memes are created once on upload and never deleted; evaluators
// later guess the humor type, emotion set, and context level recorded here.
type Meme struct {
	ID              string      `gorm:"type:text;primaryKey" json:"id"`
	StorageKey      string      `gorm:"type:text;not null" json:"storage_key"`
	OriginalName    string      `gorm:"type:text" json:"original_name,omitempty"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Format          string      `json:"format"`
	FileSize        int64       `json:"file_size"`
	OriginCountry   string      `gorm:"type:text" json:"origin_country"`
	Platform        string      `gorm:"type:text;index:idx_memes_platform" json:"platform"`
	ContentSummary  string      `gorm:"type:text" json:"content_summary"`
	TimeRange       string      `gorm:"type:text" json:"time_range"`
	CulturalReach   string      `gorm:"type:text" json:"cultural_reach"`
	NicheCommunity  string      `gorm:"type:text" json:"niche_community,omitempty"`
	HumorType       string      `gorm:"type:text" json:"humor_type"`
	Emotions        StringArray `gorm:"type:text" json:"emotions"`
	ContextLevel    string      `gorm:"type:text" json:"context_level"`
	UploaderSession string      `gorm:"type:text;not null;index:idx_memes_session" json:"-"`
	AccountID       *string     `gorm:"type:text;index:idx_memes_account" json:"account_id,omitempty"`
	LikeCount       int         `gorm:"default:0" json:"like_count"`
	EvaluationCount int         `gorm:"default:0" json:"evaluation_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Meme.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Meme) TableName() string {
	return "memes"
}

// OwnedBy reports whether the given actor uploaded this meme. Registered
// ownership is matched on account id, anonymous ownership on session id for
// rows with no account attached.
func (m *Meme) OwnedBy(actor Actor) bool {
	if actor.IsRegistered() {
		return m.AccountID != nil && *m.AccountID == actor.Account.ID
	}
	return m.AccountID == nil && m.UploaderSession == actor.SessionID
}
