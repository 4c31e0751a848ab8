package domain

import "time"

// Description is a free-text explanation of why a meme is funny. The uploader
// contributes the original description; evaluators may add supplementary ones
// up to the per-meme cap. Likes and Dislikes mirror the vote rows for display.
type Description struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	MemeID         string    `gorm:"type:text;not null;index:idx_descriptions_meme" json:"meme_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	IsOriginal     bool      `gorm:"default:false" json:"is_original"`
	AuthorSession  string    `gorm:"type:text;not null;index:idx_descriptions_session" json:"-"`
	AccountID      *string   `gorm:"type:text;index:idx_descriptions_account" json:"account_id,omitempty"`
	Likes          int       `gorm:"default:0" json:"likes"`
	Dislikes       int       `gorm:"default:0" json:"dislikes"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the database table name for Description.
func (Description) TableName() string {
	return "descriptions"
}

// OwnedBy reports whether the given actor authored this description.
func (d *Description) OwnedBy(actor Actor) bool {
	if actor.IsRegistered() {
		return d.AccountID != nil && *d.AccountID == actor.Account.ID
	}
	return d.AccountID == nil && d.AuthorSession == actor.SessionID
}
