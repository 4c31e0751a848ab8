package domain

import "time"

// Vote values for description votes.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// DescriptionVote records one actor's like/dislike of a description. One vote
// exists per (actor, description); resubmitting overwrites the value rather
// than adding a second row.
type DescriptionVote struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	DescriptionID string    `gorm:"type:text;not null;index:idx_votes_description" json:"description_id"`
	MemeID        string    `gorm:"type:text;not null;index:idx_votes_meme" json:"meme_id"`
	VoterSession  string    `gorm:"type:text;not null;index:idx_votes_session" json:"-"`
	AccountID     *string   `gorm:"type:text;index:idx_votes_account" json:"account_id,omitempty"`
	Vote          string    `gorm:"type:text;not null" json:"vote"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for DescriptionVote.
func (DescriptionVote) TableName() string {
	return "description_votes"
}

// MemeLike is an (actor, meme) favorite marker, independent of evaluation.
// Toggling is idempotent: liking twice leaves one row, unliking removes it.
type MemeLike struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	MemeID    string    `gorm:"type:text;not null;index:idx_likes_meme" json:"meme_id"`
	Session   string    `gorm:"type:text;not null;index:idx_likes_session" json:"-"`
	AccountID *string   `gorm:"type:text;index:idx_likes_account" json:"account_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for MemeLike.
func (MemeLike) TableName() string {
	return "meme_likes"
}
