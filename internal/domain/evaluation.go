package domain

import "time"

// Evaluation records one actor's attempt to guess a meme's humor type, emotion
// set, and context level. At most one row exists per (actor, meme); partial
// submissions update the existing row field by field. A facet counts as
// recorded when its field is non-nil (for emotions, non-empty: a valid emotion
// guess always contains at least one emotion).
type Evaluation struct {
	ID               string      `gorm:"type:text;primaryKey" json:"id"`
	MemeID           string      `gorm:"type:text;not null;index:idx_evaluations_meme" json:"meme_id"`
	EvaluatorSession string      `gorm:"type:text;not null;index:idx_evaluations_session" json:"-"`
	AccountID        *string     `gorm:"type:text;index:idx_evaluations_account" json:"account_id,omitempty"`
	HumorType        *string     `gorm:"type:text" json:"humor_type,omitempty"`
	Emotions         StringArray `gorm:"type:text" json:"emotions"`
	ContextLevel     *string     `gorm:"type:text" json:"context_level,omitempty"`
	HumorMatch       *bool       `json:"humor_match,omitempty"`
	EmotionOverlap   *float64    `json:"emotion_overlap,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Evaluation.
func (Evaluation) TableName() string {
	return "evaluations"
}

// HumorRecorded reports whether the humor facet has been answered.
func (e *Evaluation) HumorRecorded() bool {
	return e.HumorType != nil
}

// EmotionsRecorded reports whether the emotion facet has been answered.
func (e *Evaluation) EmotionsRecorded() bool {
	return len(e.Emotions) > 0
}

// ContextRecorded reports whether the context facet has been answered.
func (e *Evaluation) ContextRecorded() bool {
	return e.ContextLevel != nil
}

// GuessComplete reports whether all three meme-level guess facets are recorded.
func (e *Evaluation) GuessComplete() bool {
	return e.HumorRecorded() && e.EmotionsRecorded() && e.ContextRecorded()
}
