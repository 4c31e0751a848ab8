package service

import "github.com/memelab/memeqa/internal/config"

// Blocking reasons reported by the quota policy.
const (
	ReasonUploadLimit     = "upload_limit"
	ReasonEvaluationLimit = "evaluation_limit"
)

// Counts holds an actor's contribution totals as reported by the ledger.
// Accuracy is nil for anonymous actors, who are not scored.
type Counts struct {
	Uploads     int      `json:"uploads"`
	Evaluations int      `json:"evaluations"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
}

// QuotaDecision is the outcome of a quota check: whether each activity is
// currently permitted, why not, and any advisory nudges. Nudges are never
// enforced gates.
type QuotaDecision struct {
	CanUpload      bool   `json:"can_upload"`
	CanEvaluate    bool   `json:"can_evaluate"`
	BlockingReason string `json:"blocking_reason,omitempty"`
	PromptUpload   bool   `json:"prompt_upload"`
	PromptEvaluate bool   `json:"prompt_evaluate"`
}

// QuotaPolicy decides whether an actor may upload or evaluate. It is a pure
// function of the counts, the actor kind, and the configured limits, so it can
// be tested directly against synthetic counts.
type QuotaPolicy struct {
	limits config.LimitsConfig
}

// NewQuotaPolicy creates a quota policy from the configured limits.
// Parameters:
//   - limits: contribution limits and nudge intervals.
// Returns:
//   - *QuotaPolicy: initialized policy.
func NewQuotaPolicy(limits config.LimitsConfig) *QuotaPolicy {
	return &QuotaPolicy{limits: limits}
}

// Check evaluates the quota policy for one actor.
// Parameters:
//   - registered: whether the actor is a registered account.
//   - counts: the actor's current contribution totals.
// Returns:
//   - QuotaDecision: permissions, blocking reason, and advisory nudges.
func (p *QuotaPolicy) Check(registered bool, counts Counts) QuotaDecision {
	maxUpload := p.limits.AnonMaxUpload
	maxEval := p.limits.AnonMaxEval
	if registered {
		maxUpload = p.limits.RegMaxUpload
		maxEval = p.limits.RegMaxEval
	}

	d := QuotaDecision{
		CanUpload:   counts.Uploads < maxUpload,
		CanEvaluate: counts.Evaluations < maxEval,
	}
	if !d.CanUpload {
		d.BlockingReason = ReasonUploadLimit
	} else if !d.CanEvaluate {
		d.BlockingReason = ReasonEvaluationLimit
	}

	// Advisory activity-switch nudges, applied to both actor kinds
	if n := p.limits.PromptUploadEvery; n > 0 && counts.Evaluations > 0 && counts.Evaluations%n == 0 {
		d.PromptUpload = true
	}
	if m := p.limits.PromptEvalEvery; m > 0 && counts.Uploads > 0 && counts.Uploads%m == 0 {
		d.PromptEvaluate = true
	}

	return d
}

// GateUpload returns a QuotaError when the actor's upload cap is reached.
// Parameters:
//   - registered: whether the actor is a registered account.
//   - counts: the actor's current contribution totals.
// Returns:
//   - error: a QuotaError wrapping ErrQuotaExceeded, or nil when permitted.
func (p *QuotaPolicy) GateUpload(registered bool, counts Counts) error {
	if d := p.Check(registered, counts); !d.CanUpload {
		return &QuotaError{Reason: ReasonUploadLimit}
	}
	return nil
}

// GateEvaluation returns a QuotaError when the actor's evaluation cap is
// reached.
// Parameters:
//   - registered: whether the actor is a registered account.
//   - counts: the actor's current contribution totals.
// Returns:
//   - error: a QuotaError wrapping ErrQuotaExceeded, or nil when permitted.
func (p *QuotaPolicy) GateEvaluation(registered bool, counts Counts) error {
	if d := p.Check(registered, counts); !d.CanEvaluate {
		return &QuotaError{Reason: ReasonEvaluationLimit}
	}
	return nil
}
