package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/api/middleware"
	"github.com/memelab/memeqa/internal/service"
	"github.com/memelab/memeqa/internal/storage"
)

// EvaluationHandler handles assignment and evaluation submission endpoints.
type EvaluationHandler struct {
	selector    *service.AssignmentSelector
	evaluations *service.EvaluationService
	ledger      *service.LedgerService
	quota       *service.QuotaPolicy
	storage     storage.ObjectStorage
}

// NewEvaluationHandler creates a new evaluation handler.
// Parameters:
//   - selector: assignment selector.
//   - evaluations: evaluation recorder service.
//   - ledger: contribution ledger.
//   - quota: quota policy.
//   - objectStorage: storage client for image URL generation.
// Returns:
//   - *EvaluationHandler: initialized handler.
func NewEvaluationHandler(
	selector *service.AssignmentSelector,
	evaluations *service.EvaluationService,
	ledger *service.LedgerService,
	quota *service.QuotaPolicy,
	objectStorage storage.ObjectStorage,
) *EvaluationHandler {
	return &EvaluationHandler{
		selector:    selector,
		evaluations: evaluations,
		ledger:      ledger,
		quota:       quota,
		storage:     objectStorage,
	}
}

// Next handles GET /api/v1/evaluations/next, drawing the actor's next
// evaluation assignment.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *EvaluationHandler) Next(c *gin.Context) {
	actor := middleware.GetActor(c)
	ctx := c.Request.Context()

	counts, err := h.ledger.Counts(ctx, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contribution counts"})
		return
	}
	decision := h.quota.Check(actor.IsRegistered(), counts)
	if err := h.quota.GateEvaluation(actor.IsRegistered(), counts); err != nil {
		writeServiceError(c, err)
		return
	}

	task, err := h.selector.NextTask(ctx, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCorpusTooSmall), errors.Is(err, service.ErrNothingToEvaluate):
			// Terminal-for-now, not a fault: steer the actor to the
			// alternate flow, or to registration when uploads are
			// also exhausted
			redirect := "upload"
			if !decision.CanUpload {
				redirect = "register"
			}
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "Nothing left to evaluate",
				"redirect": redirect,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pick next assignment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":          task,
		"image_url":     h.storage.GetURL(task.Meme.StorageKey),
		"counts":        counts,
		"prompt_upload": decision.PromptUpload,
	})
}

// Submit handles POST /api/v1/evaluations.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *EvaluationHandler) Submit(c *gin.Context) {
	actor := middleware.GetActor(c)
	ctx := c.Request.Context()

	var sub service.EvaluationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission payload"})
		return
	}

	counts, err := h.ledger.Counts(ctx, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contribution counts"})
		return
	}
	if err := h.quota.GateEvaluation(actor.IsRegistered(), counts); err != nil {
		writeServiceError(c, err)
		return
	}

	outcome, err := h.evaluations.Submit(ctx, actor, &sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if outcome.FirstSubmission {
		counts.Evaluations++
	}
	decision := h.quota.Check(actor.IsRegistered(), counts)
	resp := gin.H{
		"outcome":       outcome,
		"counts":        counts,
		"prompt_upload": decision.PromptUpload,
	}
	if outcome.DescriptionRejected {
		resp["warning"] = "Description limit reached for this meme; your description was not saved"
	}
	c.JSON(http.StatusOK, resp)
}

// Quota handles GET /api/v1/quota, reporting the actor's counts and current
// permissions.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *EvaluationHandler) Quota(c *gin.Context) {
	actor := middleware.GetActor(c)

	counts, err := h.ledger.Counts(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contribution counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"registered": actor.IsRegistered(),
		"counts":     counts,
		"quota":      h.quota.Check(actor.IsRegistered(), counts),
	})
}
