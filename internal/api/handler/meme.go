package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/api/middleware"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/repository"
	"github.com/memelab/memeqa/internal/service"
	"github.com/memelab/memeqa/internal/storage"
)

// galleryPageSizes are the accepted per_page values for the gallery.
var galleryPageSizes = map[int]bool{4: true, 8: true, 16: true}

// MemeHandler handles meme upload, gallery, and like endpoints.
type MemeHandler struct {
	uploads     *service.UploadService
	evaluations *service.EvaluationService
	ledger      *service.LedgerService
	quota       *service.QuotaPolicy
	memeRepo    *repository.MemeRepository
	descRepo    *repository.DescriptionRepository
	storage     storage.ObjectStorage
}

// NewMemeHandler creates a new meme handler.
// Parameters:
//   - uploads: upload service.
//   - evaluations: evaluation service, used for like toggling.
//   - ledger: contribution ledger.
//   - quota: quota policy.
//   - memeRepo: repository for meme records.
//   - descRepo: repository for description records.
//   - objectStorage: storage client for image URL generation.
// Returns:
//   - *MemeHandler: initialized handler.
func NewMemeHandler(
	uploads *service.UploadService,
	evaluations *service.EvaluationService,
	ledger *service.LedgerService,
	quota *service.QuotaPolicy,
	memeRepo *repository.MemeRepository,
	descRepo *repository.DescriptionRepository,
	objectStorage storage.ObjectStorage,
) *MemeHandler {
	return &MemeHandler{
		uploads:     uploads,
		evaluations: evaluations,
		ledger:      ledger,
		quota:       quota,
		memeRepo:    memeRepo,
		descRepo:    descRepo,
		storage:     objectStorage,
	}
}

// Upload handles POST /api/v1/memes.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) Upload(c *gin.Context) {
	actor := middleware.GetActor(c)
	ctx := c.Request.Context()

	counts, err := h.ledger.Counts(ctx, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contribution counts"})
		return
	}
	if err := h.quota.GateUpload(actor.IsRegistered(), counts); err != nil {
		writeServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
		return
	}

	sub := &service.UploadSubmission{
		Filename:       header.Filename,
		Content:        content,
		OriginCountry:  c.PostForm("origin_country"),
		Platform:       c.PostForm("platform"),
		ContentSummary: c.PostForm("content_summary"),
		TimeRange:      c.PostForm("time_range"),
		CulturalReach:  c.PostForm("cultural_reach"),
		NicheCommunity: c.PostForm("niche_community"),
		HumorType:      c.PostForm("humor_type"),
		Emotions:       c.PostFormArray("emotions"),
		ContextLevel:   c.PostForm("context_level"),
		Description:    c.PostForm("description"),
		TermsAgreed:    c.PostForm("terms_agreed") == "true",
	}

	meme, err := h.uploads.Upload(ctx, actor, sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	counts.Uploads++
	decision := h.quota.Check(actor.IsRegistered(), counts)
	c.JSON(http.StatusCreated, gin.H{
		"meme":            meme,
		"image_url":       h.storage.GetURL(meme.StorageKey),
		"counts":          counts,
		"prompt_evaluate": decision.PromptEvaluate,
	})
}

// List handles GET /api/v1/memes (the gallery).
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "8"))
	if !galleryPageSizes[perPage] {
		perPage = 8
	}

	ctx := c.Request.Context()
	memes, err := h.memeRepo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list memes"})
		return
	}
	total, err := h.memeRepo.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count memes"})
		return
	}

	items := make([]gin.H, 0, len(memes))
	for i := range memes {
		items = append(items, gin.H{
			"meme":      memes[i],
			"image_url": h.storage.GetURL(memes[i].StorageKey),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"memes":    items,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// Get handles GET /api/v1/memes/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	meme, err := h.memeRepo.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meme not found"})
		return
	}
	descs, err := h.descRepo.ListByMeme(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load descriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meme":         meme,
		"image_url":    h.storage.GetURL(meme.StorageKey),
		"descriptions": descs,
	})
}

// ToggleLike handles POST /api/v1/memes/:id/like.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) ToggleLike(c *gin.Context) {
	actor := middleware.GetActor(c)

	liked, err := h.evaluations.ToggleLike(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// Meta handles GET /api/v1/meta, exposing the controlled vocabularies the
// upload and evaluation forms are built from.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"humor_types":    domain.HumorTypes,
		"emotions":       domain.Emotions,
		"context_levels": domain.ContextLevels,
		"cultural_reach": domain.CulturalReachOptions,
		"time_ranges":    domain.TimeRangeOptions,
		"platforms":      domain.PlatformOptions,
		"meme_countries": domain.MemeCountries,
	})
}
