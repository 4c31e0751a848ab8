package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Register decoders for the accepted upload formats
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/repository"
	"github.com/memelab/memeqa/internal/storage"
	"gorm.io/gorm"
)

// UploadSubmission is the typed payload of one meme upload: the image bytes
// plus the contributor's classification metadata.
type UploadSubmission struct {
	Filename       string
	Content        []byte
	OriginCountry  string
	Platform       string
	ContentSummary string
	TimeRange      string
	CulturalReach  string
	NicheCommunity string
	HumorType      string
	Emotions       []string
	ContextLevel   string
	Description    string
	TermsAgreed    bool
}

// UploadService validates uploads, stores the image, and creates the meme
// record with its original description.
type UploadService struct {
	db        *gorm.DB
	storage   storage.ObjectStorage
	uploadCfg config.UploadConfig
}

// NewUploadService creates a new upload service.
// Parameters:
//   - db: database handle for transactional writes.
//   - objectStorage: storage client for image blobs.
//   - uploadCfg: size and extension limits.
// Returns:
//   - *UploadService: initialized service.
func NewUploadService(db *gorm.DB, objectStorage storage.ObjectStorage, uploadCfg config.UploadConfig) *UploadService {
	return &UploadService{
		db:        db,
		storage:   objectStorage,
		uploadCfg: uploadCfg,
	}
}

// Upload stores the image and creates the meme and its original description in
// one transaction, incrementing the registered ledger's submission counter.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: uploading actor.
//   - sub: typed upload payload.
// Returns:
//   - *domain.Meme: the created meme record.
//   - error: validation error or persistence/storage failure.
func (s *UploadService) Upload(ctx context.Context, actor domain.Actor, sub *UploadSubmission) (*domain.Meme, error) {
	if err := s.validate(sub); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(sub.Content))
	if err != nil {
		return nil, NewValidationError("file", "not a decodable image")
	}

	key := fmt.Sprintf("memes/%s.%s", uuid.New().String(), format)
	contentType := "image/" + format
	if err := s.storage.Upload(ctx, key, bytes.NewReader(sub.Content), int64(len(sub.Content)), contentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	meme := &domain.Meme{
		ID:              uuid.New().String(),
		StorageKey:      key,
		OriginalName:    sub.Filename,
		Width:           cfg.Width,
		Height:          cfg.Height,
		Format:          format,
		FileSize:        int64(len(sub.Content)),
		OriginCountry:   sub.OriginCountry,
		Platform:        sub.Platform,
		ContentSummary:  strings.TrimSpace(sub.ContentSummary),
		TimeRange:       sub.TimeRange,
		CulturalReach:   sub.CulturalReach,
		NicheCommunity:  strings.TrimSpace(sub.NicheCommunity),
		HumorType:       sub.HumorType,
		Emotions:        domain.StringArray(sub.Emotions),
		ContextLevel:    sub.ContextLevel,
		UploaderSession: actor.SessionID,
		AccountID:       actor.AccountID(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memeRepo := repository.NewMemeRepository(tx)
		if err := memeRepo.Create(ctx, meme); err != nil {
			return fmt.Errorf("failed to insert meme: %w", err)
		}

		descRepo := repository.NewDescriptionRepository(tx)
		desc := &domain.Description{
			ID:            uuid.New().String(),
			MemeID:        meme.ID,
			Text:          strings.TrimSpace(sub.Description),
			IsOriginal:    true,
			AuthorSession: actor.SessionID,
			AccountID:     actor.AccountID(),
		}
		if err := descRepo.Create(ctx, desc); err != nil {
			return fmt.Errorf("failed to insert original description: %w", err)
		}

		if actor.IsRegistered() {
			if err := tx.WithContext(ctx).Model(&domain.Account{}).
				Where("id = ?", actor.Account.ID).
				Update("total_submissions", gorm.Expr("total_submissions + 1")).Error; err != nil {
				return fmt.Errorf("failed to bump submission counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// Keep storage and database consistent when the transaction fails
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	logger.CtxInfo(ctx, "Meme uploaded: meme_id=%s, format=%s, size=%d", meme.ID, format, meme.FileSize)
	return meme, nil
}

// validate rejects malformed uploads before storage or database writes.
func (s *UploadService) validate(sub *UploadSubmission) error {
	if len(sub.Content) == 0 {
		return NewValidationError("file", "required")
	}
	if maxBytes := int64(s.uploadCfg.MaxSizeMB) * 1024 * 1024; int64(len(sub.Content)) > maxBytes {
		return NewValidationError("file", fmt.Sprintf("exceeds %d MB limit", s.uploadCfg.MaxSizeMB))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(sub.Filename)), ".")
	if !s.extensionAllowed(ext) {
		return NewValidationError("file", "unsupported file extension")
	}
	if !sub.TermsAgreed {
		return NewValidationError("terms_agreed", "terms must be accepted")
	}
	if !domain.ValidMemeCountry(sub.OriginCountry) {
		return NewValidationError("origin_country", "unknown country")
	}
	if !domain.ValidPlatform(sub.Platform) {
		return NewValidationError("platform", "unknown platform")
	}
	if strings.TrimSpace(sub.ContentSummary) == "" {
		return NewValidationError("content_summary", "required")
	}
	if !domain.ValidTimeRange(sub.TimeRange) {
		return NewValidationError("time_range", "unknown time range")
	}
	if !domain.ValidCulturalReach(sub.CulturalReach) {
		return NewValidationError("cultural_reach", "unknown cultural reach")
	}
	if sub.CulturalReach == domain.CulturalReachNiche && strings.TrimSpace(sub.NicheCommunity) == "" {
		return NewValidationError("niche_community", "required for niche community reach")
	}
	if !domain.ValidHumorType(sub.HumorType) {
		return NewValidationError("humor_type", "unknown humor type")
	}
	if len(sub.Emotions) == 0 {
		return NewValidationError("emotions", "at least one emotion required")
	}
	if !domain.ValidEmotions(sub.Emotions) {
		return NewValidationError("emotions", "unknown emotion tag")
	}
	if !domain.ValidContextLevel(sub.ContextLevel) {
		return NewValidationError("context_level", "unknown context level")
	}
	if strings.TrimSpace(sub.Description) == "" {
		return NewValidationError("description", "required")
	}
	return nil
}

func (s *UploadService) extensionAllowed(ext string) bool {
	for _, allowed := range s.uploadCfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
