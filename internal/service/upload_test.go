package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/domain"
)

// memoryStorage is an in-memory ObjectStorage for tests.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "http://storage.test/" + key
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxSizeMB:         16,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "webp"},
	}
}

// pngBytes renders a small solid PNG for upload fixtures.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func validUpload(t *testing.T) *UploadSubmission {
	t.Helper()
	return &UploadSubmission{
		Filename:       "cat.png",
		Content:        pngBytes(t, 32, 24),
		OriginCountry:  "United States",
		Platform:       "Reddit",
		ContentSummary: "a cat staring at a cucumber",
		TimeRange:      "2021-2025",
		CulturalReach:  "Global",
		HumorType:      "Absurd/Random",
		Emotions:       []string{"Joy", "Surprise"},
		ContextLevel:   "None",
		Description:    "it subverts the expected reaction",
		TermsAgreed:    true,
	}
}

func TestUploadService_CreatesMemeWithOriginalDescription(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStorage()
	svc := NewUploadService(db, store, testUploadConfig())
	actor := anonActor()

	meme, err := svc.Upload(context.Background(), actor, validUpload(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meme.Width != 32 || meme.Height != 24 {
		t.Errorf("expected dimensions 32x24, got %dx%d", meme.Width, meme.Height)
	}
	if meme.Format != "png" {
		t.Errorf("expected format png, got %q", meme.Format)
	}
	if store.count() != 1 {
		t.Errorf("expected one stored object, got %d", store.count())
	}

	var desc domain.Description
	if err := db.First(&desc, "meme_id = ?", meme.ID).Error; err != nil {
		t.Fatalf("failed to load original description: %v", err)
	}
	if !desc.IsOriginal {
		t.Error("expected the uploader's description to be marked original")
	}
	if desc.AuthorSession != actor.SessionID {
		t.Error("expected the description to be attributed to the uploader")
	}
}

func TestUploadService_RegisteredCounterBumped(t *testing.T) {
	db := newTestDB(t)
	store := newMemoryStorage()
	svc := NewUploadService(db, store, testUploadConfig())
	acc := seedAccount(t, db, "jane@example.com")
	actor := domain.Actor{SessionID: anonActor().SessionID, Account: acc}

	if _, err := svc.Upload(context.Background(), actor, validUpload(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var updated domain.Account
	if err := db.First(&updated, "id = ?", acc.ID).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if updated.TotalSubmissions != 1 {
		t.Errorf("expected total submissions 1, got %d", updated.TotalSubmissions)
	}
}

func TestUploadService_ValidationFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewUploadService(db, newMemoryStorage(), testUploadConfig())
	ctx := context.Background()
	actor := anonActor()

	tests := []struct {
		name   string
		mutate func(sub *UploadSubmission)
	}{
		{
			name:   "empty file",
			mutate: func(sub *UploadSubmission) { sub.Content = nil },
		},
		{
			name:   "disallowed extension",
			mutate: func(sub *UploadSubmission) { sub.Filename = "cat.gif" },
		},
		{
			name:   "terms not agreed",
			mutate: func(sub *UploadSubmission) { sub.TermsAgreed = false },
		},
		{
			name:   "unknown country",
			mutate: func(sub *UploadSubmission) { sub.OriginCountry = "Atlantis" },
		},
		{
			name:   "missing summary",
			mutate: func(sub *UploadSubmission) { sub.ContentSummary = "   " },
		},
		{
			name: "niche reach without community",
			mutate: func(sub *UploadSubmission) {
				sub.CulturalReach = domain.CulturalReachNiche
				sub.NicheCommunity = ""
			},
		},
		{
			name:   "no emotions",
			mutate: func(sub *UploadSubmission) { sub.Emotions = nil },
		},
		{
			name:   "missing description",
			mutate: func(sub *UploadSubmission) { sub.Description = "" },
		},
		{
			name:   "not an image",
			mutate: func(sub *UploadSubmission) { sub.Content = []byte("plain text") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validUpload(t)
			tt.mutate(sub)

			_, err := svc.Upload(ctx, actor, sub)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected validation error, got %v", err)
			}

			var memeCount int64
			if err := db.Model(&domain.Meme{}).Count(&memeCount).Error; err != nil {
				t.Fatalf("failed to count memes: %v", err)
			}
			if memeCount != 0 {
				t.Errorf("expected no meme rows after rejected upload, got %d", memeCount)
			}
		})
	}
}

func TestUploadService_NicheCommunityAccepted(t *testing.T) {
	db := newTestDB(t)
	svc := NewUploadService(db, newMemoryStorage(), testUploadConfig())

	sub := validUpload(t)
	sub.CulturalReach = domain.CulturalReachNiche
	sub.NicheCommunity = "r/mechanicalkeyboards"

	meme, err := svc.Upload(context.Background(), anonActor(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meme.NicheCommunity != "r/mechanicalkeyboards" {
		t.Errorf("expected niche community to be stored, got %q", meme.NicheCommunity)
	}
}
