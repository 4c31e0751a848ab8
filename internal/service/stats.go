package service

import (
	"context"
	"fmt"

	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/repository"
)

// analyticsMinEvaluations is the minimum evaluation count before a meme gets
// an agreement/difficulty score; below it the sample is too noisy.
const analyticsMinEvaluations = 3

// GlobalStats summarizes platform-wide collection progress.
type GlobalStats struct {
	TotalMemes         int64 `json:"total_memes"`
	TotalEvaluations   int64 `json:"total_evaluations"`
	UniqueEvaluators   int64 `json:"unique_evaluators"`
	RegisteredAccounts int64 `json:"registered_accounts"`
}

// MemeAnalyticsRow reports inter-rater agreement for one meme. Difficulty is
// the complement of accuracy: hard memes are the ones evaluators misread.
type MemeAnalyticsRow struct {
	MemeID            string  `json:"meme_id"`
	Evaluations       int64   `json:"evaluations"`
	AvgHumorMatch     float64 `json:"avg_humor_match"`
	AvgEmotionOverlap float64 `json:"avg_emotion_overlap"`
	Accuracy          float64 `json:"accuracy"`
	Difficulty        float64 `json:"difficulty"`
}

// Profile is a registered contributor's dashboard data.
type Profile struct {
	Account        *domain.Account `json:"account"`
	RecentMemes    []domain.Meme   `json:"recent_memes"`
	RankPercentile float64         `json:"rank_percentile"`
}

// ExportMeme is one anonymized meme record of the research export.
type ExportMeme struct {
	ID             string             `json:"id"`
	OriginCountry  string             `json:"origin_country"`
	Platform       string             `json:"platform"`
	ContentSummary string             `json:"content_summary"`
	TimeRange      string             `json:"time_range"`
	CulturalReach  string             `json:"cultural_reach"`
	HumorType      string             `json:"humor_type"`
	Emotions       domain.StringArray `json:"emotions"`
	ContextLevel   string             `json:"context_level"`
}

// ExportEvaluation is one anonymized evaluation record of the research export.
// Evaluator identity is reduced to an opaque registered/anonymous marker.
type ExportEvaluation struct {
	MemeID         string             `json:"meme_id"`
	Registered     bool               `json:"registered"`
	HumorType      *string            `json:"humor_type,omitempty"`
	Emotions       domain.StringArray `json:"emotions"`
	ContextLevel   *string            `json:"context_level,omitempty"`
	HumorMatch     *bool              `json:"humor_match,omitempty"`
	EmotionOverlap *float64           `json:"emotion_overlap,omitempty"`
}

// ResearchExport bundles the anonymized dataset.
type ResearchExport struct {
	Memes       []ExportMeme       `json:"memes"`
	Evaluations []ExportEvaluation `json:"evaluations"`
}

// StatsService computes collection statistics, per-meme agreement analytics,
// contributor profiles, and the anonymized research export.
type StatsService struct {
	memeRepo    *repository.MemeRepository
	evalRepo    *repository.EvaluationRepository
	accountRepo *repository.AccountRepository
}

// NewStatsService creates a new stats service.
// Parameters:
//   - memeRepo: repository for meme records.
//   - evalRepo: repository for evaluation records.
//   - accountRepo: repository for account records.
// Returns:
//   - *StatsService: initialized service.
func NewStatsService(
	memeRepo *repository.MemeRepository,
	evalRepo *repository.EvaluationRepository,
	accountRepo *repository.AccountRepository,
) *StatsService {
	return &StatsService{
		memeRepo:    memeRepo,
		evalRepo:    evalRepo,
		accountRepo: accountRepo,
	}
}

// Global returns platform-wide totals.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *GlobalStats: aggregate counts.
//   - error: non-nil if a count query fails.
func (s *StatsService) Global(ctx context.Context) (*GlobalStats, error) {
	memes, err := s.memeRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count memes: %w", err)
	}
	evals, err := s.evalRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluations: %w", err)
	}
	evaluators, err := s.evalRepo.CountDistinctEvaluators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count evaluators: %w", err)
	}
	accounts, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	return &GlobalStats{
		TotalMemes:         memes,
		TotalEvaluations:   evals,
		UniqueEvaluators:   evaluators,
		RegisteredAccounts: accounts,
	}, nil
}

// Distributions returns meme counts bucketed by each classification facet.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[string][]repository.DistributionRow: distributions keyed by facet.
//   - error: non-nil if a query fails.
func (s *StatsService) Distributions(ctx context.Context) (map[string][]repository.DistributionRow, error) {
	// Fixed whitelist of groupable columns; never derived from user input
	columns := []string{"platform", "humor_type", "cultural_reach", "origin_country", "context_level"}
	out := make(map[string][]repository.DistributionRow, len(columns))
	for _, col := range columns {
		rows, err := s.memeRepo.Distribution(ctx, col)
		if err != nil {
			return nil, err
		}
		out[col] = rows
	}
	return out, nil
}

// MemeAnalytics returns per-meme agreement scores for memes with enough
// evaluations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []MemeAnalyticsRow: per-meme accuracy and difficulty.
//   - error: non-nil if the aggregate query fails.
func (s *StatsService) MemeAnalytics(ctx context.Context) ([]MemeAnalyticsRow, error) {
	aggs, err := s.evalRepo.AggregateByMeme(ctx, analyticsMinEvaluations)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate evaluations: %w", err)
	}
	rows := make([]MemeAnalyticsRow, 0, len(aggs))
	for _, a := range aggs {
		accuracy := 0.5*a.AvgHumorMatch + 0.5*a.AvgEmotionOverlap
		rows = append(rows, MemeAnalyticsRow{
			MemeID:            a.MemeID,
			Evaluations:       a.Evaluations,
			AvgHumorMatch:     a.AvgHumorMatch,
			AvgEmotionOverlap: a.AvgEmotionOverlap,
			Accuracy:          accuracy,
			Difficulty:        1 - accuracy,
		})
	}
	return rows, nil
}

// ProfileFor builds a registered contributor's profile.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - account: the profile owner.
// Returns:
//   - *Profile: account, recent memes, and contributor rank percentile.
//   - error: non-nil if a query fails.
func (s *StatsService) ProfileFor(ctx context.Context, account *domain.Account) (*Profile, error) {
	recent, err := s.memeRepo.ListByAccount(ctx, account.ID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent memes: %w", err)
	}

	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	percentile := 0.0
	if total > 1 {
		below, err := s.accountRepo.CountWithFewerEvaluations(ctx, account.TotalEvaluations)
		if err != nil {
			return nil, fmt.Errorf("failed to rank account: %w", err)
		}
		percentile = 100 * float64(below) / float64(total-1)
	}

	return &Profile{
		Account:        account,
		RecentMemes:    recent,
		RankPercentile: percentile,
	}, nil
}

// Export builds the anonymized research dataset: all memes with their
// classification metadata and all evaluations with identities stripped.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *ResearchExport: anonymized dataset.
//   - error: non-nil if a query fails.
func (s *StatsService) Export(ctx context.Context) (*ResearchExport, error) {
	memes, err := s.memeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}

	export := &ResearchExport{
		Memes:       make([]ExportMeme, 0, len(memes)),
		Evaluations: []ExportEvaluation{},
	}
	for _, m := range memes {
		export.Memes = append(export.Memes, ExportMeme{
			ID:             m.ID,
			OriginCountry:  m.OriginCountry,
			Platform:       m.Platform,
			ContentSummary: m.ContentSummary,
			TimeRange:      m.TimeRange,
			CulturalReach:  m.CulturalReach,
			HumorType:      m.HumorType,
			Emotions:       m.Emotions,
			ContextLevel:   m.ContextLevel,
		})
	}

	evals, err := s.evalRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	for _, e := range evals {
		export.Evaluations = append(export.Evaluations, ExportEvaluation{
			MemeID:         e.MemeID,
			Registered:     e.AccountID != nil,
			HumorType:      e.HumorType,
			Emotions:       e.Emotions,
			ContextLevel:   e.ContextLevel,
			HumorMatch:     e.HumorMatch,
			EmotionOverlap: e.EmotionOverlap,
		})
	}
	return export, nil
}
