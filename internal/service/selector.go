package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/domain"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/repository"
)

// FacetStatus reports which evaluation facets are already recorded for the
// offered (meme, description) pair, supporting resumable partial evaluation.
type FacetStatus struct {
	Humor           bool `json:"humor"`
	Emotions        bool `json:"emotions"`
	Context         bool `json:"context"`
	DescriptionVote bool `json:"description_vote"`
}

// EvaluationTask is one unit of evaluation work: a meme the actor does not own
// and has not finished, paired with either one of its descriptions or the
// open "no description yet" slot.
type EvaluationTask struct {
	Meme        *domain.Meme        `json:"meme"`
	Description *domain.Description `json:"description,omitempty"`
	Status      FacetStatus         `json:"status"`
}

// AssignmentSelector picks the next (meme, description) pair for an actor to
// evaluate, uniformly at random over all open pairs.
type AssignmentSelector struct {
	memeRepo *repository.MemeRepository
	descRepo *repository.DescriptionRepository
	evalRepo *repository.EvaluationRepository
	voteRepo *repository.VoteRepository
	limits   config.LimitsConfig
	rng      *rand.Rand
}

// NewAssignmentSelector creates a new assignment selector.
// Parameters:
//   - memeRepo: repository for meme records.
//   - descRepo: repository for description records.
//   - evalRepo: repository for evaluation records.
//   - voteRepo: repository for vote records.
//   - limits: contribution limits including the description cap.
//   - rng: random source; nil uses the shared default source.
// Returns:
//   - *AssignmentSelector: initialized selector.
func NewAssignmentSelector(
	memeRepo *repository.MemeRepository,
	descRepo *repository.DescriptionRepository,
	evalRepo *repository.EvaluationRepository,
	voteRepo *repository.VoteRepository,
	limits config.LimitsConfig,
	rng *rand.Rand,
) *AssignmentSelector {
	return &AssignmentSelector{
		memeRepo: memeRepo,
		descRepo: descRepo,
		evalRepo: evalRepo,
		voteRepo: voteRepo,
		limits:   limits,
		rng:      rng,
	}
}

// candidatePair is one entry of the available set.
type candidatePair struct {
	meme *domain.Meme
	desc *domain.Description
}

// NextTask returns the actor's next evaluation assignment.
//
// The available set is the candidate universe (every non-owned meme crossed
// with its other-authored descriptions, plus a placeholder slot while the meme
// is under the description cap) minus the pairs the actor has already
// completed. A pair with a real description is complete once all three guess
// facets and the description vote are recorded; a placeholder pair once the
// three guess facets are. Partially evaluated pairs stay eligible so the actor
// can finish them.
//
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - actor: actor requesting work.
// Returns:
//   - *EvaluationTask: the drawn pair with per-facet completion flags.
//   - error: ErrCorpusTooSmall below the corpus threshold, ErrNothingToEvaluate
//     when the available set is empty, otherwise a persistence failure.
func (s *AssignmentSelector) NextTask(ctx context.Context, actor domain.Actor) (*EvaluationTask, error) {
	total, err := s.memeRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count memes: %w", err)
	}
	if total < int64(s.limits.MinMemeCount) {
		return nil, ErrCorpusTooSmall
	}

	pairs, err := s.availablePairs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrNothingToEvaluate
	}

	// Uniform over pairs, not over memes: memes with more open slots are
	// proportionally more likely, keeping sampling proportional to remaining work
	pick := pairs[s.intn(len(pairs))]

	eval, err := s.evalRepo.GetByActorAndMeme(ctx, actor, pick.meme.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation state: %w", err)
	}

	task := &EvaluationTask{Meme: pick.meme, Description: pick.desc}
	if eval != nil {
		task.Status.Humor = eval.HumorRecorded()
		task.Status.Emotions = eval.EmotionsRecorded()
		task.Status.Context = eval.ContextRecorded()
	}
	if pick.desc != nil {
		vote, err := s.voteRepo.GetByActorAndDescription(ctx, actor, pick.desc.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load vote state: %w", err)
		}
		task.Status.DescriptionVote = vote != nil
	}

	logger.CtxDebug(ctx, "Assignment drawn: meme_id=%s, has_description=%t, open_pairs=%d",
		pick.meme.ID, pick.desc != nil, len(pairs))
	return task, nil
}

// availablePairs builds the available set for the actor.
func (s *AssignmentSelector) availablePairs(ctx context.Context, actor domain.Actor) ([]candidatePair, error) {
	memes, err := s.memeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memes: %w", err)
	}

	memeIDs := make([]string, 0, len(memes))
	for i := range memes {
		memeIDs = append(memeIDs, memes[i].ID)
	}
	descs, err := s.descRepo.ListByMemes(ctx, memeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptions: %w", err)
	}
	descsByMeme := make(map[string][]domain.Description, len(memes))
	for i := range descs {
		d := descs[i]
		descsByMeme[d.MemeID] = append(descsByMeme[d.MemeID], d)
	}

	evals, err := s.evalRepo.ListByActor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	evalByMeme := make(map[string]*domain.Evaluation, len(evals))
	for i := range evals {
		evalByMeme[evals[i].MemeID] = &evals[i]
	}

	votedIDs, err := s.voteRepo.VotedDescriptionIDs(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	voted := make(map[string]struct{}, len(votedIDs))
	for _, id := range votedIDs {
		voted[id] = struct{}{}
	}

	var pairs []candidatePair
	for i := range memes {
		meme := &memes[i]
		if meme.OwnedBy(actor) {
			continue
		}

		guessDone := false
		if eval := evalByMeme[meme.ID]; eval != nil {
			guessDone = eval.GuessComplete()
		}

		memeDescs := descsByMeme[meme.ID]
		for j := range memeDescs {
			desc := &memeDescs[j]
			if desc.OwnedBy(actor) {
				continue
			}
			_, hasVote := voted[desc.ID]
			if guessDone && hasVote {
				continue
			}
			pairs = append(pairs, candidatePair{meme: meme, desc: desc})
		}

		// The placeholder slot stays in play while the meme is under the
		// description cap, so zero-description memes remain eligible
		if len(memeDescs) < s.limits.MaxDescriptionsPerMeme && !guessDone {
			pairs = append(pairs, candidatePair{meme: meme})
		}
	}
	return pairs, nil
}

func (s *AssignmentSelector) intn(n int) int {
	if s.rng != nil {
		return s.rng.Intn(n)
	}
	return rand.Intn(n)
}
