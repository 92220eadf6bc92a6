package service

import (
	"context"
	"errors"

	"codeclash/internal/common"
	"codeclash/internal/common/clock"
	"codeclash/internal/common/security"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

// ParticipationService admits users into contests. Join is idempotent: the
// unique (contest_id, user_id) pair plus a conflict-aware insert resolve
// concurrent duplicate joins to a single row.
type ParticipationService struct {
	participantRepo repository.ParticipantRepository
	contestRepo     repository.ContestRepository
	clk             clock.Clock
}

func NewParticipationService(
	participantRepo repository.ParticipantRepository,
	contestRepo repository.ContestRepository,
	clk clock.Clock,
) *ParticipationService {
	return &ParticipationService{
		participantRepo: participantRepo,
		contestRepo:     contestRepo,
		clk:             clk,
	}
}

type JoinResult struct {
	Participant   *model.Participant `json:"participant"`
	AlreadyJoined bool               `json:"already_joined"`
}

func (s *ParticipationService) Join(ctx context.Context, contestID, userID, accessCode string) (*JoinResult, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}

	// One Now() read drives the whole admission decision.
	now := s.clk.Now()
	switch contest.StatusAt(now) {
	case model.ContestUpcoming, model.ContestLive:
	default:
		return nil, common.Errorf("contest %s: %w", contest.Slug, common.ErrContestNotJoinable)
	}

	if contest.Visibility == model.VisibilityPrivate {
		if contest.AccessCodeHash == nil || !security.CheckAccessCode(accessCode, *contest.AccessCodeHash) {
			return nil, common.ErrInvalidAccessCode
		}
	}

	participant := &model.Participant{
		ID:        uuid.NewString(),
		ContestID: contestID,
		UserID:    userID,
		JoinedAt:  now,
	}
	inserted, err := s.participantRepo.Insert(ctx, participant)
	if err != nil {
		return nil, common.Errorf("failed to join contest: %w", err)
	}
	if inserted {
		return &JoinResult{Participant: participant}, nil
	}

	// Lost the insert (or already a member): the existing row wins.
	existing, err := s.participantRepo.FindByContestAndUser(ctx, contestID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("participant row vanished after conflict: %w", common.ErrInternalServer)
		}
		return nil, common.Errorf("failed to load existing participant: %w", err)
	}
	return &JoinResult{Participant: existing, AlreadyJoined: true}, nil
}
