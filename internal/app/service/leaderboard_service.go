package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// LeaderboardService derives the total ranking of a contest from its
// submission log. It never mutates submissions: the computation is a pure
// reduction, so recomputing from the same log always yields the same ranking.
type LeaderboardService struct {
	contestRepo     repository.ContestRepository
	participantRepo repository.ParticipantRepository
	submissionRepo  repository.SubmissionRepository
	rdb             *redis.Client
	penaltyPerWrong time.Duration
	cacheTTL        time.Duration
}

func NewLeaderboardService(
	contestRepo repository.ContestRepository,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	rdb *redis.Client,
	penaltyPerWrong time.Duration,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		rdb:             rdb,
		penaltyPerWrong: penaltyPerWrong,
		cacheTTL:        cacheTTL,
	}
}

// GetLeaderboard serves the ranking, recomputed on read. A short-TTL Redis
// cache absorbs repeated reads; cache trouble degrades to recomputation.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	cacheKey := "leaderboard:" + contestID
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var entries []model.LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			log.Printf("WARN: leaderboard cache read failed for %s: %v", contestID, err)
		}
	}

	entries, err := s.ComputeLeaderboard(ctx, contestID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("WARN: leaderboard cache write failed for %s: %v", contestID, err)
			}
		}
	}
	return entries, nil
}

// ComputeLeaderboard reads a snapshot of the submission log and reduces it.
func (s *LeaderboardService) ComputeLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}
	participants, err := s.participantRepo.ListByContestID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list participants: %w", err)
	}
	submissions, err := s.submissionRepo.ListByContestID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to read submission log: %w", err)
	}
	return ComputeEntries(contest, participants, submissions, s.penaltyPerWrong), nil
}

// GetQuestionCompletionStatus returns the questionIDs for which the user has
// an Accepted submission in the contest.
func (s *LeaderboardService) GetQuestionCompletionStatus(ctx context.Context, contestID, userID string) ([]string, error) {
	ids, err := s.submissionRepo.AcceptedQuestionIDs(ctx, contestID, userID)
	if err != nil {
		return nil, common.Errorf("failed to load completion status: %w", err)
	}
	return ids, nil
}

type questionTally struct {
	solved      bool
	acceptedAt  time.Time
	points      int
	wrongBefore int
}

// ComputeEntries is the pure reduction at the heart of the leaderboard.
//
// Per distinct question, credit comes from the first Accepted submission;
// resubmissions of a solved question change nothing. Penalty is the time
// from contest start to acceptance plus a fixed charge per prior failed
// attempt, counted only on solved questions. Ranking order: points
// descending, penalty ascending, lastAcceptedAt ascending, then stable by
// participant join order.
func ComputeEntries(contest *model.Contest, participants []model.Participant, submissions []model.Submission, penaltyPerWrong time.Duration) []model.LeaderboardEntry {
	tallies := make(map[string]map[string]*questionTally, len(participants))
	for _, p := range participants {
		tallies[p.ID] = make(map[string]*questionTally)
	}

	for _, sub := range submissions {
		perQuestion, ok := tallies[sub.ParticipantID]
		if !ok {
			continue
		}
		qt := perQuestion[sub.QuestionID]
		if qt == nil {
			qt = &questionTally{}
			perQuestion[sub.QuestionID] = qt
		}
		if qt.solved {
			continue
		}
		if sub.Verdict == model.VerdictAccepted {
			qt.solved = true
			qt.acceptedAt = sub.SubmittedAt
			qt.points = sub.PointsAwarded
		} else if sub.CountsAsWrongAttempt() {
			qt.wrongBefore++
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		entry := model.LeaderboardEntry{
			UserID:        p.UserID,
			ParticipantID: p.ID,
		}
		for _, qt := range tallies[p.ID] {
			if !qt.solved {
				continue
			}
			entry.Solved++
			entry.TotalPoints += qt.points
			penalty := qt.acceptedAt.Sub(contest.StartTime) + time.Duration(qt.wrongBefore)*penaltyPerWrong
			entry.TotalPenaltyMs += penalty.Milliseconds()
			if qt.acceptedAt.After(entry.LastAcceptedAt) {
				entry.LastAcceptedAt = qt.acceptedAt
			}
		}
		entries = append(entries, entry)
	}

	// entries start in join order; the stable sort preserves it as the last
	// tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TotalPenaltyMs != b.TotalPenaltyMs {
			return a.TotalPenaltyMs < b.TotalPenaltyMs
		}
		if !a.LastAcceptedAt.Equal(b.LastAcceptedAt) {
			return a.LastAcceptedAt.Before(b.LastAcceptedAt)
		}
		return false
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
