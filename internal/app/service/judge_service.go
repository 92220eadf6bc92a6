package service

import (
	"context"
	"errors"
	"log"

	"codeclash/internal/app/judge"
	"codeclash/internal/common"
	"codeclash/internal/common/clock"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

// JudgeService accepts a participant's code, runs it against the question's
// test cases through the execution service and records the verdict. It holds
// no mutable shared state across invocations; concurrency toward the
// executor is bounded by the judge.Pool it is given.
type JudgeService struct {
	contestRepo     repository.ContestRepository
	participantRepo repository.ParticipantRepository
	submissionRepo  repository.SubmissionRepository
	executor        judge.Executor
	clk             clock.Clock
}

func NewJudgeService(
	contestRepo repository.ContestRepository,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	executor judge.Executor,
	clk clock.Clock,
) *JudgeService {
	return &JudgeService{
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		executor:        executor,
		clk:             clk,
	}
}

type SubmitRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Submit judges one submission. Preconditions short-circuit in order:
// membership, contest liveness, question existence. A rejected submission is
// never recorded; a judged one always is, whatever the verdict.
func (s *JudgeService) Submit(ctx context.Context, userID, contestID, questionID string, req SubmitRequest) (*model.Submission, error) {
	if req.Code == "" || req.Language == "" {
		return nil, common.Errorf("code and language are required: %w", common.ErrValidation)
	}

	participant, err := s.participantRepo.FindByContestAndUser(ctx, contestID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotParticipant
		}
		return nil, common.Errorf("failed to resolve participant: %w", err)
	}

	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}
	// The same instant decides liveness here and is stored as SubmittedAt, so
	// admission and the recorded log can never disagree about the window.
	now := s.clk.Now()
	if contest.StatusAt(now) != model.ContestLive {
		return nil, common.ErrContestNotLive
	}

	question, err := s.contestRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrQuestionNotFound
		}
		return nil, common.Errorf("failed to load question: %w", err)
	}
	if question.ContestID != contestID {
		return nil, common.ErrQuestionNotFound
	}

	cases, err := s.contestRepo.GetTestCasesByQuestionID(ctx, questionID, true)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	if len(cases) == 0 {
		return nil, common.Errorf("question %s has no test cases: %w", questionID, common.ErrInternalServer)
	}

	// Judging outlives the request: a client disconnect must not leave a
	// half-judged submission unrecorded.
	judgeCtx := context.WithoutCancel(ctx)

	verdict, passed, runtimeMs := s.runTestCases(judgeCtx, question, cases, req)

	submission := &model.Submission{
		ID:            uuid.NewString(),
		ParticipantID: participant.ID,
		ContestID:     contestID,
		QuestionID:    questionID,
		Code:          req.Code,
		Language:      req.Language,
		Verdict:       verdict,
		TestsPassed:   passed,
		TestsTotal:    len(cases),
		RuntimeMs:     runtimeMs,
		SubmittedAt:   now,
	}
	if verdict == model.VerdictAccepted {
		submission.PointsAwarded = question.Points
	}

	if err := s.submissionRepo.CreateSubmission(judgeCtx, submission); err != nil {
		return nil, common.Errorf("failed to record submission: %w", err)
	}
	log.Printf("Submission %s judged: %s (%d/%d tests)", submission.ID, verdict, passed, len(cases))
	return submission, nil
}

// runTestCases evaluates test cases in creation order; the first failing
// cause wins. Executor outages yield JudgingFailed, which is a distinct
// verdict so the leaderboard never scores a network failure as WrongAnswer.
func (s *JudgeService) runTestCases(ctx context.Context, question *model.Question, cases []model.TestCase, req SubmitRequest) (model.Verdict, int, int) {
	passed := 0
	runtimeMs := 0

	for _, tc := range cases {
		result, err := s.executor.Execute(ctx, judge.ExecRequest{
			Language:    req.Language,
			Code:        req.Code,
			Stdin:       tc.Input,
			TimeLimitMs: question.TimeLimitSeconds * 1000,
		})
		if err != nil {
			log.Printf("ERROR: execution service failed for question %s: %v", question.ID, err)
			return model.VerdictJudgingFailed, passed, runtimeMs
		}

		switch {
		case result.CompileError:
			return model.VerdictCompileError, passed, runtimeMs
		case result.TimedOut:
			return model.VerdictTimeLimitExceeded, passed, runtimeMs
		case result.ExitCode != 0:
			return model.VerdictRuntimeError, passed, runtimeMs
		case !judge.OutputsMatch(result.Stdout, tc.ExpectedOutput):
			return model.VerdictWrongAnswer, passed, runtimeMs
		}

		passed++
		runtimeMs += result.RuntimeMs
	}
	return model.VerdictAccepted, passed, runtimeMs
}

// ListMySubmissions returns the caller's submission history in a contest,
// newest first.
func (s *JudgeService) ListMySubmissions(ctx context.Context, userID, contestID string, limit, offset int) ([]model.Submission, error) {
	participant, err := s.participantRepo.FindByContestAndUser(ctx, contestID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotParticipant
		}
		return nil, common.Errorf("failed to resolve participant: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	subs, err := s.submissionRepo.ListByParticipant(ctx, participant.ID, limit, offset)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}
