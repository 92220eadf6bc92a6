package service

import (
	"context"
	"database/sql"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/common/clock"
	"codeclash/internal/common/security"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ContestService is the contest registry: it owns contest, question and
// test-case read access and derives lifecycle status on every read.
type ContestService struct {
	contestRepo repository.ContestRepository
	clk         clock.Clock
	db          *sql.DB // For transactions
}

func NewContestService(contestRepo repository.ContestRepository, clk clock.Clock, db *sql.DB) *ContestService {
	return &ContestService{contestRepo: contestRepo, clk: clk, db: db}
}

type CreateContestRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	StartTime   time.Time               `json:"start_time"`
	EndTime     time.Time               `json:"end_time"`
	Visibility  model.ContestVisibility `json:"visibility"`
	AccessCode  string                  `json:"access_code,omitempty"`
	Publish     bool                    `json:"publish"`
}

func (s *ContestService) CreateContest(ctx context.Context, creatorID string, req CreateContestRequest) (*model.Contest, error) {
	if req.Title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrValidation)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, common.Errorf("contest end time must be after start time: %w", common.ErrValidation)
	}
	switch req.Visibility {
	case model.VisibilityPublic, model.VisibilityPrivate:
	case "":
		req.Visibility = model.VisibilityPublic
	default:
		return nil, common.Errorf("unknown visibility %q: %w", req.Visibility, common.ErrValidation)
	}

	var accessCodeHash *string
	if req.Visibility == model.VisibilityPrivate {
		if req.AccessCode == "" {
			return nil, common.Errorf("private contest requires an access code: %w", common.ErrValidation)
		}
		hash, err := security.HashAccessCode(req.AccessCode)
		if err != nil {
			return nil, common.Errorf("failed to hash access code: %w", err)
		}
		accessCodeHash = &hash
	} else if req.AccessCode != "" {
		return nil, common.Errorf("public contest must not carry an access code: %w", common.ErrValidation)
	}

	contest := &model.Contest{
		ID:             uuid.NewString(),
		Slug:           slug.Make(req.Title),
		Title:          req.Title,
		Description:    req.Description,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Published:      req.Publish,
		Visibility:     req.Visibility,
		AccessCodeHash: accessCodeHash,
		CreatedByID:    creatorID,
	}

	if err := s.contestRepo.CreateContest(ctx, nil, contest); err != nil {
		return nil, common.Errorf("failed to create contest: %w", err)
	}
	contest.Status = contest.StatusAt(s.clk.Now())
	return contest, nil
}

// Publish flips a draft contest to its time-derived lifecycle. Atomic: the
// update either lands or the contest stays a draft.
func (s *ContestService) Publish(ctx context.Context, contestID string) (*model.Contest, error) {
	if err := s.contestRepo.SetPublished(ctx, contestID, true); err != nil {
		return nil, common.Errorf("failed to publish contest: %w", err)
	}
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to load published contest: %w", err)
	}
	contest.Status = contest.StatusAt(s.clk.Now())
	return contest, nil
}

// GetContestBySlug returns the stored record plus its derived status.
// Callers must never persist the status.
func (s *ContestService) GetContestBySlug(ctx context.Context, slugStr string) (*model.Contest, error) {
	contest, err := s.contestRepo.FindContestBySlug(ctx, slugStr)
	if err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}
	contest.Status = contest.StatusAt(s.clk.Now())
	return contest, nil
}

func (s *ContestService) ListContests(ctx context.Context, limit, offset int) ([]model.Contest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	contests, err := s.contestRepo.ListContests(ctx, limit, offset)
	if err != nil {
		return nil, common.Errorf("failed to list contests: %w", err)
	}
	now := s.clk.Now()
	for i := range contests {
		contests[i].Status = contests[i].StatusAt(now)
	}
	return contests, nil
}

// ListQuestions returns the contest's question set with sample test cases
// only. Hidden cases are judged but never exposed. Question content stays
// sealed until the contest window opens.
func (s *ContestService) ListQuestions(ctx context.Context, contestID string, isAdmin bool) ([]model.Question, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}
	if !isAdmin {
		switch contest.StatusAt(s.clk.Now()) {
		case model.ContestLive, model.ContestEnded:
		default:
			return nil, common.Errorf("contest questions are not visible yet: %w", common.ErrForbidden)
		}
	}

	questions, err := s.contestRepo.ListQuestionsByContestID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list questions: %w", err)
	}
	for i := range questions {
		samples, err := s.contestRepo.GetTestCasesByQuestionID(ctx, questions[i].ID, false)
		if err != nil {
			return nil, common.Errorf("failed to load sample cases: %w", err)
		}
		questions[i].SampleCases = samples
	}
	return questions, nil
}

// buildTestCases materializes request cases in request order. SortOrder is
// assigned here, once; judging replays cases by it.
func buildTestCases(questionID string, reqs []AddTestCaseRequest) []model.TestCase {
	cases := make([]model.TestCase, 0, len(reqs))
	for i, tc := range reqs {
		cases = append(cases, model.TestCase{
			ID:             uuid.NewString(),
			QuestionID:     questionID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			IsHidden:       tc.IsHidden,
			SortOrder:      i + 1,
		})
	}
	return cases
}

type AddQuestionRequest struct {
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Difficulty       model.QuestionDifficulty `json:"difficulty"`
	Points           int                      `json:"points"`
	TimeLimitSeconds int                      `json:"time_limit_seconds"`
	OrderIndex       int                      `json:"order_index"`
	TestCases        []AddTestCaseRequest     `json:"test_cases"`
}

type AddTestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

// AddQuestion creates a question and its test cases in one transaction so a
// half-written question can never be judged.
func (s *ContestService) AddQuestion(ctx context.Context, contestID string, req AddQuestionRequest) (*model.Question, error) {
	if req.Points <= 0 {
		return nil, common.Errorf("question points must be positive: %w", common.ErrValidation)
	}
	if req.TimeLimitSeconds <= 0 {
		return nil, common.Errorf("question time limit must be positive: %w", common.ErrValidation)
	}
	switch req.Difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, common.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	if len(req.TestCases) == 0 {
		return nil, common.Errorf("question requires at least one test case: %w", common.ErrValidation)
	}

	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, common.Errorf("contest not found: %w", err)
	}

	question := &model.Question{
		ID:               uuid.NewString(),
		ContestID:        contestID,
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Points:           req.Points,
		TimeLimitSeconds: req.TimeLimitSeconds,
		OrderIndex:       req.OrderIndex,
	}
	cases := buildTestCases(question.ID, req.TestCases)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.contestRepo.AddQuestion(ctx, tx, question); err != nil {
		return nil, common.Errorf("failed to create question: %w", err)
	}
	if err := s.contestRepo.AddTestCases(ctx, tx, question.ID, cases); err != nil {
		return nil, common.Errorf("failed to create test cases: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return question, nil
}
