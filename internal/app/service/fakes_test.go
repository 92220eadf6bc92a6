package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"codeclash/internal/app/judge"
	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type fakeContestRepo struct {
	contests  map[string]*model.Contest
	questions map[string]*model.Question
	testCases map[string][]model.TestCase // by question ID, in creation order
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{
		contests:  map[string]*model.Contest{},
		questions: map[string]*model.Question{},
		testCases: map[string][]model.TestCase{},
	}
}

func (r *fakeContestRepo) CreateContest(_ context.Context, _ *sql.Tx, c *model.Contest) error {
	cp := *c
	r.contests[c.ID] = &cp
	return nil
}

func (r *fakeContestRepo) FindContestByID(_ context.Context, id string) (*model.Contest, error) {
	c, ok := r.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeContestRepo) FindContestBySlug(_ context.Context, slug string) (*model.Contest, error) {
	for _, c := range r.contests {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeContestRepo) ListContests(_ context.Context, _, _ int) ([]model.Contest, error) {
	out := []model.Contest{}
	for _, c := range r.contests {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeContestRepo) SetPublished(_ context.Context, contestID string, published bool) error {
	c, ok := r.contests[contestID]
	if !ok {
		return common.ErrNotFound
	}
	c.Published = published
	return nil
}

func (r *fakeContestRepo) AddQuestion(_ context.Context, _ *sql.Tx, q *model.Question) error {
	cp := *q
	r.questions[q.ID] = &cp
	return nil
}

func (r *fakeContestRepo) AddTestCases(_ context.Context, _ *sql.Tx, questionID string, cases []model.TestCase) error {
	r.testCases[questionID] = append(r.testCases[questionID], cases...)
	return nil
}

func (r *fakeContestRepo) FindQuestionByID(_ context.Context, id string) (*model.Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeContestRepo) ListQuestionsByContestID(_ context.Context, contestID string) ([]model.Question, error) {
	out := []model.Question{}
	for _, q := range r.questions {
		if q.ContestID == contestID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeContestRepo) GetTestCasesByQuestionID(_ context.Context, questionID string, includeHidden bool) ([]model.TestCase, error) {
	out := []model.TestCase{}
	for _, tc := range r.testCases[questionID] {
		if includeHidden || !tc.IsHidden {
			out = append(out, tc)
		}
	}
	return out, nil
}

type fakeParticipantRepo struct {
	mu   sync.Mutex
	rows []*model.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{}
}

func (r *fakeParticipantRepo) Insert(_ context.Context, p *model.Participant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ContestID == p.ContestID && row.UserID == p.UserID {
			return false, nil
		}
	}
	cp := *p
	r.rows = append(r.rows, &cp)
	return true, nil
}

func (r *fakeParticipantRepo) FindByContestAndUser(_ context.Context, contestID, userID string) (*model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ContestID == contestID && row.UserID == userID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeParticipantRepo) ListByContestID(_ context.Context, contestID string) ([]model.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Participant{}
	for _, row := range r.rows { // insertion order == join order
		if row.ContestID == contestID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	rows []model.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{}
}

func (r *fakeSubmissionRepo) CreateSubmission(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *s)
	return nil
}

func (r *fakeSubmissionRepo) ListByContestID(_ context.Context, contestID string) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Submission{}
	for _, s := range r.rows {
		if s.ContestID == contestID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByParticipant(_ context.Context, participantID string, limit, offset int) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Submission{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ParticipantID == participantID {
			out = append(out, r.rows[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSubmissionRepo) AcceptedQuestionIDs(_ context.Context, contestID, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	ids := []string{}
	for _, s := range r.rows {
		if s.ContestID == contestID && s.Verdict == model.VerdictAccepted && !seen[s.QuestionID] {
			seen[s.QuestionID] = true
			ids = append(ids, s.QuestionID)
		}
	}
	return ids, nil
}

// scriptedExecutor returns its canned outcomes in order; a nil result means
// the call fails with err.
type scriptedExecutor struct {
	mu      sync.Mutex
	results []*judge.ExecResult
	err     error
	calls   int
}

func (e *scriptedExecutor) Execute(_ context.Context, _ judge.ExecRequest) (*judge.ExecResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calls >= len(e.results) {
		return nil, judge.ErrExecutorUnavailable
	}
	res := e.results[e.calls]
	e.calls++
	if res == nil {
		if e.err != nil {
			return nil, e.err
		}
		return nil, judge.ErrExecutorUnavailable
	}
	return res, nil
}
