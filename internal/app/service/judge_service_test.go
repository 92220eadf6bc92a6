package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeclash/internal/app/judge"
	"codeclash/internal/common"
	"codeclash/internal/common/clock"
	"codeclash/internal/domain/model"
)

type judgeFixture struct {
	contests     *fakeContestRepo
	participants *fakeParticipantRepo
	submissions  *fakeSubmissionRepo
	clk          *clock.Fixed
	contest      *model.Contest
	question     *model.Question
	participant  *model.Participant
}

var contestStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newJudgeFixture() *judgeFixture {
	f := &judgeFixture{
		contests:     newFakeContestRepo(),
		participants: newFakeParticipantRepo(),
		submissions:  newFakeSubmissionRepo(),
		clk:          &clock.Fixed{T: contestStart.Add(10 * time.Minute)},
	}

	f.contest = &model.Contest{
		ID:         "c1",
		Slug:       "summer-cup",
		Title:      "Summer Cup",
		StartTime:  contestStart,
		EndTime:    contestStart.Add(time.Hour),
		Published:  true,
		Visibility: model.VisibilityPublic,
	}
	f.contests.contests[f.contest.ID] = f.contest

	f.question = &model.Question{
		ID:               "q1",
		ContestID:        "c1",
		Title:            "Sum",
		Difficulty:       model.DifficultyEasy,
		Points:           100,
		TimeLimitSeconds: 2,
	}
	f.contests.questions[f.question.ID] = f.question
	f.contests.testCases["q1"] = []model.TestCase{
		{ID: "t1", QuestionID: "q1", Input: "1 2", ExpectedOutput: "3", SortOrder: 1},
		{ID: "t2", QuestionID: "q1", Input: "2 2", ExpectedOutput: "4", IsHidden: true, SortOrder: 2},
		{ID: "t3", QuestionID: "q1", Input: "0 0", ExpectedOutput: "0", IsHidden: true, SortOrder: 3},
	}

	f.participant = &model.Participant{ID: "p1", ContestID: "c1", UserID: "u1", JoinedAt: contestStart}
	f.participants.rows = append(f.participants.rows, f.participant)
	return f
}

func (f *judgeFixture) service(exec judge.Executor) *JudgeService {
	return NewJudgeService(f.contests, f.participants, f.submissions, exec, f.clk)
}

func pass(out string) *judge.ExecResult { return &judge.ExecResult{Stdout: out, RuntimeMs: 10} }

func TestSubmitAccepted(t *testing.T) {
	f := newJudgeFixture()
	exec := &scriptedExecutor{results: []*judge.ExecResult{pass("3"), pass("4"), pass("0")}}

	sub, err := f.service(exec).Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "code", Language: "go"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Verdict != model.VerdictAccepted {
		t.Errorf("verdict = %s, want Accepted", sub.Verdict)
	}
	if sub.TestsPassed != 3 || sub.TestsTotal != 3 {
		t.Errorf("tests = %d/%d, want 3/3", sub.TestsPassed, sub.TestsTotal)
	}
	if sub.PointsAwarded != 100 {
		t.Errorf("points = %d, want 100", sub.PointsAwarded)
	}
	if sub.RuntimeMs != 30 {
		t.Errorf("runtime = %d, want 30", sub.RuntimeMs)
	}
	if !sub.SubmittedAt.Equal(f.clk.T) {
		t.Errorf("submittedAt = %v, want the admission instant %v", sub.SubmittedAt, f.clk.T)
	}
	if len(f.submissions.rows) != 1 {
		t.Fatalf("expected 1 recorded submission, got %d", len(f.submissions.rows))
	}
}

func TestSubmitVerdictDerivation(t *testing.T) {
	tests := []struct {
		name        string
		results     []*judge.ExecResult
		execErr     error
		wantVerdict model.Verdict
		wantPassed  int
	}{
		{
			name:        "wrong answer on second test",
			results:     []*judge.ExecResult{pass("3"), pass("5"), pass("0")},
			wantVerdict: model.VerdictWrongAnswer,
			wantPassed:  1,
		},
		{
			name:        "time limit exceeded",
			results:     []*judge.ExecResult{pass("3"), {TimedOut: true}},
			wantVerdict: model.VerdictTimeLimitExceeded,
			wantPassed:  1,
		},
		{
			name:        "runtime error",
			results:     []*judge.ExecResult{{Stdout: "", ExitCode: 2, Stderr: "panic"}},
			wantVerdict: model.VerdictRuntimeError,
			wantPassed:  0,
		},
		{
			name:        "compile error before any test",
			results:     []*judge.ExecResult{{CompileError: true, CompileOutput: "syntax error"}},
			wantVerdict: model.VerdictCompileError,
			wantPassed:  0,
		},
		{
			name:        "executor outage is judging failure",
			results:     []*judge.ExecResult{pass("3"), nil},
			execErr:     judge.ErrExecutorUnavailable,
			wantVerdict: model.VerdictJudgingFailed,
			wantPassed:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJudgeFixture()
			exec := &scriptedExecutor{results: tt.results, err: tt.execErr}

			sub, err := f.service(exec).Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "code", Language: "go"})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if sub.Verdict != tt.wantVerdict {
				t.Errorf("verdict = %s, want %s", sub.Verdict, tt.wantVerdict)
			}
			if sub.TestsPassed != tt.wantPassed {
				t.Errorf("testsPassed = %d, want %d", sub.TestsPassed, tt.wantPassed)
			}
			if sub.PointsAwarded != 0 {
				t.Errorf("points = %d, want 0 for non-accepted verdict", sub.PointsAwarded)
			}
			// Recorded and visible in history regardless of verdict.
			if len(f.submissions.rows) != 1 {
				t.Errorf("expected 1 recorded submission, got %d", len(f.submissions.rows))
			}
		})
	}
}

func TestSubmitPreconditions(t *testing.T) {
	t.Run("not a participant", func(t *testing.T) {
		f := newJudgeFixture()
		exec := &scriptedExecutor{}
		_, err := f.service(exec).Submit(context.Background(), "stranger", "c1", "q1", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrNotParticipant) {
			t.Fatalf("expected ErrNotParticipant, got %v", err)
		}
		if exec.calls != 0 {
			t.Errorf("executor must not be called on precondition failure")
		}
	})

	t.Run("submission after end is rejected unrecorded", func(t *testing.T) {
		f := newJudgeFixture()
		f.clk.Set(contestStart.Add(61 * time.Minute))
		exec := &scriptedExecutor{}
		_, err := f.service(exec).Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrContestNotLive) {
			t.Fatalf("expected ErrContestNotLive, got %v", err)
		}
		if len(f.submissions.rows) != 0 {
			t.Errorf("rejected submission must not be recorded")
		}
	})

	t.Run("submission before start is rejected", func(t *testing.T) {
		f := newJudgeFixture()
		f.clk.Set(contestStart.Add(-time.Minute))
		_, err := f.service(&scriptedExecutor{}).Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrContestNotLive) {
			t.Fatalf("expected ErrContestNotLive, got %v", err)
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newJudgeFixture()
		_, err := f.service(&scriptedExecutor{}).Submit(context.Background(), "u1", "c1", "nope", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrQuestionNotFound) {
			t.Fatalf("expected ErrQuestionNotFound, got %v", err)
		}
	})

	t.Run("question of another contest", func(t *testing.T) {
		f := newJudgeFixture()
		f.contests.questions["q9"] = &model.Question{ID: "q9", ContestID: "c9", Points: 50, TimeLimitSeconds: 1}
		_, err := f.service(&scriptedExecutor{}).Submit(context.Background(), "u1", "c1", "q9", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrQuestionNotFound) {
			t.Fatalf("expected ErrQuestionNotFound, got %v", err)
		}
	})

	t.Run("membership is checked before liveness", func(t *testing.T) {
		f := newJudgeFixture()
		f.clk.Set(contestStart.Add(61 * time.Minute))
		_, err := f.service(&scriptedExecutor{}).Submit(context.Background(), "stranger", "c1", "q1", SubmitRequest{Code: "c", Language: "go"})
		if !errors.Is(err, common.ErrNotParticipant) {
			t.Fatalf("expected ErrNotParticipant first, got %v", err)
		}
	})
}

func TestSubmitRepeatAcceptedStillAwardsPoints(t *testing.T) {
	// The submission record carries the question's points on every accepted
	// run; the leaderboard credits only the first acceptance.
	f := newJudgeFixture()
	svc := f.service(&scriptedExecutor{results: []*judge.ExecResult{pass("3"), pass("4"), pass("0")}})
	first, err := svc.Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "v1", Language: "go"})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	svc = f.service(&scriptedExecutor{results: []*judge.ExecResult{pass("3"), pass("4"), pass("0")}})
	second, err := svc.Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "v2", Language: "go"})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if first.PointsAwarded != 100 || second.PointsAwarded != 100 {
		t.Errorf("points = %d, %d; want 100 on each accepted record", first.PointsAwarded, second.PointsAwarded)
	}

	entries := ComputeEntries(f.contest, []model.Participant{*f.participant}, f.submissions.rows, 20*time.Minute)
	if entries[0].TotalPoints != 100 {
		t.Errorf("leaderboard credited %d points, want 100 exactly once", entries[0].TotalPoints)
	}
}

func TestListMySubmissions(t *testing.T) {
	f := newJudgeFixture()
	svc := f.service(&scriptedExecutor{results: []*judge.ExecResult{pass("wrong")}})
	if _, err := svc.Submit(context.Background(), "u1", "c1", "q1", SubmitRequest{Code: "c", Language: "go"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	subs, err := svc.ListMySubmissions(context.Background(), "u1", "c1", 10, 0)
	if err != nil {
		t.Fatalf("ListMySubmissions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission in history, got %d", len(subs))
	}

	if _, err := svc.ListMySubmissions(context.Background(), "stranger", "c1", 10, 0); !errors.Is(err, common.ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant for non-member history, got %v", err)
	}
}
