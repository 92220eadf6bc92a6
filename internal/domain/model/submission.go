package model

import "time"

// Verdict is the closed outcome classification of a judged submission. Every
// consumer (scoring, leaderboard, API) handles all cases; VerdictJudgingFailed
// marks an execution-service outage and is never conflated with WrongAnswer.
type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded Verdict = "TimeLimitExceeded"
	VerdictRuntimeError      Verdict = "RuntimeError"
	VerdictCompileError      Verdict = "CompileError"
	VerdictJudgingFailed     Verdict = "JudgingFailed"
)

// Submission records one judged attempt. Immutable once recorded: judging
// never edits a past submission.
type Submission struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	ContestID     string    `json:"contest_id"`
	QuestionID    string    `json:"question_id"`
	Code          string    `json:"code,omitempty"`
	Language      string    `json:"language"`
	Verdict       Verdict   `json:"verdict"`
	TestsPassed   int       `json:"tests_passed"`
	TestsTotal    int       `json:"tests_total"`
	PointsAwarded int       `json:"points_awarded"`
	RuntimeMs     int       `json:"runtime_ms"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// CountsAsWrongAttempt reports whether the submission adds to the penalty of
// a later acceptance. Judging outages do not cost the participant anything.
func (s *Submission) CountsAsWrongAttempt() bool {
	return s.Verdict != VerdictAccepted && s.Verdict != VerdictJudgingFailed
}
