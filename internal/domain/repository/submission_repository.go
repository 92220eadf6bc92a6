package repository

import (
	"context"
	"database/sql"
	"fmt"

	"codeclash/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	// ListByContestID returns the contest's submission log in submission
	// order. The leaderboard is a pure reduction over this snapshot.
	ListByContestID(ctx context.Context, contestID string) ([]model.Submission, error)
	ListByParticipant(ctx context.Context, participantID string, limit, offset int) ([]model.Submission, error)
	AcceptedQuestionIDs(ctx context.Context, contestID, userID string) ([]string, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, participant_id, contest_id, question_id, code, language, verdict, tests_passed, tests_total, points_awarded, runtime_ms, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ParticipantID, s.ContestID, s.QuestionID, s.Code, s.Language,
		s.Verdict, s.TestsPassed, s.TestsTotal, s.PointsAwarded, s.RuntimeMs, s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

const submissionColumns = `id, participant_id, contest_id, question_id, code, language, verdict, tests_passed, tests_total, points_awarded, runtime_ms, submitted_at`

func (r *pgSubmissionRepository) ListByContestID(ctx context.Context, contestID string) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE contest_id = $1 ORDER BY submitted_at ASC, id ASC`
	return r.list(ctx, query, contestID)
}

func (r *pgSubmissionRepository) ListByParticipant(ctx context.Context, participantID string, limit, offset int) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions
	          WHERE participant_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, participantID, limit, offset)
}

func (r *pgSubmissionRepository) list(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.ParticipantID, &s.ContestID, &s.QuestionID, &s.Code, &s.Language,
			&s.Verdict, &s.TestsPassed, &s.TestsTotal, &s.PointsAwarded, &s.RuntimeMs, &s.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.list scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.list rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) AcceptedQuestionIDs(ctx context.Context, contestID, userID string) ([]string, error) {
	query := `SELECT DISTINCT s.question_id
	          FROM submissions s
	          JOIN participants p ON s.participant_id = p.id
	          WHERE s.contest_id = $1 AND p.user_id = $2 AND s.verdict = $3`
	rows, err := r.db.QueryContext(ctx, query, contestID, userID, model.VerdictAccepted)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.AcceptedQuestionIDs query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.AcceptedQuestionIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.AcceptedQuestionIDs rows.Err: %w", err)
	}
	return ids, nil
}
