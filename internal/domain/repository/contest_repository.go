package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ContestRepository interface {
	CreateContest(ctx context.Context, tx *sql.Tx, contest *model.Contest) error
	FindContestByID(ctx context.Context, id string) (*model.Contest, error)
	FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error)
	ListContests(ctx context.Context, limit, offset int) ([]model.Contest, error)
	SetPublished(ctx context.Context, contestID string, published bool) error

	AddQuestion(ctx context.Context, tx *sql.Tx, question *model.Question) error
	AddTestCases(ctx context.Context, tx *sql.Tx, questionID string, cases []model.TestCase) error
	FindQuestionByID(ctx context.Context, id string) (*model.Question, error)
	ListQuestionsByContestID(ctx context.Context, contestID string) ([]model.Question, error)
	// GetTestCasesByQuestionID returns cases in creation order (sort_order).
	// Judging depends on this order being stable.
	GetTestCasesByQuestionID(ctx context.Context, questionID string, includeHidden bool) ([]model.TestCase, error)
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

func (r *pgContestRepository) CreateContest(ctx context.Context, tx *sql.Tx, c *model.Contest) error {
	query := `INSERT INTO contests (id, slug, title, description, start_time, end_time, published, visibility, access_code_hash, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, c.ID, c.Slug, c.Title, c.Description, c.StartTime, c.EndTime, c.Published, c.Visibility, c.AccessCodeHash, c.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, c.ID, c.Slug, c.Title, c.Description, c.StartTime, c.EndTime, c.Published, c.Visibility, c.AccessCodeHash, c.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("contest with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.CreateContest: %w", err)
	}
	return nil
}

const contestColumns = `id, slug, title, description, start_time, end_time, published, visibility, access_code_hash, created_by, created_at, updated_at`

func (r *pgContestRepository) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	return r.findContest(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id)
}

func (r *pgContestRepository) FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error) {
	return r.findContest(ctx, `SELECT `+contestColumns+` FROM contests WHERE slug = $1`, slug)
}

func (r *pgContestRepository) findContest(ctx context.Context, query string, arg any) (*model.Contest, error) {
	contest := &model.Contest{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&contest.ID, &contest.Slug, &contest.Title, &contest.Description,
		&contest.StartTime, &contest.EndTime, &contest.Published, &contest.Visibility,
		&contest.AccessCodeHash, &contest.CreatedByID, &contest.CreatedAt, &contest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.findContest: %w", err)
	}
	return contest, nil
}

func (r *pgContestRepository) ListContests(ctx context.Context, limit, offset int) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListContests query: %w", err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		var c model.Contest
		if err := rows.Scan(
			&c.ID, &c.Slug, &c.Title, &c.Description,
			&c.StartTime, &c.EndTime, &c.Published, &c.Visibility,
			&c.AccessCodeHash, &c.CreatedByID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListContests scan: %w", err)
		}
		contests = append(contests, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListContests rows.Err: %w", err)
	}
	return contests, nil
}

func (r *pgContestRepository) SetPublished(ctx context.Context, contestID string, published bool) error {
	query := `UPDATE contests SET published = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, published, contestID)
	if err != nil {
		return fmt.Errorf("pgContestRepository.SetPublished: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgContestRepository) AddQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) error {
	query := `INSERT INTO questions (id, contest_id, title, description, difficulty, points, time_limit_seconds, order_index)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, q.ID, q.ContestID, q.Title, q.Description, q.Difficulty, q.Points, q.TimeLimitSeconds, q.OrderIndex)
	} else {
		_, err = r.db.ExecContext(ctx, query, q.ID, q.ContestID, q.Title, q.Description, q.Difficulty, q.Points, q.TimeLimitSeconds, q.OrderIndex)
	}
	if err != nil {
		return fmt.Errorf("pgContestRepository.AddQuestion: %w", err)
	}
	return nil
}

func (r *pgContestRepository) AddTestCases(ctx context.Context, tx *sql.Tx, questionID string, cases []model.TestCase) error {
	if len(cases) == 0 {
		return nil
	}
	const insert = `INSERT INTO test_cases (id, question_id, input, expected_output, is_hidden, sort_order) VALUES ($1, $2, $3, $4, $5, $6)`
	var stmt *sql.Stmt
	var err error
	if tx != nil {
		stmt, err = tx.PrepareContext(ctx, insert)
	} else {
		stmt, err = r.db.PrepareContext(ctx, insert)
	}
	if err != nil {
		return fmt.Errorf("pgContestRepository.AddTestCases prepare: %w", err)
	}
	defer stmt.Close()

	for _, tc := range cases {
		if _, err := stmt.ExecContext(ctx, tc.ID, questionID, tc.Input, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder); err != nil {
			return fmt.Errorf("pgContestRepository.AddTestCases exec for case %s: %w", tc.ID, err)
		}
	}
	return nil
}

func (r *pgContestRepository) FindQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	query := `SELECT id, contest_id, title, description, difficulty, points, time_limit_seconds, order_index, created_at, updated_at
	          FROM questions WHERE id = $1`
	q := &model.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.ContestID, &q.Title, &q.Description, &q.Difficulty,
		&q.Points, &q.TimeLimitSeconds, &q.OrderIndex, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgContestRepository) ListQuestionsByContestID(ctx context.Context, contestID string) ([]model.Question, error) {
	query := `SELECT id, contest_id, title, description, difficulty, points, time_limit_seconds, order_index, created_at, updated_at
	          FROM questions WHERE contest_id = $1 ORDER BY order_index ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListQuestionsByContestID query: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.ContestID, &q.Title, &q.Description, &q.Difficulty,
			&q.Points, &q.TimeLimitSeconds, &q.OrderIndex, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListQuestionsByContestID scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListQuestionsByContestID rows.Err: %w", err)
	}
	return questions, nil
}

func (r *pgContestRepository) GetTestCasesByQuestionID(ctx context.Context, questionID string, includeHidden bool) ([]model.TestCase, error) {
	query := `SELECT id, question_id, input, expected_output, is_hidden, sort_order, created_at
	          FROM test_cases WHERE question_id = $1`
	if !includeHidden {
		query += ` AND is_hidden = FALSE`
	}
	query += ` ORDER BY sort_order ASC`

	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.GetTestCasesByQuestionID query: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.QuestionID, &tc.Input, &tc.ExpectedOutput, &tc.IsHidden, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgContestRepository.GetTestCasesByQuestionID scan: %w", err)
		}
		cases = append(cases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.GetTestCasesByQuestionID rows.Err: %w", err)
	}
	return cases, nil
}
