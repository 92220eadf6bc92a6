package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type ParticipantRepository interface {
	// Insert performs a conflict-aware insert on the unique
	// (contest_id, user_id) pair. It reports whether a new row was created;
	// a losing concurrent insert returns inserted=false with no error so the
	// caller can resolve to the existing row.
	Insert(ctx context.Context, p *model.Participant) (inserted bool, err error)
	FindByContestAndUser(ctx context.Context, contestID, userID string) (*model.Participant, error)
	// ListByContestID returns participants in join order, which is the final
	// tie-break of the leaderboard.
	ListByContestID(ctx context.Context, contestID string) ([]model.Participant, error)
}

type pgParticipantRepository struct {
	db *sql.DB
}

func NewPgParticipantRepository(db *sql.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) Insert(ctx context.Context, p *model.Participant) (bool, error) {
	query := `INSERT INTO participants (id, contest_id, user_id, joined_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (contest_id, user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.ContestID, p.UserID, p.JoinedAt)
	if err != nil {
		return false, fmt.Errorf("pgParticipantRepository.Insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgParticipantRepository.Insert rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *pgParticipantRepository) FindByContestAndUser(ctx context.Context, contestID, userID string) (*model.Participant, error) {
	return r.findOne(ctx, `SELECT id, contest_id, user_id, joined_at FROM participants WHERE contest_id = $1 AND user_id = $2`, contestID, userID)
}

func (r *pgParticipantRepository) findOne(ctx context.Context, query string, args ...any) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.ContestID, &p.UserID, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgParticipantRepository.findOne: %w", err)
	}
	return p, nil
}

func (r *pgParticipantRepository) ListByContestID(ctx context.Context, contestID string) ([]model.Participant, error) {
	query := `SELECT id, contest_id, user_id, joined_at FROM participants
	          WHERE contest_id = $1 ORDER BY joined_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByContestID query: %w", err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.ContestID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.ListByContestID scan: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByContestID rows.Err: %w", err)
	}
	return participants, nil
}
