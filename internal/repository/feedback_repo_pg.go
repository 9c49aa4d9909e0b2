package repository

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, limit int) ([]domain.Feedback, error)
}

type PGFeedbackRepository struct {
	db *pgxpool.Pool
}

func NewFeedbackRepository(db *pgxpool.Pool) FeedbackRepository {
	return &PGFeedbackRepository{db: db}
}

func (r *PGFeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	return r.db.QueryRow(ctx, `INSERT INTO feedback (user_id, email, rating, comment) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		f.UserID, f.Email, f.Rating, f.Comment).Scan(&f.ID, &f.CreatedAt)
}

func (r *PGFeedbackRepository) List(ctx context.Context, limit int) ([]domain.Feedback, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, email, rating, comment, created_at FROM feedback ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Feedback, 0)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Email, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

var _ FeedbackRepository = (*PGFeedbackRepository)(nil)
