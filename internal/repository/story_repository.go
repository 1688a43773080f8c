package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/missing-persons-service/internal/domain"
)

// StoryRepository encapsulates success story persistence.
type StoryRepository interface {
	// Create inserts the story and flips the referenced case to found in a
	// single transaction. Returns pgx.ErrNoRows when the case does not exist.
	Create(ctx context.Context, story *domain.SuccessStory) error
	List(ctx context.Context) ([]domain.SuccessStory, error)
}

type storyRepository struct {
	pool *pgxpool.Pool
}

// NewStoryRepository instantiates repository.
func NewStoryRepository(pool *pgxpool.Pool) StoryRepository {
	return &storyRepository{pool: pool}
}

func (r *storyRepository) Create(ctx context.Context, story *domain.SuccessStory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const flipQuery = `UPDATE missing_persons SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, flipQuery, domain.CaseStatusFound, story.MissingPersonID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	const insertQuery = `
        INSERT INTO success_stories (title, description, missing_person_id, photo_url)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQuery,
		story.Title,
		story.Description,
		story.MissingPersonID,
		story.PhotoURL,
	).Scan(&story.ID, &story.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *storyRepository) List(ctx context.Context) ([]domain.SuccessStory, error) {
	const query = `
        SELECT id, title, description, missing_person_id, photo_url, created_at
        FROM success_stories ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SuccessStory
	for rows.Next() {
		var story domain.SuccessStory
		if err := rows.Scan(
			&story.ID,
			&story.Title,
			&story.Description,
			&story.MissingPersonID,
			&story.PhotoURL,
			&story.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, story)
	}
	return result, rows.Err()
}
