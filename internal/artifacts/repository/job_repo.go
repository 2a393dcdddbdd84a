package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrJobExists = errors.New("image job already exists")

// JobRepo keeps an audit row per image service call.
type JobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Create(ctx context.Context, job *domain.ImageJob) error {
	const q = `
insert into image_jobs (id, session_id, kind, prompt, status, parent_artifact_id)
values ($1::uuid, $2, $3, $4, $5, nullif($6, ''))
returning created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, job.ID, job.Session, job.Kind, job.Prompt, job.Status, job.ParentArtifactID).
		Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrJobExists
		}
		return fmt.Errorf("insert image job: %w", err)
	}
	return nil
}

func (r *JobRepo) Complete(ctx context.Context, id, imageURL string) error {
	const q = `
update image_jobs
set status = $2, image_url = $3, updated_at = now()
where id = $1::uuid;
`
	_, err := r.db.Exec(ctx, q, id, domain.JobCompleted, imageURL)
	return err
}

func (r *JobRepo) Fail(ctx context.Context, id, reason string) error {
	const q = `
update image_jobs
set status = $2, error = $3, updated_at = now()
where id = $1::uuid;
`
	_, err := r.db.Exec(ctx, q, id, domain.JobFailed, reason)
	return err
}

// List returns the most recent jobs of a session, newest first.
func (r *JobRepo) List(ctx context.Context, session string, limit int) ([]domain.ImageJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
select id::text, session_id, kind, prompt, status,
       coalesce(error, ''), coalesce(parent_artifact_id, ''), coalesce(image_url, ''),
       created_at, updated_at
from image_jobs
where session_id = $1
order by created_at desc
limit $2;
`
	rows, err := r.db.Query(ctx, q, session, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ImageJob, 0, 16)
	for rows.Next() {
		var j domain.ImageJob
		if err := rows.Scan(&j.ID, &j.Session, &j.Kind, &j.Prompt, &j.Status,
			&j.Error, &j.ParentArtifactID, &j.ImageURL, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Get loads a single job.
func (r *JobRepo) Get(ctx context.Context, id string) (*domain.ImageJob, error) {
	const q = `
select id::text, session_id, kind, prompt, status,
       coalesce(error, ''), coalesce(parent_artifact_id, ''), coalesce(image_url, ''),
       created_at, updated_at
from image_jobs
where id = $1::uuid;
`
	var j domain.ImageJob
	err := r.db.QueryRow(ctx, q, id).Scan(&j.ID, &j.Session, &j.Kind, &j.Prompt, &j.Status,
		&j.Error, &j.ParentArtifactID, &j.ImageURL, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}
