package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
)

// PostgresCollection handles PostgreSQL operations for artifact collections
type PostgresCollection struct {
	db *sql.DB
}

// NewPostgresCollection creates a new PostgresCollection
func NewPostgresCollection(db *sql.DB) *PostgresCollection {
	return &PostgresCollection{db: db}
}

const artifactColumns = `id, type, url, prompt, job_id, parent_id, metadata, created_at`

// Put inserts a new artifact; an existing id is left untouched
func (r *PostgresCollection) Put(ctx context.Context, session string, a *domain.Artifact) error {
	metadataJSON := []byte("{}")
	if len(a.Metadata) > 0 {
		data, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = data
	}

	var parentID sql.NullString
	if a.ParentID != "" {
		parentID = sql.NullString{String: a.ParentID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, session_id, type, url, prompt, job_id, parent_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, session, string(a.Type), a.URL, a.Prompt, a.JobID, parentID, metadataJSON, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	if n == 0 {
		return domain.ErrArtifactExists
	}
	return nil
}

// Get retrieves an artifact by session and ID
func (r *PostgresCollection) Get(ctx context.Context, session, id string) (*domain.Artifact, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE session_id = $1 AND id = $2
	`, session, id)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return a, nil
}

// List returns the session's artifacts in insertion order
func (r *PostgresCollection) List(ctx context.Context, session string) ([]domain.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE session_id = $1
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Artifact, 0, 16)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// MergeMetadata merges keys into the stored JSONB metadata
func (r *PostgresCollection) MergeMetadata(ctx context.Context, session, id string, metadata map[string]interface{}) (*domain.Artifact, error) {
	patch, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE artifacts
		SET metadata = metadata || $3::jsonb
		WHERE session_id = $1 AND id = $2
		RETURNING `+artifactColumns, session, id, patch)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}
	return a, nil
}

// Sessions lists every session that has stored an artifact
func (r *PostgresCollection) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM artifacts ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (*domain.Artifact, error) {
	var (
		a            domain.Artifact
		typ          string
		parentID     sql.NullString
		metadataJSON []byte
	)
	if err := s.Scan(&a.ID, &typ, &a.URL, &a.Prompt, &a.JobID, &parentID, &metadataJSON, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.Type(typ)
	if parentID.Valid {
		a.ParentID = parentID.String
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		if len(a.Metadata) == 0 {
			a.Metadata = nil
		}
	}
	return &a, nil
}
