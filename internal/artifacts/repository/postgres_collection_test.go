package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresCollection(t *testing.T) (*PostgresCollection, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return NewPostgresCollection(db), mock, db
}

var artifactRowColumns = []string{"id", "type", "url", "prompt", "job_id", "parent_id", "metadata", "created_at"}

func TestPostgresCollection_Put(t *testing.T) {
	repo, mock, db := setupPostgresCollection(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("inserts new artifact", func(t *testing.T) {
		a := sampleArtifact("a", "p")
		mock.ExpectExec(`INSERT INTO artifacts`).
			WithArgs("a", "s1", "image", a.URL, a.Prompt, a.JobID, sqlmock.AnyArg(), []byte("{}"), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Put(ctx, "s1", a))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict maps to ErrArtifactExists", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO artifacts`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Put(ctx, "s1", sampleArtifact("a", ""))
		assert.ErrorIs(t, err, domain.ErrArtifactExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCollection_List(t *testing.T) {
	repo, mock, db := setupPostgresCollection(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, type, url, prompt, job_id, parent_id, metadata, created_at`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(artifactRowColumns).
			AddRow("a", "image", "/artifacts/j1.png", "cat", "j1", nil, "{}", created).
			AddRow("b", "image", "/artifacts/j2.png", "cat hat", "j2", "a", `{"mode":"photo"}`, created))

	got, err := repo.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "", got[0].ParentID)
	assert.Nil(t, got[0].Metadata)
	assert.Equal(t, "a", got[1].ParentID)
	assert.Equal(t, "photo", got[1].Metadata["mode"])
	assert.Equal(t, domain.TypeImage, got[1].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_Get(t *testing.T) {
	repo, mock, db := setupPostgresCollection(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, type`).
			WithArgs("s1", "nope").
			WillReturnRows(sqlmock.NewRows(artifactRowColumns))

		_, err := repo.Get(ctx, "s1", "nope")
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, type`).
			WithArgs("s1", "a").
			WillReturnRows(sqlmock.NewRows(artifactRowColumns).
				AddRow("a", "image", "/artifacts/j1.png", "cat", "j1", nil, "{}", time.Now()))

		a, err := repo.Get(ctx, "s1", "a")
		require.NoError(t, err)
		assert.Equal(t, "j1", a.JobID)
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_MergeMetadata(t *testing.T) {
	repo, mock, db := setupPostgresCollection(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE artifacts`).
		WithArgs("s1", "a", []byte(`{"lastAction":"revert"}`)).
		WillReturnRows(sqlmock.NewRows(artifactRowColumns).
			AddRow("a", "image", "/artifacts/j1.png", "cat", "j1", nil, `{"lastAction":"revert"}`, time.Now()))

	a, err := repo.MergeMetadata(ctx, "s1", "a", map[string]interface{}{"lastAction": "revert"})
	require.NoError(t, err)
	assert.Equal(t, "revert", a.Metadata["lastAction"])

	mock.ExpectQuery(`UPDATE artifacts`).
		WillReturnRows(sqlmock.NewRows(artifactRowColumns))
	_, err = repo.MergeMetadata(ctx, "s1", "gone", map[string]interface{}{"x": true})
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_Sessions(t *testing.T) {
	repo, mock, db := setupPostgresCollection(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT session_id FROM artifacts`).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("default").AddRow("s1"))

	got, err := repo.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "s1"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
