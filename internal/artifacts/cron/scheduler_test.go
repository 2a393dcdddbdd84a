package cronjob

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAll(t *testing.T) {
	ctx := context.Background()
	coll := repository.NewMemoryCollection()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, coll.Put(ctx, "default", &domain.Artifact{ID: "a", Type: domain.TypeImage, URL: "/artifacts/j1.png", CreatedAt: created}))
	require.NoError(t, coll.Put(ctx, "default", &domain.Artifact{ID: "b", ParentID: "a", Type: domain.TypeImage, URL: "/artifacts/j2.png", CreatedAt: created}))
	require.NoError(t, coll.Put(ctx, "other", &domain.Artifact{ID: "c", Type: domain.TypeImage, URL: "/artifacts/j3.png", CreatedAt: created}))

	dir := filepath.Join(t.TempDir(), "snapshots")
	s := NewScheduler(coll, dir, "")

	n, err := s.SnapshotAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := ReadSnapshot(filepath.Join(dir, "default.json"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "a", got[1].ParentID)
	assert.True(t, created.Equal(got[1].CreatedAt))

	other, err := ReadSnapshot(filepath.Join(dir, "other.json"))
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestStart(t *testing.T) {
	coll := repository.NewMemoryCollection()

	disabled := NewScheduler(coll, t.TempDir(), "")
	require.NoError(t, disabled.Start())
	disabled.Stop()

	bad := NewScheduler(coll, t.TempDir(), "not a cron spec")
	assert.Error(t, bad.Start())

	ok := NewScheduler(coll, t.TempDir(), "0 0 * * * *")
	require.NoError(t, ok.Start())
	ok.Stop()
}

func TestReadSnapshot_Errors(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
