package cronjob

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler periodically exports every session's collection as JSON.
type Scheduler struct {
	collection repository.Collection
	dir        string
	spec       string
	c          *cron.Cron
}

func NewScheduler(collection repository.Collection, dir, spec string) *Scheduler {
	return &Scheduler{collection: collection, dir: dir, spec: spec}
}

// Start initializes cron tasks. An empty spec disables snapshots.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		logger.L().Info("snapshot scheduler disabled")
		return nil
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(s.spec, func() {
		n, err := s.SnapshotAll(context.Background())
		if err != nil {
			logger.L().Error("snapshot failed", zap.Error(err), zap.Int("sessions_written", n))
			return
		}
		logger.L().Info("snapshot completed", zap.Int("sessions", n), zap.String("dir", s.dir))
	})
	if err != nil {
		return fmt.Errorf("schedule snapshot %q: %w", s.spec, err)
	}

	s.c = c
	c.Start()
	logger.L().Info("snapshot scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
}

// SnapshotAll writes <dir>/<session>.json for each session and returns how many were written.
func (s *Scheduler) SnapshotAll(ctx context.Context) (int, error) {
	sessions, err := s.collection.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create snapshot dir: %w", err)
	}

	written := 0
	for _, session := range sessions {
		all, err := s.collection.List(ctx, session)
		if err != nil {
			return written, fmt.Errorf("list %s: %w", session, err)
		}
		if err := WriteSnapshot(filepath.Join(s.dir, session+".json"), all); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// WriteSnapshot stores artifacts as an indented JSON array.
func WriteSnapshot(path string, artifacts []domain.Artifact) error {
	if artifacts == nil {
		artifacts = []domain.Artifact{}
	}
	b, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadSnapshot loads a file written by WriteSnapshot.
func ReadSnapshot(path string) ([]domain.Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []domain.Artifact
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return out, nil
}
