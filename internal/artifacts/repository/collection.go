package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
)

// DefaultSession is used when a request does not name a session.
const DefaultSession = "default"

// Collection is a session-scoped, insertion-ordered set of artifacts.
//
// Put never overwrites: storing an id that already exists in the session
// fails with domain.ErrArtifactExists. Only metadata changes after Put.
type Collection interface {
	Put(ctx context.Context, session string, a *domain.Artifact) error
	Get(ctx context.Context, session, id string) (*domain.Artifact, error)
	List(ctx context.Context, session string) ([]domain.Artifact, error)
	MergeMetadata(ctx context.Context, session, id string, metadata map[string]interface{}) (*domain.Artifact, error)
	Sessions(ctx context.Context) ([]string, error)
}
