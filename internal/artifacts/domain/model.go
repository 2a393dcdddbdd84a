package domain

import "time"

// Type distinguishes the kind of content an artifact holds.
type Type string

const (
	TypeImage Type = "image"
	TypeText  Type = "text"
)

// Artifact is a produced unit of content with optional lineage to a parent.
// Everything except Metadata is fixed once the artifact is stored.
type Artifact struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	URL       string                 `json:"url"`
	Prompt    string                 `json:"prompt"`
	JobID     string                 `json:"jobId"`
	ParentID  string                 `json:"parentId,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// HasParent reports whether the artifact was derived from another one.
func (a Artifact) HasParent() bool { return a.ParentID != "" }

// Lineage actions accepted on an existing artifact.
const (
	ActionRefine    = "refine"
	ActionDuplicate = "duplicate"
	ActionRevert    = "revert"
)

// IsValidAction checks if an action name is one the service acknowledges.
func IsValidAction(action string) bool {
	return action == ActionRefine ||
		action == ActionDuplicate ||
		action == ActionRevert
}

// Image job statuses
const (
	JobPending   = "pending"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Image job kinds
const (
	JobKindGenerate = "generate"
	JobKindEdit     = "edit"
)

// ImageJob tracks one round trip to the image service.
type ImageJob struct {
	ID               string    `json:"id"`
	Session          string    `json:"session"`
	Kind             string    `json:"kind"`
	Prompt           string    `json:"prompt"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	ParentArtifactID string    `json:"parentArtifactId,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// GenerateRequest is a validated generate call.
type GenerateRequest struct {
	Session string
	Prompt  string
	Mode    string
}

// EditRequest is a validated edit call.
type EditRequest struct {
	Session          string
	Prompt           string
	ImageDataURL     string
	Mode             string
	ParentArtifactID string
}

// EditResult carries the new artifact and any text the model returned with it.
type EditResult struct {
	Artifact *Artifact
	Text     string
}

// Clone returns a copy whose Metadata map is not shared with a.
func (a Artifact) Clone() Artifact {
	if a.Metadata != nil {
		m := make(map[string]interface{}, len(a.Metadata))
		for k, v := range a.Metadata {
			m[k] = v
		}
		a.Metadata = m
	}
	return a
}
