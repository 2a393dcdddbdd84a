package http

import (
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/service"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/prompts"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/blob"
)

// SessionHeader selects the artifact collection a request works on
const SessionHeader = "X-Session-Id"

// Handler handles HTTP requests for image generation and artifacts
type Handler struct {
	svc   *service.ArtifactService
	blobs blob.Store
	modes *prompts.Catalog
}

// New creates a new Handler
func New(svc *service.ArtifactService, blobs blob.Store, modes *prompts.Catalog) *Handler {
	registerValidation()
	if modes == nil {
		modes = prompts.Default()
	}
	return &Handler{svc: svc, blobs: blobs, modes: modes}
}

type sessionHeader struct {
	Session string `header:"X-Session-Id" binding:"omitempty,max=64,session_id"`
}

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required,min=3"`
	Mode   string `json:"mode"`
}

type editRequest struct {
	Prompt           string `json:"prompt" binding:"required,min=3"`
	ImageDataURL     string `json:"imageDataUrl" binding:"required,startswith=data:image/"`
	Mode             string `json:"mode"`
	ParentArtifactID string `json:"parentArtifactId"`
}

type editResponse struct {
	*domain.Artifact
	Text string `json:"text"`
}

type updateRequest struct {
	Action   string                 `json:"action"`
	Metadata map[string]interface{} `json:"metadata"`
}

type updateResponse struct {
	Message  string           `json:"message,omitempty"`
	Artifact *domain.Artifact `json:"artifact,omitempty"`
}

type createRequest struct {
	Action         string           `json:"action" binding:"required,oneof=duplicate"`
	SourceArtifact *domain.Artifact `json:"sourceArtifact" binding:"required"`
}

type modeResponse struct {
	prompts.Mode
	DefaultPrompt string `json:"defaultPrompt"`
}
