package http

import (
	"net/http"
	"strconv"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/gin-gonic/gin"
)

// session binds the session header, falling back to the default session.
func session(c *gin.Context) (string, bool) {
	var h sessionHeader
	if err := c.ShouldBindHeader(&h); err != nil {
		bindError(c, err)
		return "", false
	}
	if h.Session == "" {
		return repository.DefaultSession, true
	}
	return h.Session, true
}

// Generate creates a new root image from a prompt
func (h *Handler) Generate(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	a, err := h.svc.Generate(c.Request.Context(), domain.GenerateRequest{
		Session: sess,
		Prompt:  body.Prompt,
		Mode:    body.Mode,
	})
	if err != nil {
		writeError(c, "generate", err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// Edit derives a new image from a source image
func (h *Handler) Edit(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var body editRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.svc.Edit(c.Request.Context(), domain.EditRequest{
		Session:          sess,
		Prompt:           body.Prompt,
		ImageDataURL:     body.ImageDataURL,
		Mode:             body.Mode,
		ParentArtifactID: body.ParentArtifactID,
	})
	if err != nil {
		writeError(c, "edit", err)
		return
	}

	c.JSON(http.StatusOK, editResponse{Artifact: res.Artifact, Text: res.Text})
}

// ListArtifacts returns the session collection in insertion order
func (h *Handler) ListArtifacts(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	all, err := h.svc.List(c.Request.Context(), sess)
	if err != nil {
		writeError(c, "list_artifacts", err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// GetArtifact retrieves an artifact by ID
func (h *Handler) GetArtifact(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, "get_artifact", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateArtifact acknowledges a lineage action and/or merges metadata
func (h *Handler) UpdateArtifact(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var body updateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	if body.Action == "" && len(body.Metadata) == 0 {
		writeError(c, "update_artifact", domain.ErrEmptyUpdate)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	var resp updateResponse

	if body.Action != "" {
		msg, err := h.svc.Acknowledge(ctx, sess, id, body.Action)
		if err != nil {
			writeError(c, "update_artifact", err)
			return
		}
		resp.Message = msg
	}
	if len(body.Metadata) > 0 {
		a, err := h.svc.UpdateMetadata(ctx, sess, id, body.Metadata)
		if err != nil {
			writeError(c, "update_artifact", err)
			return
		}
		resp.Artifact = a
	}

	c.JSON(http.StatusOK, resp)
}

// CreateArtifact handles the duplicate action
func (h *Handler) CreateArtifact(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	a, err := h.svc.Duplicate(c.Request.Context(), sess, *body.SourceArtifact)
	if err != nil {
		writeError(c, "create_artifact", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Tree returns the lineage forest of the session
func (h *Handler) Tree(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	view, err := h.svc.Tree(c.Request.Context(), sess, c.Query("selected"))
	if err != nil {
		writeError(c, "tree", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Parent resolves "compare to parent" for an artifact
func (h *Handler) Parent(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	p, err := h.svc.ParentOf(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, "parent", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Messages returns the chat transcript of the session
func (h *Handler) Messages(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	msgs, err := h.svc.Messages(c.Request.Context(), sess)
	if err != nil {
		writeError(c, "messages", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// ListJobs returns the image service call history of the session
func (h *Handler) ListJobs(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	jobs, err := h.svc.Jobs(c.Request.Context(), sess, limit)
	if err != nil {
		writeError(c, "list_jobs", err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob returns one recorded image service call
func (h *Handler) GetJob(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	job, err := h.svc.Job(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		writeError(c, "get_job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}
