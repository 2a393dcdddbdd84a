package http

import (
	"errors"
	"net/http"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/logger"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/prompts"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/blob"
	"github.com/gin-gonic/gin"
)

// ServeImage streams a stored image: GET /artifacts/{jobId}.png
func (h *Handler) ServeImage(c *gin.Context) {
	jobID, err := blob.JobIDFromFile(c.Param("file"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	rc, err := h.blobs.Open(c.Request.Context(), jobID)
	if errors.Is(err, blob.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	if err != nil {
		logger.NewLogger(c.Request.Context()).LogError("serve_image", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
		return
	}
	defer rc.Close()

	// Stored images never change once written.
	c.DataFromReader(http.StatusOK, -1, "image/png", rc, map[string]string{
		"Cache-Control": "public, max-age=31536000, immutable",
	})
}

// ListModes returns the prompt mode catalogue
func (h *Handler) ListModes(c *gin.Context) {
	modes := h.modes.List()
	out := make([]modeResponse, 0, len(modes))
	for _, m := range modes {
		out = append(out, modeResponse{Mode: m, DefaultPrompt: h.modes.DefaultPrompt(m.Key)})
	}
	c.JSON(http.StatusOK, out)
}

// GetMode returns one mode with its default prompt
func (h *Handler) GetMode(c *gin.Context) {
	m, ok := h.modes.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "mode not found"})
		return
	}
	c.JSON(http.StatusOK, modeResponse{Mode: m, DefaultPrompt: h.modes.DefaultPrompt(m.Key)})
}

type fillRequest struct {
	Template string            `json:"template"`
	Values   map[string]string `json:"values"`
}

// FillPrompt substitutes placeholder values into one of the mode's templates.
// An empty template name selects the mode's first template.
func (h *Handler) FillPrompt(c *gin.Context) {
	m, ok := h.modes.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "mode not found"})
		return
	}

	var body fillRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	tmpl := h.modes.DefaultPrompt(m.Key)
	if body.Template != "" {
		found := false
		for _, t := range m.Templates {
			if t.Name == body.Template {
				tmpl, found = t.Template, true
				break
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
	}

	prompt := prompts.Fill(tmpl, body.Values)
	c.JSON(http.StatusOK, gin.H{
		"prompt":     prompt,
		"unresolved": prompts.Placeholders(prompt),
	})
}
