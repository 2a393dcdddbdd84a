package http

import "github.com/gin-gonic/gin"

// Register registers the API routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/images/generate", h.Generate)
	rg.POST("/images/edit", h.Edit)

	rg.GET("/artifacts", h.ListArtifacts)
	rg.POST("/artifacts", h.CreateArtifact)
	rg.GET("/artifacts/tree", h.Tree)
	rg.GET("/artifacts/:id", h.GetArtifact)
	rg.PATCH("/artifacts/:id", h.UpdateArtifact)
	rg.GET("/artifacts/:id/parent", h.Parent)

	rg.GET("/messages", h.Messages)
	rg.GET("/jobs", h.ListJobs)
	rg.GET("/jobs/:id", h.GetJob)
	rg.GET("/modes", h.ListModes)
	rg.GET("/modes/:name", h.GetMode)
	rg.POST("/modes/:name/fill", h.FillPrompt)
}

// RegisterFiles registers stored image serving outside the API prefix
func (h *Handler) RegisterFiles(r gin.IRoutes) {
	r.GET("/artifacts/:file", h.ServeImage)
}
