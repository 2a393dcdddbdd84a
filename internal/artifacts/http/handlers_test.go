package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/service"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/imagegen"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/blob"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

type stubImages struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubImages) Generate(_ context.Context, prompt string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png:" + prompt), nil
}

func (s *stubImages) Edit(_ context.Context, prompt string, _ imagegen.Image) (string, []byte, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", nil, s.err
	}
	return "edited: " + prompt, []byte("png:" + prompt), nil
}

func setupRouter(t *testing.T) (*gin.Engine, *stubImages) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	images := &stubImages{}
	svc := service.NewArtifactService(service.Deps{
		Images:     images,
		Blobs:      store,
		Collection: repository.NewMemoryCollection(),
	})

	router := gin.New()
	h := New(svc, store, nil)
	h.Register(router.Group("/api"))
	h.RegisterFiles(router)
	return router, images
}

func do(router *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestGenerate_Validation(t *testing.T) {
	router, images := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "hi"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, "must be at least 3 characters long", resp.Fields["prompt"])
	assert.Equal(t, 0, images.calls)

	rr = do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodPost, "/api/images/generate", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, images.calls)
}

func TestGenerate_Success(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "a red fox", "mode": "image_edit"})
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]interface{}
	decode(t, rr, &raw)
	assert.NotContains(t, raw, "parentId")
	assert.NotEmpty(t, raw["id"])
	assert.NotEmpty(t, raw["jobId"])
	assert.NotEqual(t, raw["id"], raw["jobId"])

	var a domain.Artifact
	decode(t, rr, &a)
	img := do(router, http.MethodGet, a.URL, nil)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
	assert.Equal(t, "png:a red fox", img.Body.String())
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	router, images := setupRouter(t)
	images.err = imagegen.ErrNoImage

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "a red fox"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp map[string]string
	decode(t, rr, &resp)
	assert.Equal(t, "image generation failed", resp["error"])

	list := do(router, http.MethodGet, "/api/artifacts", nil)
	assert.JSONEq(t, `[]`, list.Body.String())
}

func TestEdit(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/edit", gin.H{"prompt": "add a hat", "imageDataUrl": "http://x/y.png"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var bad struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, rr, &bad)
	assert.Contains(t, bad.Fields, "imageDataUrl")

	rr = do(router, http.MethodPost, "/api/images/edit", gin.H{
		"prompt":           "add a hat",
		"imageDataUrl":     pngDataURL,
		"parentArtifactId": "p1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		domain.Artifact
		Text string `json:"text"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "p1", resp.ParentID)
	assert.Equal(t, "edited: add a hat", resp.Text)
}

func TestArtifacts_CRUD(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "a red fox"})
	require.Equal(t, http.StatusOK, rr.Code)
	var root domain.Artifact
	decode(t, rr, &root)

	t.Run("get", func(t *testing.T) {
		rr := do(router, http.MethodGet, "/api/artifacts/"+root.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		rr = do(router, http.MethodGet, "/api/artifacts/nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("patch", func(t *testing.T) {
		rr := do(router, http.MethodPatch, "/api/artifacts/"+root.ID, gin.H{"action": "refine"})
		require.Equal(t, http.StatusOK, rr.Code)
		var resp updateResponse
		decode(t, rr, &resp)
		assert.Contains(t, resp.Message, "refine")

		rr = do(router, http.MethodPatch, "/api/artifacts/"+root.ID, gin.H{"action": "explode"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = do(router, http.MethodPatch, "/api/artifacts/"+root.ID, gin.H{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = do(router, http.MethodPatch, "/api/artifacts/nope", gin.H{"action": "revert"})
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = do(router, http.MethodPatch, "/api/artifacts/"+root.ID, gin.H{"metadata": gin.H{"starred": true}})
		require.Equal(t, http.StatusOK, rr.Code)
		decode(t, rr, &resp)
		require.NotNil(t, resp.Artifact)
		assert.Equal(t, true, resp.Artifact.Metadata["starred"])
	})

	t.Run("duplicate", func(t *testing.T) {
		rr := do(router, http.MethodPost, "/api/artifacts", gin.H{"action": "duplicate", "sourceArtifact": root})
		require.Equal(t, http.StatusCreated, rr.Code)
		var dup domain.Artifact
		decode(t, rr, &dup)
		assert.Equal(t, root.ID, dup.ParentID)
		assert.Equal(t, root.URL, dup.URL)

		rr = do(router, http.MethodPost, "/api/artifacts", gin.H{"action": "duplicate", "sourceArtifact": gin.H{"id": "x"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = do(router, http.MethodPost, "/api/artifacts", gin.H{"action": "upload", "sourceArtifact": root})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("tree and parent", func(t *testing.T) {
		list := do(router, http.MethodGet, "/api/artifacts", nil)
		var all []domain.Artifact
		decode(t, list, &all)
		require.Len(t, all, 2)
		dupID := all[1].ID

		rr := do(router, http.MethodGet, "/api/artifacts/tree?selected="+dupID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var view service.TreeView
		decode(t, rr, &view)
		require.Len(t, view.Roots, 1)
		require.Len(t, view.Rows, 2)
		assert.True(t, view.Rows[1].Selected)
		assert.Equal(t, 1, view.Rows[1].Depth)

		rr = do(router, http.MethodGet, "/api/artifacts/"+dupID+"/parent", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var p domain.Artifact
		decode(t, rr, &p)
		assert.Equal(t, root.ID, p.ID)

		rr = do(router, http.MethodGet, "/api/artifacts/"+root.ID+"/parent", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSessions(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "a red fox"}, SessionHeader, "alice")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(router, http.MethodGet, "/api/artifacts", nil, SessionHeader, "alice")
	var all []domain.Artifact
	decode(t, rr, &all)
	assert.Len(t, all, 1)

	rr = do(router, http.MethodGet, "/api/artifacts", nil)
	decode(t, rr, &all)
	assert.Empty(t, all)

	rr = do(router, http.MethodGet, "/api/messages", nil, SessionHeader, "alice")
	var msgs []domain.Message
	decode(t, rr, &msgs)
	assert.Len(t, msgs, 2)

	rr = do(router, http.MethodGet, "/api/artifacts", nil, SessionHeader, "../etc")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var bad struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rr, &bad)
	assert.Equal(t, "validation failed", bad.Error)
	assert.Equal(t, "may only contain letters, digits, '_' and '-'", bad.Fields[SessionHeader])

	rr = do(router, http.MethodGet, "/api/artifacts", nil, SessionHeader, strings.Repeat("a", 65))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	decode(t, rr, &bad)
	assert.Equal(t, "must be at most 64 characters long", bad.Fields[SessionHeader])

	rr = do(router, http.MethodGet, "/api/artifacts", nil, SessionHeader, strings.Repeat("a", 64))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServeImage_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodGet, "/artifacts/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(router, http.MethodGet, "/artifacts/missing.jpg", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestModes(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodGet, "/api/modes", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var modes []modeResponse
	decode(t, rr, &modes)
	assert.Len(t, modes, 5)

	rr = do(router, http.MethodGet, "/api/modes/image_edit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var m modeResponse
	decode(t, rr, &m)
	assert.Equal(t, "image_edit", m.Key)
	assert.Equal(t, "Add a {object} to the scene.", m.DefaultPrompt)

	rr = do(router, http.MethodGet, "/api/modes/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(router, http.MethodPost, "/api/modes/image_edit/fill", gin.H{
		"template": "Change Style",
		"values":   gin.H{"style": "watercolor"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var filled struct {
		Prompt     string   `json:"prompt"`
		Unresolved []string `json:"unresolved"`
	}
	decode(t, rr, &filled)
	assert.Equal(t, "Change the style of the image to watercolor.", filled.Prompt)
	assert.Empty(t, filled.Unresolved)

	rr = do(router, http.MethodPost, "/api/modes/image_edit/fill", gin.H{"values": gin.H{}})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &filled)
	assert.Equal(t, []string{"object"}, filled.Unresolved)
}

func TestJobs_WithoutHistory(t *testing.T) {
	router, _ := setupRouter(t)

	rr := do(router, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Contains(t, rr.Body.String(), "not enabled")

	rr = do(router, http.MethodGet, "/api/jobs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodGet, "/api/jobs/abc", nil)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestGenerate_PaddedPrompt(t *testing.T) {
	router, images := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "  ab  "})
	require.Equal(t, http.StatusOK, rr.Code)

	var a domain.Artifact
	decode(t, rr, &a)
	assert.Equal(t, "  ab  ", a.Prompt)
	assert.Equal(t, 1, images.calls)
}

func TestEdit_UndecodableImageReportsField(t *testing.T) {
	router, images := setupRouter(t)

	rr := do(router, http.MethodPost, "/api/images/edit", gin.H{
		"prompt":       "add a hat",
		"imageDataUrl": "data:image/png;base64,@@@",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, "must be a base64 image data url", resp.Fields["imageDataUrl"])
	assert.Equal(t, 0, images.calls)
}

type downCollection struct {
	repository.Collection
}

func (downCollection) Put(context.Context, string, *domain.Artifact) error {
	return errors.New("db down")
}

func TestGenerate_FailedAppendLeavesNoImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	store, err := blob.NewFileStore(dir)
	require.NoError(t, err)

	svc := service.NewArtifactService(service.Deps{
		Images:     &stubImages{},
		Blobs:      store,
		Collection: downCollection{Collection: repository.NewMemoryCollection()},
	})
	router := gin.New()
	h := New(svc, store, nil)
	h.Register(router.Group("/api"))
	h.RegisterFiles(router)

	rr := do(router, http.MethodPost, "/api/images/generate", gin.H{"prompt": "a red fox"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

type contendedCollection struct {
	repository.Collection
}

func (contendedCollection) MergeMetadata(context.Context, string, string, map[string]interface{}) (*domain.Artifact, error) {
	return nil, fmt.Errorf("%w: a1", domain.ErrUpdateConflict)
}

func TestUpdateArtifact_ConflictIs409(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	svc := service.NewArtifactService(service.Deps{
		Images:     &stubImages{},
		Blobs:      store,
		Collection: contendedCollection{Collection: repository.NewMemoryCollection()},
	})
	router := gin.New()
	New(svc, store, nil).Register(router.Group("/api"))

	rr := do(router, http.MethodPatch, "/api/artifacts/a1", gin.H{"metadata": gin.H{"rating": "good"}})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), domain.ErrUpdateConflict.Error())
}
