package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/domain"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/repository"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/imagegen"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/lineage"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/logger"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/storage/blob"
	"github.com/google/uuid"
)

// ImageService produces image bytes from prompts.
type ImageService interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
	Edit(ctx context.Context, prompt string, src imagegen.Image) (string, []byte, error)
}

// JobRecorder keeps an audit trail of image service calls. Failures are logged only.
type JobRecorder interface {
	Create(ctx context.Context, job *domain.ImageJob) error
	Complete(ctx context.Context, id, imageURL string) error
	Fail(ctx context.Context, id, reason string) error
}

// JobReader is implemented by recorders that keep job history queryable.
type JobReader interface {
	List(ctx context.Context, session string, limit int) ([]domain.ImageJob, error)
	Get(ctx context.Context, id string) (*domain.ImageJob, error)
}

// Deps wires an ArtifactService. Jobs is optional.
type Deps struct {
	Images     ImageService
	Blobs      blob.Store
	Collection repository.Collection
	Transcript repository.Transcript
	Jobs       JobRecorder
	Timeout    time.Duration
}

// ArtifactService orchestrates image generation, edits and lineage reads.
type ArtifactService struct {
	images     ImageService
	blobs      blob.Store
	collection repository.Collection
	transcript repository.Transcript
	jobs       JobRecorder
	timeout    time.Duration

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewArtifactService creates a new artifact service
func NewArtifactService(d Deps) *ArtifactService {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	transcript := d.Transcript
	if transcript == nil {
		transcript = repository.NewMemoryTranscript()
	}
	return &ArtifactService{
		images:     d.Images,
		blobs:      d.Blobs,
		collection: d.Collection,
		transcript: transcript,
		jobs:       d.Jobs,
		timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		inFlight:   make(map[string]struct{}),
	}
}

// TreeView is the lineage forest of a session plus its flattened rendering.
type TreeView struct {
	Roots      []*lineage.Node `json:"roots"`
	Rows       []lineage.Row   `json:"rows"`
	Duplicates []string        `json:"duplicates"`
	Broken     []string        `json:"broken"`
}

// Generate creates a root artifact from a text prompt.
func (s *ArtifactService) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.Artifact, error) {
	recordGenerateCall()
	log := logger.NewLogger(ctx)

	prompt, err := validPrompt(req.Prompt)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(req.Session)
	if err != nil {
		log.LogWarnf("generate", "rejected session=%s: request already in flight", req.Session)
		return nil, err
	}
	defer release()

	jobID := s.newID()
	s.startJob(ctx, &domain.ImageJob{ID: jobID, Session: req.Session, Kind: domain.JobKindGenerate, Prompt: prompt})

	data, err := s.callGenerate(ctx, prompt)
	if err != nil {
		log.LogError("generate", err)
		s.failJob(ctx, jobID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	a := &domain.Artifact{
		Type:   domain.TypeImage,
		Prompt: prompt,
		JobID:  jobID,
	}
	if req.Mode != "" {
		a.Metadata = map[string]interface{}{"mode": req.Mode}
	}
	if err := s.store(ctx, req.Session, a, data); err != nil {
		log.LogError("generate", err)
		s.failJob(ctx, jobID, err)
		return nil, err
	}

	s.completeJob(ctx, jobID, a.URL)
	s.appendTranscript(ctx, req.Session,
		domain.Message{Role: domain.RoleUser, Text: prompt, CreatedAt: a.CreatedAt},
		domain.Message{Role: domain.RoleModel, Text: prompt, ImageURL: a.URL, CreatedAt: a.CreatedAt},
	)
	log.LogInfof("generate", "created artifact id=%s job_id=%s session=%s", a.ID, jobID, req.Session)
	return a, nil
}

// Edit derives a new artifact from a source image. ParentArtifactID is
// recorded as given; it does not have to be in the collection.
func (s *ArtifactService) Edit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
	recordEditCall()
	log := logger.NewLogger(ctx)

	prompt, err := validPrompt(req.Prompt)
	if err != nil {
		return nil, err
	}
	src, err := imagegen.ParseDataURL(req.ImageDataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}

	release, err := s.acquire(req.Session)
	if err != nil {
		log.LogWarnf("edit", "rejected session=%s: request already in flight", req.Session)
		return nil, err
	}
	defer release()

	jobID := s.newID()
	s.startJob(ctx, &domain.ImageJob{
		ID:               jobID,
		Session:          req.Session,
		Kind:             domain.JobKindEdit,
		Prompt:           prompt,
		ParentArtifactID: req.ParentArtifactID,
	})

	text, data, err := s.callEdit(ctx, prompt, src)
	if err != nil {
		log.LogError("edit", err)
		s.failJob(ctx, jobID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	a := &domain.Artifact{
		Type:     domain.TypeImage,
		Prompt:   prompt,
		JobID:    jobID,
		ParentID: req.ParentArtifactID,
		Metadata: map[string]interface{}{},
	}
	if text != "" {
		a.Metadata["text"] = text
	}
	if req.Mode != "" {
		a.Metadata["mode"] = req.Mode
	}
	if len(a.Metadata) == 0 {
		a.Metadata = nil
	}
	if err := s.store(ctx, req.Session, a, data); err != nil {
		log.LogError("edit", err)
		s.failJob(ctx, jobID, err)
		return nil, err
	}

	s.completeJob(ctx, jobID, a.URL)
	reply := text
	if reply == "" {
		reply = prompt
	}
	s.appendTranscript(ctx, req.Session,
		domain.Message{Role: domain.RoleUser, Text: prompt, CreatedAt: a.CreatedAt},
		domain.Message{Role: domain.RoleModel, Text: reply, ImageURL: a.URL, CreatedAt: a.CreatedAt},
	)
	log.LogInfof("edit", "created artifact id=%s parent_id=%s job_id=%s session=%s", a.ID, a.ParentID, jobID, req.Session)
	return &domain.EditResult{Artifact: a, Text: text}, nil
}

// Duplicate stores a copy of source linked back to it.
func (s *ArtifactService) Duplicate(ctx context.Context, session string, source domain.Artifact) (*domain.Artifact, error) {
	recordDuplicateCall()
	if source.ID == "" || source.URL == "" {
		return nil, domain.ErrInvalidSource
	}

	src := source.Clone()
	typ := src.Type
	if typ == "" {
		typ = domain.TypeImage
	}
	a := &domain.Artifact{
		ID:        s.newID(),
		Type:      typ,
		URL:       src.URL,
		Prompt:    src.Prompt,
		JobID:     src.JobID,
		ParentID:  src.ID,
		CreatedAt: s.now(),
		Metadata:  src.Metadata,
	}
	if err := s.collection.Put(ctx, session, a); err != nil {
		recordStoreError()
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	logger.NewLogger(ctx).LogInfof("duplicate", "duplicated %s as %s session=%s", source.ID, a.ID, session)
	return a, nil
}

// Acknowledge validates a lineage action on an existing artifact.
func (s *ArtifactService) Acknowledge(ctx context.Context, session, id, action string) (string, error) {
	if !domain.IsValidAction(action) {
		return "", domain.ErrInvalidAction
	}
	if _, err := s.collection.Get(ctx, session, id); err != nil {
		return "", err
	}
	logger.NewLogger(ctx).LogInfof("acknowledge", "action=%s artifact=%s session=%s", action, id, session)
	return fmt.Sprintf("Action '%s' acknowledged for artifact %s", action, id), nil
}

// UpdateMetadata merges keys into an artifact's metadata.
func (s *ArtifactService) UpdateMetadata(ctx context.Context, session, id string, metadata map[string]interface{}) (*domain.Artifact, error) {
	if len(metadata) == 0 {
		return nil, domain.ErrEmptyUpdate
	}
	return s.collection.MergeMetadata(ctx, session, id, metadata)
}

func (s *ArtifactService) Get(ctx context.Context, session, id string) (*domain.Artifact, error) {
	return s.collection.Get(ctx, session, id)
}

func (s *ArtifactService) List(ctx context.Context, session string) ([]domain.Artifact, error) {
	return s.collection.List(ctx, session)
}

func (s *ArtifactService) Messages(ctx context.Context, session string) ([]domain.Message, error) {
	return s.transcript.List(ctx, session)
}

// Tree rebuilds the session's lineage forest.
func (s *ArtifactService) Tree(ctx context.Context, session, selectedID string) (*TreeView, error) {
	all, err := s.collection.List(ctx, session)
	if err != nil {
		return nil, err
	}

	f := lineage.BuildForest(all)
	if len(f.Duplicates) > 0 || len(f.Broken) > 0 {
		recordLineageAnomalies(len(f.Duplicates), len(f.Broken))
		logger.NewLogger(ctx).LogWarnf("tree", "session=%s duplicates=%v broken_cycles=%v", session, f.Duplicates, f.Broken)
	}

	view := &TreeView{
		Roots:      f.Roots,
		Rows:       lineage.Flatten(f, selectedID),
		Duplicates: f.Duplicates,
		Broken:     f.Broken,
	}
	if view.Duplicates == nil {
		view.Duplicates = []string{}
	}
	if view.Broken == nil {
		view.Broken = []string{}
	}
	return view, nil
}

// ParentOf returns the parent of artifact id from the session snapshot.
func (s *ArtifactService) ParentOf(ctx context.Context, session, id string) (*domain.Artifact, error) {
	all, err := s.collection.List(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.ID != id {
			continue
		}
		p, err := lineage.ParentOf(all, a)
		if err != nil {
			return nil, err
		}
		return &p, nil
	}
	return nil, domain.ErrArtifactNotFound
}

// Jobs lists the recent image service calls of a session, newest first.
func (s *ArtifactService) Jobs(ctx context.Context, session string, limit int) ([]domain.ImageJob, error) {
	r, ok := s.jobs.(JobReader)
	if !ok {
		return nil, domain.ErrJobsDisabled
	}
	return r.List(ctx, session, limit)
}

// Job returns one recorded call. Jobs of other sessions are reported as missing.
func (s *ArtifactService) Job(ctx context.Context, session, id string) (*domain.ImageJob, error) {
	r, ok := s.jobs.(JobReader)
	if !ok {
		return nil, domain.ErrJobsDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}
	job, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Session != session {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

// store writes image bytes then appends the artifact. A failed append removes
// the image again so nothing is left reachable.
func (s *ArtifactService) store(ctx context.Context, session string, a *domain.Artifact, data []byte) error {
	url, err := s.blobs.Put(ctx, a.JobID, data)
	if err != nil {
		recordStoreError()
		return fmt.Errorf("store image: %w", err)
	}
	a.ID = s.newID()
	a.URL = url
	a.CreatedAt = s.now()

	if err := s.collection.Put(ctx, session, a); err != nil {
		recordStoreError()
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), a.JobID); derr != nil {
			logger.NewLogger(ctx).LogErrorf("store", "remove image job_id=%s after failed append: %v", a.JobID, derr)
		}
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

func (s *ArtifactService) callGenerate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	data, err := s.images.Generate(ctx, prompt)
	err = upstreamErr(ctx, err)
	recordUpstreamCall(time.Since(start), err)
	return data, err
}

func (s *ArtifactService) callEdit(ctx context.Context, prompt string, src imagegen.Image) (string, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, data, err := s.images.Edit(ctx, prompt, src)
	err = upstreamErr(ctx, err)
	recordUpstreamCall(time.Since(start), err)
	return text, data, err
}

func upstreamErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("image service timed out: %w", err)
	}
	return err
}

func (s *ArtifactService) acquire(session string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[session]; busy {
		recordRejected()
		return nil, domain.ErrRequestInFlight
	}
	s.inFlight[session] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inFlight, session)
		s.mu.Unlock()
	}, nil
}

func (s *ArtifactService) startJob(ctx context.Context, job *domain.ImageJob) {
	if s.jobs == nil {
		return
	}
	job.Status = domain.JobPending
	if err := s.jobs.Create(ctx, job); err != nil {
		logger.NewLogger(ctx).LogWarnf("record_job", "create job_id=%s: %v", job.ID, err)
	}
}

func (s *ArtifactService) completeJob(ctx context.Context, id, url string) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.Complete(ctx, id, url); err != nil {
		logger.NewLogger(ctx).LogWarnf("record_job", "complete job_id=%s: %v", id, err)
	}
}

func (s *ArtifactService) failJob(ctx context.Context, id string, cause error) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.Fail(ctx, id, cause.Error()); err != nil {
		logger.NewLogger(ctx).LogWarnf("record_job", "fail job_id=%s: %v", id, err)
	}
}

func (s *ArtifactService) appendTranscript(ctx context.Context, session string, msgs ...domain.Message) {
	if err := s.transcript.Append(ctx, session, msgs...); err != nil {
		logger.NewLogger(ctx).LogWarnf("transcript", "session=%s: %v", session, err)
	}
}

// validPrompt counts the prompt as sent, matching the request binding.
func validPrompt(p string) (string, error) {
	if utf8.RuneCountInString(p) < MinPromptLength {
		return "", domain.ErrInvalidPrompt
	}
	return p, nil
}
