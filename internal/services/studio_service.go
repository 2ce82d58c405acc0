// internal/services/studio_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/config"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type VideoStatus string

const (
	VideoStatusPending   VideoStatus = "pending"
	VideoStatusRunning   VideoStatus = "running"
	VideoStatusDone      VideoStatus = "done"
	VideoStatusFailed    VideoStatus = "failed"
	VideoStatusCancelled VideoStatus = "cancelled"
)

type SceneRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type VideoScriptRequest struct {
	Brief     string `json:"brief" validate:"required,max=2000"`
	ProductID string `json:"productId,omitempty"`
}

type VideoRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type SceneResult struct {
	ImageURL string `json:"imageUrl"`
	MimeType string `json:"mimeType"`
}

type ScriptScene struct {
	Visual          string `json:"visual"`
	Voiceover       string `json:"voiceover"`
	DurationSeconds int    `json:"durationSeconds"`
}

type VideoScript struct {
	Title        string        `json:"title"`
	Hook         string        `json:"hook"`
	Scenes       []ScriptScene `json:"scenes"`
	CallToAction string        `json:"callToAction"`
}

var videoScriptSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "title": {"type": "STRING"},
    "hook": {"type": "STRING"},
    "scenes": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "visual": {"type": "STRING"},
          "voiceover": {"type": "STRING"},
          "durationSeconds": {"type": "INTEGER"}
        },
        "required": ["visual", "voiceover", "durationSeconds"]
      }
    },
    "callToAction": {"type": "STRING"}
  },
  "required": ["title", "hook", "scenes", "callToAction"]
}`)

// VideoJob is a video generation running in the background.
type VideoJob struct {
	ID         string      `json:"id"`
	Prompt     string      `json:"prompt"`
	Status     VideoStatus `json:"status"`
	VideoURL   string      `json:"videoUrl,omitempty"`
	Error      string      `json:"error,omitempty"`
	Attempts   int         `json:"attempts"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`

	cancel context.CancelFunc
}

type StudioService struct {
	store   *store.Store
	ai      ai.Client
	media   *MediaService
	metrics *metrics.AppMetrics
	now     Clock

	pollInterval time.Duration
	maxAttempts  int

	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	jobs   map[string]*VideoJob
	logger *logrus.Entry
}

func NewStudioService(s *store.Store, client ai.Client, media *MediaService, cfg config.AIConfig, m *metrics.AppMetrics, now Clock) *StudioService {
	interval := time.Duration(cfg.VideoPollInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	attempts := cfg.VideoMaxPollAttempt
	if attempts < 1 {
		attempts = 1
	}

	ctx, stop := context.WithCancel(context.Background())
	return &StudioService{
		store:        s,
		ai:           client,
		media:        media,
		metrics:      m,
		now:          now,
		pollInterval: interval,
		maxAttempts:  attempts,
		ctx:          ctx,
		stop:         stop,
		jobs:         make(map[string]*VideoJob),
		logger:       logrus.WithField("snapshot_key", s.Key()),
	}
}

// requireCreator checks that the current user may use the studio.
func (s *StudioService) requireCreator() error {
	var err error
	s.store.View(func(st *store.AppState) {
		me, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		if !me.Capabilities().CanHostLive {
			err = ErrForbidden
		}
	})
	return err
}

func (s *StudioService) failed(op string, err error) error {
	s.logger.WithField("operation", op).WithError(err).Error("Generation failed")
	return ErrGenerationFailed
}

// GenerateScene renders a backdrop image and stores it as media.
func (s *StudioService) GenerateScene(ctx context.Context, req *SceneRequest) (*SceneResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireCreator(); err != nil {
		return nil, err
	}

	img, err := s.ai.GenerateImage(ctx, req.Prompt)
	if err != nil {
		return nil, s.failed("scene", err)
	}
	if s.media == nil {
		return nil, s.failed("scene", errors.New("media storage is not configured"))
	}
	uploaded, err := s.media.Upload(ctx, img.Data, s.media.GetDefaultUploadOptions("generated"))
	if err != nil {
		return nil, s.failed("scene", err)
	}
	return &SceneResult{ImageURL: uploaded.URL, MimeType: uploaded.MimeType}, nil
}

// GenerateVideoScript asks for a structured script for a short product video.
func (s *StudioService) GenerateVideoScript(ctx context.Context, req *VideoScriptRequest) (*VideoScript, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireCreator(); err != nil {
		return nil, err
	}

	prompt := req.Brief
	if req.ProductID != "" {
		var product string
		s.store.View(func(st *store.AppState) {
			if p := st.Product(req.ProductID); p != nil {
				product = fmt.Sprintf("Product: %s. %s", p.Name, p.Description)
			}
		})
		if product == "" {
			return nil, ErrProductNotFound
		}
		prompt = product + "\n" + prompt
	}

	text, err := s.ai.GenerateText(ctx, ai.TextRequest{
		Prompt:       prompt,
		SystemPrompt: "You write scripts for short vertical fashion videos.",
		Schema:       videoScriptSchema,
	})
	if err != nil {
		return nil, s.failed("video_script", err)
	}

	var script VideoScript
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &script); err != nil {
		return nil, s.failed("video_script", fmt.Errorf("decode script: %w", err))
	}
	if script.Scenes == nil {
		script.Scenes = []ScriptScene{}
	}
	return &script, nil
}

// StartVideo starts a video generation and polls it in the background at a
// fixed interval, giving up after a bounded number of attempts.
func (s *StudioService) StartVideo(req *VideoRequest) (*VideoJob, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.requireCreator(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(s.ctx)
	job := &VideoJob{
		ID:        newID(),
		Prompt:    req.Prompt,
		Status:    VideoStatusPending,
		StartedAt: s.now(),
		cancel:    cancel,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runVideo(ctx, job.ID, req.Prompt)

	return s.Video(job.ID)
}

func (s *StudioService) runVideo(ctx context.Context, jobID, prompt string) {
	defer s.wg.Done()
	logger := s.logger.WithField("job_id", jobID)

	operation, err := s.ai.StartVideo(ctx, prompt)
	if err != nil {
		s.finish(jobID, VideoStatusFailed, "", err)
		logger.WithError(err).Error("Failed to start video generation")
		return
	}
	s.update(jobID, func(j *VideoJob) {
		if j.FinishedAt == nil {
			j.Status = VideoStatusRunning
		}
	})

	limiter := rate.NewLimiter(rate.Every(s.pollInterval), 1)
	limiter.Allow() // first poll waits a full interval

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			s.finish(jobID, VideoStatusCancelled, "", nil)
			return
		}

		op, err := s.ai.VideoStatus(ctx, operation)
		s.update(jobID, func(j *VideoJob) { j.Attempts = attempt })
		if err != nil {
			if ctx.Err() != nil {
				s.finish(jobID, VideoStatusCancelled, "", nil)
				return
			}
			logger.WithError(err).WithField("attempt", attempt).Warn("Video status check failed")
			continue
		}
		if !op.Done {
			continue
		}
		if op.Error != "" || op.VideoURI == "" {
			s.finish(jobID, VideoStatusFailed, "", fmt.Errorf("video generation failed: %s", op.Error))
			return
		}
		s.finish(jobID, VideoStatusDone, op.VideoURI, nil)
		logger.WithField("attempts", attempt).Info("Video generation finished")
		return
	}

	s.finish(jobID, VideoStatusFailed, "", fmt.Errorf("gave up after %d polls", s.maxAttempts))
	logger.Warn("Video generation timed out")
}

func (s *StudioService) update(jobID string, fn func(*VideoJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		fn(job)
	}
}

// finish records a terminal state once; a job already finished keeps its
// first outcome.
func (s *StudioService) finish(jobID string, status VideoStatus, url string, err error) {
	s.update(jobID, func(j *VideoJob) {
		if j.FinishedAt != nil {
			return
		}
		now := s.now()
		j.Status = status
		j.VideoURL = url
		j.FinishedAt = &now
		if err != nil {
			j.Error = ErrGenerationFailed.Error()
		}
		j.cancel()
	})
}

// CancelVideo stops polling a job.
func (s *StudioService) CancelVideo(jobID string) (*VideoJob, error) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrVideoJobNotFound
	}

	s.finish(jobID, VideoStatusCancelled, "", nil)
	return s.Video(job.ID)
}

func (s *StudioService) Video(jobID string) (*VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrVideoJobNotFound
	}
	out := *job
	out.cancel = nil
	return &out, nil
}

// Videos lists jobs, newest first.
func (s *StudioService) Videos() []VideoJob {
	s.mu.Lock()
	out := make([]VideoJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		j := *job
		j.cancel = nil
		out = append(out, j)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// Close cancels every running job and waits for the pollers to exit.
func (s *StudioService) Close() {
	s.stop()
	s.wg.Wait()
}
