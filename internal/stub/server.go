// Package stub serves a local stand-in for the transcription service so the
// panel and CLI can be exercised without the real backend.
package stub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config controls how the stub schedules job completion.
type Config struct {
	// PendingPolls is how many status requests answer "pending" before "completed".
	PendingPolls int
	// StepSeconds is the estimated time reported per remaining poll.
	StepSeconds float64
}

// DefaultConfig reports two pending polls, ten seconds apart.
func DefaultConfig() Config {
	return Config{PendingPolls: 2, StepSeconds: 10}
}

type job struct {
	polls int
}

// Record is a stored check-in.
type Record struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	RecitedPages   string    `json:"recited_pages"`
	ReciteDuration int       `json:"recite_duration"`
	CreatedAt      time.Time `json:"created_at"`
}

type checkInBody struct {
	Username       string `json:"username" binding:"required"`
	RecitedPages   string `json:"recited_pages" binding:"required"`
	ReciteDuration int    `json:"recite_duration" binding:"required,gt=0"`
}

// Server holds in-memory jobs and check-ins.
type Server struct {
	cfg Config
	log zerolog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	records []Record
}

// New creates a stub server.
func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.PendingPolls < 0 {
		cfg.PendingPolls = 0
	}
	return &Server{
		cfg:  cfg,
		log:  log,
		jobs: make(map[string]*job),
	}
}

// Handler returns the gin engine serving the three endpoints.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST(api.PathTranscribe, s.handleTranscribe)
	r.GET(api.PathStatus+":orderId", s.handleStatus)
	r.POST(api.PathRecordRecitation, s.handleRecordRecitation)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("stub service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Records returns a copy of the stored check-ins.
func (s *Server) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func (s *Server) handleTranscribe(c *gin.Context) {
	fh, err := c.FormFile(api.AudioField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing audio field"})
		return
	}

	text, err := lattice.Encode([][]string{
		{"Received", " " + fh.Filename},
		{fmt.Sprintf(" (%d bytes)", fh.Size)},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.jobs[id] = &job{}
	s.mu.Unlock()

	c.JSON(http.StatusOK, api.TranscribeResponse{OrderID: id, Transcription: text})
}

func (s *Server) handleStatus(c *gin.Context) {
	id := c.Param("orderId")

	s.mu.Lock()
	j, ok := s.jobs[id]
	if ok {
		j.polls++
	}
	var polls int
	if ok {
		polls = j.polls
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown order id"})
		return
	}

	if polls > s.cfg.PendingPolls {
		c.JSON(http.StatusOK, api.StatusResponse{Status: api.StatusCompleted})
		return
	}
	remaining := float64(s.cfg.PendingPolls-polls+1) * s.cfg.StepSeconds
	c.JSON(http.StatusOK, api.StatusResponse{Status: "pending", EstimatedTime: api.Float64Ptr(remaining)})
}

func (s *Server) handleRecordRecitation(c *gin.Context) {
	var body checkInBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := Record{
		ID:             uuid.NewString(),
		Username:       body.Username,
		RecitedPages:   body.RecitedPages,
		ReciteDuration: body.ReciteDuration,
		CreatedAt:      time.Now().UTC(),
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message": "Check-in recorded for " + rec.Username,
		"record":  rec,
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("stub request")
	}
}
