package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoAudio is returned when a capture session ends without any data.
var ErrNoAudio = errors.New("no audio captured")

const stopTimeout = 5 * time.Second

// Capture is an active recording session.
type Capture interface {
	StartedAt() time.Time
	// Done is closed once the capture process has exited, whether Stop asked
	// it to or it failed on its own.
	Done() <-chan struct{}
	Stop() (*Artifact, error)
}

// Recorder opens capture sessions.
type Recorder interface {
	Start(ctx context.Context) (Capture, error)
}

// RecorderConfig selects the ffmpeg input.
type RecorderConfig struct {
	Binary     string // ffmpeg executable
	Format     string // input format: avfoundation, pulse, alsa, dshow
	Device     string // input device for that format
	SampleRate int
}

// FFmpegRecorder records from a system input device by running ffmpeg and
// reading WAV from its stdout.
type FFmpegRecorder struct {
	cfg RecorderConfig
	log zerolog.Logger
	now func() time.Time
}

// NewFFmpegRecorder creates a recorder.
func NewFFmpegRecorder(cfg RecorderConfig, log zerolog.Logger) *FFmpegRecorder {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &FFmpegRecorder{cfg: cfg, log: log, now: time.Now}
}

// Start launches ffmpeg. The session owns its chunk buffer; nothing is shared
// between sessions.
func (r *FFmpegRecorder) Start(ctx context.Context) (Capture, error) {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if r.cfg.Format != "" {
		args = append(args, "-f", r.cfg.Format)
	}
	args = append(args,
		"-i", r.cfg.Device,
		"-ac", "1", "-ar", fmt.Sprint(r.cfg.SampleRate),
		"-f", "wav", "pipe:1",
	)

	cmd := exec.CommandContext(ctx, r.cfg.Binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	s := &ffmpegSession{
		cmd:     cmd,
		stdin:   stdin,
		started: r.now(),
		done:    make(chan struct{}),
		log:     r.log,
	}
	cmd.Stderr = &s.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	r.log.Info().Str("format", r.cfg.Format).Str("device", r.cfg.Device).Msg("recording started")

	go s.drain(stdout)
	return s, nil
}

type ffmpegSession struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	started time.Time
	log     zerolog.Logger

	// chunks is written only by drain until done is closed.
	chunks  [][]byte
	readErr error
	done    chan struct{}

	stopOnce sync.Once
	artifact *Artifact
	stopErr  error
}

func (s *ffmpegSession) StartedAt() time.Time { return s.started }

func (s *ffmpegSession) Done() <-chan struct{} { return s.done }

func (s *ffmpegSession) drain(r io.Reader) {
	defer close(s.done)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.chunks = append(s.chunks, chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.readErr = err
			}
			return
		}
	}
}

// Stop asks ffmpeg to finish, waits for stdout to drain and joins the chunks.
// Subsequent calls return the same result.
func (s *ffmpegSession) Stop() (*Artifact, error) {
	s.stopOnce.Do(func() {
		s.artifact, s.stopErr = s.stop()
	})
	return s.artifact, s.stopErr
}

func (s *ffmpegSession) stop() (*Artifact, error) {
	// ffmpeg treats "q" on stdin as a graceful quit.
	_, _ = io.WriteString(s.stdin, "q")
	_ = s.stdin.Close()

	select {
	case <-s.done:
	case <-time.After(stopTimeout):
		s.log.Warn().Msg("ffmpeg did not stop, killing")
		_ = s.cmd.Process.Kill()
		<-s.done
	}
	waitErr := s.cmd.Wait()

	data := bytes.Join(s.chunks, nil)
	s.chunks = nil

	if s.readErr != nil {
		return nil, fmt.Errorf("read ffmpeg output: %w", s.readErr)
	}
	if len(data) == 0 {
		if waitErr != nil {
			return nil, fmt.Errorf("ffmpeg: %w: %s", waitErr, strings.TrimSpace(s.stderr.String()))
		}
		return nil, ErrNoAudio
	}
	if waitErr != nil {
		s.log.Warn().Err(waitErr).Msg("ffmpeg exited with error after capture")
	}

	s.log.Info().Int("bytes", len(data)).Msg("recording stopped")
	return NewRecorded(data, s.started)
}

// Player plays an artifact through an external command such as ffplay.
type Player struct {
	Binary string
}

// Play blocks until playback finishes or ctx is done.
func (p Player) Play(ctx context.Context, a *Artifact) error {
	path := a.PlaybackPath()
	if path == "" {
		return ErrNoAudio
	}
	bin := p.Binary
	if bin == "" {
		bin = "ffplay"
	}
	cmd := exec.CommandContext(ctx, bin, "-nodisp", "-autoexit", "-loglevel", "error", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("play %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}
