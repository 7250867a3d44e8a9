// Package audio captures microphone audio through ffmpeg and holds the
// resulting artifact until it is submitted or replaced.
package audio

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwulff/recite/internal/api"
)

// Source records how an artifact was produced.
type Source int

const (
	Recorded Source = iota
	Uploaded
)

func (s Source) String() string {
	if s == Uploaded {
		return "upload"
	}
	return "recording"
}

// Artifact is one captured or uploaded audio clip.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	Source      Source
	CapturedAt  time.Time

	playback string
	ownsFile bool
	released bool
}

// NewRecorded wraps recorded WAV bytes and writes them to a temp file so the
// clip can be played back. Release removes the file.
func NewRecorded(data []byte, capturedAt time.Time) (*Artifact, error) {
	f, err := os.CreateTemp("", "recite-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create playback file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write playback file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close playback file: %w", err)
	}

	return &Artifact{
		Name:        "recording-" + capturedAt.Format("20060102-150405") + ".wav",
		ContentType: "audio/wav",
		Data:        data,
		Source:      Recorded,
		CapturedAt:  capturedAt,
		playback:    f.Name(),
		ownsFile:    true,
	}, nil
}

// FromFile loads a user-selected file. The file is played back in place and
// is never removed by Release.
func FromFile(path string, loadedAt time.Time) (*Artifact, error) {
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	return &Artifact{
		Name:        filepath.Base(abs),
		ContentType: contentType(abs),
		Data:        data,
		Source:      Uploaded,
		CapturedAt:  loadedAt,
		playback:    abs,
	}, nil
}

var audioTypes = map[string]string{
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := audioTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// PlaybackPath is the local file a player can open, or "" once released.
func (a *Artifact) PlaybackPath() string {
	if a == nil || a.released {
		return ""
	}
	return a.playback
}

// PlaybackURL is PlaybackPath as a file URL.
func (a *Artifact) PlaybackURL() string {
	p := a.PlaybackPath()
	if p == "" {
		return ""
	}
	return "file://" + filepath.ToSlash(p)
}

// Upload returns the payload for the transcription service.
func (a *Artifact) Upload() api.Audio {
	return api.Audio{FileName: a.Name, ContentType: a.ContentType, Data: a.Data}
}

// Release frees the playback file if this artifact created it. Safe to call
// more than once and on nil.
func (a *Artifact) Release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	if !a.ownsFile {
		return nil
	}
	if err := os.Remove(a.playback); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove playback file: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
