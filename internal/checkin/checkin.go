// Package checkin validates and formats reading-session check-ins.
package checkin

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jwulff/recite/internal/api"
)

// Display messages.
const (
	MsgIncomplete = "Please fill in all fields and record audio"
	MsgFailed     = "Error during check-in"
)

// Request is a check-in as entered in the panel.
type Request struct {
	Username       string `validate:"required"`
	RecitedPages   string `validate:"required"`
	ReciteDuration int    `validate:"gt=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports whether every field is present. Whitespace-only names and
// page lists count as empty.
func (r Request) Validate() error {
	trimmed := Request{
		Username:       strings.TrimSpace(r.Username),
		RecitedPages:   strings.TrimSpace(r.RecitedPages),
		ReciteDuration: r.ReciteDuration,
	}
	if err := structValidator().Struct(trimmed); err != nil {
		return fmt.Errorf("check-in: %w", err)
	}
	return nil
}

// Wire converts the request to the service body.
func (r Request) Wire() api.CheckInRequest {
	return api.CheckInRequest{
		Username:       r.Username,
		RecitedPages:   r.RecitedPages,
		ReciteDuration: r.ReciteDuration,
	}
}

// FormatDuration renders whole seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// ElapsedSeconds rounds end-start to the nearest whole second.
func ElapsedSeconds(start, end time.Time) int {
	if start.IsZero() || end.Before(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Seconds()))
}

// UploadDuration selects how an uploaded file contributes to the check-in duration.
type UploadDuration string

const (
	// UploadElapsed measures from the moment the file was loaded, as for a recording.
	UploadElapsed UploadDuration = "elapsed"
	// UploadNone leaves the duration at zero, so uploads alone cannot check in.
	UploadNone UploadDuration = "none"
)

// ParseUploadDuration validates a configured mode.
func ParseUploadDuration(s string) (UploadDuration, error) {
	switch UploadDuration(strings.ToLower(strings.TrimSpace(s))) {
	case UploadElapsed, "":
		return UploadElapsed, nil
	case UploadNone:
		return UploadNone, nil
	}
	return "", fmt.Errorf("unknown upload duration mode %q (want %q or %q)", s, UploadElapsed, UploadNone)
}
