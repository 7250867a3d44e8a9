package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrStatus is wrapped when the service answers with a non-2xx status.
var ErrStatus = errors.New("unexpected http status")

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 60 * time.Second

// Client talks to the transcription service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Transcribe uploads audio as multipart form data under the "audio" field.
func (c *Client) Transcribe(ctx context.Context, audio Audio) (TranscribeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	contentType := audio.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileName := audio.FileName
	if fileName == "" {
		fileName = "blob"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, AudioField, fileName))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return TranscribeResponse{}, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return TranscribeResponse{}, fmt.Errorf("write audio part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return TranscribeResponse{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathTranscribe, &body)
	if err != nil {
		return TranscribeResponse{}, fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp TranscribeResponse
	if err := c.do(req, &resp); err != nil {
		return TranscribeResponse{}, fmt.Errorf("transcribe: %w", err)
	}
	c.log.Debug().Str("order_id", resp.OrderID).Int("bytes", len(audio.Data)).Msg("audio submitted")
	return resp, nil
}

// Status fetches the state of the job identified by orderID.
func (c *Client) Status(ctx context.Context, orderID string) (StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+PathStatus+url.PathEscape(orderID), nil)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("build status request: %w", err)
	}

	var resp StatusResponse
	if err := c.do(req, &resp); err != nil {
		return StatusResponse{}, fmt.Errorf("status %s: %w", orderID, err)
	}
	return resp, nil
}

// RecordRecitation posts a check-in.
func (c *Client) RecordRecitation(ctx context.Context, in CheckInRequest) (CheckInResponse, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return CheckInResponse{}, fmt.Errorf("marshal check-in: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathRecordRecitation, bytes.NewReader(data))
	if err != nil {
		return CheckInResponse{}, fmt.Errorf("build check-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp CheckInResponse
	if err := c.do(req, &resp); err != nil {
		return CheckInResponse{}, fmt.Errorf("record recitation: %w", err)
	}
	return resp, nil
}

// do sends req and decodes a JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("service request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
