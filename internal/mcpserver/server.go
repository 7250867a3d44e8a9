// Package mcpserver exposes transcription and check-in operations as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwulff/recite/internal/api"
	"github.com/jwulff/recite/internal/audio"
	"github.com/jwulff/recite/internal/checkin"
	"github.com/jwulff/recite/internal/job"
	"github.com/jwulff/recite/internal/lattice"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Service is the remote transcription service.
type Service interface {
	Transcribe(ctx context.Context, audio api.Audio) (api.TranscribeResponse, error)
	Status(ctx context.Context, orderID string) (api.StatusResponse, error)
	RecordRecitation(ctx context.Context, in api.CheckInRequest) (api.CheckInResponse, error)
}

// Server wires the tools to a Service.
type Server struct {
	svc          Service
	log          zerolog.Logger
	pollInterval time.Duration
	mcp          *server.MCPServer
}

// New registers every tool on a fresh MCP server.
func New(svc Service, version string, pollInterval time.Duration, log zerolog.Logger) *Server {
	s := &Server{
		svc:          svc,
		log:          log,
		pollInterval: pollInterval,
		mcp: server.NewMCPServer("recite", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool("extract_text",
		mcp.WithDescription("Extract readable text from a transcription lattice JSON string"),
		mcp.WithString("lattice", mcp.Required(), mcp.Description("Lattice JSON as returned by the transcription service")),
	), s.handleExtractText)

	s.mcp.AddTool(mcp.NewTool("transcribe_file",
		mcp.WithDescription("Submit an audio file for transcription and return the order id and text"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to a local audio file")),
		mcp.WithBoolean("wait", mcp.Description("Poll until the job completes before returning")),
	), s.handleTranscribeFile)

	s.mcp.AddTool(mcp.NewTool("transcription_status",
		mcp.WithDescription("Fetch the status line for a transcription order"),
		mcp.WithString("order_id", mcp.Required(), mcp.Description("Order id returned by transcribe_file")),
	), s.handleStatus)

	s.mcp.AddTool(mcp.NewTool("check_in",
		mcp.WithDescription("Record a reading session"),
		mcp.WithString("username", mcp.Required()),
		mcp.WithString("recited_pages", mcp.Required(), mcp.Description("Pages read, free text such as 1,2,3")),
		mcp.WithNumber("recite_duration", mcp.Required(), mcp.Description("Session length in whole seconds")),
	), s.handleCheckIn)

	s.mcp.AddTool(mcp.NewTool("format_duration",
		mcp.WithDescription("Render whole seconds as minutes and seconds"),
		mcp.WithNumber("seconds", mcp.Required()),
	), s.handleFormatDuration)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleExtractText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("lattice")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := lattice.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s %v", lattice.ParseErrorText, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

type transcribeResult struct {
	OrderID string `json:"orderId"`
	Text    string `json:"text"`
	Status  string `json:"status"`
}

func (s *Server) handleTranscribeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	wait := req.GetBool("wait", false)

	a, err := audio.FromFile(path, time.Now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer a.Release()

	resp, err := s.svc.Transcribe(ctx, a.Upload())
	if err != nil {
		s.log.Error().Err(err).Str("file", a.Name).Msg("transcribe")
		return mcp.NewToolResultError("Error submitting audio: " + err.Error()), nil
	}

	out := transcribeResult{
		OrderID: resp.OrderID,
		Text:    lattice.ExtractReadableText(resp.Transcription),
		Status:  job.Start(resp.OrderID).Message(),
	}
	if wait {
		j, err := job.Poll(ctx, s.svc, resp.OrderID, s.pollInterval, nil)
		out.Status = j.Message()
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", resp.OrderID).Msg("poll")
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("order_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := s.svc.Status(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", id).Msg("status")
		return mcp.NewToolResultError(job.MsgFailed), nil
	}
	return mcp.NewToolResultText(job.Start(id).Apply(resp).Message()), nil
}

func (s *Server) handleCheckIn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r := checkin.Request{
		Username:       req.GetString("username", ""),
		RecitedPages:   req.GetString("recited_pages", ""),
		ReciteDuration: int(req.GetFloat("recite_duration", 0)),
	}
	if err := r.Validate(); err != nil {
		return mcp.NewToolResultError(checkin.MsgIncomplete), nil
	}
	resp, err := s.svc.RecordRecitation(ctx, r.Wire())
	if err != nil {
		s.log.Error().Err(err).Str("username", r.Username).Msg("check-in")
		return mcp.NewToolResultError(checkin.MsgFailed), nil
	}
	return mcp.NewToolResultText(resp.Message), nil
}

func (s *Server) handleFormatDuration(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	secs, err := req.RequireFloat("seconds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if secs < 0 {
		return mcp.NewToolResultError("seconds must not be negative"), nil
	}
	return mcp.NewToolResultText(checkin.FormatDuration(int(secs))), nil
}
