// Package server exposes the diff pipeline over HTTP for CI systems that
// prefer a long-lived endpoint to spawning the CLI.
package server

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/apivet/apivet"
	"github.com/apivet/apivet/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DiffRequest is the POST /v1/diff payload.
type DiffRequest struct {
	Old    string `json:"old"`
	New    string `json:"new"`
	Policy string `json:"policy,omitempty"`
	Format string `json:"format,omitempty"`
}

// Server handles diff requests over HTTP.
type Server struct {
	service *service.Service
	config  Config
	log     logze.Logger
	server  *servex.Server
}

// New creates the HTTP API server.
func New(cfg Config, svc *service.Service) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	srv, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
	)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create server")
	}

	h := &Server{
		service: svc,
		config:  cfg,
		log:     log,
		server:  srv,
	}

	srv.HandleFunc("/v1/diff", h.handleDiff)

	return h, nil
}

// Start starts the HTTP server.
func (h *Server) Start(ctx context.Context) error {
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the HTTP server.
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// handleDiff analyzes the two submitted sources and writes the rendered
// report.
func (h *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.config.AuthToken != "" && r.Header.Get("Authorization") != "Bearer "+h.config.AuthToken {
		ctx.Unauthorized(errm.New("invalid token"), "authorization failed")
		return
	}

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read request body")
		return
	}

	var req DiffRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctx.BadRequest(err, "failed to parse diff request")
		return
	}

	result, err := h.service.DiffSourcesWithPolicy(r.Context(), req.Old, req.New, req.Policy)
	if err != nil {
		ctx.BadRequest(err, "failed to diff sources")
		return
	}

	format := req.Format
	if format == "" {
		format = "json"
	}
	out, err := apivet.Render(result.Report, format)
	if err != nil {
		ctx.BadRequest(err, "failed to render report")
		return
	}

	contentType := "application/json"
	if format != "json" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		h.log.Err(err, "failed to write response")
	}
}
