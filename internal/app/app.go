// Package app wires the application components together.
package app

import (
	"context"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet"
	"github.com/apivet/apivet/internal/config"
	"github.com/apivet/apivet/internal/notes"
	"github.com/apivet/apivet/internal/policy"
	"github.com/apivet/apivet/internal/provider"
	"github.com/apivet/apivet/internal/server"
	"github.com/apivet/apivet/internal/service"
	"github.com/apivet/apivet/model"
)

// App is the assembled application.
type App struct {
	config   config.Config
	log      logze.Logger
	registry *apivet.Registry
	provider model.SourceProvider
	service  *service.Service
	server   *server.Server
	notes    *notes.Generator
}

// New validates the configuration and creates the component graph.
func New(ctx context.Context, cfg config.Config, log logze.Logger) (*App, error) {
	a := &App{
		config:   cfg,
		log:      log,
		registry: apivet.NewRegistry(),
	}

	// Custom policies from the config sit next to the built-ins.
	for _, spec := range cfg.Policies {
		compiled, err := policy.Compile(spec)
		if err != nil {
			return nil, errm.Wrap(err, "failed to compile custom policy")
		}
		if err := a.registry.RegisterPolicy("config", spec.Name, compiled); err != nil {
			return nil, errm.Wrap(err, "failed to register custom policy")
		}
	}

	if _, ok := a.registry.Policy(cfg.Policy); !ok {
		return nil, errm.New("unknown policy: %s", cfg.Policy)
	}

	var err error
	a.provider, err = provider.NewProvider(cfg.Provider)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create source provider")
	}

	a.service, err = service.New(a.provider, a.Options(), a.registry)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create service")
	}

	if cfg.Server.Enabled {
		a.server, err = server.New(cfg.Server, a.service)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create server")
		}
	}

	if cfg.Notes.Enabled() {
		a.notes, err = notes.New(ctx, cfg.Notes)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create release notes generator")
		}
	}

	return a, nil
}

// Options maps the configuration to analysis options.
func (a *App) Options() apivet.Options {
	return apivet.Options{
		Policy: a.config.Policy,
		Parse: apivet.ParseOptions{
			ExtractDocMetadata: !a.config.Parse.SkipDocMetadata,
		},
		Diff: apivet.DiffOptions{
			RenameThreshold:           a.config.Diff.RenameThreshold,
			IncludeNestedChanges:      !a.config.Diff.SkipNestedChanges,
			ResolveTypeRelationships:  !a.config.Diff.SkipTypeResolution,
			MaxNestingDepth:           a.config.Diff.MaxNestingDepth,
			DetectParameterReordering: !a.config.Diff.SkipReorderDetection,
		},
	}
}

// Service returns the diff service.
func (a *App) Service() *service.Service { return a.service }

// Notes returns the optional release-notes generator, nil when disabled.
func (a *App) Notes() *notes.Generator { return a.notes }

// Serve runs the HTTP API until the context is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.server == nil {
		return errm.New("server is not enabled in configuration")
	}

	if err := a.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start server")
	}
	a.log.Info("server started", "address", a.config.Server.Address)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.Timeout)
	defer cancel()
	if err := a.server.Stop(stopCtx); err != nil {
		return errm.Wrap(err, "failed to stop server")
	}
	a.log.Info("server stopped")
	return nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.service != nil {
		a.service.Close()
	}
}
