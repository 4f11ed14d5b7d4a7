package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"

	"github.com/apivet/apivet"
	"github.com/apivet/apivet/internal/app"
	"github.com/apivet/apivet/internal/config"
	"github.com/apivet/apivet/internal/provider"
	"github.com/apivet/apivet/internal/service"
	"github.com/apivet/apivet/model"
)

var (
	Version, Branch, Commit, BuildDate string
)

// exitCodeError is the exit code for unrecoverable errors.
const exitCodeError = 64

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	policyName = kingpin.Flag("policy", "policy to classify changes with").Short('p').String()
	format     = kingpin.Flag("format", "report format: text, markdown, json").Short('f').String()
	failOn     = kingpin.Flag("fail-on", "fail the process only at this severity or above").String()
	withNotes  = kingpin.Flag("notes", "generate a release-notes summary (needs notes api key)").Bool()

	diffCmd  = kingpin.Command("diff", "compare two declaration sources").Default()
	oldArg   = diffCmd.Arg("old", "old source: path, URL or VCS ref").Required().String()
	newArg   = diffCmd.Arg("new", "new source: path, URL or VCS ref").Required().String()
	project  = diffCmd.Flag("project", "repository identifier for VCS providers (owner/repo)").String()
	filePath = diffCmd.Flag("path", "in-repository file path for VCS providers").String()
	entries  = diffCmd.Flag("entry", "additional old=new source pairs").Strings()

	_ = kingpin.Command("serve", "run the HTTP API server")
)

func main() {
	cmd := kingpin.Parse()

	logze.Info("starting apivet",
		"version", Version,
		"branch", Branch,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logze.Info("received shutdown signal")
		cancel()
	}()

	code, err := run(ctx, cmd)
	if err != nil {
		logze.Error("application failed", "error", err)
		os.Exit(exitCodeError)
	}
	os.Exit(code)
}

func run(ctx context.Context, cmd string) (int, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return 0, errm.Wrap(err, "failed to load configuration")
	}

	// Flags win over file and environment configuration.
	cfg.Policy = lang.Check(*policyName, cfg.Policy)
	cfg.Format = lang.Check(*format, cfg.Format)
	cfg.FailOn = lang.Check(*failOn, cfg.FailOn)
	if cmd == "serve" {
		cfg.Server.Enabled = true
	}
	if err := cfg.PrepareAndValidate(); err != nil {
		return 0, err
	}

	logger := logze.With("service", "apivet")

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return 0, errm.Wrap(err, "failed to create application")
	}
	defer a.Close()

	if cmd == "serve" {
		return 0, a.Serve(ctx)
	}
	return runDiff(ctx, a, cfg)
}

func runDiff(ctx context.Context, a *app.App, cfg config.Config) (int, error) {
	pairs, err := collectEntries(cfg.Provider.Type)
	if err != nil {
		return 0, err
	}

	batch, err := a.Service().DiffEntries(ctx, pairs)
	if err != nil {
		return 0, errm.Wrap(err, "failed to diff entries")
	}

	for _, entry := range batch.Entries {
		if entry.Err != nil {
			return 0, errm.Wrap(entry.Err, "entry failed", "entry", entry.Name)
		}
		if len(batch.Entries) > 1 {
			fmt.Printf("== %s ==\n", entry.Name)
		}
		out, err := apivet.Render(entry.Result.Report, cfg.Format)
		if err != nil {
			return 0, errm.Wrap(err, "failed to render report")
		}
		fmt.Println(string(out))

		if *withNotes && a.Notes() != nil {
			summary, err := a.Notes().Generate(ctx, entry.Result.Report)
			if err != nil {
				logze.Warn("failed to generate release notes", "error", err)
			} else if summary != "" {
				fmt.Printf("\n%s\n", summary)
			}
		}
	}

	return exitCode(batch.Overall, cfg.FailOn), nil
}

// collectEntries builds the entry list from the positional pair plus any
// repeated --entry flags.
func collectEntries(providerType provider.ProviderType) ([]service.Entry, error) {
	pairs := [][2]string{{*oldArg, *newArg}}
	for _, raw := range *entries {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return nil, errm.New("invalid --entry value %q, expected old=new", raw)
		}
		pairs = append(pairs, [2]string{parts[0], parts[1]})
	}

	out := make([]service.Entry, 0, len(pairs))
	for i, pair := range pairs {
		out = append(out, service.Entry{
			Name: fmt.Sprintf("entry-%d", i+1),
			Old:  sourceRef(providerType, pair[0]),
			New:  sourceRef(providerType, pair[1]),
		})
	}
	return out, nil
}

// sourceRef interprets a positional value for the configured provider:
// a file path locally, a URL for the http provider, a ref for VCS
// providers (with --project and --path naming the file).
func sourceRef(providerType provider.ProviderType, value string) model.SourceRef {
	switch providerType {
	case provider.GitHub, provider.GitLab:
		return model.SourceRef{Ref: value, Project: *project, Path: *filePath}
	case provider.HTTP:
		return model.SourceRef{URL: value}
	}
	return model.SourceRef{Path: value}
}

// exitCode maps the verdict to the exit-code contract, honoring the
// fail-on gate when one is configured.
func exitCode(overall model.ReleaseType, failOn string) int {
	if failOn != "" && overall.Severity() < model.ReleaseType(failOn).Severity() {
		return 0
	}
	return overall.ExitCode()
}
