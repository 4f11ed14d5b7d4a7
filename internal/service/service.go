// Package service orchestrates the diff pipeline: fetch the two sources,
// analyze, classify and assemble the report. Batch runs fan entry points
// out over a worker pool; each entry touches only its own pair, so the
// fan-out cannot race.
package service

import (
	"context"
	"sync"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/apivet/apivet"
	"github.com/apivet/apivet/model"
)

const defaultPoolSize = 16

// Entry is one old/new pair to compare.
type Entry struct {
	Name string
	Old  model.SourceRef
	New  model.SourceRef
}

// EntryResult is the outcome for a single entry.
type EntryResult struct {
	Name   string
	Result *model.Result
	Err    error
}

// BatchResult merges per-entry outcomes; the overall verdict is the
// maximum severity across entries.
type BatchResult struct {
	Entries []EntryResult
	Overall model.ReleaseType
}

// Service runs diffs against a configured source provider.
type Service struct {
	provider model.SourceProvider
	registry *apivet.Registry
	opts     apivet.Options
	pool     *ants.Pool
	log      logze.Logger
}

func New(provider model.SourceProvider, opts apivet.Options, registry *apivet.Registry) (*Service, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create ants pool")
	}

	return &Service{
		provider: provider,
		registry: registry,
		opts:     opts,
		pool:     pool,
		log:      logze.With("module", "service"),
	}, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// DiffSources analyzes two in-memory declaration sources under the
// configured policy.
func (s *Service) DiffSources(ctx context.Context, oldSource, newSource string) (*model.Result, error) {
	return s.DiffSourcesWithPolicy(ctx, oldSource, newSource, "")
}

// DiffSourcesWithPolicy overrides the configured policy for one request.
func (s *Service) DiffSourcesWithPolicy(ctx context.Context, oldSource, newSource, policyName string) (*model.Result, error) {
	timer := abstract.StartTimer()

	opts := s.opts
	if policyName != "" {
		opts.Policy = policyName
	}

	result, err := apivet.AnalyzeWithRegistry(ctx, oldSource, newSource, opts, s.registry)
	if err != nil {
		return nil, errm.Wrap(err, "failed to analyze sources")
	}

	s.log.Info("sources diffed",
		"release_type", result.ReleaseType,
		"changes", len(result.Changes),
		"elapsed_time", timer.ElapsedTime().String(),
	)
	return result, nil
}

// DiffEntry fetches both sides of one entry through the provider and
// analyzes them.
func (s *Service) DiffEntry(ctx context.Context, entry Entry) (*model.Result, error) {
	oldSource, err := s.provider.Fetch(ctx, entry.Old)
	if err != nil {
		return nil, errm.Wrap(err, "failed to fetch old source", "entry", entry.Name)
	}
	newSource, err := s.provider.Fetch(ctx, entry.New)
	if err != nil {
		return nil, errm.Wrap(err, "failed to fetch new source", "entry", entry.Name)
	}
	return s.DiffSources(ctx, oldSource, newSource)
}

// DiffEntries fans a batch out over the pool and merges the verdicts.
// Results keep the input order regardless of completion order.
func (s *Service) DiffEntries(ctx context.Context, entries []Entry) (*BatchResult, error) {
	if len(entries) == 0 {
		return nil, errm.New("no entries to diff")
	}

	batch := &BatchResult{
		Entries: make([]EntryResult, len(entries)),
		Overall: model.ReleaseNone,
	}

	var wg sync.WaitGroup
	for i, entry := range entries {
		i, entry := i, entry
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			result, err := s.DiffEntry(ctx, entry)
			batch.Entries[i] = EntryResult{Name: entry.Name, Result: result, Err: err}
		})
		if err != nil {
			wg.Done()
			batch.Entries[i] = EntryResult{Name: entry.Name, Err: errm.Wrap(err, "failed to submit entry")}
		}
	}
	wg.Wait()

	for _, er := range batch.Entries {
		if er.Result != nil && er.Result.ReleaseType.Severity() > batch.Overall.Severity() {
			batch.Overall = er.Result.ReleaseType
		}
	}
	return batch, nil
}
