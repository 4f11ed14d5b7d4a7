package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apivet/apivet"
	"github.com/apivet/apivet/internal/provider/local"
	"github.com/apivet/apivet/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(local.New(), apivet.DefaultOptions(), apivet.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestDiffSources(t *testing.T) {
	svc := newService(t)

	result, err := svc.DiffSources(context.Background(),
		"function a(): void;",
		"function a(): void;\nfunction b(): void;",
	)
	if err != nil {
		t.Fatal(err)
	}
	if result.ReleaseType != model.ReleaseMinor {
		t.Errorf("ReleaseType = %s, want minor", result.ReleaseType)
	}
}

func TestDiffEntryThroughLocalProvider(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.d.ts", "function f(): void;")
	newPath := writeFile(t, dir, "new.d.ts", "function g(): void;")

	svc := newService(t)
	result, err := svc.DiffEntry(context.Background(), Entry{
		Name: "main",
		Old:  model.SourceRef{Path: oldPath},
		New:  model.SourceRef{Path: newPath},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.ReleaseType != model.ReleaseMajor {
		t.Errorf("ReleaseType = %s, want major", result.ReleaseType)
	}
}

func TestDiffEntriesBatch(t *testing.T) {
	dir := t.TempDir()
	sameOld := writeFile(t, dir, "same-old.d.ts", "function f(): void;")
	sameNew := writeFile(t, dir, "same-new.d.ts", "function f(): void;")
	brokeOld := writeFile(t, dir, "broke-old.d.ts", "function gone(): void;\nfunction f(): void;")
	brokeNew := writeFile(t, dir, "broke-new.d.ts", "function f(): void;")

	svc := newService(t)
	batch, err := svc.DiffEntries(context.Background(), []Entry{
		{Name: "same", Old: model.SourceRef{Path: sameOld}, New: model.SourceRef{Path: sameNew}},
		{Name: "broke", Old: model.SourceRef{Path: brokeOld}, New: model.SourceRef{Path: brokeNew}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if batch.Overall != model.ReleaseMajor {
		t.Errorf("Overall = %s, want major", batch.Overall)
	}
	if batch.Entries[0].Name != "same" || batch.Entries[1].Name != "broke" {
		t.Error("batch results lost input order")
	}
	if batch.Entries[0].Result.ReleaseType != model.ReleaseNone {
		t.Errorf("same entry = %s, want none", batch.Entries[0].Result.ReleaseType)
	}
}

func TestDiffEntriesEmpty(t *testing.T) {
	svc := newService(t)
	if _, err := svc.DiffEntries(context.Background(), nil); err == nil {
		t.Error("empty batch accepted")
	}
}

func TestDiffEntryMissingFile(t *testing.T) {
	svc := newService(t)
	_, err := svc.DiffEntry(context.Background(), Entry{
		Name: "missing",
		Old:  model.SourceRef{Path: "/nonexistent/old.d.ts"},
		New:  model.SourceRef{Path: "/nonexistent/new.d.ts"},
	})
	if err == nil {
		t.Error("missing file accepted")
	}
}
