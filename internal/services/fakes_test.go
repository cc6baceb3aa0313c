package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/execudex-backend/internal/data/repos"
	"github.com/yungbote/execudex-backend/internal/data/repos/testutil"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
)

// fakeFunctions records calls and runs optional hooks that mutate the database the
// way the real generators would.
type fakeFunctions struct {
	mu    sync.Mutex
	calls []string

	indexing func(ctx context.Context, id int64, kind profiles.Kind) error
	synopsis func(ctx context.Context, id int64) (edgefn.SynopsisResult, error)
	overview func(ctx context.Context, id int64) error
	metrics  func(ctx context.Context, id int64) (edgefn.MetricsOutcome, error)
}

func (f *fakeFunctions) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeFunctions) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFunctions) Indexing(ctx context.Context, id int64, kind profiles.Kind, _ string) error {
	f.record(StepIndexing)
	if f.indexing != nil {
		return f.indexing(ctx, id, kind)
	}
	return nil
}

func (f *fakeFunctions) Synopsis(ctx context.Context, id int64, _ string) (edgefn.SynopsisResult, error) {
	f.record(StepSynopsis)
	if f.synopsis != nil {
		return f.synopsis(ctx, id)
	}
	return edgefn.SynopsisResult{Body: `{"ok":true}`}, nil
}

func (f *fakeFunctions) Overview(ctx context.Context, id int64, _ string) error {
	f.record(StepOverview)
	if f.overview != nil {
		return f.overview(ctx, id)
	}
	return nil
}

func (f *fakeFunctions) Metrics(ctx context.Context, id int64, _ string) (edgefn.MetricsOutcome, error) {
	f.record("metrics")
	if f.metrics != nil {
		return f.metrics(ctx, id)
	}
	return edgefn.MetricsOutcome{}, nil
}

type fakeArtifacts struct {
	has bool
	err error
}

func (f fakeArtifacts) HasSynopsisArtifact(context.Context, int64) (bool, error) { return f.has, f.err }

type fixture struct {
	db    *gorm.DB
	repos repos.Repos
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	return fixture{db: db, repos: repos.New(db, testutil.Logger(t))}
}

func equalSteps(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
