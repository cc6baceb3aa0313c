package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/data/repos/testutil"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/pkg/dbctx"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
)

func newPoliticianReadiness(t *testing.T, fx fixture, fns RemoteFunctions) ReadinessOrchestrator {
	t.Helper()
	return NewPoliticianReadiness(
		testutil.Logger(t),
		fx.repos.Politician,
		fns,
		NewPlaceholderMatcher(config.DefaultPlaceholderPatterns),
		nil,
	)
}

func politicianIndexed(t *testing.T, fx fixture, id int64) bool {
	t.Helper()
	row, err := fx.repos.Politician.GetIndex(dbctx.New(context.Background()), id)
	if err != nil || row == nil {
		t.Fatalf("GetIndex(%d): row=%v err=%v", id, row, err)
	}
	return profiles.IsTrue(row.Indexed)
}

func TestPoliticianReadinessFreshProfile(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 1, Name: "Jane Doe", SubName: "Senator"})

	fns := &fakeFunctions{
		indexing: func(ctx context.Context, id int64, _ profiles.Kind) error {
			testutil.SeedPoliticianProfile(t, ctx, fx.db, &profiles.PoliticianProfile{IndexID: id})
			return nil
		},
		synopsis: func(ctx context.Context, id int64) (edgefn.SynopsisResult, error) {
			err := fx.db.WithContext(ctx).Model(&profiles.PoliticianProfile{}).
				Where("index_id = ?", id).Update("synopsis", "Served two terms.").Error
			return edgefn.SynopsisResult{Body: `{"ok":true}`}, err
		},
	}
	orch := newPoliticianReadiness(t, fx, fns)

	report, err := orch.Ensure(ctx, 1, "trace-a")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if want := []string{StepIndexing, StepSynopsis}; !equalSteps(fns.Calls(), want) {
		t.Fatalf("calls: want=%v got=%v", want, fns.Calls())
	}
	if !report.MarkedIndexed || !politicianIndexed(t, fx, 1) {
		t.Fatalf("indexed: report=%+v", report)
	}
	prof, _ := fx.repos.Politician.GetProfile(dbctx.New(ctx), 1)
	if prof == nil || prof.Synopsis == nil || *prof.Synopsis != "Served two terms." {
		t.Fatalf("synopsis: got=%+v", prof)
	}

	// A second run finds the profile indexed and calls nothing.
	report, err = orch.Ensure(ctx, 1, "trace-a2")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if !report.AlreadyIndexed || len(fns.Calls()) != 2 {
		t.Fatalf("second run: report=%+v calls=%v", report, fns.Calls())
	}
}

func TestPoliticianReadinessNoSourceDataRetries(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 2, Name: "John Roe", Indexed: testutil.PtrBool(false)})
	testutil.SeedPoliticianProfile(t, ctx, fx.db, &profiles.PoliticianProfile{IndexID: 2, Synopsis: testutil.PtrString("No Data Available")})

	synopsisCalls := 0
	fns := &fakeFunctions{
		synopsis: func(context.Context, int64) (edgefn.SynopsisResult, error) {
			synopsisCalls++
			if synopsisCalls == 1 {
				return edgefn.SynopsisResult{Body: "No source data for politician", NoSourceData: true}, nil
			}
			return edgefn.SynopsisResult{}, &edgefn.CallError{Endpoint: edgefn.EndpointSynopsis, Status: 500, Message: "HTTP 500"}
		},
	}
	orch := newPoliticianReadiness(t, fx, fns)

	report, err := orch.Ensure(ctx, 2, "trace-b")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	want := []string{StepIndexing, StepSynopsis, StepIndexing, StepSynopsis}
	if !equalSteps(fns.Calls(), want) {
		t.Fatalf("calls: want=%v got=%v", want, fns.Calls())
	}
	if !politicianIndexed(t, fx, 2) {
		t.Fatalf("indexed: want=true report=%+v", report)
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("warnings: want the failed retry recorded")
	}
}

func TestPoliticianReadinessNoSourceDataAfterIndexingDoesNotRetry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 5, Name: "Ann Poe"})

	fns := &fakeFunctions{
		indexing: func(ctx context.Context, id int64, _ profiles.Kind) error {
			testutil.SeedPoliticianProfile(t, ctx, fx.db, &profiles.PoliticianProfile{IndexID: id})
			return fx.db.WithContext(ctx).Model(&profiles.PoliticianIndex{}).
				Where("id = ?", id).Update("indexed", true).Error
		},
		synopsis: func(context.Context, int64) (edgefn.SynopsisResult, error) {
			return edgefn.SynopsisResult{Body: "No source data for politician", NoSourceData: true}, nil
		},
	}

	report, err := newPoliticianReadiness(t, fx, fns).Ensure(ctx, 5, "trace-e")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if want := []string{StepIndexing, StepSynopsis}; !equalSteps(fns.Calls(), want) {
		t.Fatalf("calls: want=%v got=%v", want, fns.Calls())
	}
	if !politicianIndexed(t, fx, 5) {
		t.Fatalf("indexed: want=true report=%+v", report)
	}
}

func TestPoliticianReadinessSkipsWhenIndexed(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 3, Indexed: testutil.PtrBool(true)})

	fns := &fakeFunctions{}
	report, err := newPoliticianReadiness(t, fx, fns).Ensure(ctx, 3, "")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !report.AlreadyIndexed || len(fns.Calls()) != 0 {
		t.Fatalf("want no remote calls: report=%+v calls=%v", report, fns.Calls())
	}
}

func TestPoliticianReadinessIndexingFailurePropagates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 4})

	fns := &fakeFunctions{
		indexing: func(context.Context, int64, profiles.Kind) error {
			return &edgefn.CallError{Endpoint: edgefn.EndpointIndexing, Status: 503, Message: "HTTP 503"}
		},
	}
	_, err := newPoliticianReadiness(t, fx, fns).Ensure(ctx, 4, "")
	var ce *edgefn.CallError
	if !errors.As(err, &ce) || ce.Status != 503 {
		t.Fatalf("err: want CallError 503 got=%v", err)
	}
	if politicianIndexed(t, fx, 4) {
		t.Fatalf("indexed: want=false after failed indexing")
	}
	if want := []string{StepIndexing}; !equalSteps(fns.Calls(), want) {
		t.Fatalf("calls: want=%v got=%v", want, fns.Calls())
	}
}

func TestPoliticianReadinessSynopsisFailureIsAdvisory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 5})
	testutil.SeedPoliticianProfile(t, ctx, fx.db, &profiles.PoliticianProfile{IndexID: 5})

	fns := &fakeFunctions{
		synopsis: func(context.Context, int64) (edgefn.SynopsisResult, error) {
			return edgefn.SynopsisResult{}, &edgefn.CallError{Endpoint: edgefn.EndpointSynopsis, Message: "Request timeout"}
		},
	}
	report, err := newPoliticianReadiness(t, fx, fns).Ensure(ctx, 5, "")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !politicianIndexed(t, fx, 5) || len(report.Warnings) != 1 {
		t.Fatalf("want indexed with one warning: report=%+v", report)
	}
}

func TestPoliticianReadinessStopsOnCancel(t *testing.T) {
	fx := newFixture(t)
	testutil.SeedPolitician(t, context.Background(), fx.db, &profiles.PoliticianIndex{ID: 6})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fns := &fakeFunctions{
		indexing: func(context.Context, int64, profiles.Kind) error {
			cancel()
			return nil
		},
	}
	_, err := newPoliticianReadiness(t, fx, fns).Ensure(ctx, 6, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: want=%v got=%v", context.Canceled, err)
	}
	if want := []string{StepIndexing}; !equalSteps(fns.Calls(), want) {
		t.Fatalf("calls: want=%v got=%v", want, fns.Calls())
	}
	if politicianIndexed(t, fx, 6) {
		t.Fatalf("indexed: want=false after cancel")
	}
}

func TestPoliticianReadinessSerializesRunsPerProfile(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	testutil.SeedPolitician(t, ctx, fx.db, &profiles.PoliticianIndex{ID: 7})
	testutil.SeedPoliticianProfile(t, ctx, fx.db, &profiles.PoliticianProfile{IndexID: 7, Synopsis: testutil.PtrString("Long career in the state house.")})

	fns := &fakeFunctions{}
	orch := newPoliticianReadiness(t, fx, fns)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := orch.Ensure(ctx, 7, ""); err != nil {
				t.Errorf("Ensure: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(fns.Calls()); got != 1 {
		t.Fatalf("indexing calls: want=1 got=%d (%v)", got, fns.Calls())
	}
}
