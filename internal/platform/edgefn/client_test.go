package edgefn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig() config.EdgeFunctionsConfig {
	return config.EdgeFunctionsConfig{
		BaseURL:      "http://edge/functions/v1",
		APIKey:       "anon-key",
		IndexingPath: "/profile_index",
		SynopsisPath: "/ppl_synopsis",
		OverviewPath: "/bill_overview",
		MetricsPath:  "/ppl_metrics",
		Timeout:      config.Duration{Duration: 2 * time.Second},
		PreviewBytes: 16,
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	c, err := NewWithHTTPClient(testConfig(), logger.Nop(), &http.Client{Transport: rt})
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c
}

func TestCallSendsPayloadAndHeaders(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("method: want=POST got=%s", req.Method)
		}
		if req.URL.Path != "/functions/v1/profile_index" {
			t.Errorf("path: got=%s", req.URL.Path)
		}
		if got := req.Header.Get("x-trace-id"); got != "trace-1" {
			t.Errorf("x-trace-id: want=trace-1 got=%q", got)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer anon-key" {
			t.Errorf("authorization: got=%q", got)
		}
		var in callRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in.ID != 42 || in.IsPPL {
			t.Errorf("payload: got=%+v", in)
		}
		return jsonResponse(200, `{"ok":true}`), nil
	})

	res := c.Call(context.Background(), EndpointIndexing, 42, profiles.KindLegislation, "trace-1", 0)
	if !res.OK || res.Status != 200 || res.Body != `{"ok":true}` || res.Error != "" {
		t.Fatalf("result: got=%+v", res)
	}
	if c.locks.Held(profiles.MutexKey(42, profiles.KindLegislation)) {
		t.Fatalf("key held after completion: want=false")
	}
}

func TestCallNon2xxIsStructuredFailure(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"error":"boom"}`), nil
	})
	res := c.Call(context.Background(), EndpointSynopsis, 1, profiles.KindPolitician, "t", 0)
	if res.OK || res.Status != 500 || res.Error != "HTTP 500" || !strings.Contains(res.Body, "boom") {
		t.Fatalf("result: got=%+v", res)
	}
}

func TestCallTimeoutReturnsStatusZero(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	res := c.Call(context.Background(), EndpointOverview, 3, profiles.KindLegislation, "t", 20*time.Millisecond)
	if res.OK || res.Status != 0 || res.Error != errTimeout {
		t.Fatalf("result: want timeout got=%+v", res)
	}
}

func TestCallCancelledByCaller(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res := c.Call(ctx, EndpointOverview, 3, profiles.KindLegislation, "t", time.Second)
	if res.OK || res.Error != errCancelled {
		t.Fatalf("result: want cancelled got=%+v", res)
	}
}

func TestCallUnknownEndpoint(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request")
		return jsonResponse(200, "{}"), nil
	})
	if res := c.Call(context.Background(), Endpoint("nope"), 1, profiles.KindPolitician, "", 0); res.OK {
		t.Fatalf("result: want failure got=%+v", res)
	}
}

func TestCallSerializesSameProfileKey(t *testing.T) {
	var inFlight, maxInFlight int32
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return jsonResponse(200, "{}"), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Call(context.Background(), EndpointIndexing, 9, profiles.KindPolitician, "t", 0)
		}()
	}
	wg.Wait()
	if maxInFlight != 1 {
		t.Fatalf("max in flight: want=1 got=%d", maxInFlight)
	}
}

func TestCallDifferentKeysRunConcurrently(t *testing.T) {
	arrived := make(chan struct{}, 2)
	gate := make(chan struct{})
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		arrived <- struct{}{}
		<-gate
		return jsonResponse(200, "{}"), nil
	})

	var wg sync.WaitGroup
	for _, kind := range []profiles.Kind{profiles.KindPolitician, profiles.KindLegislation} {
		wg.Add(1)
		go func(kind profiles.Kind) {
			defer wg.Done()
			c.Call(context.Background(), EndpointIndexing, 9, kind, "t", 0)
		}(kind)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(time.Second):
			t.Fatalf("call %d never started; keys p:9 and l:9 must not block each other", i)
		}
	}
	close(gate)
	wg.Wait()
}

func TestFunctionsWrapFailures(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/functions/v1/profile_index":
			return jsonResponse(502, "bad gateway"), nil
		case "/functions/v1/ppl_synopsis":
			return jsonResponse(200, `{"note":"No source data available - used 'No Data' for all fields"}`), nil
		case "/functions/v1/ppl_metrics":
			return jsonResponse(200, `{"outcome":{"found_any":true,"timed_out":false}}`), nil
		default:
			return jsonResponse(200, "{}"), nil
		}
	})
	fns := NewFunctions(c, 0)
	ctx := context.Background()

	err := fns.Indexing(ctx, 1, profiles.KindPolitician, "t")
	var ce *CallError
	if !errors.As(err, &ce) || ce.Status != 502 || ce.Endpoint != EndpointIndexing {
		t.Fatalf("Indexing err: got=%v", err)
	}
	if !IsCallError(err) || ce.HTTPStatusCode() != 502 {
		t.Fatalf("IsCallError: want=true")
	}

	syn, err := fns.Synopsis(ctx, 1, "t")
	if err != nil || !syn.NoSourceData {
		t.Fatalf("Synopsis: res=%+v err=%v", syn, err)
	}

	m, err := fns.Metrics(ctx, 1, "t")
	if err != nil || !m.FoundAny {
		t.Fatalf("Metrics: res=%+v err=%v", m, err)
	}

	if err := fns.Overview(ctx, 2, "t"); err != nil {
		t.Fatalf("Overview: %v", err)
	}
}

func TestPreviewTruncates(t *testing.T) {
	if got := preview("abcdef", 3); got != "abc..." {
		t.Fatalf("preview: got=%q", got)
	}
	if got := preview("ab", 3); got != "ab" {
		t.Fatalf("preview: got=%q", got)
	}
	// "é" is two bytes; the cut backs off to the rune boundary
	if got := preview("aé b", 2); got != "a..." || !utf8.ValidString(got) {
		t.Fatalf("preview: got=%q", got)
	}
}
