// Package edgefn invokes the backend's serverless functions. Calls that target the same
// profile are queued so at most one is in flight per profile key in this process.
package edgefn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/observability"
	"github.com/yungbote/execudex-backend/internal/pkg/keymutex"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type Endpoint string

const (
	EndpointIndexing Endpoint = "profile_index"
	EndpointSynopsis Endpoint = "ppl_synopsis"
	EndpointOverview Endpoint = "bill_overview"
	EndpointMetrics  Endpoint = "ppl_metrics"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20

	errTimeout   = "Request timeout"
	errCancelled = "Request cancelled"
)

// Result is the structured outcome of a call. Failures are reported here, never as a
// Go error. Status is 0 when no HTTP response was received.
type Result struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Caller is the contract the typed Functions wrapper and tests depend on.
type Caller interface {
	Call(ctx context.Context, endpoint Endpoint, id int64, kind profiles.Kind, traceID string, timeout time.Duration) Result
}

type Client struct {
	baseURL string
	apiKey  string
	paths   map[Endpoint]string

	timeout      time.Duration
	previewBytes int

	httpClient *http.Client
	locks      *keymutex.Mutex
	tracer     trace.Tracer
	log        *logger.Logger
}

func New(cfg config.EdgeFunctionsConfig, log *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("edgefn: base_url required")
	}
	if log == nil {
		log = logger.Nop()
	}

	paths := map[Endpoint]string{
		EndpointIndexing: pathOr(cfg.IndexingPath, "/"+string(EndpointIndexing)),
		EndpointSynopsis: pathOr(cfg.SynopsisPath, "/"+string(EndpointSynopsis)),
		EndpointOverview: pathOr(cfg.OverviewPath, "/"+string(EndpointOverview)),
		EndpointMetrics:  pathOr(cfg.MetricsPath, "/"+string(EndpointMetrics)),
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	preview := cfg.PreviewBytes
	if preview <= 0 {
		preview = 400
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		paths:        paths,
		timeout:      timeout,
		previewBytes: preview,
		httpClient:   &http.Client{Transport: tr},
		locks:        keymutex.New(keymutex.WithWaitObserver(observability.KeyWaitObserver("edge_call"))),
		tracer:       observability.Tracer("execudex/edgefn"),
		log:          log.With("service", "EdgeFunctionClient"),
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.EdgeFunctionsConfig, log *logger.Logger, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

func pathOr(p, def string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return def
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

type callRequest struct {
	ID    int64 `json:"id"`
	IsPPL bool  `json:"is_ppl"`
}

// Call posts {"id","is_ppl"} to the endpoint. A zero timeout uses the client default.
// The timeout bounds the request itself; queue wait only ends early when ctx is done.
func (c *Client) Call(ctx context.Context, endpoint Endpoint, id int64, kind profiles.Kind, traceID string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = c.timeout
	}
	key := profiles.MutexKey(id, kind)
	log := c.log.Trace(traceID).With("endpoint", string(endpoint), "key", key)

	path, ok := c.paths[endpoint]
	if !ok {
		log.Error("Unknown edge function endpoint")
		return Result{OK: false, Status: 0, Error: fmt.Sprintf("unknown endpoint %q", endpoint)}
	}

	enqueued := time.Now()
	log.Debug("Edge call enqueued", "queued_behind", c.locks.Held(key))

	release, err := c.locks.Lock(ctx, key)
	if err != nil {
		log.Warn("Edge call abandoned while queued", "waited_ms", time.Since(enqueued).Milliseconds(), "error", err)
		return Result{OK: false, Status: 0, Error: errCancelled}
	}
	defer release()

	started := time.Now()
	log.Info("Edge call started", "waited_ms", started.Sub(enqueued).Milliseconds(), "timeout_ms", timeout.Milliseconds())

	res := c.do(ctx, endpoint, path, id, kind, traceID, timeout)

	took := time.Since(started)
	observability.ObserveEdgeCall(string(endpoint), res.OK, res.Status, took)
	log.Info("Edge call finished",
		"ok", res.OK,
		"status", res.Status,
		"size", len(res.Body),
		"preview", preview(res.Body, c.previewBytes),
		"error", res.Error,
		"request_ms", took.Milliseconds(),
		"total_ms", time.Since(enqueued).Milliseconds(),
	)
	return res
}

func (c *Client) do(ctx context.Context, endpoint Endpoint, path string, id int64, kind profiles.Kind, traceID string, timeout time.Duration) Result {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqCtx, span := c.tracer.Start(reqCtx, "edgefn."+string(endpoint),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("edgefn.endpoint", string(endpoint)),
			attribute.Int64("profile.id", id),
			attribute.String("profile.kind", string(kind)),
			attribute.String("execudex.trace_id", traceID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(callRequest{ID: id, IsPPL: kind.IsPolitician()})
	if err != nil {
		return Result{OK: false, Status: 0, Error: err.Error()}
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Result{OK: false, Status: 0, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if traceID != "" {
		req.Header.Set("x-trace-id", traceID)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := transportError(ctx, reqCtx, err)
		span.SetStatus(codes.Error, msg)
		return Result{OK: false, Status: 0, Error: msg}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		msg := transportError(ctx, reqCtx, err)
		span.SetStatus(codes.Error, msg)
		return Result{OK: false, Status: resp.StatusCode, Error: msg}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		span.SetStatus(codes.Error, msg)
		return Result{OK: false, Status: resp.StatusCode, Body: string(b), Error: msg}
	}
	return Result{OK: true, Status: resp.StatusCode, Body: string(b)}
}

func transportError(parent, reqCtx context.Context, err error) string {
	switch {
	case parent.Err() != nil:
		return errCancelled
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded):
		return errTimeout
	default:
		return err.Error()
	}
}

func preview(body string, n int) string {
	if n <= 0 || len(body) <= n {
		return body
	}
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n] + "..."
}
