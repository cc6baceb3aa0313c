package edgefn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
)

// CallError marks a remote function that answered non-2xx or could not be reached.
// The navigation gate treats it as a transient failure.
type CallError struct {
	Endpoint Endpoint
	Status   int
	Message  string
	Body     string
}

func (e *CallError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("edge function %s failed: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("edge function %s failed: %s", e.Endpoint, e.Message)
}

// HTTPStatusCode lets callers map the failure without importing this package.
func (e *CallError) HTTPStatusCode() int { return e.Status }

func IsCallError(err error) bool {
	var ce *CallError
	return errors.As(err, &ce)
}

const noSourceDataSentinel = "no source data"

type SynopsisResult struct {
	Body string
	// NoSourceData is set when the generator found nothing to summarize.
	NoSourceData bool
}

type MetricsOutcome struct {
	FoundAny bool
	TimedOut bool
	Raw      json.RawMessage
}

// Functions exposes the remote procedures with typed results.
type Functions struct {
	caller  Caller
	timeout time.Duration
}

func NewFunctions(caller Caller, timeout time.Duration) *Functions {
	return &Functions{caller: caller, timeout: timeout}
}

func (f *Functions) call(ctx context.Context, endpoint Endpoint, id int64, kind profiles.Kind, traceID string) (Result, error) {
	res := f.caller.Call(ctx, endpoint, id, kind, traceID, f.timeout)
	if res.OK {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, &CallError{Endpoint: endpoint, Status: res.Status, Message: res.Error, Body: res.Body}
}

// Indexing classifies the profile and creates its content row when missing.
func (f *Functions) Indexing(ctx context.Context, id int64, kind profiles.Kind, traceID string) error {
	_, err := f.call(ctx, EndpointIndexing, id, kind, traceID)
	return err
}

func (f *Functions) Synopsis(ctx context.Context, id int64, traceID string) (SynopsisResult, error) {
	res, err := f.call(ctx, EndpointSynopsis, id, profiles.KindPolitician, traceID)
	if err != nil {
		return SynopsisResult{}, err
	}
	return SynopsisResult{
		Body:         res.Body,
		NoSourceData: strings.Contains(strings.ToLower(res.Body), noSourceDataSentinel),
	}, nil
}

func (f *Functions) Overview(ctx context.Context, id int64, traceID string) error {
	_, err := f.call(ctx, EndpointOverview, id, profiles.KindLegislation, traceID)
	return err
}

type metricsResponse struct {
	Outcome *struct {
		FoundAny bool `json:"found_any"`
		TimedOut bool `json:"timed_out"`
	} `json:"outcome"`
}

func (f *Functions) Metrics(ctx context.Context, id int64, traceID string) (MetricsOutcome, error) {
	res, err := f.call(ctx, EndpointMetrics, id, profiles.KindPolitician, traceID)
	if err != nil {
		return MetricsOutcome{}, err
	}
	out := MetricsOutcome{Raw: json.RawMessage(res.Body)}
	var parsed metricsResponse
	if err := json.Unmarshal([]byte(res.Body), &parsed); err != nil {
		out.Raw = nil
		return out, nil
	}
	if parsed.Outcome != nil {
		out.FoundAny = parsed.Outcome.FoundAny
		out.TimedOut = parsed.Outcome.TimedOut
	}
	return out, nil
}
