package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/cachegate/cachegate/internal/observability/errors"
	"github.com/cachegate/cachegate/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// RequestMetric captures one completed HTTP request for metric emission.
type RequestMetric struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
	Err      error
}

// ResultForStatus buckets a response status into a result tag.
func ResultForStatus(status int) string {
	switch {
	case status >= 500:
		return ResultError
	case status >= 400:
		return ResultDenied
	default:
		return ResultSuccess
	}
}

// EmitRequest emits standardised request metrics.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}

	route := in.Route
	if route == "" {
		route = "unmatched"
	}
	tags := map[string]string{
		"route":  route,
		"method": in.Method,
		"status": strconv.Itoa(in.Status),
		"result": ResultForStatus(in.Status),
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("http.request", 1, tags)

	if in.Duration > 0 {
		sink.Timing("http.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
