package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrModelName    = "model.name"
	AttrModelFormat  = "model.format"
	AttrFeatureName  = "feature.name"
	AttrFeatureCount = "model.feature_count"
	AttrResultCount  = "result.count"
	AttrCacheHit     = "cache.hit"
	AttrErrorMessage = "error.message"
)

// Span name prefixes.
const (
	SpanPrefixRepo  = "repo."
	SpanPrefixStore = "store."
)

// RecordError marks span as failed. A nil err leaves the span untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
