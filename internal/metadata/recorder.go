package metadata

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (worker id, task id)
*/

import (
	"time"

	"github.com/rs/zerolog"
)

// Recorder is the sole MetadataSink/CrawlFinalizer implementation. It
// turns domain events into one zerolog event each; it holds no state that
// any other component reads back.
type Recorder struct {
	log       zerolog.Logger
	component string
}

func NewRecorder(component string, log zerolog.Logger) Recorder {
	return Recorder{
		log:       log.With().Str("component", component).Logger(),
		component: component,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	event := r.log.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String()).
		Str("error", errorString)
	for _, a := range attrs {
		event = event.Str(string(a.Key), a.Value)
	}
	event.Msg("recoverable failure")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	event := r.log.Info().
		Str("kind", kind.String()).
		Str("path", path)
	for _, a := range attrs {
		event = event.Str(string(a.Key), a.Value)
	}
	event.Msg("artifact recorded")
}

func (r *Recorder) RecordFetch(targetURL string, statusCode int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
	r.log.Info().
		Str("url", targetURL).
		Int("status", statusCode).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retry_count", retryCount).
		Int("depth", crawlDepth).
		Msg("fetch completed")
}

func (r *Recorder) RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration) {
	r.log.Info().
		Int("total_pages", totalPages).
		Int("total_errors", totalErrors).
		Int("total_assets", totalAssets).
		Dur("duration", duration).
		Msg("coordinator tick summary")
}
