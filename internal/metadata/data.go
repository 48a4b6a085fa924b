package metadata

import (
	"time"
)

// ArtifactKind distinguishes the kind of object an artifact-store write or
// search-backend submission represents. Used for observability only.
type ArtifactKind int

const (
	ArtifactRawHTML ArtifactKind = iota
	ArtifactExtractedText
	ArtifactSearchDocument
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactRawHTML:
		return "raw_html"
	case ArtifactExtractedText:
		return "extracted_text"
	case ArtifactSearchDocument:
		return "search_document"
	default:
		return "unknown"
	}
}

/*
crawlStats
  - Represents a terminal, derived summary of a completed crawl
  - Contains only aggregate counts and durations
  - Is computed by the master's coordinator loop after a crawl tick
  - Must not influence scheduling, retries, or crawl termination
*/
type crawlStats struct {
	totalPages  int
	totalErrors int
	totalAssets int
	durationMs  int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - Any use of metadata.ErrorCause outside logging, metrics, or reporting is a design violation.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseQueueFailure
	CauseRendezvousFailure
	CauseInvariantViolation
	CauseRetryFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseQueueFailure:
		return "queue_failure"
	case CauseRendezvousFailure:
		return "rendezvous_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWorkerID   AttributeKey = "worker_id"
	AttrTaskKind   AttributeKey = "task_kind"
	AttrWritePath  AttributeKey = "write_path"
	AttrContentKey AttributeKey = "content_hash"
	AttrMessage    AttributeKey = "message"
)

// MetadataSink is the observability port every pipeline stage writes
// through. It must never be consulted to decide control flow — callers
// record to it only after a decision has already been made elsewhere.
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)

	// RecordFetch logs one completed (or exhausted) HTTP fetch attempt.
	// Observational only, same as every other MetadataSink method.
	RecordFetch(targetURL string, statusCode int, duration time.Duration, contentType string, retryCount int, crawlDepth int)
}

// CrawlFinalizer records the terminal, aggregate summary of a coordinator
// tick. Computed once per tick, never read back by the scheduler.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(totalPages, totalErrors, totalAssets int, duration time.Duration)
}
