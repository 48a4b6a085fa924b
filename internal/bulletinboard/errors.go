package bulletinboard

import (
	"fmt"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

type BoardErrorCause string

const (
	ErrCauseConnectionFailure BoardErrorCause = "connection failure"
	ErrCauseSerializeFailure  BoardErrorCause = "serialize failure"
)

// BoardError is the bulletin board's error currency. Every BB failure is
// modeled as retryable per spec.md §7 ("BB unreachable — transient; the
// affected operation fails and is retried on the next tick"); a
// non-retryable BoardError would be a programmer error (bad key format),
// not an operational one.
type BoardError struct {
	Message   string
	Retryable bool
	Cause     BoardErrorCause
}

func (e *BoardError) Error() string {
	return fmt.Sprintf("bulletin board error: %s", e.Cause)
}

func (e *BoardError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
