package searchindex

import (
	"fmt"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

type SearchErrorCause string

const (
	ErrCauseIndexFailure  SearchErrorCause = "index failure"
	ErrCauseSearchFailure SearchErrorCause = "search failure"
	ErrCauseEncodeFailure SearchErrorCause = "encode failure"
)

// SearchError is the search backend's error currency. Index/search
// round trips against the backing engine are retryable; a failure to
// encode the request body is a programmer error and is not.
type SearchError struct {
	Message   string
	Retryable bool
	Cause     SearchErrorCause
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search backend error: %s", e.Cause)
}

func (e *SearchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
