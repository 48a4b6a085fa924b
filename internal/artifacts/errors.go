package artifacts

import (
	"fmt"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

type ArtifactErrorCause string

const (
	ErrCausePutFailure ArtifactErrorCause = "put failure"
	ErrCauseGetFailure ArtifactErrorCause = "get failure"
	ErrCauseNotFound   ArtifactErrorCause = "not found"
)

// ArtifactError is the artifact store's error currency. Put/Get failures
// against the backing object store are retryable; a missing object is
// not, since retrying a GetText for a key that was never written will
// never succeed.
type ArtifactError struct {
	Message   string
	Retryable bool
	Cause     ArtifactErrorCause
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact store error: %s", e.Cause)
}

func (e *ArtifactError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
