package taskbus

import (
	"errors"
	"fmt"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

// errArgShape is returned by the envelope decoders when a message body
// parses as JSON but its "args" array doesn't match the expected
// positional shape for its task name.
var errArgShape = errors.New("taskbus: malformed task args")

type TaskBusErrorCause string

const (
	ErrCausePublishFailure    TaskBusErrorCause = "publish failure"
	ErrCauseReceiveFailure    TaskBusErrorCause = "receive failure"
	ErrCauseDeleteFailure     TaskBusErrorCause = "delete failure"
	ErrCauseMalformedEnvelope TaskBusErrorCause = "malformed envelope"
)

// TaskBusError is the task bus's error currency. Publish/receive/delete
// failures against SQS are retryable (spec.md §7: a master publish
// failure re-inserts the URL into the frontier and is logged, not fatal);
// a malformed envelope is not, since redelivering the same bad message
// will never succeed.
type TaskBusError struct {
	Message   string
	Retryable bool
	Cause     TaskBusErrorCause
}

func (e *TaskBusError) Error() string {
	return fmt.Sprintf("task bus error: %s", e.Cause)
}

func (e *TaskBusError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
