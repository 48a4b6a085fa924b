package bulletinboard

import (
	"context"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

/*
Board is the port interface over the shared bulletin board (spec.md §2,
§6): an external key/value service providing ordered sets scored by
timestamp (heartbeats), hashes (pending assignments, finished-task
notifications), and string blobs (result payloads). Every method here is
a single BB operation; no method composes more than one round trip, so
every operation really is the single-command atomic primitive spec.md §5
requires.

Implementations must never let a BB outage crash the caller: per spec.md
§7, a BB failure is transient and the affected operation is retried on
the next coordinator tick, not treated as fatal.
*/
type Board interface {
	// WriteHeartbeat sets kind's sorted-set member workerID to score at
	// (unix seconds). Called once on task receipt and then on every tick
	// of the worker's heartbeat ticker.
	WriteHeartbeat(ctx context.Context, kind WorkerKind, workerID string, at time.Time) failure.ClassifiedError

	// ReadHeartbeats returns every member of kind's sorted set with its
	// score, for the master's monitor_workers to compare against the
	// detection TTL.
	ReadHeartbeats(ctx context.Context, kind WorkerKind) ([]Heartbeat, failure.ClassifiedError)

	// RemoveHeartbeat deletes workerID's entry from kind's sorted set.
	RemoveHeartbeat(ctx context.Context, kind WorkerKind, workerID string) failure.ClassifiedError

	// WritePending records that workerID is currently executing a task
	// for url at depth. Must be called after WriteHeartbeat for the same
	// worker (spec.md §5 ordering guarantee: a reaper must never observe
	// a pending record without a heartbeat).
	WritePending(ctx context.Context, kind WorkerKind, workerID string, url string, depth int) failure.ClassifiedError

	// ReadPending fetches the in-flight assignment for workerID, if any.
	ReadPending(ctx context.Context, kind WorkerKind, workerID string) (PendingAssignment, bool, failure.ClassifiedError)

	// DeletePending removes workerID's in-flight assignment record.
	DeletePending(ctx context.Context, kind WorkerKind, workerID string) failure.ClassifiedError

	// WriteFinished publishes a terminal status for workerID so the
	// master's monitor_finished_tasks can pick it up.
	WriteFinished(ctx context.Context, kind WorkerKind, workerID string, status string) failure.ClassifiedError

	// ReadFinished returns every outstanding finished-task notification
	// for kind.
	ReadFinished(ctx context.Context, kind WorkerKind) ([]FinishedNotification, failure.ClassifiedError)

	// DeleteFinished removes workerID's finished-task notification.
	DeleteFinished(ctx context.Context, kind WorkerKind, workerID string) failure.ClassifiedError

	// WriteResult stores the JSON result payload for workerID.
	WriteResult(ctx context.Context, kind WorkerKind, workerID string, payloadJSON string) failure.ClassifiedError

	// ReadResult fetches the JSON result payload for workerID, if present.
	ReadResult(ctx context.Context, kind WorkerKind, workerID string) (string, bool, failure.ClassifiedError)

	// DeleteResult removes workerID's result payload.
	DeleteResult(ctx context.Context, kind WorkerKind, workerID string) failure.ClassifiedError
}
