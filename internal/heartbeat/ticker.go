package heartbeat

import (
	"context"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
)

/*
Ticker is the task-scoped cancellable background activity spec.md §9
"Background heartbeat" describes: started on task entry, stopped in a
scope guard on task exit. Grounded on original_source/tasks.py's Celery
task wrapper, which starts a heartbeat thread before the task body runs
and stops it in a finally block — the same start-before-work,
stop-after-work shape, expressed here as a goroutine plus a cancellable
context instead of a thread plus a finally.

The caller must Stop the ticker before deleting the worker's bulletin
board records (spec.md §5's ordering guarantee: "the controlling code
must guarantee the ticker is stopped before BB cleanup deletes the
heartbeat key"). Stop blocks until the ticker goroutine has actually
exited, so there is no race between the last in-flight WriteHeartbeat
and the caller's own DeleteHeartbeat-equivalent cleanup.
*/
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start writes an initial heartbeat synchronously (spec.md §4.2:
// "Immediately on receipt, write active_crawlers[worker_id] = now"),
// then spawns a goroutine that refreshes it every interval until Stop is
// called. The initial write's failure is recorded but does not prevent
// the ticker from starting — a BB outage is transient per spec.md §7 and
// the ticker will keep retrying on its own schedule.
func Start(
	ctx context.Context,
	board bulletinboard.Board,
	kind bulletinboard.WorkerKind,
	workerID string,
	interval time.Duration,
	sink metadata.MetadataSink,
) *Ticker {
	if err := board.WriteHeartbeat(ctx, kind, workerID, time.Now()); err != nil {
		recordHeartbeatError(sink, kind, workerID, err)
	}

	tickerCtx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		clock := time.NewTicker(interval)
		defer clock.Stop()
		for {
			select {
			case <-tickerCtx.Done():
				return
			case now := <-clock.C:
				if err := board.WriteHeartbeat(tickerCtx, kind, workerID, now); err != nil {
					recordHeartbeatError(sink, kind, workerID, err)
				}
			}
		}
	}()

	return t
}

// Stop cancels the ticker and waits for its goroutine to exit, so the
// caller can safely delete the worker's BB records immediately after.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}

func recordHeartbeatError(sink metadata.MetadataSink, kind bulletinboard.WorkerKind, workerID string, err error) {
	sink.RecordError(
		time.Now(),
		"heartbeat",
		"Ticker.WriteHeartbeat",
		metadata.CauseRendezvousFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWorkerID, workerID),
			metadata.NewAttr(metadata.AttrTaskKind, string(kind)),
		},
	)
}
