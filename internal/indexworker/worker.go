package indexworker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/artifacts"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/heartbeat"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/searchindex"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
)

// Worker runs the index worker's per-task flow (spec.md §4.3): Received
// -> ReadText -> Tokenize -> Submit -> Ack. Unlike the crawl worker there
// is no politeness wait and no frontier fold-back on completion — the
// index worker's only downstream effect is the search backend document
// it writes.
type Worker struct {
	bus   taskbus.Bus
	board bulletinboard.Board
	store artifacts.Store
	index searchindex.Index
	sink  metadata.MetadataSink

	heartbeatPublishInterval time.Duration
}

func NewWorker(
	bus taskbus.Bus,
	board bulletinboard.Board,
	store artifacts.Store,
	index searchindex.Index,
	sink metadata.MetadataSink,
	heartbeatPublishInterval time.Duration,
) *Worker {
	return &Worker{
		bus:                      bus,
		board:                    board,
		store:                    store,
		index:                    index,
		sink:                     sink,
		heartbeatPublishInterval: heartbeatPublishInterval,
	}
}

// Run long-polls the indexer queue until ctx is cancelled, processing one
// delivery at a time.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deliveries, err := w.bus.ReceiveIndexContent(ctx, 1)
		if err != nil {
			w.sink.RecordError(time.Now(), "indexworker", "Worker.Run", metadata.CauseQueueFailure, err.Error(), nil)
			continue
		}
		for _, d := range deliveries {
			w.processTask(ctx, d)
		}
	}
}

func (w *Worker) processTask(ctx context.Context, delivery taskbus.Delivery) {
	task, decodeErr := taskbus.DecodeIndexContent(delivery.Body)
	if decodeErr != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.processTask", metadata.CauseContentInvalid, decodeErr.Error(), nil)
		w.ack(ctx, delivery.ReceiptHandle)
		return
	}

	workerID := "indexer_" + uuid.New().String()
	ticker := heartbeat.Start(ctx, w.board, bulletinboard.KindIndexer, workerID, w.heartbeatPublishInterval, w.sink)

	if err := w.board.WritePending(ctx, bulletinboard.KindIndexer, workerID, task.URL, task.Depth); err != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.processTask", metadata.CauseRendezvousFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
	}

	text, readErr := w.store.GetText(ctx, task.TextKey)
	if readErr != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, "error")
		return
	}

	tokens := searchindex.Tokenize(text)

	indexErr := w.index.IndexDocument(ctx, searchindex.Document{
		URL:       task.URL,
		Content:   text,
		Tokens:    tokens,
		Timestamp: time.Now(),
	})
	if indexErr != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, "error")
		return
	}

	w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, "success")
}

// finishAndAck calls finish and acks the delivery only if every bulletin
// board write finish performed succeeded. spec.md §4.2/§7: a BB write
// failure must not be acked — the task bus redelivers it once the
// delivery's visibility timeout expires, the same "raise so the message
// is not acked" behavior original_source/tasks.py's try/except/finally
// gets from letting a Redis-write exception propagate out of the task
// body.
func (w *Worker) finishAndAck(ctx context.Context, workerID string, ticker *heartbeat.Ticker, receiptHandle string, status string) {
	if err := w.finish(ctx, workerID, ticker, status); err != nil {
		return
	}
	w.ack(ctx, receiptHandle)
}

// finish writes the finished-status notification, stops the heartbeat
// ticker, and only then clears this worker's pending/heartbeat records
// (internal/heartbeat.Ticker's own ordering requirement). Unlike the
// crawl worker, no crawl_result-equivalent payload is written: nothing
// reads an index result back, so there is nothing for it to carry. It
// returns the first bulletin board write failure encountered (after
// still attempting every remaining step on a best-effort basis) so the
// caller can withhold the ack.
func (w *Worker) finish(ctx context.Context, workerID string, ticker *heartbeat.Ticker, status string) error {
	var firstErr error

	if err := w.board.WriteFinished(ctx, bulletinboard.KindIndexer, workerID, status); err != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
		firstErr = err
	}

	ticker.Stop()

	if err := w.board.DeletePending(ctx, bulletinboard.KindIndexer, workerID); err != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(), nil)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := w.board.RemoveHeartbeat(ctx, bulletinboard.KindIndexer, workerID); err != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(), nil)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (w *Worker) ack(ctx context.Context, receiptHandle string) {
	if err := w.bus.AckIndexContent(ctx, receiptHandle); err != nil {
		w.sink.RecordError(time.Now(), "indexworker", "Worker.ack", metadata.CauseQueueFailure, err.Error(), nil)
	}
}
