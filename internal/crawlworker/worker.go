package crawlworker

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/artifacts"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/extractor"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/fetcher"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/heartbeat"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/robots"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/limiter"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/retry"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/timeutil"
)

// politenessKey is the single rate-limiter key every crawl worker resolves
// its delay against, regardless of which host a task targets. spec.md
// §4.2 requires the CRAWL_DELAY sleep to be "unconditional per-task, not
// per-origin" — a per-host key on pkg/limiter.ConcurrentRateLimiter would
// give the opposite guarantee (parallel hosts never waiting on each
// other), so every task in this process shares one bucket instead.
const politenessKey = "process"

// Worker runs the crawl worker's per-task state machine (spec.md §4.2):
// Received -> RobotsCheck -> (Disallowed | PolitenessWait -> Fetch ->
// (Error | Extract -> PersistArtifacts -> EnqueueIndex -> PublishResult))
// -> Ack.
type Worker struct {
	bus       taskbus.Bus
	board     bulletinboard.Board
	robot     robots.Robot
	fetcher   fetcher.Fetcher
	extractor extractor.PageExtractor
	artifacts artifacts.Store
	limiter   *limiter.ConcurrentRateLimiter
	sink      metadata.MetadataSink

	userAgent                string
	heartbeatPublishInterval time.Duration
	retryParam               retry.RetryParam
}

func NewWorker(
	bus taskbus.Bus,
	board bulletinboard.Board,
	robot robots.Robot,
	f fetcher.Fetcher,
	ex extractor.PageExtractor,
	store artifacts.Store,
	rl *limiter.ConcurrentRateLimiter,
	sink metadata.MetadataSink,
	userAgent string,
	crawlDelay time.Duration,
	heartbeatPublishInterval time.Duration,
	maxRetries int,
) *Worker {
	rl.SetBaseDelay(0)
	rl.SetJitter(0)
	rl.SetCrawlDelay(politenessKey, crawlDelay)

	return &Worker{
		bus:                      bus,
		board:                    board,
		robot:                    robot,
		fetcher:                  f,
		extractor:                ex,
		artifacts:                store,
		limiter:                  rl,
		sink:                     sink,
		userAgent:                userAgent,
		heartbeatPublishInterval: heartbeatPublishInterval,
		retryParam: retry.NewRetryParam(
			500*time.Millisecond,
			250*time.Millisecond,
			time.Now().UnixNano(),
			maxRetries,
			timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 10*time.Second),
		),
	}
}

// Run long-polls the crawler queue until ctx is cancelled, processing one
// delivery at a time. spec.md's state machine is per-task, not
// per-worker-process-concurrent — a single worker handles one in-flight
// task, matching the "worker identity is per-task" heartbeat model.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		deliveries, err := w.bus.ReceiveCrawlPage(ctx, 1)
		if err != nil {
			w.sink.RecordError(time.Now(), "crawlworker", "Worker.Run", metadata.CauseQueueFailure, err.Error(), nil)
			continue
		}
		for _, d := range deliveries {
			w.processTask(ctx, d)
		}
	}
}

func (w *Worker) processTask(ctx context.Context, delivery taskbus.Delivery) {
	task, decodeErr := taskbus.DecodeCrawlPage(delivery.Body)
	if decodeErr != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.processTask", metadata.CauseContentInvalid, decodeErr.Error(), nil)
		w.ack(ctx, delivery.ReceiptHandle)
		return
	}

	workerID := "crawler_" + uuid.New().String()
	ticker := heartbeat.Start(ctx, w.board, bulletinboard.KindCrawler, workerID, w.heartbeatPublishInterval, w.sink)

	if err := w.board.WritePending(ctx, bulletinboard.KindCrawler, workerID, task.URL, task.Depth); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.processTask", metadata.CauseRendezvousFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
	}

	target, parseErr := url.Parse(task.URL)
	if parseErr != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, 0, parseErr.Error())
		return
	}

	decision, _ := w.robot.Decide(*target)
	if !decision.Allowed {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusDisallowed, nil, 0, "")
		return
	}

	delay := w.limiter.ResolveDelay(politenessKey)
	if delay > 0 {
		time.Sleep(delay)
	}
	w.limiter.MarkLastFetchAsNow(politenessKey)

	fetchParam := fetcher.NewFetchParam(*target, w.userAgent)
	result, fetchErr := w.fetcher.Fetch(ctx, task.Depth, fetchParam, w.retryParam)
	if fetchErr != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, 0, fetchErr.Error())
		return
	}

	extraction, extractErr := w.extractor.Extract(*target, result.Body())
	if extractErr != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, int(result.SizeByte()), extractErr.Error())
		return
	}

	crawledAt := time.Now()
	if _, err := w.artifacts.PutRawHTML(ctx, target.Host, target.String(), result.Body(), crawledAt); err != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, int(result.SizeByte()), err.Error())
		return
	}
	textKey, err := w.artifacts.PutExtractedText(ctx, target.Host, target.String(), extraction.Text, crawledAt)
	if err != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, int(result.SizeByte()), err.Error())
		return
	}

	if err := w.bus.PublishIndexContent(ctx, taskbus.IndexContentTask{
		URL:     target.String(),
		Depth:   task.Depth,
		TextKey: textKey,
	}); err != nil {
		w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusError, nil, int(result.SizeByte()), err.Error())
		return
	}

	newURLs := make([]string, 0, len(extraction.Links))
	for _, link := range extraction.Links {
		newURLs = append(newURLs, link.String())
	}

	w.finishAndAck(ctx, workerID, ticker, delivery.ReceiptHandle, task, master.StatusSuccess, newURLs, int(result.SizeByte()), "")
}

// finishAndAck calls finish and acks the delivery only if every bulletin
// board write finish performed succeeded. spec.md §4.2/§7: a BB write
// failure must not be acked — the task bus redelivers it once the
// delivery's visibility timeout expires, the same "raise so the message
// is not acked" behavior original_source/tasks.py's try/except/finally
// gets from letting a Redis-write exception propagate out of the task
// body.
func (w *Worker) finishAndAck(
	ctx context.Context,
	workerID string,
	ticker *heartbeat.Ticker,
	receiptHandle string,
	task taskbus.CrawlPageTask,
	status string,
	newURLs []string,
	contentLength int,
	errMsg string,
) {
	if err := w.finish(ctx, workerID, ticker, task, status, newURLs, contentLength, errMsg); err != nil {
		return
	}
	w.ack(ctx, receiptHandle)
}

// finish writes the terminal result and status, then stops the heartbeat
// ticker and clears this task's bookkeeping, in that order: spec.md §5's
// ordering guarantee requires the ticker to be stopped before its
// heartbeat/pending records are deleted. It returns the first bulletin
// board write failure encountered (after still attempting every
// remaining step on a best-effort basis) so the caller can withhold the
// ack and let the task bus redeliver the task.
func (w *Worker) finish(
	ctx context.Context,
	workerID string,
	ticker *heartbeat.Ticker,
	task taskbus.CrawlPageTask,
	status string,
	newURLs []string,
	contentLength int,
	errMsg string,
) error {
	var firstErr error

	payload, marshalErr := encodeCrawlResult(master.CrawlResult{
		URL:           task.URL,
		Status:        status,
		Depth:         task.Depth,
		NewURLs:       newURLs,
		ContentLength: contentLength,
		Error:         errMsg,
	})
	if marshalErr != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.finish", metadata.CauseContentInvalid, marshalErr.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
		firstErr = marshalErr
	} else if err := w.board.WriteResult(ctx, bulletinboard.KindCrawler, workerID, payload); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
		firstErr = err
	}

	if err := w.board.WriteFinished(ctx, bulletinboard.KindCrawler, workerID, status); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
		if firstErr == nil {
			firstErr = err
		}
	}

	ticker.Stop()

	if err := w.board.DeletePending(ctx, bulletinboard.KindCrawler, workerID); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(), nil)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := w.board.RemoveHeartbeat(ctx, bulletinboard.KindCrawler, workerID); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.finish", metadata.CauseRendezvousFailure, err.Error(), nil)
		if firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (w *Worker) ack(ctx context.Context, receiptHandle string) {
	if err := w.bus.AckCrawlPage(ctx, receiptHandle); err != nil {
		w.sink.RecordError(time.Now(), "crawlworker", "Worker.ack", metadata.CauseQueueFailure, err.Error(), nil)
	}
}
