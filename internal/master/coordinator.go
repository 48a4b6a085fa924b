package master

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/frontier"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
)

/*
Coordinator is the master process's single-threaded tick loop (spec.md
§4.1): dispatch admitted URLs onto the task bus, reap workers whose
heartbeat has gone stale, and fold newly-discovered URLs from finished
crawls back into the frontier.

Shared mutable state lives in two places. Frontier admission, dedup and
dispatch tracking is owned entirely by *frontier.CrawlFrontier, which
already serializes access behind its own mutex. The snapshot this type
exposes to the control-plane's GET /state handler — active worker ids,
queued/crawled URLs — is refreshed once per tick and protected by its
own mutex here, so an HTTP handler never blocks on (or races with) BB
I/O the coordinator loop is in the middle of.
*/
type Coordinator struct {
	frontier  *frontier.CrawlFrontier
	board     bulletinboard.Board
	bus       taskbus.Bus
	sink      metadata.MetadataSink
	finalizer metadata.CrawlFinalizer

	heartbeatTTL time.Duration

	snapMu sync.Mutex
	snap   Snapshot
}

// Snapshot is the point-in-time view GET /state returns.
type Snapshot struct {
	ActiveCrawlers []string
	ActiveIndexers []string
	URLsInQueue    []string
	URLsCrawled    []string
}

func NewCoordinator(
	fr *frontier.CrawlFrontier,
	board bulletinboard.Board,
	bus taskbus.Bus,
	sink metadata.MetadataSink,
	finalizer metadata.CrawlFinalizer,
	heartbeatTTL time.Duration,
) *Coordinator {
	return &Coordinator{
		frontier:     fr,
		board:        board,
		bus:          bus,
		sink:         sink,
		finalizer:    finalizer,
		heartbeatTTL: heartbeatTTL,
	}
}

// SetCrawlOptions installs a new crawl scope (spec.md §3 "set_crawl_options").
// It never evicts anything already admitted to the frontier.
func (c *Coordinator) SetCrawlOptions(maxDepth int, allowedDomains map[string]struct{}) {
	c.frontier.SetScope(maxDepth, allowedDomains)
}

// AddSeedURLs admits urls at depth 1 and returns how many were newly
// accepted (spec.md §4.1 "add_seed_urls"). Malformed URLs are silently
// skipped, same as any URL the frontier's own admission policy rejects.
func (c *Coordinator) AddSeedURLs(urls []string) int {
	before := c.frontier.VisitedCount()
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		c.frontier.Submit(frontier.NewCrawlAdmissionCandidate(
			*u,
			frontier.SourceSeed,
			frontier.NewDiscoveryMetadata(1, nil),
		))
	}
	return c.frontier.VisitedCount() - before
}

// AddNewURLs folds the URLs a finished crawl discovered back into the
// frontier, one depth below their parent (spec.md §4.1 "add_new_urls").
// Every URL landing past max_depth is dropped individually by the
// frontier's own admission check, which has the same net effect as
// dropping the whole batch when every URL shares the same new depth.
func (c *Coordinator) AddNewURLs(urls []string, parentDepth int) {
	newDepth := parentDepth + 1
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		c.frontier.Submit(frontier.NewCrawlAdmissionCandidate(
			*u,
			frontier.SourceCrawl,
			frontier.NewDiscoveryMetadata(newDepth, nil),
		))
	}
}

// DistributeTasks drains every admitted-but-undispatched URL onto the
// crawler queue (spec.md §4.1 "distribute_tasks"). A publish failure
// puts the URL back at the front of its depth bucket rather than
// dropping it, so a transient task-bus outage never loses a URL, and ends
// the pass; the next call retries it.
func (c *Coordinator) DistributeTasks(ctx context.Context) {
	for {
		token, ok := c.frontier.Dequeue()
		if !ok {
			return
		}
		u := token.URL()
		depth := token.Depth()
		dispatchID := uuid.New().String()

		if err := c.bus.PublishCrawlPage(ctx, taskbus.CrawlPageTask{URL: u.String(), Depth: depth}); err != nil {
			c.sink.RecordError(
				time.Now(),
				"master",
				"Coordinator.DistributeTasks",
				metadata.CauseQueueFailure,
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, u.String()),
					metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(depth)),
					metadata.NewAttr(metadata.AttrMessage, "dispatch "+dispatchID+" requeued after publish failure"),
				},
			)
			c.frontier.Requeue(u, depth)
			return
		}
		c.frontier.MarkDispatched(u)
	}
}

// MonitorWorkers reaps any crawler or indexer whose heartbeat has aged
// past the detection TTL (spec.md §4.1 "monitor_workers").
func (c *Coordinator) MonitorWorkers(ctx context.Context) {
	c.reap(ctx, bulletinboard.KindCrawler)
	c.reap(ctx, bulletinboard.KindIndexer)
}

func (c *Coordinator) reap(ctx context.Context, kind bulletinboard.WorkerKind) {
	heartbeats, err := c.board.ReadHeartbeats(ctx, kind)
	if err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.reap", metadata.CauseQueueFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrTaskKind, string(kind))})
		return
	}

	now := time.Now()
	for _, hb := range heartbeats {
		if now.Sub(hb.LastSeen) <= c.heartbeatTTL {
			continue
		}
		if kind == bulletinboard.KindCrawler {
			c.handleCrawlerFailure(ctx, hb.WorkerID)
		} else {
			c.handleIndexerFailure(ctx, hb.WorkerID)
		}
	}
}

// handleCrawlerFailure re-injects a dead crawler's in-flight URL and
// clears its bookkeeping (spec.md §4.1 "handle_crawler_failure"). It is
// a no-op on an id with no pending record, beyond the idempotent
// deletes.
func (c *Coordinator) handleCrawlerFailure(ctx context.Context, workerID string) {
	pending, found, err := c.board.ReadPending(ctx, bulletinboard.KindCrawler, workerID)
	if err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleCrawlerFailure", metadata.CauseQueueFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
	} else if found {
		if u, parseErr := url.Parse(pending.URL); parseErr == nil {
			c.frontier.Requeue(*u, pending.Depth)
		}
	}

	if err := c.board.DeletePending(ctx, bulletinboard.KindCrawler, workerID); err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleCrawlerFailure", metadata.CauseQueueFailure, err.Error(), nil)
	}
	if err := c.board.RemoveHeartbeat(ctx, bulletinboard.KindCrawler, workerID); err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleCrawlerFailure", metadata.CauseQueueFailure, err.Error(), nil)
	}
}

// handleIndexerFailure clears a dead indexer's bookkeeping. Unlike a
// crawler, an indexer's in-flight URL is never re-injected anywhere: it
// was already durably crawled and persisted, and re-indexing is not
// something monitor_workers can drive (see DESIGN.md).
func (c *Coordinator) handleIndexerFailure(ctx context.Context, workerID string) {
	if _, _, err := c.board.ReadPending(ctx, bulletinboard.KindIndexer, workerID); err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleIndexerFailure", metadata.CauseQueueFailure, err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, workerID)})
	}
	if err := c.board.DeletePending(ctx, bulletinboard.KindIndexer, workerID); err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleIndexerFailure", metadata.CauseQueueFailure, err.Error(), nil)
	}
	if err := c.board.RemoveHeartbeat(ctx, bulletinboard.KindIndexer, workerID); err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.handleIndexerFailure", metadata.CauseQueueFailure, err.Error(), nil)
	}
}

// MonitorFinishedTasks drains crawl-worker completion notifications,
// folding successful results' discovered URLs back into the frontier
// (spec.md §4.1 "monitor_finished_tasks"). Every notification is
// consumed exactly once, success or not.
func (c *Coordinator) MonitorFinishedTasks(ctx context.Context) {
	notifications, err := c.board.ReadFinished(ctx, bulletinboard.KindCrawler)
	if err != nil {
		c.sink.RecordError(time.Now(), "master", "Coordinator.MonitorFinishedTasks", metadata.CauseQueueFailure, err.Error(), nil)
		return
	}

	for _, n := range notifications {
		if n.Status == StatusSuccess {
			payload, found, err := c.board.ReadResult(ctx, bulletinboard.KindCrawler, n.WorkerID)
			if err != nil {
				c.sink.RecordError(time.Now(), "master", "Coordinator.MonitorFinishedTasks", metadata.CauseQueueFailure, err.Error(),
					[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, n.WorkerID)})
			} else if found {
				var result CrawlResult
				if jsonErr := json.Unmarshal([]byte(payload), &result); jsonErr != nil {
					c.sink.RecordError(time.Now(), "master", "Coordinator.MonitorFinishedTasks", metadata.CauseContentInvalid, jsonErr.Error(),
						[]metadata.Attribute{metadata.NewAttr(metadata.AttrWorkerID, n.WorkerID)})
				} else {
					c.AddNewURLs(result.NewURLs, result.Depth)
				}
			}
		}

		if err := c.board.DeleteFinished(ctx, bulletinboard.KindCrawler, n.WorkerID); err != nil {
			c.sink.RecordError(time.Now(), "master", "Coordinator.MonitorFinishedTasks", metadata.CauseQueueFailure, err.Error(), nil)
		}
		if err := c.board.DeleteResult(ctx, bulletinboard.KindCrawler, n.WorkerID); err != nil {
			c.sink.RecordError(time.Now(), "master", "Coordinator.MonitorFinishedTasks", metadata.CauseQueueFailure, err.Error(), nil)
		}
	}
}

// refreshSnapshot recomputes the control-plane's point-in-time view.
// Called once per tick, never from an HTTP handler.
func (c *Coordinator) refreshSnapshot(ctx context.Context) {
	crawlerHBs, err := c.board.ReadHeartbeats(ctx, bulletinboard.KindCrawler)
	if err != nil {
		crawlerHBs = nil
	}
	indexerHBs, err := c.board.ReadHeartbeats(ctx, bulletinboard.KindIndexer)
	if err != nil {
		indexerHBs = nil
	}

	next := Snapshot{
		ActiveCrawlers: workerIDs(crawlerHBs),
		ActiveIndexers: workerIDs(indexerHBs),
		URLsInQueue:    c.frontier.PendingURLs(),
		URLsCrawled:    c.frontier.CrawledURLs(),
	}

	c.snapMu.Lock()
	c.snap = next
	c.snapMu.Unlock()
}

// State returns the last snapshot refreshed by the coordinator loop,
// for the control-plane's GET /state handler.
func (c *Coordinator) State() Snapshot {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snap
}

// Run ticks distribute_tasks -> monitor_workers -> monitor_finished_tasks
// once a second until ctx is cancelled (spec.md §4.1).
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		start := time.Now()

		c.DistributeTasks(ctx)
		c.MonitorWorkers(ctx)
		c.MonitorFinishedTasks(ctx)
		c.refreshSnapshot(ctx)

		snap := c.State()
		if c.finalizer != nil {
			c.finalizer.RecordFinalCrawlStats(len(snap.URLsCrawled), 0, 0, time.Since(start))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func workerIDs(heartbeats []bulletinboard.Heartbeat) []string {
	ids := make([]string, 0, len(heartbeats))
	for _, hb := range heartbeats {
		ids = append(ids, hb.WorkerID)
	}
	return ids
}

