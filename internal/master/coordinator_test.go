package master_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/frontier"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

// fakeBoard is an in-memory bulletinboard.Board, good enough to exercise
// the coordinator's dispatch/reap/fold logic without a live Redis.
type fakeBoard struct {
	mu         sync.Mutex
	heartbeats map[bulletinboard.WorkerKind]map[string]time.Time
	pending    map[bulletinboard.WorkerKind]map[string]bulletinboard.PendingAssignment
	finished   map[bulletinboard.WorkerKind]map[string]string
	results    map[bulletinboard.WorkerKind]map[string]string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		heartbeats: map[bulletinboard.WorkerKind]map[string]time.Time{
			bulletinboard.KindCrawler: {},
			bulletinboard.KindIndexer: {},
		},
		pending: map[bulletinboard.WorkerKind]map[string]bulletinboard.PendingAssignment{
			bulletinboard.KindCrawler: {},
			bulletinboard.KindIndexer: {},
		},
		finished: map[bulletinboard.WorkerKind]map[string]string{
			bulletinboard.KindCrawler: {},
			bulletinboard.KindIndexer: {},
		},
		results: map[bulletinboard.WorkerKind]map[string]string{
			bulletinboard.KindCrawler: {},
			bulletinboard.KindIndexer: {},
		},
	}
}

func (b *fakeBoard) WriteHeartbeat(_ context.Context, kind bulletinboard.WorkerKind, workerID string, at time.Time) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.heartbeats[kind][workerID] = at
	return nil
}

func (b *fakeBoard) ReadHeartbeats(_ context.Context, kind bulletinboard.WorkerKind) ([]bulletinboard.Heartbeat, failure.ClassifiedError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bulletinboard.Heartbeat, 0, len(b.heartbeats[kind]))
	for id, at := range b.heartbeats[kind] {
		out = append(out, bulletinboard.Heartbeat{WorkerID: id, LastSeen: at})
	}
	return out, nil
}

func (b *fakeBoard) RemoveHeartbeat(_ context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.heartbeats[kind], workerID)
	return nil
}

func (b *fakeBoard) WritePending(_ context.Context, kind bulletinboard.WorkerKind, workerID string, u string, depth int) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[kind][workerID] = bulletinboard.PendingAssignment{URL: u, Depth: depth}
	return nil
}

func (b *fakeBoard) ReadPending(_ context.Context, kind bulletinboard.WorkerKind, workerID string) (bulletinboard.PendingAssignment, bool, failure.ClassifiedError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[kind][workerID]
	return p, ok, nil
}

func (b *fakeBoard) DeletePending(_ context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending[kind], workerID)
	return nil
}

func (b *fakeBoard) WriteFinished(_ context.Context, kind bulletinboard.WorkerKind, workerID string, status string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished[kind][workerID] = status
	return nil
}

func (b *fakeBoard) ReadFinished(_ context.Context, kind bulletinboard.WorkerKind) ([]bulletinboard.FinishedNotification, failure.ClassifiedError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bulletinboard.FinishedNotification, 0, len(b.finished[kind]))
	for id, status := range b.finished[kind] {
		out = append(out, bulletinboard.FinishedNotification{WorkerID: id, Status: status})
	}
	return out, nil
}

func (b *fakeBoard) DeleteFinished(_ context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.finished[kind], workerID)
	return nil
}

func (b *fakeBoard) WriteResult(_ context.Context, kind bulletinboard.WorkerKind, workerID string, payloadJSON string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[kind][workerID] = payloadJSON
	return nil
}

func (b *fakeBoard) ReadResult(_ context.Context, kind bulletinboard.WorkerKind, workerID string) (string, bool, failure.ClassifiedError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.results[kind][workerID]
	return p, ok, nil
}

func (b *fakeBoard) DeleteResult(_ context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.results[kind], workerID)
	return nil
}

// fakeBus is an in-memory taskbus.Bus, recording every published task.
type fakeBus struct {
	mu          sync.Mutex
	crawlPages  []taskbus.CrawlPageTask
	failPublish bool
}

func (b *fakeBus) PublishCrawlPage(_ context.Context, task taskbus.CrawlPageTask) failure.ClassifiedError {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPublish {
		return &taskbus.TaskBusError{Message: "simulated outage", Retryable: true, Cause: taskbus.ErrCausePublishFailure}
	}
	b.crawlPages = append(b.crawlPages, task)
	return nil
}

func (b *fakeBus) PublishIndexContent(_ context.Context, task taskbus.IndexContentTask) failure.ClassifiedError {
	return nil
}

func (b *fakeBus) ReceiveCrawlPage(_ context.Context, maxMessages int32) ([]taskbus.Delivery, failure.ClassifiedError) {
	return nil, nil
}

func (b *fakeBus) ReceiveIndexContent(_ context.Context, maxMessages int32) ([]taskbus.Delivery, failure.ClassifiedError) {
	return nil, nil
}

func (b *fakeBus) AckCrawlPage(_ context.Context, receiptHandle string) failure.ClassifiedError {
	return nil
}

func (b *fakeBus) AckIndexContent(_ context.Context, receiptHandle string) failure.ClassifiedError {
	return nil
}

// noopSink discards every observability call, same role as /dev/null for
// the metadata port in these tests.
type noopSink struct{}

func (noopSink) RecordError(time.Time, string, string, metadata.ErrorCause, string, []metadata.Attribute) {
}
func (noopSink) RecordArtifact(metadata.ArtifactKind, string, []metadata.Attribute) {}
func (noopSink) RecordFetch(string, int, time.Duration, string, int, int)           {}

func newTestCoordinator(board bulletinboard.Board, bus taskbus.Bus) *master.Coordinator {
	fr := frontier.NewCrawlFrontier()
	fr.SetScope(5, map[string]struct{}{"example.com": {}})
	return master.NewCoordinator(fr, board, bus, noopSink{}, nil, 30*time.Second)
}

func TestCoordinator_AddSeedURLs_AdmitsAllowedDomainOnly(t *testing.T) {
	c := newTestCoordinator(newFakeBoard(), &fakeBus{})

	accepted := c.AddSeedURLs([]string{
		"https://example.com/a",
		"https://other.com/b",
		"https://example.com/a", // duplicate, must not double count
	})

	if accepted != 1 {
		t.Fatalf("expected 1 accepted seed url, got %d", accepted)
	}
}

func TestCoordinator_DistributeTasks_PublishesAndMarksDispatched(t *testing.T) {
	bus := &fakeBus{}
	c := newTestCoordinator(newFakeBoard(), bus)

	c.AddSeedURLs([]string{"https://example.com/a", "https://example.com/b"})
	c.DistributeTasks(context.Background())

	bus.mu.Lock()
	published := len(bus.crawlPages)
	bus.mu.Unlock()

	if published != 2 {
		t.Fatalf("expected 2 published crawl tasks, got %d", published)
	}
}

func TestCoordinator_DistributeTasks_RequeuesOnPublishFailure(t *testing.T) {
	bus := &fakeBus{failPublish: true}
	c := newTestCoordinator(newFakeBoard(), bus)

	c.AddSeedURLs([]string{"https://example.com/a"})
	c.DistributeTasks(context.Background())

	bus.failPublish = false
	c.DistributeTasks(context.Background())

	bus.mu.Lock()
	published := len(bus.crawlPages)
	bus.mu.Unlock()

	if published != 1 {
		t.Fatalf("expected the requeued url to publish once the outage clears, got %d", published)
	}
}

func TestCoordinator_MonitorWorkers_ReapsDeadCrawlerAndRequeuesItsURL(t *testing.T) {
	board := newFakeBoard()
	bus := &fakeBus{}
	c := newTestCoordinator(board, bus)

	c.AddSeedURLs([]string{"https://example.com/a"})
	c.DistributeTasks(context.Background())

	workerID := "crawler_dead"
	board.WriteHeartbeat(context.Background(), bulletinboard.KindCrawler, workerID, time.Now().Add(-time.Hour))
	board.WritePending(context.Background(), bulletinboard.KindCrawler, workerID, "https://example.com/a", 1)

	c.MonitorWorkers(context.Background())

	if _, found, _ := board.ReadPending(context.Background(), bulletinboard.KindCrawler, workerID); found {
		t.Fatal("expected pending assignment to be cleared after reap")
	}
	if hbs, _ := board.ReadHeartbeats(context.Background(), bulletinboard.KindCrawler); len(hbs) != 0 {
		t.Fatalf("expected heartbeat removed after reap, got %d remaining", len(hbs))
	}

	c.DistributeTasks(context.Background())
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.crawlPages) != 2 {
		t.Fatalf("expected the dead crawler's url to be redispatched (original dispatch plus redispatch), got %d publishes", len(bus.crawlPages))
	}
}

func TestCoordinator_MonitorFinishedTasks_FoldsDiscoveredURLs(t *testing.T) {
	board := newFakeBoard()
	bus := &fakeBus{}
	c := newTestCoordinator(board, bus)

	result := master.CrawlResult{
		URL:     "https://example.com/a",
		Status:  master.StatusSuccess,
		Depth:   1,
		NewURLs: []string{"https://example.com/child"},
	}
	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	board.WriteResult(context.Background(), bulletinboard.KindCrawler, "crawler_1", string(payload))
	board.WriteFinished(context.Background(), bulletinboard.KindCrawler, "crawler_1", master.StatusSuccess)

	c.MonitorFinishedTasks(context.Background())

	c.DistributeTasks(context.Background())
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.crawlPages) != 1 || bus.crawlPages[0].URL != "https://example.com/child" {
		t.Fatalf("expected the discovered child url to be folded and dispatched, got %+v", bus.crawlPages)
	}

	if _, found, _ := board.ReadResult(context.Background(), bulletinboard.KindCrawler, "crawler_1"); found {
		t.Fatal("expected result payload to be deleted after consumption")
	}
}

func TestCoordinator_Run_StopsOnContextCancel(t *testing.T) {
	board := newFakeBoard()
	bus := &fakeBus{}
	c := newTestCoordinator(board, bus)
	c.AddSeedURLs([]string{"https://example.com/a"})

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("expected Run to return once ctx was cancelled")
	}

	snap := c.State()
	if len(snap.URLsCrawled) != 1 {
		t.Fatalf("expected 1 crawled url in the refreshed snapshot, got %d", len(snap.URLsCrawled))
	}
}
