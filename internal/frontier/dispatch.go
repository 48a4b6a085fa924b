package frontier

import (
	"net/url"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/urlutil"
)

/*
The coordinator needs more from the frontier than "what is admitted and
pending": it must also track which admitted URLs have already been
handed to a worker, so that a worker that dies mid-task can be detected
and its URL put back in front of the queue without tripping the
ordinary admission/dedup rules a second time.

dispatched is a subset of visited. A URL enters it when the coordinator
calls MarkDispatched after a successful publish, and never leaves it —
Requeue re-admits the URL to the
pending queue while leaving its dispatched membership untouched, since
the URL is about to be dispatched again.
*/

// MarkDispatched records that url has been handed to a worker. Callers
// call this once per successful Dequeue; it is idempotent.
func (f *CrawlFrontier) MarkDispatched(target url.URL) {
	canonical := urlutil.Canonicalize(target)
	key := canonical.String()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched.Add(key)
}

// CrawledURLs returns the canonical form of every URL marked dispatched
// so far. Used by the control-plane state endpoint and by the
// coordinator's failure-detection pass.
func (f *CrawlFrontier) CrawledURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dispatched.Values()
}

// PendingURLs returns the canonical form of every admitted URL not yet
// dispatched, across all depths. Order is not significant.
func (f *CrawlFrontier) PendingURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, queue := range f.queuesByDepth {
		for _, tok := range queue.Values() {
			canonical := urlutil.Canonicalize(tok.URL())
			out = append(out, canonical.String())
		}
	}
	return out
}

// Requeue re-admits target at depth for immediate redispatch, bypassing
// the ordinary Submit admission policy (scope, domain allow-list, max
// pages, dedup). It exists for one reason only: a worker holding target
// has been declared dead by the coordinator's heartbeat check, and the
// URL must be returned to the front of its depth bucket so some other
// worker picks it back up. target is assumed to already be a member of
// visited/dispatched from its original Submit/MarkDispatched call.
func (f *CrawlFrontier) Requeue(target url.URL, depth int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue, ok := f.queuesByDepth[depth]
	if !ok {
		queue = NewFIFOQueue[CrawlToken]()
		f.queuesByDepth[depth] = queue
	}
	queue.EnqueueFront(NewCrawlToken(target, depth))
}
