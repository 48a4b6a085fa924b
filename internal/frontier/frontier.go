package frontier

import (
	"sync"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/urlutil"
)

/*
CrawlFrontier holds the set of admitted URLs awaiting dispatch, grouped by
depth, and enforces the admission policy from the crawl scope: max depth,
allowed domains, and an optional page-count cap.

Dequeue always drains the lowest pending depth first, so depth N is fully
exhausted before any depth N+1 URL is returned, regardless of submission
order. A "current depth" cursor is not enough here: two sibling branches
can discover the same depth at different wall-clock times, so the minimum
pending depth must be recomputed on every Dequeue rather than advanced
monotonically.

A single coarse mutex protects all state. Submission and dequeue are rare
enough, and contended briefly enough, that finer-grained locking would
only add risk without a measured need.
*/
type CrawlFrontier struct {
	mu sync.Mutex

	maxDepth       int
	maxPages       int
	allowedDomains map[string]struct{}

	queuesByDepth map[int]*FIFOQueue[CrawlToken]
	visited       Set[string]
	dispatched    Set[string]
}

func NewCrawlFrontier() *CrawlFrontier {
	return &CrawlFrontier{
		queuesByDepth: make(map[int]*FIFOQueue[CrawlToken]),
		visited:       NewSet[string](),
		dispatched:    NewSet[string](),
	}
}

// Init wires the frontier to the crawl scope read from cfg. maxDepth and
// maxPages of zero mean unlimited.
func (f *CrawlFrontier) Init(cfg config.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxDepth = cfg.MaxDepth()
	f.maxPages = cfg.MaxPages()
	f.allowedDomains = cfg.AllowedDomains()
}

// Submit admits candidate into the frontier unless it fails the scope
// policy, is already known (by canonicalized URL), or the page cap has
// been reached. candidate.SourceContext is not consulted for admission —
// a seed URL and a discovered URL are admitted under the same rule, only
// their depth differs (the coordinator submits seed URLs at depth 1).
func (f *CrawlFrontier) Submit(candidate CrawlAdmissionCandidate) {
	target := candidate.TargetURL()
	depth := candidate.DiscoveryMetadata().Depth()
	canonical := urlutil.Canonicalize(target)
	key := canonical.String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxDepth > 0 && depth > f.maxDepth {
		return
	}
	if !urlutil.IsAllowedDomain(target.Host, f.allowedDomains) {
		return
	}
	if f.visited.Contains(key) {
		return
	}
	if f.maxPages > 0 && f.visited.Size() >= f.maxPages {
		return
	}

	f.visited.Add(key)

	queue, ok := f.queuesByDepth[depth]
	if !ok {
		queue = NewFIFOQueue[CrawlToken]()
		f.queuesByDepth[depth] = queue
	}
	queue.Enqueue(NewCrawlToken(target, depth))
}

// Dequeue returns the next admitted URL, drawn from the lowest depth that
// still has pending entries. It reports false once every admitted URL has
// been returned.
func (f *CrawlFrontier) Dequeue() (CrawlToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth, ok := f.minPendingDepthLocked()
	if !ok {
		return CrawlToken{}, false
	}
	return f.queuesByDepth[depth].Dequeue()
}

// minPendingDepthLocked returns the smallest depth key with at least one
// pending entry. Caller must hold f.mu.
func (f *CrawlFrontier) minPendingDepthLocked() (int, bool) {
	min := 0
	found := false
	for depth, queue := range f.queuesByDepth {
		if queue.Size() == 0 {
			continue
		}
		if !found || depth < min {
			min = depth
			found = true
		}
	}
	return min, found
}

// IsDepthExhausted reports whether depth has no pending entries, including
// depths that were never submitted to at all.
func (f *CrawlFrontier) IsDepthExhausted(depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	queue, ok := f.queuesByDepth[depth]
	if !ok {
		return true
	}
	return queue.Size() == 0
}

// CurrentMinDepth returns the smallest depth with at least one pending
// entry, skipping over exhausted or never-populated depths, or -1 if the
// frontier is empty.
func (f *CrawlFrontier) CurrentMinDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	depth, ok := f.minPendingDepthLocked()
	if !ok {
		return -1
	}
	return depth
}

// SetScope replaces the admission policy (max depth and allowed domains)
// atomically, taking effect starting with the next Submit call. It never
// touches already-admitted entries: a tightened scope does not evict
// anything already sitting in a depth bucket.
func (f *CrawlFrontier) SetScope(maxDepth int, allowedDomains map[string]struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxDepth = maxDepth
	f.allowedDomains = allowedDomains
}

// VisitedCount returns the number of distinct URLs ever admitted by
// Submit, deduplicated by canonical form. It never decreases: Dequeue
// drains the pending queue but does not shrink the visited set.
func (f *CrawlFrontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}
