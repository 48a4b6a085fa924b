package bulletinboard

import "time"

// WorkerKind distinguishes the two task families that share the heartbeat/
// pending/finished triplet mechanism. Each kind gets its own key prefix in
// the bulletin board so a crawler heartbeat can never be mistaken for an
// indexer heartbeat.
type WorkerKind string

const (
	KindCrawler WorkerKind = "crawler"
	KindIndexer WorkerKind = "indexer"
)

// Heartbeat is one entry read back from a kind's sorted set: a worker
// identity and the unix-second timestamp of its last refresh.
type Heartbeat struct {
	WorkerID string
	LastSeen time.Time
}

// PendingAssignment is the in-flight record a worker writes on task start
// and the master deletes on clean completion. Depth defaults to 1 if the
// stored value fails to parse as an integer, mirroring spec.md's
// "default 1 on parse failure" re-injection rule.
type PendingAssignment struct {
	URL   string
	Depth int
}

// FinishedNotification pairs a worker id with the terminal status its
// owning worker reported.
type FinishedNotification struct {
	WorkerID string
	Status   string
}
