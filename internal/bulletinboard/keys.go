package bulletinboard

// Key naming follows spec.md §6's bulletin-board key table exactly for
// the crawler kind (active_crawlers, pending_urls_to_crawl,
// finished_crawls, crawl_result:<id>); the indexer kind mirrors it per
// spec.md §4.3 ("heartbeat, pending bookkeeping, and cleanup mirror §4.2")
// and §9's "generic mechanism parameterised by kind" note.

func HeartbeatKey(kind WorkerKind) string {
	if kind == KindIndexer {
		return "active_indexers"
	}
	return "active_crawlers"
}

func PendingKey(kind WorkerKind) string {
	if kind == KindIndexer {
		return "pending_urls_to_index"
	}
	return "pending_urls_to_crawl"
}

func FinishedKey(kind WorkerKind) string {
	if kind == KindIndexer {
		return "finished_indexes"
	}
	return "finished_crawls"
}

func ResultKeyPrefix(kind WorkerKind) string {
	if kind == KindIndexer {
		return "index_result:"
	}
	return "crawl_result:"
}

func ResultKey(kind WorkerKind, workerID string) string {
	return ResultKeyPrefix(kind) + workerID
}
