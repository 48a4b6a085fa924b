package taskbus

// QueueName identifies one of the two logical queues the task bus exposes
// per spec.md §2/§6. Kept distinct from bulletinboard.WorkerKind even
// though the two enums mirror each other: a task bus queue and a
// bulletin-board key prefix are different concerns that happen to share
// a crawler/indexer split.
type QueueName string

const (
	QueueCrawler QueueName = "crawler"
	QueueIndexer QueueName = "indexer"
)

// CrawlPageTask is the message body spec.md §6 assigns the crawler queue:
// {"task": "crawl_page", "args": [url, depth]}.
type CrawlPageTask struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

// IndexContentTask is the message body spec.md §6 assigns the indexer
// queue: {"task": "index_content", "args": [url, depth, text_key]}.
type IndexContentTask struct {
	URL     string `json:"url"`
	Depth   int    `json:"depth"`
	TextKey string `json:"text_key"`
}

// Delivery wraps a received message with the receipt handle needed to
// ack (delete) or let it redeliver after the visibility timeout.
type Delivery struct {
	ReceiptHandle string
	Body          []byte
}

// envelope is the wire shape spec.md §6 assigns both queues: a task name
// plus a positional argument list. Kept unexported: callers work with
// CrawlPageTask/IndexContentTask, not the raw envelope.
type envelope struct {
	Task string        `json:"task"`
	Args []interface{} `json:"args"`
}

const (
	taskCrawlPage    = "crawl_page"
	taskIndexContent = "index_content"
)
