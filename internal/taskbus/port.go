package taskbus

import (
	"context"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

/*
Bus is the port interface over the task bus (spec.md §2, §6): an external
durable queue service with two logical queues, crawler and indexer,
supporting at-least-once delivery with a visibility timeout of at least
3600s (spec.md §5 "Cancellation / timeouts").

Publish/Receive/Delete map directly onto SQS's SendMessage/
ReceiveMessage/DeleteMessage; Delete is the only operation that acks a
message — per spec.md §4.2's state machine, only Ack removes the message
from the bus, so a crawl worker that dies mid-task simply never calls
Delete and the message redelivers after the visibility timeout.
*/
type Bus interface {
	PublishCrawlPage(ctx context.Context, task CrawlPageTask) failure.ClassifiedError
	PublishIndexContent(ctx context.Context, task IndexContentTask) failure.ClassifiedError

	// ReceiveCrawlPage long-polls the crawler queue for up to maxMessages
	// deliveries. An empty, nil-error result means the queue was empty.
	ReceiveCrawlPage(ctx context.Context, maxMessages int32) ([]Delivery, failure.ClassifiedError)
	ReceiveIndexContent(ctx context.Context, maxMessages int32) ([]Delivery, failure.ClassifiedError)

	// Ack deletes a delivered message by receipt handle, the only
	// operation that removes it from its queue.
	AckCrawlPage(ctx context.Context, receiptHandle string) failure.ClassifiedError
	AckIndexContent(ctx context.Context, receiptHandle string) failure.ClassifiedError
}
