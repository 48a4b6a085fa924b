package sqsbus

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

// VisibilityTimeoutSeconds is the minimum visibility timeout spec.md §5
// requires for both queues: "long enough for a stuck fetch; re-delivered
// messages are treated as benign duplicates."
const VisibilityTimeoutSeconds = 3600

// WaitTimeSeconds enables SQS long polling so ReceiveCrawlPage/
// ReceiveIndexContent don't busy-poll an empty queue.
const WaitTimeSeconds = 20

type Bus struct {
	client          *sqs.Client
	crawlerQueueURL string
	indexerQueueURL string
	metadataSink    metadata.MetadataSink
}

func NewBus(client *sqs.Client, crawlerQueueURL, indexerQueueURL string, metadataSink metadata.MetadataSink) *Bus {
	return &Bus{
		client:          client,
		crawlerQueueURL: crawlerQueueURL,
		indexerQueueURL: indexerQueueURL,
		metadataSink:    metadataSink,
	}
}

func (b *Bus) PublishCrawlPage(ctx context.Context, task taskbus.CrawlPageTask) failure.ClassifiedError {
	body, err := taskbus.EncodeCrawlPage(task)
	if err != nil {
		return b.classify(err, "PublishCrawlPage", taskbus.ErrCauseMalformedEnvelope, false)
	}
	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(b.crawlerQueueURL),
		MessageBody: aws.String(string(body)),
	})
	return b.classify(err, "PublishCrawlPage", taskbus.ErrCausePublishFailure, true)
}

func (b *Bus) PublishIndexContent(ctx context.Context, task taskbus.IndexContentTask) failure.ClassifiedError {
	body, err := taskbus.EncodeIndexContent(task)
	if err != nil {
		return b.classify(err, "PublishIndexContent", taskbus.ErrCauseMalformedEnvelope, false)
	}
	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(b.indexerQueueURL),
		MessageBody: aws.String(string(body)),
	})
	return b.classify(err, "PublishIndexContent", taskbus.ErrCausePublishFailure, true)
}

func (b *Bus) ReceiveCrawlPage(ctx context.Context, maxMessages int32) ([]taskbus.Delivery, failure.ClassifiedError) {
	return b.receive(ctx, b.crawlerQueueURL, maxMessages, "ReceiveCrawlPage")
}

func (b *Bus) ReceiveIndexContent(ctx context.Context, maxMessages int32) ([]taskbus.Delivery, failure.ClassifiedError) {
	return b.receive(ctx, b.indexerQueueURL, maxMessages, "ReceiveIndexContent")
}

func (b *Bus) receive(ctx context.Context, queueURL string, maxMessages int32, action string) ([]taskbus.Delivery, failure.ClassifiedError) {
	out, err := b.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     WaitTimeSeconds,
		VisibilityTimeout:   VisibilityTimeoutSeconds,
	})
	if err != nil {
		return nil, b.classify(err, action, taskbus.ErrCauseReceiveFailure, true)
	}
	deliveries := make([]taskbus.Delivery, 0, len(out.Messages))
	for _, m := range out.Messages {
		deliveries = append(deliveries, taskbus.Delivery{
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          []byte(aws.ToString(m.Body)),
		})
	}
	return deliveries, nil
}

func (b *Bus) AckCrawlPage(ctx context.Context, receiptHandle string) failure.ClassifiedError {
	return b.ack(ctx, b.crawlerQueueURL, receiptHandle, "AckCrawlPage")
}

func (b *Bus) AckIndexContent(ctx context.Context, receiptHandle string) failure.ClassifiedError {
	return b.ack(ctx, b.indexerQueueURL, receiptHandle, "AckIndexContent")
}

func (b *Bus) ack(ctx context.Context, queueURL, receiptHandle, action string) failure.ClassifiedError {
	_, err := b.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	return b.classify(err, action, taskbus.ErrCauseDeleteFailure, true)
}

func (b *Bus) classify(err error, action string, cause taskbus.TaskBusErrorCause, retryable bool) failure.ClassifiedError {
	if err == nil {
		return nil
	}
	busErr := &taskbus.TaskBusError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
	}
	metaCause := metadata.CauseQueueFailure
	if cause == taskbus.ErrCauseMalformedEnvelope {
		metaCause = metadata.CauseContentInvalid
	}
	b.metadataSink.RecordError(
		time.Now(),
		"taskbus",
		"sqsbus.Bus."+action,
		metaCause,
		busErr.Error(),
		nil,
	)
	return busErr
}
