package redisboard

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

/*
Board is a bulletinboard.Board backed by a single shared *redis.Client,
grounded on the go-redis usage pattern in
other_examples/02a510b6_amankumarsingh77-searchyfy and
other_examples/a284a961_jonesrussell-north-cloud: one client constructed
at process start and passed down, sorted sets for time-scored membership,
hashes for per-worker bookkeeping.
*/
type Board struct {
	client       *redis.Client
	metadataSink metadata.MetadataSink
}

func NewBoard(client *redis.Client, metadataSink metadata.MetadataSink) *Board {
	return &Board{client: client, metadataSink: metadataSink}
}

func (b *Board) WriteHeartbeat(ctx context.Context, kind bulletinboard.WorkerKind, workerID string, at time.Time) failure.ClassifiedError {
	err := b.client.ZAdd(ctx, bulletinboard.HeartbeatKey(kind), redis.Z{
		Score:  float64(at.Unix()),
		Member: workerID,
	}).Err()
	return b.classify(err, "WriteHeartbeat", workerID)
}

func (b *Board) ReadHeartbeats(ctx context.Context, kind bulletinboard.WorkerKind) ([]bulletinboard.Heartbeat, failure.ClassifiedError) {
	raw, err := b.client.ZRangeWithScores(ctx, bulletinboard.HeartbeatKey(kind), 0, -1).Result()
	if err != nil {
		return nil, b.classify(err, "ReadHeartbeats", "")
	}
	heartbeats := make([]bulletinboard.Heartbeat, 0, len(raw))
	for _, z := range raw {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		heartbeats = append(heartbeats, bulletinboard.Heartbeat{
			WorkerID: member,
			LastSeen: time.Unix(int64(z.Score), 0),
		})
	}
	return heartbeats, nil
}

func (b *Board) RemoveHeartbeat(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	err := b.client.ZRem(ctx, bulletinboard.HeartbeatKey(kind), workerID).Err()
	return b.classify(err, "RemoveHeartbeat", workerID)
}

func (b *Board) WritePending(ctx context.Context, kind bulletinboard.WorkerKind, workerID string, url string, depth int) failure.ClassifiedError {
	value := url + "|" + strconv.Itoa(depth)
	err := b.client.HSet(ctx, bulletinboard.PendingKey(kind), workerID, value).Err()
	return b.classify(err, "WritePending", workerID)
}

func (b *Board) ReadPending(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) (bulletinboard.PendingAssignment, bool, failure.ClassifiedError) {
	value, err := b.client.HGet(ctx, bulletinboard.PendingKey(kind), workerID).Result()
	if err == redis.Nil {
		return bulletinboard.PendingAssignment{}, false, nil
	}
	if err != nil {
		return bulletinboard.PendingAssignment{}, false, b.classify(err, "ReadPending", workerID)
	}
	return parsePendingValue(value), true, nil
}

// parsePendingValue parses the "url|depth" encoding. Per spec.md §4.1's
// failure re-assignment algorithm, a depth that fails to parse as an
// integer defaults to 1 rather than aborting re-injection.
func parsePendingValue(value string) bulletinboard.PendingAssignment {
	parts := strings.SplitN(value, "|", 2)
	url := parts[0]
	depth := 1
	if len(parts) == 2 {
		if parsed, err := strconv.Atoi(parts[1]); err == nil {
			depth = parsed
		}
	}
	return bulletinboard.PendingAssignment{URL: url, Depth: depth}
}

func (b *Board) DeletePending(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	err := b.client.HDel(ctx, bulletinboard.PendingKey(kind), workerID).Err()
	return b.classify(err, "DeletePending", workerID)
}

func (b *Board) WriteFinished(ctx context.Context, kind bulletinboard.WorkerKind, workerID string, status string) failure.ClassifiedError {
	err := b.client.HSet(ctx, bulletinboard.FinishedKey(kind), workerID, status).Err()
	return b.classify(err, "WriteFinished", workerID)
}

func (b *Board) ReadFinished(ctx context.Context, kind bulletinboard.WorkerKind) ([]bulletinboard.FinishedNotification, failure.ClassifiedError) {
	raw, err := b.client.HGetAll(ctx, bulletinboard.FinishedKey(kind)).Result()
	if err != nil {
		return nil, b.classify(err, "ReadFinished", "")
	}
	notifications := make([]bulletinboard.FinishedNotification, 0, len(raw))
	for workerID, status := range raw {
		notifications = append(notifications, bulletinboard.FinishedNotification{
			WorkerID: workerID,
			Status:   status,
		})
	}
	return notifications, nil
}

func (b *Board) DeleteFinished(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	err := b.client.HDel(ctx, bulletinboard.FinishedKey(kind), workerID).Err()
	return b.classify(err, "DeleteFinished", workerID)
}

func (b *Board) WriteResult(ctx context.Context, kind bulletinboard.WorkerKind, workerID string, payloadJSON string) failure.ClassifiedError {
	err := b.client.Set(ctx, bulletinboard.ResultKey(kind, workerID), payloadJSON, 0).Err()
	return b.classify(err, "WriteResult", workerID)
}

func (b *Board) ReadResult(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) (string, bool, failure.ClassifiedError) {
	value, err := b.client.Get(ctx, bulletinboard.ResultKey(kind, workerID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, b.classify(err, "ReadResult", workerID)
	}
	return value, true, nil
}

func (b *Board) DeleteResult(ctx context.Context, kind bulletinboard.WorkerKind, workerID string) failure.ClassifiedError {
	err := b.client.Del(ctx, bulletinboard.ResultKey(kind, workerID)).Err()
	return b.classify(err, "DeleteResult", workerID)
}

func (b *Board) classify(err error, action string, workerID string) failure.ClassifiedError {
	if err == nil {
		return nil
	}
	boardErr := &bulletinboard.BoardError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     bulletinboard.ErrCauseConnectionFailure,
	}
	attrs := []metadata.Attribute{}
	if workerID != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrWorkerID, workerID))
	}
	b.metadataSink.RecordError(
		time.Now(),
		"bulletinboard",
		"redisboard.Board."+action,
		metadata.CauseRendezvousFailure,
		boardErr.Error(),
		attrs,
	)
	return boardErr
}
