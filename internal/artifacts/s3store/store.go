package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/artifacts"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/hashutil"
)

/*
Store is an artifacts.Store backed by a single shared *s3.Client,
grounded on the bucket-scoped client-field shape used by
redisboard.Board for its *redis.Client. PutObject/GetObject map directly
onto spec.md §6's artifact-store layout; this adapter owns nothing but
the bucket name and the client.
*/
type Store struct {
	client       *s3.Client
	bucket       string
	metadataSink metadata.MetadataSink
}

func NewStore(client *s3.Client, bucket string, metadataSink metadata.MetadataSink) *Store {
	return &Store{client: client, bucket: bucket, metadataSink: metadataSink}
}

func (s *Store) PutRawHTML(ctx context.Context, host, sourceURL string, body []byte, crawledAt time.Time) (string, failure.ClassifiedError) {
	key := artifacts.HTMLKey(host, sourceURL)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/html"),
		Metadata: map[string]string{
			"source-url":     sourceURL,
			"crawl-time":     crawledAt.UTC().Format(time.RFC3339),
			"content-blake3": hashutil.BLAKE3Hex(body),
		},
	})
	if classified := s.classify(err, "PutRawHTML"); classified != nil {
		return "", classified
	}
	s.metadataSink.RecordArtifact(metadata.ArtifactRawHTML, key, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrHost, host),
		metadata.NewAttr(metadata.AttrWritePath, key),
	})
	return key, nil
}

func (s *Store) PutExtractedText(ctx context.Context, host, sourceURL string, text string, crawledAt time.Time) (string, failure.ClassifiedError) {
	key := artifacts.TextKey(host, sourceURL)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(text)),
		ContentType: aws.String("text/plain"),
		Metadata: map[string]string{
			"source-url":     sourceURL,
			"crawl-time":     crawledAt.UTC().Format(time.RFC3339),
			"content-blake3": hashutil.BLAKE3Hex([]byte(text)),
		},
	})
	if classified := s.classify(err, "PutExtractedText"); classified != nil {
		return "", classified
	}
	s.metadataSink.RecordArtifact(metadata.ArtifactExtractedText, key, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrHost, host),
		metadata.NewAttr(metadata.AttrWritePath, key),
	})
	return key, nil
}

func (s *Store) GetText(ctx context.Context, key string) (string, failure.ClassifiedError) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if classified := s.classify(err, "GetText"); classified != nil {
		return "", classified
	}
	defer out.Body.Close()
	body, readErr := io.ReadAll(out.Body)
	if readErr != nil {
		return "", s.classify(readErr, "GetText")
	}
	return string(body), nil
}

func (s *Store) classify(err error, action string) failure.ClassifiedError {
	if err == nil {
		return nil
	}
	artifactErr := &artifacts.ArtifactError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     artifacts.ErrCausePutFailure,
	}
	if action == "GetText" {
		artifactErr.Cause = artifacts.ErrCauseGetFailure
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		artifactErr.Retryable = false
		artifactErr.Cause = artifacts.ErrCauseNotFound
	}
	s.metadataSink.RecordError(
		time.Now(),
		"artifacts",
		"s3store.Store."+action,
		metadata.CauseStorageFailure,
		artifactErr.Error(),
		nil,
	)
	return artifactErr
}
