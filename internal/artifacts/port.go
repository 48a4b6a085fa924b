package artifacts

import (
	"context"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

/*
Store is the port interface over the artifact store (spec.md §2, §6): an
external object store holding the raw HTML and extracted plain text a
crawl worker produces, addressed by the layout
`crawled/<host>/<sha1(url)>.html|.txt`. The key derivation itself lives in
keys.go so every adapter (and every test) computes the same key for the
same (host, url) pair without depending on the storage backend.
*/
type Store interface {
	// PutRawHTML writes the fetched page body under its ".html" key with
	// the spec-required {source-url, crawl-time} object metadata and
	// returns the key written.
	PutRawHTML(ctx context.Context, host, sourceURL string, body []byte, crawledAt time.Time) (key string, err failure.ClassifiedError)

	// PutExtractedText writes the extractor's plain-text output under its
	// ".txt" key with content-type text/plain.
	PutExtractedText(ctx context.Context, host, sourceURL string, text string, crawledAt time.Time) (key string, err failure.ClassifiedError)

	// GetText reads back an object written by PutExtractedText, by key.
	// The index worker is the only caller.
	GetText(ctx context.Context, key string) (string, failure.ClassifiedError)
}
