package searchindex

import (
	"context"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

// Document is the shape spec.md §4.3 hands the search backend:
// {url, content, tokens, timestamp}, submitted under document id url.
type Document struct {
	URL       string
	Content   string
	Tokens    []string
	Timestamp time.Time
}

/*
Index is the port interface over the search backend (spec.md §2, §6):
an external full-text index exposing index(doc) and search(query) ->
[url]. Indexing is idempotent by construction: IndexDocument always
submits under document id = doc.URL, so re-indexing the same URL
overwrites in place (spec.md §9 "the indexer's submission to SB uses
the URL as document id, so re-indexing overwrites in place").
*/
type Index interface {
	IndexDocument(ctx context.Context, doc Document) failure.ClassifiedError
	Search(ctx context.Context, query string) ([]string, failure.ClassifiedError)
}
