package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	opensearchapi "github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	gosearch "github.com/opensearch-project/opensearch-go/v2"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/searchindex"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
)

// DefaultIndexName is the single index every document is submitted to.
// The specification names one search backend with no multi-tenant or
// multi-index concept, so a fixed name is a simplification, not a design
// gap.
const DefaultIndexName = "crawled_documents"

/*
Index is a searchindex.Index backed by a single shared
*opensearch.Client, grounded on the client-field shape every other
adapter in this repository (redisboard.Board, sqsbus.Bus, s3store.Store)
already follows: one long-lived client, constructed at process start,
passed down.
*/
type Index struct {
	client       *gosearch.Client
	indexName    string
	metadataSink metadata.MetadataSink
}

func NewIndex(client *gosearch.Client, metadataSink metadata.MetadataSink) *Index {
	return &Index{client: client, indexName: DefaultIndexName, metadataSink: metadataSink}
}

// indexedDocument is the wire shape submitted to OpenSearch: both the
// raw content and the pre-computed token list spec.md §4.3 requires SB
// to store.
type indexedDocument struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Tokens    []string  `json:"tokens"`
	Timestamp time.Time `json:"timestamp"`
}

func (i *Index) IndexDocument(ctx context.Context, doc searchindex.Document) failure.ClassifiedError {
	body, err := json.Marshal(indexedDocument{
		URL:       doc.URL,
		Content:   doc.Content,
		Tokens:    doc.Tokens,
		Timestamp: doc.Timestamp,
	})
	if err != nil {
		return i.classify(err, "IndexDocument", searchindex.ErrCauseEncodeFailure, false)
	}

	req := opensearchapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: doc.URL,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return i.classify(err, "IndexDocument", searchindex.ErrCauseIndexFailure, true)
	}
	defer res.Body.Close()
	if res.IsError() {
		return i.classify(fmt.Errorf("opensearch index error: %s", res.Status()), "IndexDocument", searchindex.ErrCauseIndexFailure, true)
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string) ([]string, failure.ClassifiedError) {
	var buf bytes.Buffer
	searchBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": query,
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(searchBody); err != nil {
		return nil, i.classify(err, "Search", searchindex.ErrCauseEncodeFailure, false)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{i.indexName},
		Body:  &buf,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, i.classify(err, "Search", searchindex.ErrCauseSearchFailure, true)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, i.classify(fmt.Errorf("opensearch search error: %s", res.Status()), "Search", searchindex.ErrCauseSearchFailure, true)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, i.classify(err, "Search", searchindex.ErrCauseSearchFailure, true)
	}

	urls := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		urls = append(urls, hit.ID)
	}
	return urls, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (i *Index) classify(err error, action string, cause searchindex.SearchErrorCause, retryable bool) failure.ClassifiedError {
	if err == nil {
		return nil
	}
	searchErr := &searchindex.SearchError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
	}
	i.metadataSink.RecordError(
		time.Now(),
		"searchindex",
		"opensearch.Index."+action,
		metadata.CauseStorageFailure,
		searchErr.Error(),
		nil,
	)
	return searchErr
}
