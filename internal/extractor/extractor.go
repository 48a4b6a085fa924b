package extractor

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/failure"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/urlutil"
)

/*
Responsibilities
- Parse a fetched page's HTML body
- Collect the trimmed text of every {p, h1..h6, span} element, joined with
  single spaces
- Harvest <a href> targets, resolve them against the page URL, keep only
  same-origin http(s) links, and cap the result at MaxLinksPerPage

Extraction never reaches back out over the network and never decides
whether a link should be crawled — admission is the frontier's job.
*/

type PageExtractor interface {
	Extract(pageURL url.URL, body []byte) (ExtractionResult, failure.ClassifiedError)
}

type GoqueryExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewGoqueryExtractor(metadataSink metadata.MetadataSink) GoqueryExtractor {
	return GoqueryExtractor{metadataSink: metadataSink}
}

func (e *GoqueryExtractor) Extract(pageURL url.URL, body []byte) (ExtractionResult, failure.ClassifiedError) {
	result, err := extract(pageURL, body)
	if err != nil {
		var extractionErr *ExtractionError
		errors.As(err, &extractionErr)
		e.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"GoqueryExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionErr),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL.String()),
			},
		)
		return ExtractionResult{}, err
	}
	return result, nil
}

func extract(pageURL url.URL, body []byte) (ExtractionResult, failure.ClassifiedError) {
	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if parseErr != nil {
		return ExtractionResult{}, &ExtractionError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	// A page with no p/h1-h6/span text (a hub or nav page, say) is not a
	// failure: its links still get followed, just with an empty Text.
	text := collectText(doc)

	links := collectLinks(doc, pageURL)

	return ExtractionResult{Text: text, Links: links}, nil
}

func collectText(doc *goquery.Document) string {
	var parts []string
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node == nil || node.Type != html.ElementNode {
			return
		}
		if !extractedTags[node.Data] {
			return
		}
		trimmed := strings.TrimSpace(sel.Text())
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	})
	return strings.Join(parts, " ")
}

func collectLinks(doc *goquery.Document, pageURL url.URL) []url.URL {
	var links []url.URL
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(links) >= MaxLinksPerPage {
			return false
		}
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		resolved, err := urlutil.ResolveHref(pageURL, href)
		if err != nil {
			return true
		}
		if !urlutil.IsHTTPOrHTTPS(resolved) {
			return true
		}
		if !urlutil.SameOrigin(resolved, pageURL) {
			return true
		}
		links = append(links, resolved)
		return true
	})
	return links
}
