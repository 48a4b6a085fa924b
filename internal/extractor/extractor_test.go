package extractor_test

import (
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/extractor"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
)

func newExtractor() extractor.GoqueryExtractor {
	recorder := metadata.NewRecorder("extractor_test", zerolog.Nop())
	return extractor.NewGoqueryExtractor(&recorder)
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestExtract_CollectsTextFromExtractedTags(t *testing.T) {
	ex := newExtractor()
	pageURL := mustParseURL(t, "https://example.com/article")
	body := []byte(`
		<html><body>
			<h1>Title</h1>
			<p>First paragraph.</p>
			<div>Not collected.</div>
			<span>Inline note.</span>
		</body></html>
	`)

	result, err := ex.Extract(pageURL, body)

	require.Nil(t, err)
	assert.Contains(t, result.Text, "Title")
	assert.Contains(t, result.Text, "First paragraph.")
	assert.Contains(t, result.Text, "Inline note.")
	assert.NotContains(t, result.Text, "Not collected.")
}

func TestExtract_ResolvesAndFiltersToSameOriginHTTPLinks(t *testing.T) {
	ex := newExtractor()
	pageURL := mustParseURL(t, "https://example.com/docs/start")
	body := []byte(`
		<html><body>
			<p>intro</p>
			<a href="/docs/next">next</a>
			<a href="https://example.com/docs/other">other</a>
			<a href="https://other.com/page">external</a>
			<a href="mailto:someone@example.com">mail</a>
			<a href="javascript:void(0)">js</a>
		</body></html>
	`)

	result, err := ex.Extract(pageURL, body)

	require.Nil(t, err)
	var hosts []string
	for _, l := range result.Links {
		hosts = append(hosts, l.Host)
	}
	assert.Len(t, result.Links, 2)
	for _, h := range hosts {
		assert.Equal(t, "example.com", h)
	}
}

func TestExtract_CapsLinksAtMaxLinksPerPage(t *testing.T) {
	ex := newExtractor()
	pageURL := mustParseURL(t, "https://example.com/")
	body := []byte(`
		<html><body>
			<p>many links</p>
			<a href="/a">a</a>
			<a href="/b">b</a>
			<a href="/c">c</a>
			<a href="/d">d</a>
			<a href="/e">e</a>
			<a href="/f">f</a>
			<a href="/g">g</a>
		</body></html>
	`)

	result, err := ex.Extract(pageURL, body)

	require.Nil(t, err)
	assert.Len(t, result.Links, extractor.MaxLinksPerPage)
}

func TestExtract_NoExtractableTextStillReturnsLinks(t *testing.T) {
	ex := newExtractor()
	pageURL := mustParseURL(t, "https://example.com/empty")
	body := []byte(`
		<html><body>
			<div>only a div, nothing collected</div>
			<a href="/docs/next">next</a>
		</body></html>
	`)

	result, err := ex.Extract(pageURL, body)

	require.Nil(t, err)
	assert.Empty(t, result.Text)
	require.Len(t, result.Links, 1)
	assert.Equal(t, "/docs/next", result.Links[0].Path)
}

func TestExtract_TextOrderFollowsDocumentOrder(t *testing.T) {
	ex := newExtractor()
	pageURL := mustParseURL(t, "https://example.com/ordered")
	body := []byte(`<html><body><h1>First</h1><p>Second</p><span>Third</span></body></html>`)

	result, err := ex.Extract(pageURL, body)

	require.Nil(t, err)
	firstIdx := indexOf(result.Text, "First")
	secondIdx := indexOf(result.Text, "Second")
	thirdIdx := indexOf(result.Text, "Third")
	assert.True(t, firstIdx < secondIdx)
	assert.True(t, secondIdx < thirdIdx)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

