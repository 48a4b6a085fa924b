package extractor

import "net/url"

// ExtractionResult holds one page's extracted text and outbound links.
//
// Text is the trimmed text content of every {p, h1..h6, span} element on
// the page, joined with single spaces. Links is already filtered to
// http(s), same-origin, and truncated to at most 5 entries — the extractor
// owns the fan-out bound, not its caller.
type ExtractionResult struct {
	Text  string
	Links []url.URL
}

// MaxLinksPerPage bounds how many outbound links a single page can
// contribute to the frontier, regardless of how many it actually contains.
const MaxLinksPerPage = 5

// extractedTags lists the elements whose text content is collected. Order
// does not matter: traversal is document order, not tag-priority order.
var extractedTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "span": true,
}
