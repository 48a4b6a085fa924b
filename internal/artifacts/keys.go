package artifacts

import "github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/hashutil"

// HTMLKey and TextKey derive the artifact store layout spec.md §6 names:
// crawled/<host>/<sha1(url_utf8)>.html|.txt, sha1 hex-lowercase. The sha1
// digest is computed over the raw URL string, not any canonicalized form
// — the artifact key must be reproducible from nothing but the string the
// crawl worker was dispatched with.
func HTMLKey(host, sourceURL string) string {
	return "crawled/" + host + "/" + hashutil.SHA1Hex(sourceURL) + ".html"
}

func TextKey(host, sourceURL string) string {
	return "crawled/" + host + "/" + hashutil.SHA1Hex(sourceURL) + ".txt"
}
