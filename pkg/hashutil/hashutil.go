package hashutil

import (
	"crypto/sha1"
	"encoding/hex"

	"lukechampine.com/blake3"
)

// SHA1Hex returns the lowercase hex-encoded SHA1 digest of s.
//
// This is the key-derivation function used for artifact store object
// keys (crawled/<host>/<sha1(url)>.html|.txt) — it must match byte for
// byte what a second independent computation over the same URL string
// produces, since both the crawl worker and any later reader derive the
// key from the URL rather than storing it.
func SHA1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// BLAKE3Hex returns the lowercase hex-encoded BLAKE3 digest of data.
//
// internal/artifacts/s3store stamps this onto every object it writes as
// a content-blake3 metadata attribute, so a reader can detect a
// corrupted or truncated body without re-fetching the source page.
func BLAKE3Hex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
