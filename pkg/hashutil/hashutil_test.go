package hashutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/hashutil"
)

func TestSHA1Hex_KnownVector(t *testing.T) {
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", hashutil.SHA1Hex("hello world"))
}

func TestSHA1Hex_Deterministic(t *testing.T) {
	assert.Equal(t, hashutil.SHA1Hex("https://example.com/docs"), hashutil.SHA1Hex("https://example.com/docs"))
}

func TestSHA1Hex_DifferentInputsProduceDifferentHashes(t *testing.T) {
	assert.NotEqual(t, hashutil.SHA1Hex("a"), hashutil.SHA1Hex("b"))
}

func TestBLAKE3Hex_KnownVectors(t *testing.T) {
	vectors := []struct {
		input    string
		expected string
	}{
		{input: "", expected: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{input: "abc", expected: "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}

	for _, v := range vectors {
		assert.Equal(t, v.expected, hashutil.BLAKE3Hex([]byte(v.input)), "BLAKE3 hash mismatch for input: %q", v.input)
	}
}

func TestBLAKE3Hex_DifferentDataProducesDifferentHashes(t *testing.T) {
	assert.NotEqual(t, hashutil.BLAKE3Hex([]byte("data set 1")), hashutil.BLAKE3Hex([]byte("data set 2")))
}

func TestBLAKE3Hex_OutputLength(t *testing.T) {
	assert.Len(t, hashutil.BLAKE3Hex([]byte("test")), 64)
}
