package taskbus

import "encoding/json"

// EncodeCrawlPage renders a CrawlPageTask into the wire envelope spec.md
// §6 requires: {"task": "crawl_page", "args": [url, depth]}.
func EncodeCrawlPage(t CrawlPageTask) ([]byte, error) {
	return json.Marshal(envelope{
		Task: taskCrawlPage,
		Args: []interface{}{t.URL, t.Depth},
	})
}

// DecodeCrawlPage parses a crawl_page envelope back into its task.
func DecodeCrawlPage(body []byte) (CrawlPageTask, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return CrawlPageTask{}, err
	}
	url, depth, err := argURLDepth(env.Args)
	if err != nil {
		return CrawlPageTask{}, err
	}
	return CrawlPageTask{URL: url, Depth: depth}, nil
}

// EncodeIndexContent renders an IndexContentTask into the wire envelope
// spec.md §6 requires: {"task": "index_content", "args": [url, depth, text_key]}.
func EncodeIndexContent(t IndexContentTask) ([]byte, error) {
	return json.Marshal(envelope{
		Task: taskIndexContent,
		Args: []interface{}{t.URL, t.Depth, t.TextKey},
	})
}

// DecodeIndexContent parses an index_content envelope back into its task.
func DecodeIndexContent(body []byte) (IndexContentTask, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return IndexContentTask{}, err
	}
	if len(env.Args) != 3 {
		return IndexContentTask{}, errArgShape
	}
	url, ok := env.Args[0].(string)
	if !ok {
		return IndexContentTask{}, errArgShape
	}
	depth, err := asInt(env.Args[1])
	if err != nil {
		return IndexContentTask{}, err
	}
	textKey, ok := env.Args[2].(string)
	if !ok {
		return IndexContentTask{}, errArgShape
	}
	return IndexContentTask{URL: url, Depth: depth, TextKey: textKey}, nil
}

func argURLDepth(args []interface{}) (string, int, error) {
	if len(args) != 2 {
		return "", 0, errArgShape
	}
	url, ok := args[0].(string)
	if !ok {
		return "", 0, errArgShape
	}
	depth, err := asInt(args[1])
	if err != nil {
		return "", 0, err
	}
	return url, depth, nil
}

func asInt(v interface{}) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, errArgShape
	}
	return int(f), nil
}
