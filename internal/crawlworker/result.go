package crawlworker

import (
	"encoding/json"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
)

// encodeCrawlResult renders a master.CrawlResult into the JSON payload
// written under crawl_result:<worker_id>.
func encodeCrawlResult(r master.CrawlResult) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
