package controlplane

import (
	"encoding/json"
	"fmt"
)

// seedRequest is the wire shape POST /seed accepts (spec.md §4.4, §6).
// Domains is kept as a raw message because the field is accepted as
// either a JSON string or a list of strings — lenient by design.
type seedRequest struct {
	URLs    []string        `json:"urls"`
	Depth   int             `json:"depth"`
	Domains json.RawMessage `json:"domains"`
}

// parseDomains normalizes the lenient string-or-list "domains" field into
// the allowed_domains set the frontier's admission policy expects. An
// absent or empty field means "all domains" (spec.md §3).
func parseDomains(raw json.RawMessage) (map[string]struct{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]struct{}{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return toDomainSet(list), nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return map[string]struct{}{}, nil
		}
		return toDomainSet([]string{single}), nil
	}

	return nil, fmt.Errorf("domains must be a string or a list of strings")
}

func toDomainSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// seedResponse is the 202 Accepted body spec.md §6 assigns POST /seed.
type seedResponse struct {
	Queued int `json:"queued"`
}

// stateResponse is the GET /state body spec.md §4.4/§6 names.
type stateResponse struct {
	ActiveCrawlers []string `json:"active_crawlers"`
	ActiveIndexers []string `json:"active_indexers"`
	URLsInQueue    []string `json:"urls_in_queue"`
	URLsCrawled    []string `json:"urls_crawled"`
}

func orEmpty(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
