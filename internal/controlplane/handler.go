package controlplane

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
)

// coordinator is the subset of *master.Coordinator the control-plane API
// needs. Declared as an interface so handler tests can exercise the HTTP
// layer against a fake without spinning up a real frontier/board/bus.
type coordinator interface {
	AddSeedURLs(urls []string) int
	SetCrawlOptions(maxDepth int, allowedDomains map[string]struct{})
	State() master.Snapshot
}

// Handler is the control-plane API (spec.md §4.4): seed the frontier,
// snapshot coordinator state, and report liveness.
type Handler struct {
	coordinator coordinator
}

func NewHandler(c *master.Coordinator) *Handler {
	return &Handler{coordinator: c}
}

// Router builds the gorilla/mux router wiring every CPA route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/seed", h.Seed).Methods(http.MethodPost)
	r.HandleFunc("/state", h.State).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return r
}

// Seed handles POST /seed: add_seed_urls(urls) then set_crawl_options
// (depth, domains), in that order, per spec.md §4.4 — the new scope
// takes effect starting with the next admission decision, not this
// request's own seed batch.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	domains, err := parseDomains(req.Domains)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxDepth := req.Depth
	if maxDepth < 1 {
		maxDepth = 1
	}

	accepted := h.coordinator.AddSeedURLs(req.URLs)
	h.coordinator.SetCrawlOptions(maxDepth, domains)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(seedResponse{Queued: accepted})
}

// State handles GET /state, returning the coordinator's last refreshed
// snapshot (spec.md §4.4, §6).
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	snap := h.coordinator.State()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stateResponse{
		ActiveCrawlers: orEmpty(snap.ActiveCrawlers),
		ActiveIndexers: orEmpty(snap.ActiveIndexers),
		URLsInQueue:    orEmpty(snap.URLsInQueue),
		URLsCrawled:    orEmpty(snap.URLsCrawled),
	})
}

// Health handles GET /health: a bare liveness probe, never touching the
// coordinator (spec.md §4.4 "liveness").
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
