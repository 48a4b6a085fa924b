package indexworker

import (
	"context"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus"
)

// ExportedProcessTask lets external tests drive the unexported per-task
// flow without reaching into package internals directly.
func ExportedProcessTask(w *Worker, ctx context.Context, delivery taskbus.Delivery) {
	w.processTask(ctx, delivery)
}
