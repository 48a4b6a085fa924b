package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/artifacts/s3store"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard/redisboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/indexworker"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/searchindex/opensearch"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus/sqsbus"
)

var indexWorkerCommon *commonFlags

var indexWorkerCmd = &cobra.Command{
	Use:   "indexworker",
	Short: "Run one index worker process.",
	Long: `indexworker long-polls the task bus for index_content tasks,
reads the extracted text out of the artifact store, tokenizes it, and
submits it to the search backend.`,
	RunE: runIndexWorker,
}

func init() {
	indexWorkerCommon = registerCommonFlags(indexWorkerCmd)
}

// ExecuteIndexWorker is the index worker process's entrypoint, called
// from cmd/indexworker/main.go.
func ExecuteIndexWorker() {
	if err := indexWorkerCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCommonOverrides(cmd, indexWorkerCommon, &cfg)
	cfg, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	log := newLogger(cfg.LogFormat())
	recorder := metadata.NewRecorder("indexworker", log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	redisClient := newRedisClient(cfg)
	board := redisboard.NewBoard(redisClient, &recorder)

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build aws clients: %w", err)
	}
	bus := sqsbus.NewBus(clients.sqs, cfg.SQSCrawlerQueueURL(), cfg.SQSIndexerQueueURL(), &recorder)
	store := s3store.NewStore(clients.s3, cfg.S3Bucket(), &recorder)

	osClient, err := newOpenSearchClient(cfg)
	if err != nil {
		return fmt.Errorf("build opensearch client: %w", err)
	}
	index := opensearch.NewIndex(osClient, &recorder)

	w := indexworker.NewWorker(bus, board, store, index, &recorder, cfg.HeartbeatPublishInterval())

	log.Info().Msg("index worker started")
	w.Run(ctx)
	log.Info().Msg("index worker stopped")
	return nil
}
