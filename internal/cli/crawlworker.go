package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/artifacts/s3store"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard/redisboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/crawlworker"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/extractor"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/fetcher"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/robots"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/robots/cache"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus/sqsbus"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/pkg/limiter"
)

var crawlWorkerCommon *commonFlags

var crawlWorkerFlags struct {
	crawlDelay     string
	fetchTimeout   string
	robotsCacheTTL string
}

var crawlWorkerCmd = &cobra.Command{
	Use:   "crawlworker",
	Short: "Run one crawl worker process.",
	Long: `crawlworker long-polls the task bus for crawl_page tasks and runs
the per-task state machine: robots check, politeness wait, fetch,
extract, persist to the artifact store, enqueue indexing, publish the
result.`,
	RunE: runCrawlWorker,
}

func init() {
	crawlWorkerCommon = registerCommonFlags(crawlWorkerCmd)
	flags := crawlWorkerCmd.Flags()
	flags.StringVar(&crawlWorkerFlags.crawlDelay, "crawl-delay", "", "unconditional per-task politeness delay, e.g. 1s")
	flags.StringVar(&crawlWorkerFlags.fetchTimeout, "fetch-timeout", "", "per-request http client timeout, e.g. 5s")
	flags.StringVar(&crawlWorkerFlags.robotsCacheTTL, "robots-cache-expire", "", "age at which a cached robots.txt verdict is re-fetched, e.g. 1h")
}

// ExecuteCrawlWorker is the crawl worker process's entrypoint, called from
// cmd/crawlworker/main.go.
func ExecuteCrawlWorker() {
	if err := crawlWorkerCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCrawlWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCommonOverrides(cmd, crawlWorkerCommon, &cfg)
	if err := applyDurationFlag(cmd, "crawl-delay", crawlWorkerFlags.crawlDelay, cfg.WithCrawlDelay); err != nil {
		return err
	}
	if err := applyDurationFlag(cmd, "fetch-timeout", crawlWorkerFlags.fetchTimeout, cfg.WithFetchTimeout); err != nil {
		return err
	}
	if err := applyDurationFlag(cmd, "robots-cache-expire", crawlWorkerFlags.robotsCacheTTL, cfg.WithRobotsCacheTTL); err != nil {
		return err
	}
	cfg, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	log := newLogger(cfg.LogFormat())
	recorder := metadata.NewRecorder("crawlworker", log)

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

	robot := robots.NewCachedRobot(&recorder)
	robot.InitWithTTL(cfg.UserAgent(), cache.NewMemoryCache(), cfg.RobotsCacheTTL())

	htmlFetcher := fetcher.NewHtmlFetcher(&recorder)
	htmlFetcher.Init(&http.Client{Timeout: cfg.FetchTimeout()})

	pageExtractor := extractor.NewGoqueryExtractor(&recorder)

	rl := limiter.NewConcurrentRateLimiter()

	w := crawlworker.NewWorker(
		bus,
		board,
		&robot,
		&htmlFetcher,
		&pageExtractor,
		store,
		rl,
		&recorder,
		cfg.UserAgent(),
		cfg.CrawlDelay(),
		cfg.HeartbeatPublishInterval(),
		cfg.MaxRetries(),
	)

	log.Info().Msg("crawl worker started")
	w.Run(ctx)
	log.Info().Msg("crawl worker stopped")
	return nil
}
