package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/bulletinboard/redisboard"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/controlplane"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/frontier"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/master"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/metadata"
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/taskbus/sqsbus"
)

var masterCommon *commonFlags

var masterFlags struct {
	listenAddr     string
	maxDepth       int
	maxPages       int
	allowedDomains []string
	seedURLs       []string
}

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Run the crawl coordinator and control-plane API.",
	Long: `master runs the coordinator tick loop (dispatch, reap stale
workers, fold discovered URLs back into the frontier) alongside the
control-plane HTTP API (POST /seed, GET /state, GET /health).`,
	RunE: runMaster,
}

func init() {
	masterCommon = registerCommonFlags(masterCmd)
	flags := masterCmd.Flags()
	flags.StringVar(&masterFlags.listenAddr, "listen-addr", "", "control-plane http listen address")
	flags.IntVar(&masterFlags.maxDepth, "max-depth", 0, "maximum link depth admitted into the frontier")
	flags.IntVar(&masterFlags.maxPages, "max-pages", 0, "maximum distinct urls the frontier will ever admit (0 for unlimited)")
	flags.StringArrayVar(&masterFlags.allowedDomains, "allowed-domain", nil, "domain allowed into the frontier (repeatable); empty allows any")
	flags.StringArrayVar(&masterFlags.seedURLs, "seed-url", nil, "seed url admitted at depth 1 on startup (repeatable)")
}

// ExecuteMaster is the master process's entrypoint, called from
// cmd/master/main.go.
func ExecuteMaster() {
	if err := masterCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMaster(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCommonOverrides(cmd, masterCommon, &cfg)
	if cmd.Flags().Changed("listen-addr") {
		cfg.WithListenAddr(masterFlags.listenAddr)
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.WithMaxDepth(masterFlags.maxDepth)
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.WithMaxPages(masterFlags.maxPages)
	}
	if cmd.Flags().Changed("allowed-domain") {
		set := make(map[string]struct{}, len(masterFlags.allowedDomains))
		for _, d := range masterFlags.allowedDomains {
			set[d] = struct{}{}
		}
		cfg.WithAllowedDomains(set)
	}
	cfg, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	log := newLogger(cfg.LogFormat())
	recorder := metadata.NewRecorder("master", log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	redisClient := newRedisClient(cfg)
	board := redisboard.NewBoard(redisClient, &recorder)

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build aws clients: %w", err)
	}
	bus := sqsbus.NewBus(clients.sqs, cfg.SQSCrawlerQueueURL(), cfg.SQSIndexerQueueURL(), &recorder)

	fr := frontier.NewCrawlFrontier()
	fr.Init(cfg)

	coord := master.NewCoordinator(fr, board, bus, &recorder, &recorder, cfg.HeartbeatDetectionTTL())
	if len(masterFlags.seedURLs) > 0 {
		admitted := coord.AddSeedURLs(masterFlags.seedURLs)
		log.Info().Int("admitted", admitted).Int("requested", len(masterFlags.seedURLs)).Msg("seed urls admitted at startup")
	}

	server := controlplane.NewServer(cfg.ListenAddr(), coord)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("control plane server exited")
		}
	}()

	go coord.Run(ctx)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, draining control plane")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("control plane shutdown error")
	}
	return nil
}
