package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
)

// applyDurationFlag parses raw with time.ParseDuration and applies it via
// apply, but only when the operator actually set the flag — the duration
// flags it serves are registered as strings rather than cobra's own
// DurationVar so an unset flag never shadows a value config.FromEnv
// already resolved. The heartbeat flags in registerCommonFlags are
// DurationVar flags instead, gated by Changed in applyCommonOverrides.
func applyDurationFlag(cmd *cobra.Command, name, raw string, apply func(time.Duration) *config.Config) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse --%s: %w", name, err)
	}
	apply(d)
	return nil
}

// commonFlags holds the persistent flags every process binary shares —
// the Bulletin Board, Artifact Store, Task Bus and Search Backend
// connection settings plus logging. Each command's init() in this package
// registers these once, and applyCommonOverrides applies only the ones
// the operator actually passed, letting
// config.FromEnv()'s own defaults and env-var resolution stand otherwise.
type commonFlags struct {
	redisAddr     string
	redisPassword string
	redisDB       int

	awsRegion          string
	s3Bucket           string
	sqsCrawlerQueueURL string
	sqsIndexerQueueURL string
	openSearchHost     string

	userAgent                string
	maxRetries               int
	heartbeatDetectionTTL    time.Duration
	heartbeatPublishInterval time.Duration

	logFormat string
}

func registerCommonFlags(cmd *cobra.Command) *commonFlags {
	f := &commonFlags{}
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.redisAddr, "redis-addr", "", "bulletin board redis address (host:port)")
	flags.StringVar(&f.redisPassword, "redis-password", "", "bulletin board redis password")
	flags.IntVar(&f.redisDB, "redis-db", 0, "bulletin board redis logical database")
	flags.StringVar(&f.awsRegion, "aws-region", "", "aws region for the artifact store and task bus")
	flags.StringVar(&f.s3Bucket, "s3-bucket", "", "artifact store bucket name")
	flags.StringVar(&f.sqsCrawlerQueueURL, "sqs-crawler-queue-url", "", "task bus queue url for crawl_page tasks")
	flags.StringVar(&f.sqsIndexerQueueURL, "sqs-indexer-queue-url", "", "task bus queue url for index_content tasks")
	flags.StringVar(&f.openSearchHost, "opensearch-host", "", "search backend host, e.g. http://localhost:9200")
	flags.StringVar(&f.userAgent, "user-agent", "", "user agent string sent with every fetch and robots.txt request")
	flags.IntVar(&f.maxRetries, "max-retries", 0, "maximum fetch retry attempts before a task is marked failed")
	flags.DurationVar(&f.heartbeatDetectionTTL, "heartbeat-detection-ttl", 0, "age at which the master declares a worker's heartbeat stale")
	flags.DurationVar(&f.heartbeatPublishInterval, "heartbeat-publish-interval", 0, "how often a worker refreshes its own heartbeat")
	flags.StringVar(&f.logFormat, "log-format", "", "log output format: console or json")
	return f
}

// applyCommonOverrides layers only the flags the operator actually set on
// top of cfg, which has already been resolved from environment variables.
// cmd.Flags().Changed is used instead of a zero-value check so a flag
// deliberately set to a duration/int's zero value still takes effect.
func applyCommonOverrides(cmd *cobra.Command, f *commonFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("redis-addr") {
		cfg.WithRedisAddr(f.redisAddr)
	}
	if changed("redis-password") {
		cfg.WithRedisPassword(f.redisPassword)
	}
	if changed("redis-db") {
		cfg.WithRedisDB(f.redisDB)
	}
	if changed("aws-region") {
		cfg.WithAWSRegion(f.awsRegion)
	}
	if changed("s3-bucket") {
		cfg.WithS3Bucket(f.s3Bucket)
	}
	if changed("sqs-crawler-queue-url") {
		cfg.WithSQSCrawlerQueueURL(f.sqsCrawlerQueueURL)
	}
	if changed("sqs-indexer-queue-url") {
		cfg.WithSQSIndexerQueueURL(f.sqsIndexerQueueURL)
	}
	if changed("opensearch-host") {
		cfg.WithOpenSearchHost(f.openSearchHost)
	}
	if changed("user-agent") {
		cfg.WithUserAgent(f.userAgent)
	}
	if changed("max-retries") {
		cfg.WithMaxRetries(f.maxRetries)
	}
	if changed("heartbeat-detection-ttl") {
		cfg.WithHeartbeatDetectionTTL(f.heartbeatDetectionTTL)
	}
	if changed("heartbeat-publish-interval") {
		cfg.WithHeartbeatPublishInterval(f.heartbeatPublishInterval)
	}
	if changed("log-format") {
		cfg.WithLogFormat(f.logFormat)
	}
}
