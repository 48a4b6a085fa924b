package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

/*
Config groups every process-wide knob named in the external interfaces
contract. master, crawlworker and indexworker each build one Config via
FromEnv and read only the fields their role needs — this mirrors a single
shared configuration surface rather than three divergent structs, the
same shape the source service uses (one settings module imported by all
three processes).
*/
type Config struct {
	//===============
	// Bulletin Board (BB) — Redis
	//===============
	redisAddr     string
	redisPassword string
	redisDB       int

	//===============
	// Artifact Store (AS) — S3
	//===============
	awsRegion string
	s3Bucket  string

	//===============
	// Task Bus (TB) — SQS
	//===============
	sqsCrawlerQueueURL string
	sqsIndexerQueueURL string

	//===============
	// Search Backend (SB) — OpenSearch
	//===============
	openSearchHost string

	//===============
	// Crawl scope / policy
	//===============
	maxDepth       int
	allowedDomains map[string]struct{}
	// maxPages caps the number of distinct URLs the frontier will ever admit
	// for a single crawl run. Zero means unlimited. Not named in spec §3's
	// crawl_options, but a frontier-local safety valve no Non-goal excludes.
	maxPages int

	//===============
	// Politeness / fetch
	//===============
	crawlDelay     time.Duration
	fetchTimeout   time.Duration
	userAgent      string
	robotsCacheTTL time.Duration
	maxRetries     int

	//===============
	// Heartbeat
	//===============
	// heartbeatDetectionTTL is the maximum age of a heartbeat before the
	// master declares the worker dead.
	heartbeatDetectionTTL time.Duration
	// heartbeatPublishInterval is the ticker period a worker refreshes its
	// own heartbeat at. Kept distinct from heartbeatDetectionTTL per the
	// two-constants split (see DESIGN.md open-question resolution).
	heartbeatPublishInterval time.Duration

	//===============
	// Control-plane API
	//===============
	listenAddr string

	//===============
	// Logging
	//===============
	logFormat string
}

// Default returns a Config populated with the source service's documented
// defaults (see spec §6): HEARTBEAT_INTERVAL=30s, CRAWL_DELAY=1s,
// ROBOTS_CACHE_EXPIRE=3600s.
func Default() *Config {
	return &Config{
		redisAddr:                "localhost:6379",
		redisDB:                  0,
		awsRegion:                "us-east-1",
		s3Bucket:                 "crawl-artifacts",
		sqsCrawlerQueueURL:       "",
		sqsIndexerQueueURL:       "",
		openSearchHost:           "http://localhost:9200",
		maxDepth:                 3,
		allowedDomains:           map[string]struct{}{},
		maxPages:                 0,
		crawlDelay:               time.Second,
		fetchTimeout:             5 * time.Second,
		userAgent:                "MyCustomBot/1.0",
		robotsCacheTTL:           3600 * time.Second,
		maxRetries:               3,
		heartbeatDetectionTTL:    30 * time.Second,
		heartbeatPublishInterval: 6 * time.Second,
		listenAddr:               ":8080",
		logFormat:                "console",
	}
}

// FromEnv builds a Config starting from Default() and overriding every
// field whose environment variable (named per spec §6) is set.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.WithRedisAddr(v)
	} else if v := os.Getenv("REDIS_HOST"); v != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		cfg.WithRedisAddr(v + ":" + port)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.WithRedisPassword(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WithRedisDB(n)
		}
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.WithAWSRegion(v)
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.WithS3Bucket(v)
	}
	if v := os.Getenv("SQS_QUEUE_URL"); v != "" {
		cfg.WithSQSCrawlerQueueURL(v)
	}
	if v := os.Getenv("SQS_INDEXER_QUEUE_URL"); v != "" {
		cfg.WithSQSIndexerQueueURL(v)
	}
	if v := os.Getenv("OPENSEARCH_HOST"); v != "" {
		cfg.WithOpenSearchHost(v)
	}

	if v := os.Getenv("MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WithMaxDepth(n)
		}
	}
	if v := os.Getenv("ALLOWED_DOMAINS"); v != "" {
		cfg.WithAllowedDomains(parseDomainList(v))
	}

	if v := os.Getenv("CRAWL_DELAY"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.WithCrawlDelay(d)
		} else if d, err := time.ParseDuration(v); err == nil {
			cfg.WithCrawlDelay(d)
		}
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.WithUserAgent(v)
	}
	if v := os.Getenv("ROBOTS_CACHE_EXPIRE"); v != "" {
		if d, err := parseSecondsOrDuration(v); err == nil {
			cfg.WithRobotsCacheTTL(d)
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WithMaxRetries(n)
		}
	}

	if v := os.Getenv("HEARTBEAT_INTERVAL"); v != "" {
		if d, err := parseSecondsOrDuration(v); err == nil {
			cfg.WithHeartbeatDetectionTTL(d)
			cfg.WithHeartbeatPublishInterval(d / 5)
		}
	}
	if v := os.Getenv("HEARTBEAT_PUBLISH_INTERVAL"); v != "" {
		if d, err := parseSecondsOrDuration(v); err == nil {
			cfg.WithHeartbeatPublishInterval(d)
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.WithListenAddr(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.WithLogFormat(v)
	}

	return cfg.Build()
}

func parseSecondsOrDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func parseDomainList(v string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, d := range strings.Split(v, ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

func (c *Config) WithRedisAddr(addr string) *Config            { c.redisAddr = addr; return c }
func (c *Config) WithRedisPassword(password string) *Config    { c.redisPassword = password; return c }
func (c *Config) WithRedisDB(db int) *Config                   { c.redisDB = db; return c }
func (c *Config) WithAWSRegion(region string) *Config           { c.awsRegion = region; return c }
func (c *Config) WithS3Bucket(bucket string) *Config            { c.s3Bucket = bucket; return c }
func (c *Config) WithSQSCrawlerQueueURL(u string) *Config       { c.sqsCrawlerQueueURL = u; return c }
func (c *Config) WithSQSIndexerQueueURL(u string) *Config       { c.sqsIndexerQueueURL = u; return c }
func (c *Config) WithOpenSearchHost(host string) *Config        { c.openSearchHost = host; return c }
func (c *Config) WithMaxDepth(depth int) *Config                { c.maxDepth = depth; return c }
func (c *Config) WithMaxPages(n int) *Config                    { c.maxPages = n; return c }
func (c *Config) WithAllowedDomains(domains map[string]struct{}) *Config {
	c.allowedDomains = domains
	return c
}
func (c *Config) WithCrawlDelay(d time.Duration) *Config        { c.crawlDelay = d; return c }
func (c *Config) WithFetchTimeout(d time.Duration) *Config      { c.fetchTimeout = d; return c }
func (c *Config) WithUserAgent(ua string) *Config               { c.userAgent = ua; return c }
func (c *Config) WithRobotsCacheTTL(d time.Duration) *Config     { c.robotsCacheTTL = d; return c }
func (c *Config) WithMaxRetries(n int) *Config                  { c.maxRetries = n; return c }
func (c *Config) WithHeartbeatDetectionTTL(d time.Duration) *Config {
	c.heartbeatDetectionTTL = d
	return c
}
func (c *Config) WithHeartbeatPublishInterval(d time.Duration) *Config {
	c.heartbeatPublishInterval = d
	return c
}
func (c *Config) WithListenAddr(addr string) *Config { c.listenAddr = addr; return c }
func (c *Config) WithLogFormat(format string) *Config { c.logFormat = format; return c }

// Build validates the accumulated settings and returns the immutable
// Config value. The publish interval is kept at or below a fifth of the
// detection TTL so several heartbeats land inside any single detection
// window; Build enforces this by clamping rather than rejecting, since it
// is a liveness-quality concern, not a correctness one.
func (c *Config) Build() (Config, error) {
	if c.maxDepth < 1 {
		return Config{}, fmt.Errorf("%w: max_depth must be >= 1", ErrInvalidConfig)
	}
	if c.heartbeatDetectionTTL <= 0 {
		return Config{}, fmt.Errorf("%w: heartbeat detection ttl must be positive", ErrInvalidConfig)
	}
	if c.heartbeatPublishInterval <= 0 || c.heartbeatPublishInterval > c.heartbeatDetectionTTL/5 {
		c.heartbeatPublishInterval = c.heartbeatDetectionTTL / 5
	}
	return *c, nil
}

func (c Config) RedisAddr() string                      { return c.redisAddr }
func (c Config) RedisPassword() string                   { return c.redisPassword }
func (c Config) RedisDB() int                             { return c.redisDB }
func (c Config) AWSRegion() string                        { return c.awsRegion }
func (c Config) S3Bucket() string                         { return c.s3Bucket }
func (c Config) SQSCrawlerQueueURL() string                { return c.sqsCrawlerQueueURL }
func (c Config) SQSIndexerQueueURL() string                { return c.sqsIndexerQueueURL }
func (c Config) OpenSearchHost() string                    { return c.openSearchHost }
func (c Config) MaxDepth() int                             { return c.maxDepth }
func (c Config) MaxPages() int                             { return c.maxPages }
func (c Config) AllowedDomains() map[string]struct{}       { return c.allowedDomains }
func (c Config) CrawlDelay() time.Duration                 { return c.crawlDelay }
func (c Config) FetchTimeout() time.Duration               { return c.fetchTimeout }
func (c Config) UserAgent() string                         { return c.userAgent }
func (c Config) RobotsCacheTTL() time.Duration              { return c.robotsCacheTTL }
func (c Config) MaxRetries() int                            { return c.maxRetries }
func (c Config) HeartbeatDetectionTTL() time.Duration       { return c.heartbeatDetectionTTL }
func (c Config) HeartbeatPublishInterval() time.Duration   { return c.heartbeatPublishInterval }
func (c Config) ListenAddr() string                        { return c.listenAddr }
func (c Config) LogFormat() string                         { return c.logFormat }
