package config_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	built, err := cfg.Build()
	if err != nil {
		t.Fatalf("Default().Build() returned error: %v", err)
	}

	if built.MaxDepth() != 3 {
		t.Errorf("expected default max depth 3, got %d", built.MaxDepth())
	}
	if built.CrawlDelay() != time.Second {
		t.Errorf("expected default crawl delay 1s, got %s", built.CrawlDelay())
	}
	if built.RobotsCacheTTL() != 3600*time.Second {
		t.Errorf("expected default robots cache ttl 3600s, got %s", built.RobotsCacheTTL())
	}
	if built.HeartbeatDetectionTTL() != 30*time.Second {
		t.Errorf("expected default heartbeat detection ttl 30s, got %s", built.HeartbeatDetectionTTL())
	}
	if len(built.AllowedDomains()) != 0 {
		t.Errorf("expected empty allowed domains by default, got %v", built.AllowedDomains())
	}
}

func TestBuild_RejectsNonPositiveMaxDepth(t *testing.T) {
	_, err := config.Default().WithMaxDepth(0).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuild_ClampsOversizedHeartbeatPublishInterval(t *testing.T) {
	built, err := config.Default().
		WithHeartbeatDetectionTTL(30 * time.Second).
		WithHeartbeatPublishInterval(20 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if built.HeartbeatPublishInterval() > built.HeartbeatDetectionTTL()/3 {
		t.Errorf("expected publish interval clamped to <= ttl/3, got %s for ttl %s",
			built.HeartbeatPublishInterval(), built.HeartbeatDetectionTTL())
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MAX_DEPTH", "5")
	t.Setenv("CRAWL_DELAY", "2")
	t.Setenv("ALLOWED_DOMAINS", "example.org, example.com")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("S3_BUCKET", "my-bucket")

	built, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() returned error: %v", err)
	}

	if built.MaxDepth() != 5 {
		t.Errorf("expected max depth 5, got %d", built.MaxDepth())
	}
	if built.CrawlDelay() != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %s", built.CrawlDelay())
	}
	if _, ok := built.AllowedDomains()["example.org"]; !ok {
		t.Errorf("expected example.org in allowed domains, got %v", built.AllowedDomains())
	}
	if _, ok := built.AllowedDomains()["example.com"]; !ok {
		t.Errorf("expected example.com in allowed domains, got %v", built.AllowedDomains())
	}
	if built.RedisAddr() != "redis.internal:6380" {
		t.Errorf("expected redis addr redis.internal:6380, got %s", built.RedisAddr())
	}
	if built.S3Bucket() != "my-bucket" {
		t.Errorf("expected s3 bucket my-bucket, got %s", built.S3Bucket())
	}
}

func TestFromEnv_InvalidMaxDepthPropagatesError(t *testing.T) {
	t.Setenv("MAX_DEPTH", "0")
	_, err := config.FromEnv()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMain(m *testing.M) {
	for _, k := range []string{
		"REDIS_ADDR", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"AWS_REGION", "S3_BUCKET", "SQS_QUEUE_URL", "SQS_INDEXER_QUEUE_URL",
		"OPENSEARCH_HOST", "MAX_DEPTH", "ALLOWED_DOMAINS", "CRAWL_DELAY",
		"USER_AGENT", "ROBOTS_CACHE_EXPIRE", "MAX_RETRIES", "HEARTBEAT_INTERVAL",
		"HEARTBEAT_PUBLISH_INTERVAL", "LISTEN_ADDR", "LOG_FORMAT",
	} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}
