package cli

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	gosearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/config"
)

// newRedisClient wires the Bulletin Board's Redis connection straight off
// the resolved Config; redisboard.NewBoard never touches net/Redis itself.
func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword(),
		DB:       cfg.RedisDB(),
	})
}

// awsClients bundles the two AWS SDK v2 service clients every process
// needs, built from one shared aws.Config so credential resolution and
// region only happen once per process.
type awsClients struct {
	s3  *s3.Client
	sqs *sqs.Client
}

func newAWSClients(ctx context.Context, cfg config.Config) (awsClients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion()))
	if err != nil {
		return awsClients{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsClients{
		s3:  s3.NewFromConfig(awsCfg),
		sqs: sqs.NewFromConfig(awsCfg),
	}, nil
}

// newOpenSearchClient points the Search Backend client at the single host
// configured for the run; the pack's retrieval examples only ever target
// one node, so there is no cluster-discovery option to wire here.
func newOpenSearchClient(cfg config.Config) (*gosearch.Client, error) {
	client, err := gosearch.NewClient(gosearch.Config{
		Addresses: []string{cfg.OpenSearchHost()},
	})
	if err != nil {
		return nil, fmt.Errorf("build opensearch client: %w", err)
	}
	return client, nil
}
