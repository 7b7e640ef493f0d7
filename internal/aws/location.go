package aws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

const (
	// defaultRegion is where buckets with an empty location constraint live
	defaultRegion = "us-east-1"

	defaultConcurrency = 4
)

// normalizeLocation turns a GetBucketLocation constraint into a region name
func normalizeLocation(constraint string) string {
	switch constraint {
	case "":
		return defaultRegion
	case "EU":
		// Legacy constraint from before eu-west-1 had a proper name
		return "eu-west-1"
	default:
		return constraint
	}
}

// bucketRegion returns the home region of a bucket
func bucketRegion(ctx context.Context, api S3API, bucket string) (string, error) {
	output, err := api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get location of bucket %q: %w", bucket, err)
	}

	return normalizeLocation(string(output.LocationConstraint)), nil
}

// filterBuckets applies the single-bucket filter and then drops every bucket
// that does not live in cfg.Region. Objects can only be listed from the
// bucket's own region, so the region filter runs for both backends.
// Candidate order is preserved.
func filterBuckets(ctx context.Context, api S3API, cfg types.SizerConfig, candidates types.Buckets, logger *slog.Logger) (types.Buckets, error) {
	if cfg.BucketName != "" {
		var matched types.Buckets
		for _, b := range candidates {
			if b.Name == cfg.BucketName {
				matched = append(matched, b)
			}
		}
		candidates = matched
	}

	regions := make([]string, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(cfg))

	for i, b := range candidates {
		g.Go(func() error {
			region, err := bucketRegion(gctx, api, b.Name)
			if err != nil {
				return err
			}
			regions[i] = region
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrDiscovery, err)
	}

	buckets := make(types.Buckets, 0, len(candidates))
	for i, b := range candidates {
		if regions[i] != cfg.Region {
			logger.Debug("skipping bucket in another region",
				"bucket", b.Name,
				"bucket_region", regions[i],
				"region", cfg.Region)
			continue
		}

		b.Region = regions[i]
		buckets = append(buckets, b)
	}

	return buckets, nil
}

func concurrency(cfg types.SizerConfig) int {
	if cfg.Concurrency > 0 {
		return cfg.Concurrency
	}
	return defaultConcurrency
}
