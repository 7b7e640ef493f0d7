package aws

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/vietdv277/s3du/internal/paginate"
	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

const (
	s3Namespace       = "AWS/S3"
	s3BucketSizeBytes = "BucketSizeBytes"

	dimensionBucketName  = "BucketName"
	dimensionStorageType = "StorageType"

	// sizedStorageType is the only tier BucketSize queries
	sizedStorageType = "StandardStorage"

	// BucketSizeBytes is published once a day, roughly a day late
	metricPeriod = 24 * time.Hour
)

// BucketMetrics maps bucket names to the StorageType values of their
// BucketSizeBytes series, in the order they were listed.
type BucketMetrics map[string][]string

// NewBucketMetrics groups metric series by their BucketName dimension.
// Series without dimensions, or without a bucket name, are skipped.
func NewBucketMetrics(metrics []cwtypes.Metric) BucketMetrics {
	bm := make(BucketMetrics)

	for _, metric := range metrics {
		if len(metric.Dimensions) == 0 {
			continue
		}

		var name string
		var storageTypes []string

		for _, d := range metric.Dimensions {
			switch deref(d.Name) {
			case dimensionBucketName:
				name = deref(d.Value)
			case dimensionStorageType:
				storageTypes = append(storageTypes, deref(d.Value))
			}
		}

		if name == "" {
			continue
		}

		bm[name] = append(bm[name], storageTypes...)
	}

	return bm
}

// BucketNames returns the bucket names, sorted
func (bm BucketMetrics) BucketNames() []string {
	names := make([]string, 0, len(bm))
	for name := range bm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MetricsSizer sizes buckets from CloudWatch BucketSizeBytes statistics
type MetricsSizer struct {
	cloudwatch CloudWatchAPI
	s3         S3API
	config     types.SizerConfig
	logger     *slog.Logger
	now        func() time.Time
}

var _ provider.BucketSizer = (*MetricsSizer)(nil)

// NewMetricsSizer creates a CloudWatch backed BucketSizer. The S3 client is
// only used to resolve bucket locations.
func NewMetricsSizer(cw CloudWatchAPI, s3api S3API, cfg types.SizerConfig, logger *slog.Logger) *MetricsSizer {
	if logger == nil {
		logger = slog.Default()
	}

	return &MetricsSizer{
		cloudwatch: cw,
		s3:         s3api,
		config:     cfg,
		logger:     logger.With("backend", string(types.BackendCloudWatch)),
		now:        time.Now,
	}
}

// Buckets returns the buckets that publish BucketSizeBytes metrics, with the
// storage types each of them uses.
func (m *MetricsSizer) Buckets(ctx context.Context) (types.Buckets, error) {
	metrics, err := m.listMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrDiscovery, err)
	}

	bm := NewBucketMetrics(metrics)
	m.logger.Debug("listed bucket metrics", "series", len(metrics), "buckets", len(bm))

	candidates := make(types.Buckets, 0, len(bm))
	for _, name := range bm.BucketNames() {
		candidates = append(candidates, types.Bucket{
			Name:         name,
			StorageTypes: types.ParseStorageClasses(bm[name]),
		})
	}

	return filterBuckets(ctx, m.s3, m.config, candidates, m.logger)
}

// BucketSize returns the most recent daily StandardStorage size of the
// bucket. Other storage tiers are not included. Buckets with no published
// datapoint yet report zero.
func (m *MetricsSizer) BucketSize(ctx context.Context, bucket types.Bucket) (uint64, error) {
	m.logger.Debug("calculating bucket size", "bucket", bucket.Name)

	now := m.now().UTC()

	output, err := m.cloudwatch.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(s3Namespace),
		MetricName: aws.String(s3BucketSizeBytes),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String(dimensionBucketName),
				Value: aws.String(bucket.Name),
			},
			{
				Name:  aws.String(dimensionStorageType),
				Value: aws.String(sizedStorageType),
			},
		},
		StartTime:  aws.Time(now.Add(-metricPeriod)),
		EndTime:    aws.Time(now),
		Period:     aws.Int32(int32(metricPeriod / time.Second)),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get metric statistics for %q: %w",
			provider.ErrSizeComputation, bucket.Name, err)
	}

	size := latestAverage(output.Datapoints)

	m.logger.Debug("calculated bucket size",
		"bucket", bucket.Name,
		"datapoints", len(output.Datapoints),
		"size", size)

	return size, nil
}

// listMetrics returns every BucketSizeBytes series in the AWS/S3 namespace
func (m *MetricsSizer) listMetrics(ctx context.Context) ([]cwtypes.Metric, error) {
	fetch := func(ctx context.Context, token *string) (paginate.Page[cwtypes.Metric, string], error) {
		output, err := m.cloudwatch.ListMetrics(ctx, &cloudwatch.ListMetricsInput{
			Namespace:  aws.String(s3Namespace),
			MetricName: aws.String(s3BucketSizeBytes),
			NextToken:  token,
		})
		if err != nil {
			return paginate.Page[cwtypes.Metric, string]{}, fmt.Errorf("failed to list metrics: %w", err)
		}
		return paginate.TokenPage(output.Metrics, output.NextToken), nil
	}

	return paginate.Collect(ctx, fetch)
}

// latestAverage returns the Average of the newest datapoint, or zero
func latestAverage(datapoints []cwtypes.Datapoint) uint64 {
	var latest *cwtypes.Datapoint
	for i := range datapoints {
		dp := &datapoints[i]
		if dp.Average == nil {
			continue
		}
		if latest == nil || aws.ToTime(dp.Timestamp).After(aws.ToTime(latest.Timestamp)) {
			latest = dp
		}
	}

	if latest == nil || *latest.Average < 0 {
		return 0
	}

	return uint64(*latest.Average)
}
