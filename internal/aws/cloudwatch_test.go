package aws

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBucketMetrics(t *testing.T) {
	metrics := []cwtypes.Metric{
		metric("StorageType", "StandardStorage", "BucketName", "some-bucket-name", "StorageType", "StandardIAStorage"),
		metric("StorageType", "StandardStorage", "BucketName", "some-other-bucket-name"),
	}

	expected := BucketMetrics{
		"some-bucket-name":       {"StandardStorage", "StandardIAStorage"},
		"some-other-bucket-name": {"StandardStorage"},
	}

	assert.Equal(t, expected, NewBucketMetrics(metrics))
}

func TestNewBucketMetricsGroupsAcrossSeries(t *testing.T) {
	metrics := []cwtypes.Metric{
		metric("BucketName", "b1", "StorageType", "StandardStorage"),
		metric("BucketName", "b1", "StorageType", "StandardIAStorage"),
		metric("BucketName", "b2", "StorageType", "StandardStorage"),
		metric("BucketName", "b1", "StorageType", "StandardStorage"),
	}

	bm := NewBucketMetrics(metrics)

	assert.Equal(t, []string{"b1", "b2"}, bm.BucketNames())
	assert.Equal(t, []string{"StandardStorage", "StandardIAStorage", "StandardStorage"}, bm["b1"])
	assert.Equal(t, []string{"StandardStorage"}, bm["b2"])
}

func TestNewBucketMetricsSkipsUnattributableSeries(t *testing.T) {
	metrics := []cwtypes.Metric{
		metric(),
		metric("StorageType", "StandardStorage"),
		metric("FilterId", "EntireBucket", "BucketName", "b1"),
	}

	bm := NewBucketMetrics(metrics)

	assert.Equal(t, []string{"b1"}, bm.BucketNames())
	assert.Empty(t, bm["b1"])
}

func TestMetricsSizerBuckets(t *testing.T) {
	cw := newFakeCloudWatch()
	cw.pages = [][]cwtypes.Metric{
		{
			metric("BucketName", "a-bucket-name", "StorageType", "StandardStorage"),
			metric("BucketName", "another-bucket-name", "StorageType", "GlacierStorage"),
		},
		{
			metric("BucketName", "another-bucket-name", "StorageType", "GlacierObjectOverhead"),
			metric("BucketName", "another-bucket-name", "StorageType", "StandardStorage"),
			metric("BucketName", "far-away-bucket", "StorageType", "StandardStorage"),
		},
	}

	s3api := newFakeS3()
	s3api.locations["far-away-bucket"] = "ap-southeast-1"

	sizer := NewMetricsSizer(cw, s3api, types.SizerConfig{Region: "us-east-1"}, testLogger())

	buckets, err := sizer.Buckets(context.Background())
	require.NoError(t, err)

	expected := types.Buckets{
		{Name: "a-bucket-name", Region: "us-east-1", StorageTypes: []types.StorageClass{types.Standard}},
		{Name: "another-bucket-name", Region: "us-east-1", StorageTypes: []types.StorageClass{types.Glacier, types.Standard}},
	}
	assert.Equal(t, expected, buckets)

	require.Len(t, cw.listInputs, 2)
	assert.Nil(t, cw.listInputs[0].NextToken)
	assert.Equal(t, "1", aws.ToString(cw.listInputs[1].NextToken))
	for _, in := range cw.listInputs {
		assert.Equal(t, "AWS/S3", aws.ToString(in.Namespace))
		assert.Equal(t, "BucketSizeBytes", aws.ToString(in.MetricName))
	}
}

func TestMetricsSizerBucketsWithFilter(t *testing.T) {
	cw := newFakeCloudWatch()
	cw.pages = [][]cwtypes.Metric{{
		metric("BucketName", "b1", "StorageType", "StandardStorage"),
		metric("BucketName", "b2", "StorageType", "StandardStorage"),
	}}
	s3api := newFakeS3()

	sizer := NewMetricsSizer(cw, s3api, types.SizerConfig{Region: "us-east-1", BucketName: "b2"}, testLogger())

	buckets, err := sizer.Buckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, buckets.Names())
	assert.Equal(t, 1, s3api.callCount("GetBucketLocation"), "only the filtered bucket is located")
}

func TestMetricsSizerBucketsErrors(t *testing.T) {
	t.Run("list metrics", func(t *testing.T) {
		cw := newFakeCloudWatch()
		cw.pages = [][]cwtypes.Metric{{metric("BucketName", "b1")}, {metric("BucketName", "b2")}}
		cw.failOn["ListMetrics"] = 2

		sizer := NewMetricsSizer(cw, newFakeS3(), types.SizerConfig{Region: "us-east-1"}, testLogger())

		buckets, err := sizer.Buckets(context.Background())
		assert.ErrorIs(t, err, provider.ErrDiscovery)
		assert.ErrorIs(t, err, errFake)
		assert.Nil(t, buckets)
	})

	t.Run("bucket location", func(t *testing.T) {
		cw := newFakeCloudWatch()
		cw.pages = [][]cwtypes.Metric{{metric("BucketName", "b1")}}
		s3api := newFakeS3()
		s3api.failOn["GetBucketLocation"] = 1

		sizer := NewMetricsSizer(cw, s3api, types.SizerConfig{Region: "us-east-1"}, testLogger())

		_, err := sizer.Buckets(context.Background())
		assert.ErrorIs(t, err, provider.ErrDiscovery)
	})
}

func TestMetricsSizerBucketSize(t *testing.T) {
	now := time.Date(2020, 3, 12, 14, 45, 0, 0, time.UTC)

	cw := newFakeCloudWatch()
	cw.datapoints["b1"] = []cwtypes.Datapoint{
		{Average: aws.Float64(1024), Timestamp: aws.Time(now.Add(-47 * time.Hour))},
		{Average: aws.Float64(123456789), Timestamp: aws.Time(now.Add(-23 * time.Hour))},
		{Average: nil, Timestamp: aws.Time(now.Add(-1 * time.Hour))},
	}

	sizer := NewMetricsSizer(cw, newFakeS3(), types.SizerConfig{Region: "us-east-1"}, testLogger())
	sizer.now = func() time.Time { return now }

	size, err := sizer.BucketSize(context.Background(), types.Bucket{Name: "b1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), size)

	require.Len(t, cw.statInputs, 1)
	in := cw.statInputs[0]
	assert.Equal(t, "AWS/S3", aws.ToString(in.Namespace))
	assert.Equal(t, "BucketSizeBytes", aws.ToString(in.MetricName))
	assert.Equal(t, now.Add(-24*time.Hour), aws.ToTime(in.StartTime))
	assert.Equal(t, now, aws.ToTime(in.EndTime))
	assert.Equal(t, int32(86400), aws.ToInt32(in.Period))
	assert.Equal(t, []cwtypes.Statistic{cwtypes.StatisticAverage}, in.Statistics)

	dims := map[string]string{}
	for _, d := range in.Dimensions {
		dims[aws.ToString(d.Name)] = aws.ToString(d.Value)
	}
	assert.Equal(t, map[string]string{"BucketName": "b1", "StorageType": "StandardStorage"}, dims)
}

func TestMetricsSizerBucketSizeNoData(t *testing.T) {
	cw := newFakeCloudWatch()
	sizer := NewMetricsSizer(cw, newFakeS3(), types.SizerConfig{Region: "us-east-1"}, testLogger())

	size, err := sizer.BucketSize(context.Background(), types.Bucket{Name: "brand-new"})
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestMetricsSizerBucketSizeError(t *testing.T) {
	cw := newFakeCloudWatch()
	cw.failOn["GetMetricStatistics"] = 1
	sizer := NewMetricsSizer(cw, newFakeS3(), types.SizerConfig{Region: "us-east-1"}, testLogger())

	_, err := sizer.BucketSize(context.Background(), types.Bucket{Name: "b1"})
	assert.ErrorIs(t, err, provider.ErrSizeComputation)
	assert.ErrorIs(t, err, errFake)
}

func TestLatestAverage(t *testing.T) {
	t0 := time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		datapoints []cwtypes.Datapoint
		expected   uint64
	}{
		{"none", nil, 0},
		{"single", []cwtypes.Datapoint{{Average: aws.Float64(42), Timestamp: aws.Time(t0)}}, 42},
		{
			"newest wins regardless of order",
			[]cwtypes.Datapoint{
				{Average: aws.Float64(300), Timestamp: aws.Time(t0.Add(48 * time.Hour))},
				{Average: aws.Float64(100), Timestamp: aws.Time(t0)},
			},
			300,
		},
		{"negative clamps to zero", []cwtypes.Datapoint{{Average: aws.Float64(-1), Timestamp: aws.Time(t0)}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, latestAverage(tt.datapoints))
		})
	}
}
