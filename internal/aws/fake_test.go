package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var errFake = errors.New("fake api failure")

// fakeS3 is an in-memory S3API. Listings are served pageSize entries at a time.
type fakeS3 struct {
	mu sync.Mutex

	pageSize  int
	buckets   []string
	locations map[string]string
	objects   map[string][]s3types.Object
	versions  map[string][]s3types.ObjectVersion

	// failures, keyed by operation name, with the call number that fails
	failOn map[string]int

	calls map[string]int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		pageSize:  1000,
		locations: make(map[string]string),
		objects:   make(map[string][]s3types.Object),
		versions:  make(map[string][]s3types.ObjectVersion),
		failOn:    make(map[string]int),
		calls:     make(map[string]int),
	}
}

func (f *fakeS3) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++
	if n, ok := f.failOn[op]; ok && f.calls[op] >= n {
		return fmt.Errorf("%s: %w", op, errFake)
	}
	return nil
}

func (f *fakeS3) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// window returns the [start, end) page bounds for an offset token
func (f *fakeS3) window(token *string, total int) (int, int, *string) {
	start := 0
	if token != nil {
		start, _ = strconv.Atoi(*token)
	}
	end := min(start+f.pageSize, total)

	var next *string
	if end < total {
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next
}

func (f *fakeS3) ListBuckets(_ context.Context, params *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if err := f.record("ListBuckets"); err != nil {
		return nil, err
	}

	start, end, next := f.window(params.ContinuationToken, len(f.buckets))

	output := &s3.ListBucketsOutput{ContinuationToken: next}
	for _, name := range f.buckets[start:end] {
		output.Buckets = append(output.Buckets, s3types.Bucket{Name: aws.String(name)})
	}
	return output, nil
}

func (f *fakeS3) GetBucketLocation(_ context.Context, params *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	if err := f.record("GetBucketLocation"); err != nil {
		return nil, err
	}

	return &s3.GetBucketLocationOutput{
		LocationConstraint: s3types.BucketLocationConstraint(f.locations[aws.ToString(params.Bucket)]),
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := f.record("ListObjectsV2"); err != nil {
		return nil, err
	}

	objects := f.objects[aws.ToString(params.Bucket)]
	start, end, next := f.window(params.ContinuationToken, len(objects))

	return &s3.ListObjectsV2Output{
		Contents:              objects[start:end],
		IsTruncated:           aws.Bool(next != nil),
		NextContinuationToken: next,
		KeyCount:              aws.Int32(int32(end - start)),
	}, nil
}

// ListObjectVersions uses the KeyMarker as the offset and echoes a version id
// marker so the composite cursor is exercised.
func (f *fakeS3) ListObjectVersions(_ context.Context, params *s3.ListObjectVersionsInput, _ ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
	if err := f.record("ListObjectVersions"); err != nil {
		return nil, err
	}

	if params.KeyMarker != nil && aws.ToString(params.VersionIdMarker) != "v"+aws.ToString(params.KeyMarker) {
		return nil, fmt.Errorf("unexpected version id marker %q", aws.ToString(params.VersionIdMarker))
	}

	versions := f.versions[aws.ToString(params.Bucket)]
	start, end, next := f.window(params.KeyMarker, len(versions))

	output := &s3.ListObjectVersionsOutput{
		Versions:    versions[start:end],
		IsTruncated: aws.Bool(next != nil),
		DeleteMarkers: []s3types.DeleteMarkerEntry{
			{Key: aws.String("deleted"), IsLatest: aws.Bool(true)},
		},
	}
	if next != nil {
		output.NextKeyMarker = next
		output.NextVersionIdMarker = aws.String("v" + *next)
	}
	return output, nil
}

// fakeCloudWatch is an in-memory CloudWatchAPI
type fakeCloudWatch struct {
	mu sync.Mutex

	pages      [][]cwtypes.Metric
	datapoints map[string][]cwtypes.Datapoint
	failOn     map[string]int

	calls      map[string]int
	statInputs []*cloudwatch.GetMetricStatisticsInput
	listInputs []*cloudwatch.ListMetricsInput
}

func newFakeCloudWatch() *fakeCloudWatch {
	return &fakeCloudWatch{
		datapoints: make(map[string][]cwtypes.Datapoint),
		failOn:     make(map[string]int),
		calls:      make(map[string]int),
	}
}

func (f *fakeCloudWatch) record(op string) error {
	f.calls[op]++
	if n, ok := f.failOn[op]; ok && f.calls[op] >= n {
		return fmt.Errorf("%s: %w", op, errFake)
	}
	return nil
}

func (f *fakeCloudWatch) ListMetrics(_ context.Context, params *cloudwatch.ListMetricsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.ListMetricsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listInputs = append(f.listInputs, params)
	if err := f.record("ListMetrics"); err != nil {
		return nil, err
	}

	page := 0
	if params.NextToken != nil {
		page, _ = strconv.Atoi(*params.NextToken)
	}

	output := &cloudwatch.ListMetricsOutput{}
	if page < len(f.pages) {
		output.Metrics = f.pages[page]
	}
	if page+1 < len(f.pages) {
		output.NextToken = aws.String(strconv.Itoa(page + 1))
	}
	return output, nil
}

func (f *fakeCloudWatch) GetMetricStatistics(_ context.Context, params *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statInputs = append(f.statInputs, params)
	if err := f.record("GetMetricStatistics"); err != nil {
		return nil, err
	}

	var bucket string
	for _, d := range params.Dimensions {
		if aws.ToString(d.Name) == "BucketName" {
			bucket = aws.ToString(d.Value)
		}
	}

	return &cloudwatch.GetMetricStatisticsOutput{
		Label:      params.MetricName,
		Datapoints: f.datapoints[bucket],
	}, nil
}

// metric builds a BucketSizeBytes series from name/value dimension pairs
func metric(pairs ...string) cwtypes.Metric {
	m := cwtypes.Metric{
		MetricName: aws.String("BucketSizeBytes"),
		Namespace:  aws.String("AWS/S3"),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Dimensions = append(m.Dimensions, cwtypes.Dimension{
			Name:  aws.String(pairs[i]),
			Value: aws.String(pairs[i+1]),
		})
	}
	return m
}

func object(key string, size int64) s3types.Object {
	return s3types.Object{
		Key:          aws.String(key),
		Size:         aws.Int64(size),
		StorageClass: s3types.ObjectStorageClassStandard,
	}
}

func version(key string, size int64, latest bool) s3types.ObjectVersion {
	return s3types.ObjectVersion{
		Key:      aws.String(key),
		Size:     aws.Int64(size),
		IsLatest: aws.Bool(latest),
	}
}
