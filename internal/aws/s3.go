package aws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vietdv277/s3du/internal/paginate"
	"github.com/vietdv277/s3du/pkg/provider"
	"github.com/vietdv277/s3du/pkg/types"
)

// versionMarker is the ListObjectVersions cursor
type versionMarker struct {
	key       string
	versionID string
}

// ObjectSizer sizes buckets by listing their objects and summing the sizes
type ObjectSizer struct {
	s3     S3API
	config types.SizerConfig
	logger *slog.Logger
}

var _ provider.BucketSizer = (*ObjectSizer)(nil)

// NewObjectSizer creates an S3 listing backed BucketSizer
func NewObjectSizer(s3api S3API, cfg types.SizerConfig, logger *slog.Logger) *ObjectSizer {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ObjectVersions == "" {
		cfg.ObjectVersions = types.ObjectVersionsCurrent
	}

	return &ObjectSizer{
		s3:     s3api,
		config: cfg,
		logger: logger.With("backend", string(types.BackendS3)),
	}
}

// Buckets returns the buckets in the configured region
func (o *ObjectSizer) Buckets(ctx context.Context) (types.Buckets, error) {
	names, err := o.listBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrDiscovery, err)
	}

	o.logger.Debug("listed buckets", "buckets", len(names))

	candidates := make(types.Buckets, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, types.Bucket{Name: name})
	}

	return filterBuckets(ctx, o.s3, o.config, candidates, o.logger)
}

// BucketSize returns the summed size of the bucket's objects, counting the
// object versions selected by the configured ObjectVersions mode
func (o *ObjectSizer) BucketSize(ctx context.Context, bucket types.Bucket) (uint64, error) {
	o.logger.Debug("calculating bucket size",
		"bucket", bucket.Name,
		"object_versions", string(o.config.ObjectVersions))

	var size uint64
	var err error

	switch o.config.ObjectVersions {
	case types.ObjectVersionsCurrent:
		size, err = o.sizeCurrentObjects(ctx, bucket.Name)
	case types.ObjectVersionsAll, types.ObjectVersionsNonCurrent:
		size, err = o.sizeObjectVersions(ctx, bucket.Name)
	default:
		err = fmt.Errorf("%w %q", types.ErrUnknownObjectVersions, o.config.ObjectVersions)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", provider.ErrSizeComputation, err)
	}

	o.logger.Debug("calculated bucket size", "bucket", bucket.Name, "size", size)

	return size, nil
}

// listBuckets returns the names of every bucket owned by the caller
func (o *ObjectSizer) listBuckets(ctx context.Context) ([]string, error) {
	fetch := func(ctx context.Context, token *string) (paginate.Page[s3types.Bucket, string], error) {
		output, err := o.s3.ListBuckets(ctx, &s3.ListBucketsInput{
			ContinuationToken: token,
		})
		if err != nil {
			return paginate.Page[s3types.Bucket, string]{}, fmt.Errorf("failed to list buckets: %w", err)
		}
		return paginate.TokenPage(output.Buckets, output.ContinuationToken), nil
	}

	var names []string
	err := paginate.Each(ctx, fetch, func(b s3types.Bucket) error {
		if b.Name != nil {
			names = append(names, *b.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// sizeCurrentObjects sums the sizes of the current objects, page by page
func (o *ObjectSizer) sizeCurrentObjects(ctx context.Context, bucket string) (uint64, error) {
	fetch := func(ctx context.Context, token *string) (paginate.Page[s3types.Object, string], error) {
		output, err := o.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return paginate.Page[s3types.Object, string]{}, fmt.Errorf("failed to list objects in %q: %w", bucket, err)
		}
		return paginate.FlagPage(output.Contents, output.IsTruncated, deref(output.NextContinuationToken)), nil
	}

	var size uint64
	err := paginate.Each(ctx, fetch, func(obj s3types.Object) error {
		size += objectSize(obj.Size)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return size, nil
}

// sizeObjectVersions sums the sizes of object versions. Delete markers are
// listed separately by S3 and have no size, so they are never counted.
func (o *ObjectSizer) sizeObjectVersions(ctx context.Context, bucket string) (uint64, error) {
	fetch := func(ctx context.Context, marker *versionMarker) (paginate.Page[s3types.ObjectVersion, versionMarker], error) {
		input := &s3.ListObjectVersionsInput{
			Bucket: aws.String(bucket),
		}
		if marker != nil {
			input.KeyMarker = aws.String(marker.key)
			if marker.versionID != "" {
				input.VersionIdMarker = aws.String(marker.versionID)
			}
		}

		output, err := o.s3.ListObjectVersions(ctx, input)
		if err != nil {
			return paginate.Page[s3types.ObjectVersion, versionMarker]{}, fmt.Errorf("failed to list object versions in %q: %w", bucket, err)
		}

		next := versionMarker{
			key:       deref(output.NextKeyMarker),
			versionID: deref(output.NextVersionIdMarker),
		}
		return paginate.FlagPage(output.Versions, output.IsTruncated, next), nil
	}

	nonCurrentOnly := o.config.ObjectVersions == types.ObjectVersionsNonCurrent

	var size uint64
	err := paginate.Each(ctx, fetch, func(v s3types.ObjectVersion) error {
		if nonCurrentOnly && aws.ToBool(v.IsLatest) {
			return nil
		}
		size += objectSize(v.Size)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return size, nil
}

// objectSize treats a missing or negative size as zero
func objectSize(size *int64) uint64 {
	s := derefInt64(size)
	if s < 0 {
		return 0
	}
	return uint64(s)
}
