package provider

import (
	"context"
	"errors"

	"github.com/vietdv277/s3du/pkg/types"
)

// Common errors
var (
	ErrDiscovery       = errors.New("bucket discovery failed")
	ErrSizeComputation = errors.New("bucket size computation failed")
)

// BucketSizer defines the interface every sizing backend implements
type BucketSizer interface {
	// Buckets returns the buckets that can be sized from the configured
	// region, after applying the optional single-bucket filter.
	// Buckets hosted in other regions are dropped without error.
	Buckets(ctx context.Context) (types.Buckets, error)

	// BucketSize returns the size of the bucket in bytes.
	// It is safe to call concurrently for distinct buckets.
	BucketSize(ctx context.Context, bucket types.Bucket) (uint64, error)
}
