package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBackend        = errors.New("unknown backend")
	ErrUnknownObjectVersions = errors.New("unknown object versions mode")
)

// Backend selects how bucket sizes are computed
type Backend string

const (
	// BackendCloudWatch reads the daily BucketSizeBytes metric
	BackendCloudWatch Backend = "cloudwatch"
	// BackendS3 lists every object in the bucket and sums the sizes
	BackendS3 Backend = "s3"
)

// Backends lists the valid backends in display order
var Backends = []Backend{BackendCloudWatch, BackendS3}

// ParseBackend parses a backend name. "metrics" and "enumeration" are
// accepted as aliases.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cloudwatch", "metrics":
		return BackendCloudWatch, nil
	case "s3", "enumeration":
		return BackendS3, nil
	default:
		return "", fmt.Errorf("%w %q (valid: cloudwatch, s3)", ErrUnknownBackend, s)
	}
}

// ObjectVersions selects which object versions the S3 backend counts
type ObjectVersions string

const (
	// ObjectVersionsCurrent counts only current objects
	ObjectVersionsCurrent ObjectVersions = "current"
	// ObjectVersionsAll counts every version, including superseded ones
	ObjectVersionsAll ObjectVersions = "all"
	// ObjectVersionsNonCurrent counts only superseded versions
	ObjectVersionsNonCurrent ObjectVersions = "non-current"
)

// ParseObjectVersions parses an object versions mode
func ParseObjectVersions(s string) (ObjectVersions, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current":
		return ObjectVersionsCurrent, nil
	case "all", "all-versions", "all_versions":
		return ObjectVersionsAll, nil
	case "non-current", "noncurrent", "non_current":
		return ObjectVersionsNonCurrent, nil
	default:
		return "", fmt.Errorf("%w %q (valid: current, all, non-current)", ErrUnknownObjectVersions, s)
	}
}

// SizerConfig is the configuration a BucketSizer is built with.
// It is not modified after construction.
type SizerConfig struct {
	// Region is the region buckets must live in to be sized
	Region string

	// ObjectVersions is only used by the S3 backend
	ObjectVersions ObjectVersions

	// BucketName limits discovery to a single bucket when set
	BucketName string

	// Concurrency bounds parallel bucket location lookups
	Concurrency int
}
