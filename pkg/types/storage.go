package types

import (
	"sort"
	"strings"
)

// Bucket represents an S3 bucket found during discovery
type Bucket struct {
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// StorageTypes is only populated by the CloudWatch backend, where the
	// tiers in use come for free with discovery.
	StorageTypes []StorageClass `json:"storage_types,omitempty" yaml:"storage_types,omitempty"`
}

// StorageTypeNames returns the display names of the bucket's storage types
func (b Bucket) StorageTypeNames() []string {
	names := make([]string, 0, len(b.StorageTypes))
	for _, sc := range b.StorageTypes {
		names = append(names, sc.String())
	}
	return names
}

// StorageTypesString joins the storage types for display, "-" when unknown
func (b Bucket) StorageTypesString() string {
	if len(b.StorageTypes) == 0 {
		return "-"
	}
	return strings.Join(b.StorageTypeNames(), ", ")
}

// Buckets is a list of buckets in discovery order
type Buckets []Bucket

// Names returns the bucket names in list order
func (bs Buckets) Names() []string {
	names := make([]string, 0, len(bs))
	for _, b := range bs {
		names = append(names, b.Name)
	}
	return names
}

// Sort orders the buckets by name
func (bs Buckets) Sort() {
	sort.Slice(bs, func(i, j int) bool {
		return bs[i].Name < bs[j].Name
	})
}
