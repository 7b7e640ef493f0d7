package types

// storageKind enumerates the storage classes s3du knows about
type storageKind int

const (
	kindUnknown storageKind = iota
	kindDeepArchive
	kindGlacier
	kindIntelligentTiering
	kindOneZoneIA
	kindReducedRedundancy
	kindStandard
	kindStandardIA
)

var kindNames = map[storageKind]string{
	kindDeepArchive:        "DeepArchive",
	kindGlacier:            "Glacier",
	kindIntelligentTiering: "IntelligentTiering",
	kindOneZoneIA:          "OneZoneIA",
	kindReducedRedundancy:  "ReducedRedundancy",
	kindStandard:           "Standard",
	kindStandardIA:         "StandardIA",
}

// StorageClass is a normalized S3 storage tier.
//
// The zero value is an Unknown class with an empty raw string.
type StorageClass struct {
	kind storageKind
	raw  string // only set for unknown classes
}

// Known storage classes
var (
	DeepArchive        = StorageClass{kind: kindDeepArchive}
	Glacier            = StorageClass{kind: kindGlacier}
	IntelligentTiering = StorageClass{kind: kindIntelligentTiering}
	OneZoneIA          = StorageClass{kind: kindOneZoneIA}
	ReducedRedundancy  = StorageClass{kind: kindReducedRedundancy}
	Standard           = StorageClass{kind: kindStandard}
	StandardIA         = StorageClass{kind: kindStandardIA}
)

// storageClassAliases maps the raw tier strings reported by CloudWatch and S3
// onto their storage class. Overhead and staging variants collapse onto the
// tier they are billed under.
var storageClassAliases = map[string]StorageClass{
	// CloudWatch StorageType dimension values
	"DeepArchiveStorage":          DeepArchive,
	"DeepArchiveObjectOverhead":   DeepArchive,
	"DeepArchiveS3ObjectOverhead": DeepArchive,
	"DeepArchiveStagingStorage":   DeepArchive,
	"GlacierObjectOverhead":       Glacier,
	"GlacierStorage":              Glacier,
	"GlacierStagingStorage":       Glacier,
	"GlacierS3ObjectOverhead":     Glacier,
	"IntelligentTieringStorage":   IntelligentTiering,
	"OneZoneIASizeOverhead":       OneZoneIA,
	"OneZoneIAStorage":            OneZoneIA,
	"ReducedRedundancyStorage":    ReducedRedundancy,
	"StandardIAObjectOverhead":    StandardIA,
	"StandardIASizeOverhead":      StandardIA,
	"StandardIAStorage":           StandardIA,
	"StandardStorage":             Standard,

	// S3 StorageClass values
	"DEEP_ARCHIVE":        DeepArchive,
	"GLACIER":             Glacier,
	"INTELLIGENT_TIERING": IntelligentTiering,
	"ONEZONE_IA":          OneZoneIA,
	"REDUCED_REDUNDANCY":  ReducedRedundancy,
	"STANDARD":            Standard,
	"STANDARD_IA":         StandardIA,
}

// UnknownStorageClass returns the catch-all class for a tier string s3du
// does not recognize. The raw string is kept verbatim.
func UnknownStorageClass(raw string) StorageClass {
	return StorageClass{kind: kindUnknown, raw: raw}
}

// ParseStorageClass classifies a raw tier string. It never fails: strings
// missing from the alias table become UnknownStorageClass(raw).
func ParseStorageClass(raw string) StorageClass {
	if sc, ok := storageClassAliases[raw]; ok {
		return sc
	}
	return UnknownStorageClass(raw)
}

// IsUnknown reports whether the class is the catch-all for unrecognized tiers
func (s StorageClass) IsUnknown() bool {
	return s.kind == kindUnknown
}

// String returns the canonical name, or the raw string for unknown classes
func (s StorageClass) String() string {
	if s.kind == kindUnknown {
		return s.raw
	}
	return kindNames[s.kind]
}

// MarshalText implements encoding.TextMarshaler
func (s StorageClass) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalYAML implements yaml.Marshaler
func (s StorageClass) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// ParseStorageClasses classifies each label and drops repeats, keeping the
// order in which each class was first seen.
func ParseStorageClasses(raw []string) []StorageClass {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[StorageClass]bool, len(raw))
	var classes []StorageClass
	for _, r := range raw {
		sc := ParseStorageClass(r)
		if seen[sc] {
			continue
		}
		seen[sc] = true
		classes = append(classes, sc)
	}

	return classes
}
