package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vietdv277/s3du/internal/du"
	"github.com/vietdv277/s3du/pkg/types"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a report is written
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses an output format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q (valid: table, json, yaml)", ErrUnknownFormat, s)
	}
}

// ReportDocument is the machine-readable form of a du.Report
type ReportDocument struct {
	Backend  types.Backend    `json:"backend" yaml:"backend"`
	Region   string           `json:"region" yaml:"region"`
	Buckets  []BucketDocument `json:"buckets" yaml:"buckets"`
	Failed   []FailedDocument `json:"failed,omitempty" yaml:"failed,omitempty"`
	Total    uint64           `json:"total_bytes" yaml:"total_bytes"`
	Human    string           `json:"total" yaml:"total"`
	Duration string           `json:"duration" yaml:"duration"`
}

// BucketDocument is one sized bucket
type BucketDocument struct {
	Name         string               `json:"name" yaml:"name"`
	Region       string               `json:"region,omitempty" yaml:"region,omitempty"`
	StorageTypes []types.StorageClass `json:"storage_types,omitempty" yaml:"storage_types,omitempty"`
	Size         uint64               `json:"size_bytes" yaml:"size_bytes"`
	Human        string               `json:"size" yaml:"size"`
}

// FailedDocument is a bucket whose size could not be computed
type FailedDocument struct {
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
}

// NewReportDocument converts a report, rendering sizes in the given unit
func NewReportDocument(report *du.Report, unit Unit) ReportDocument {
	doc := ReportDocument{
		Backend:  report.Backend,
		Region:   report.Region,
		Buckets:  make([]BucketDocument, 0, len(report.Results)),
		Total:    report.Total,
		Human:    FormatSize(report.Total, unit),
		Duration: report.Duration.String(),
	}

	for _, res := range report.Results {
		if !res.OK() {
			doc.Failed = append(doc.Failed, FailedDocument{
				Name:  res.Bucket.Name,
				Error: res.Err.Error(),
			})
			continue
		}

		doc.Buckets = append(doc.Buckets, BucketDocument{
			Name:         res.Bucket.Name,
			Region:       res.Bucket.Region,
			StorageTypes: res.Bucket.StorageTypes,
			Size:         res.Size,
			Human:        FormatSize(res.Size, unit),
		})
	}

	return doc
}

// WriteReport writes a report in the given format
func WriteReport(w io.Writer, report *du.Report, format Format, unit Unit) error {
	switch format {
	case FormatTable, "":
		return PrintBucketTable(w, report, unit)

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewReportDocument(report, unit)); err != nil {
			return fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewReportDocument(report, unit)); err != nil {
			return fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
