package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietdv277/s3du/internal/du"
	"github.com/vietdv277/s3du/pkg/types"
)

func testReport() *du.Report {
	return &du.Report{
		Backend: types.BackendS3,
		Region:  "eu-west-1",
		Results: []du.Result{
			{Bucket: types.Bucket{Name: "logs"}, Size: 33792},
			{Bucket: types.Bucket{Name: "media"}, Size: 1024},
			{Bucket: types.Bucket{Name: "locked"}, Err: errors.New("access denied")},
		},
		Total:    34816,
		Failed:   1,
		Started:  time.Unix(1584024300, 0),
		Duration: 2500 * time.Millisecond,
	}
}

func TestObserve(t *testing.T) {
	m := NewReportMetrics()
	m.Observe(testReport())

	assert.Equal(t, float64(33792), testutil.ToFloat64(m.bucketSize.WithLabelValues("logs", "s3", "eu-west-1")))
	assert.Equal(t, float64(34816), testutil.ToFloat64(m.totalSize.WithLabelValues("s3", "eu-west-1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("locked", "s3", "eu-west-1")))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.duration.WithLabelValues("s3", "eu-west-1")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.bucketSize))

	expected := `
# HELP s3du_buckets Number of buckets by sizing result.
# TYPE s3du_buckets gauge
s3du_buckets{backend="s3",region="eu-west-1",result="error"} 1
s3du_buckets{backend="s3",region="eu-west-1",result="ok"} 2
# HELP s3du_last_run_timestamp_seconds Unix time the sizing run started.
# TYPE s3du_last_run_timestamp_seconds gauge
s3du_last_run_timestamp_seconds{backend="s3",region="eu-west-1"} 1.5840243e+09
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"s3du_buckets", "s3du_last_run_timestamp_seconds")
	assert.NoError(t, err)
}

func TestWriteTextfile(t *testing.T) {
	m := NewReportMetrics()
	m.Observe(testReport())

	path := filepath.Join(t.TempDir(), "s3du.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `s3du_bucket_size_bytes{backend="s3",bucket="media",region="eu-west-1"} 1024`)
	assert.Contains(t, out, `s3du_total_size_bytes{backend="s3",region="eu-west-1"} 34816`)
	assert.Contains(t, out, `s3du_bucket_failures_total{backend="s3",bucket="locked",region="eu-west-1"} 1`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	m := NewReportMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "s3du.prom"))
	assert.Error(t, err)
}
