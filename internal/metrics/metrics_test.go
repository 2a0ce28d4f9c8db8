package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/revstat/internal/model"
)

func TestObserveInput(t *testing.T) {
	_, m := NewRegistry()

	m.ObserveInput(model.InputMeta{
		Rows:    10,
		Cleaned: 7,
		RejectReasons: map[model.RejectReason]int{
			model.RejectNullishField: 2,
			model.RejectInvalidDate:  1,
		},
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsParsed))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ReviewsCleaned))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rejected.WithLabelValues("nullish_field")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("invalid_date")))
}

func TestObserveCache(t *testing.T) {
	_, m := NewRegistry()

	m.ObserveCache("memory", "miss")
	m.ObserveCache("memory", "miss")
	m.ObserveCache("disk", "hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("memory", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("disk", "hit")))
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.ObserveInput(model.InputMeta{Rows: 3, Cleaned: 3})
	m.ObserveDuration(150 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "revstat.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "revstat_rows_parsed_total 3")
	assert.Contains(t, string(data), "revstat_analysis_duration_seconds_count 1")
}
