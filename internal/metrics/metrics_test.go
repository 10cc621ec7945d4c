package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()
	r.Ingested("standard", 3)
	r.Ingested("standard", 2)
	r.Issues("merge", 4)
	r.Issues("rates", 0)
	r.CohortSize("CB", 12)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.recordsIngested.WithLabelValues("standard")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.issues.WithLabelValues("merge")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.cohortSize.WithLabelValues("CB")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.issues), "zero adds create no series")
}

func TestRecorderStage(t *testing.T) {
	r := NewRecorder()
	done := r.Stage("percentile")
	done()
	assert.Equal(t, 1, testutil.CollectAndCount(r.stageDuration))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Undefined("per90", 7)
	path := filepath.Join(t.TempDir(), "scout.prom")

	require.NoError(t, r.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `scout_undefined_values_total{kind="per90"} 7`))
}
