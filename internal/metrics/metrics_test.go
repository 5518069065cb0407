package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest("LISTSTATUS", "ok", 10*time.Millisecond)
	r.ObserveRequest("LISTSTATUS", "ok", 20*time.Millisecond)
	r.ObserveRequest("MKDIRS", "org.apache.hadoop.security.AccessControlException", time.Millisecond)
	r.ObserveFailover()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("LISTSTATUS", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("MKDIRS", "org.apache.hadoop.security.AccessControlException")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failover))
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveRequest("DELETE", "ok", time.Second)
	r.ObserveFailover()
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest("RENAME", "ok", time.Millisecond)

	path := filepath.Join(t.TempDir(), "hdfsh.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hdfsh_webhdfs_requests_total{op="RENAME",outcome="ok"} 1`)
}
