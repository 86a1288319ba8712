package harness

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSummary(t *testing.T) {
	r := NewReport("CPU", "v0.0.0")
	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := StatusPass
			if i%5 == 0 {
				status = StatusFail
			}
			r.Add(Result{Case: "case", Status: status})
		}(i)
	}
	wg.Wait()
	r.Add(Result{Case: "broken", Status: StatusError, Error: "boom"})

	passed, failed, errored := r.Summary()
	assert.Equal(t, 8, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, errored)
	assert.Len(t, r.Failures(), 3)
	for _, res := range r.Results {
		assert.False(t, res.Timestamp.IsZero())
	}
}

func TestReportWriteRead(t *testing.T) {
	r := NewReport("CPU", "v0.0.0")
	r.Add(Result{Case: "a", Kind: "loadstore", Type: "f32", Layouts: "RCR", Status: StatusPass, Bytes: 2048, Duration: 3 * time.Millisecond})
	r.Add(Result{Case: "b", Kind: "fill", Type: "bf16", Status: StatusFail, Mismatches: 4, Error: "matrix C: 4 elements differ"})

	for _, name := range []string{"report.yaml", "nested/report.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, r.Write(path))
			got := must.M1(ReadReport(path))
			assert.Equal(t, r.RunID, got.RunID)
			assert.Equal(t, "CPU", got.Device)
			require.Len(t, got.Results, 2)
			assert.Equal(t, "RCR", got.Results[0].Layouts)
			assert.Equal(t, 3*time.Millisecond, got.Results[0].Duration)
			assert.Equal(t, 4, got.Results[1].Mismatches)
		})
	}

	_, err := ReadReport(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
