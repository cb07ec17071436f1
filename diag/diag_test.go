package diag_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/cpgkit/cpg/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnAndFailRecordSeverity(t *testing.T) {
	r := diag.NewReport()
	r.Warn("a.go", "unresolved import", nil)
	r.Fail("b.go", "parse failure", errors.New("unexpected EOF"))

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, diag.Warning, events[0].Severity)
	assert.Equal(t, diag.Error, events[1].Severity)
	assert.True(t, r.HasErrors())
}

func TestHasErrorsFalseWithOnlyWarnings(t *testing.T) {
	r := diag.NewReport()
	r.Warn("a.go", "heads up", nil)
	assert.False(t, r.HasErrors())
}

func TestMergeFoldsEvents(t *testing.T) {
	a := diag.NewReport()
	a.Warn("a.go", "one", nil)
	b := diag.NewReport()
	b.Fail("b.go", "two", nil)

	a.Merge(b)
	assert.Len(t, a.Events(), 2)
	assert.Len(t, b.Events(), 1, "merge doesn't mutate the source report")
}

func TestRecordIsConcurrencySafe(t *testing.T) {
	r := diag.NewReport()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Warn("file.go", "concurrent", nil)
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Events(), 50)
}

func TestEventStringIncludesCause(t *testing.T) {
	ev := diag.Event{Severity: diag.Error, Source: "x.go", Message: "boom", Cause: errors.New("oops")}
	assert.Contains(t, ev.String(), "oops")
	assert.Contains(t, ev.String(), "x.go")
}
