package utilities_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employee-facade/internal"
	"github.com/antonio-alexander/go-employee-facade/internal/utilities"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := utilities.NewLogger(buffer)
	err := logger.Configure(map[string]string{"LOG_LEVEL": "info"})
	assert.Nil(t, err)

	ctx := internal.CtxWithCorrelationId(context.Background(), "correlation")
	logger.Debug(ctx, "suppressed %d", 1)
	assert.Zero(t, buffer.Len())
	logger.Warn(ctx, "deleted %s", "nobody")
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if assert.Len(t, lines, 1) {
		var line map[string]any

		err := json.Unmarshal([]byte(lines[0]), &line)
		assert.Nil(t, err)
		assert.Equal(t, "warn", line["level"])
		assert.Equal(t, "deleted nobody", line["message"])
		assert.Equal(t, "correlation", line["correlation_id"])
	}
}

func TestCounter(t *testing.T) {
	counter := utilities.NewCounter()
	assert.Equal(t, 1, counter.Increment("upstream_employees_read"))
	assert.Equal(t, 2, counter.Increment("upstream_employees_read"))
	assert.Equal(t, 2, counter.Read("upstream_employees_read"))
	assert.Equal(t, map[string]int{"upstream_employees_read": 2}, counter.ReadAll().Counts)
	counter.Reset()
	assert.Zero(t, counter.Read("upstream_employees_read"))
}

func TestTimers(t *testing.T) {
	timers := utilities.NewTimers()
	index := timers.Start("employees_read")
	assert.GreaterOrEqual(t, timers.Stop("employees_read", index), int64(0))
	assert.Equal(t, int64(-1), timers.Stop("employees_read", index+1))
	assert.Equal(t, int64(-1), timers.Stop("missing", 0))
	_ = timers.Start("employees_read")
	all := timers.ReadAll()
	assert.Contains(t, all.Totals, "employees_read")
	assert.Contains(t, all.Averages, "employees_read")
	timers.Clear()
	assert.Empty(t, timers.ReadAll().Totals)
}
