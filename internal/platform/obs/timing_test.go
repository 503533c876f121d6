package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestTime_LogsRunIDAndError(t *testing.T) {
	buf := captureLog(t)

	ctx, runID := WithRunID(context.Background())
	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, RunID(ctx))

	err := errors.New("boom")
	Time(ctx, "dispatch.truck")(&err)

	line := buf.String()
	assert.Contains(t, line, "run_id="+runID)
	assert.Contains(t, line, "op=dispatch.truck")
	assert.Contains(t, line, "err=boom")
}

func TestTime_NoError(t *testing.T) {
	buf := captureLog(t)

	ctx, reqID := WithRequestID(context.Background())
	var err error
	Time(ctx, "report")(&err)

	assert.True(t, strings.Contains(buf.String(), "req_id="+reqID))
	assert.NotContains(t, buf.String(), "err=")
}
