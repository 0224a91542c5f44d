package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "cosmetica/internal/log"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	t.Cleanup(func() {
		stdlog.SetOutput(prevOut)
		stdlog.SetFlags(prevFlags)
	})
	return &buf
}

func TestWithoutFiberContext(t *testing.T) {
	buf := capture(t)
	applog.Error(nil, "outbox.dispatch", errors.New("broker down"), map[string]any{"id": 7})

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m))
	assert.Equal(t, "error", m["level"])
	assert.Equal(t, "outbox.dispatch", m["action"])
	assert.Equal(t, "broker down", m["err"])
	assert.NotContains(t, m, "path")
}

func TestSecurityIsWarnLevel(t *testing.T) {
	buf := capture(t)
	applog.Security(nil, "auth.bad_token", nil)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
