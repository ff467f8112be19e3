package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitRejected, "rejected")
	assert.Equal(t, "rejected", err.Error())
	assert.Equal(t, ExitRejected, GetExitCode(err))

	inner := errors.New("disk full")
	wrapped := WrapExitError(ExitCommandError, "command failed", inner)
	assert.Equal(t, "command failed: disk full", wrapped.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, inner)
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitRejected, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"stock": 8}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"stock": float64(8)}, resp.Data)
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("REJECT_INSUFFICIENT_STOCK", "requested 11 but only 10 available", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "REJECT_INSUFFICIENT_STOCK", resp.Error.Code)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error("REJECT_REFUND_WINDOW", "order too old", nil))
	assert.Contains(t, buf.String(), "REJECT_REFUND_WINDOW")
	assert.Contains(t, buf.String(), "order too old")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errw bytes.Buffer

	quiet := &OutputFormatter{Format: "text", Writer: &out}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, out.String())

	verbose := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errw, Verbose: true}
	verbose.VerboseLog("loaded %d rows", 3)
	// JSON output stays clean; diagnostics go to the error writer.
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 rows\n", errw.String())
}
