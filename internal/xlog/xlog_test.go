package xlog_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigilaris/sigil/internal/xlog"
)

func TestTerminalHandlerRendersMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := xlog.New(xlog.NewTerminalHandlerWithLevel(&buf, xlog.LevelTrace, false))
	logger.Info("hello", "k", "v")

	out := buf.String()
	require.Contains(t, out, "hello")
	require.Contains(t, out, "k=v")
	require.True(t, strings.HasPrefix(out, "INFO "))
}

func TestTerminalHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := xlog.New(xlog.NewTerminalHandler(&buf, false))
	logger.Debug("should not appear")
	require.Empty(t, buf.String())
}

func TestJSONHandlerEmitsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := xlog.New(xlog.JSONHandler(&buf))
	logger.Info("structured", "count", 3)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "structured", decoded["msg"])
	require.EqualValues(t, 3, decoded["count"])
}

func TestWithBindsAttributesAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	logger := xlog.New(xlog.NewTerminalHandlerWithLevel(&buf, xlog.LevelTrace, false)).With("service", "accounts")
	logger.Warn("careful")
	require.Contains(t, buf.String(), "service=accounts")
}
