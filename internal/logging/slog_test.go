package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

// records decodes one JSON object per line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	log, buf := newJSONLogger(slog.LevelWarn)
	ctx := context.Background()

	log.Debug(ctx, "quota checked", "owner_id", "u1")
	log.Info(ctx, "file stored", "file_id", "f1")
	log.Warn(ctx, "orphan blob left behind", "storage_key", "u1/f1")
	log.Error(ctx, "metadata write failed", "file_id", "f2")

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "orphan blob left behind", recs[0]["msg"])
	assert.Equal(t, "u1/f1", recs[0]["storage_key"])
	assert.Equal(t, "ERROR", recs[1]["level"])
	assert.Equal(t, "f2", recs[1]["file_id"])
}

func TestSlogLogger_ModuleChildren(t *testing.T) {
	root, buf := newJSONLogger(slog.LevelDebug)
	ctx := context.Background()

	files := root.With("module", "files")
	files.With("owner_id", "u1").Info(ctx, "upload accepted", "size_bytes", 42)
	root.With("module", "accounts").Info(ctx, "account removed")
	root.Info(ctx, "storage backend ready")

	recs := records(t, buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "files", recs[0]["module"])
	assert.Equal(t, "u1", recs[0]["owner_id"])
	assert.EqualValues(t, 42, recs[0]["size_bytes"])

	assert.Equal(t, "accounts", recs[1]["module"])
	assert.NotContains(t, recs[1], "owner_id")

	assert.NotContains(t, recs[2], "module")
}

func TestNop(t *testing.T) {
	var log Logger = Nop{}
	child := log.With("module", "files")

	assert.Equal(t, Nop{}, child)
	assert.NotPanics(t, func() {
		ctx := context.Background()
		child.Debug(ctx, "x")
		child.Info(ctx, "x")
		child.Warn(ctx, "x", "k", "v")
		child.Error(ctx, "x", "error", assert.AnError)
	})
}
