package utils

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	defer SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("assembled", "rows", 12)
	assert.Contains(t, buf.String(), "rows=12")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
	assert.True(t, IsFinite([]float64{1, 2}))
}
