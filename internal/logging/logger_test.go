// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goccy/go-json"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"INFO":     zerolog.InfoLevel,
		"bogus":    zerolog.InfoLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestWithComponentTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	log := WithComponent("scheduler")
	log.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "hello", entry["message"])
}

func TestRequestIDContext(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-7")
	assert.Equal(t, "req-7", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	id := GenerateRequestID()
	assert.NotEmpty(t, id)
	assert.NotEqual(t, id, GenerateRequestID())
}

func TestSlogBridgeWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewTestLogger(&buf))

	logger.Info("service started", slog.String("service", "http"), slog.Int("restarts", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "service started", entry["message"])
	assert.Equal(t, "http", entry["service"])
	assert.EqualValues(t, 2, entry["restarts"])
}
