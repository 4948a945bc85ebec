// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-io/vitrine/internal/models"
)

func TestParseHello(t *testing.T) {
	id := uuid.New()

	h, err := ParseHello([]byte(`{"type":"Hello","data":{"uuid":"` + id.String() + `","htmx":true}}`))
	require.NoError(t, err)
	assert.Equal(t, id, h.UUID)
	assert.True(t, h.Htmx)

	// htmx defaults to false when omitted.
	h, err = ParseHello([]byte(`{"type":"Hello","data":{"uuid":"` + id.String() + `"}}`))
	require.NoError(t, err)
	assert.False(t, h.Htmx)
}

func TestParseHelloRejectsOtherFrames(t *testing.T) {
	_, err := ParseHello([]byte(`{"type":"Pending","data":true}`))
	assert.Error(t, err)

	_, err = ParseHello([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseHello([]byte(`{"type":"Hello","data":{}}`))
	assert.Error(t, err, "nil uuid must be rejected")
}

func TestJSONEncoderDisplay(t *testing.T) {
	enc := NewEncoder(false, "")

	frame, err := enc.Display(models.PlaylistItem{
		Kind:    models.ItemWebsite,
		Content: "https://example.com",
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"Display","data":{"type":"Website","data":{"content":"https://example.com"}}}`,
		string(frame))

	frame, err = enc.Display(models.PlaylistItem{Kind: models.ItemText, Content: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"Display","data":{"type":"Text","data":{"content":"hello"}}}`,
		string(frame))

	frame, err = enc.Display(models.PlaylistItem{Kind: models.ItemImage, Content: "/files/logo.png"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"Display","data":{"type":"Image","data":{"content":"/files/logo.png"}}}`,
		string(frame))
}

func TestJSONEncoderWelcomeAndPending(t *testing.T) {
	enc := NewEncoder(false, "abc123")

	frame, err := enc.Welcome("lobby")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Welcome","data":{"name":"lobby"}}`, string(frame))

	frame, err = enc.Pending()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Pending","data":true}`, string(frame))
}

func TestBackgroundAudioHasNoDispatch(t *testing.T) {
	for _, enc := range []Encoder{NewEncoder(false, ""), NewEncoder(true, "h")} {
		_, err := enc.Display(models.PlaylistItem{Kind: models.ItemBackgroundAudio, Content: "/files/a.mp3"})
		assert.ErrorIs(t, err, ErrUnsupportedItem)
	}
}

func TestHtmxEncoderFragments(t *testing.T) {
	enc := NewEncoder(true, "deadbeef")

	frame, err := enc.Display(models.PlaylistItem{Kind: models.ItemWebsite, Content: "https://example.com"})
	require.NoError(t, err)
	assert.Contains(t, string(frame), `<iframe id="content" hx-swap-oob="outerHTML"`)
	assert.Contains(t, string(frame), `src="https://example.com"`)

	frame, err = enc.Display(models.PlaylistItem{Kind: models.ItemText, Content: "<script>x</script>"})
	require.NoError(t, err)
	assert.Contains(t, string(frame), `<div id="content"`)
	assert.NotContains(t, string(frame), "<script>", "text content must be escaped")

	frame, err = enc.Display(models.PlaylistItem{Kind: models.ItemImage, Content: "/files/logo.png"})
	require.NoError(t, err)
	assert.Contains(t, string(frame), `<img id="content"`)

	frame, err = enc.Pending()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `id="content"`)

	frame, err = enc.Welcome("lobby")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Welcome","data":{"name":"lobby","htmx_hash":"deadbeef"}}`, string(frame))
}
