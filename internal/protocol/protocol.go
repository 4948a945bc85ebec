// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package protocol

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vitrine-io/vitrine/internal/models"
)

// ErrUnsupportedItem marks playlist item kinds that have no viewer
// dispatch path. BackgroundAudio is declared in the catalog model but
// not yet rendered by any viewer.
var ErrUnsupportedItem = errors.New("protocol: item kind has no dispatch path")

// Hello is the first frame a viewer sends after connecting.
type Hello struct {
	UUID uuid.UUID `json:"uuid"`
	Htmx bool      `json:"htmx"`
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseHello decodes a Hello envelope. Any other frame is an error;
// the caller logs it and keeps reading.
func ParseHello(frame []byte) (Hello, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Hello{}, fmt.Errorf("protocol: malformed frame: %w", err)
	}
	if env.Type != "Hello" {
		return Hello{}, fmt.Errorf("protocol: expected Hello, got %q", env.Type)
	}
	var h Hello
	if err := json.Unmarshal(env.Data, &h); err != nil {
		return Hello{}, fmt.Errorf("protocol: malformed Hello data: %w", err)
	}
	if h.UUID == uuid.Nil {
		return Hello{}, errors.New("protocol: Hello without a display uuid")
	}
	return h, nil
}

// displayPayload is the nested payload of a Display envelope.
type displayPayload struct {
	Type string         `json:"type"`
	Data displayContent `json:"data"`
}

type displayContent struct {
	Content string `json:"content"`
}

type welcomePayload struct {
	Name     string `json:"name"`
	HtmxHash string `json:"htmx_hash,omitempty"`
}

func marshalEnvelope(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: typ, Data: raw})
}

// displayKind maps catalog item kinds onto their wire names.
func displayKind(kind models.ItemKind) (string, error) {
	switch kind {
	case models.ItemWebsite:
		return "Website", nil
	case models.ItemText:
		return "Text", nil
	case models.ItemImage:
		return "Image", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedItem, kind)
	}
}

// Encoder turns semantic payloads into text frames. The JSON and htmx
// encoders carry the same information in different framings.
type Encoder interface {
	Display(item models.PlaylistItem) ([]byte, error)
	Welcome(name string) ([]byte, error)
	Pending() ([]byte, error)
}

// NewEncoder picks the framing the viewer asked for in its Hello.
// assetHash is advertised to htmx viewers so stale pages can reload.
func NewEncoder(htmx bool, assetHash string) Encoder {
	if htmx {
		return &htmxEncoder{hash: assetHash}
	}
	return &jsonEncoder{}
}

type jsonEncoder struct{}

func (e *jsonEncoder) Display(item models.PlaylistItem) ([]byte, error) {
	kind, err := displayKind(item.Kind)
	if err != nil {
		return nil, err
	}
	return marshalEnvelope("Display", displayPayload{
		Type: kind,
		Data: displayContent{Content: item.Content},
	})
}

func (e *jsonEncoder) Welcome(name string) ([]byte, error) {
	return marshalEnvelope("Welcome", welcomePayload{Name: name})
}

func (e *jsonEncoder) Pending() ([]byte, error) {
	return marshalEnvelope("Pending", true)
}
