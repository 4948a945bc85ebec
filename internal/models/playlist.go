// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ItemKind discriminates the playlist item variants on the wire.
type ItemKind string

const (
	ItemWebsite         ItemKind = "WEBSITE"
	ItemText            ItemKind = "TEXT"
	ItemImage           ItemKind = "IMAGE"
	ItemBackgroundAudio ItemKind = "BACKGROUND_AUDIO"
)

// PlaylistItem is one entry of a playlist: a piece of content shown for
// a fixed number of seconds. A Duration of 0 keeps the item up
// indefinitely; only a catalog change moves the viewer past it.
//
// Content carries the URL for websites, the text body for text items,
// and the source path for images and background audio.
type PlaylistItem struct {
	Kind     ItemKind
	Name     string
	Content  string
	Duration uint64
}

// Playlist is an ordered, finite sequence of timed items.
type Playlist struct {
	Name  string         `json:"name"`
	Items []PlaylistItem `json:"items"`
}

// Clone returns a deep copy; send loops iterate over copies, never over
// slices shared with the catalog.
func (p Playlist) Clone() Playlist {
	return Playlist{Name: p.Name, Items: append([]PlaylistItem(nil), p.Items...)}
}

// The wire encoding tags each item with its kind and nests the content
// under a settings object whose field name depends on the kind:
//
//	{"type":"WEBSITE","name":"n","settings":{"url":"...","duration":60}}
//	{"type":"TEXT","name":"n","settings":{"text":"...","duration":60}}
//	{"type":"IMAGE","name":"n","settings":{"src":"...","duration":60}}

type websiteSettings struct {
	URL      string `json:"url"`
	Duration uint64 `json:"duration"`
}

type textSettings struct {
	Text     string `json:"text"`
	Duration uint64 `json:"duration"`
}

type imageSettings struct {
	Src      string `json:"src"`
	Duration uint64 `json:"duration"`
}

type itemEnvelope struct {
	Type     ItemKind        `json:"type"`
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

// MarshalJSON encodes the item in its tagged wire form.
func (i PlaylistItem) MarshalJSON() ([]byte, error) {
	var settings any
	switch i.Kind {
	case ItemWebsite:
		settings = websiteSettings{URL: i.Content, Duration: i.Duration}
	case ItemText:
		settings = textSettings{Text: i.Content, Duration: i.Duration}
	case ItemImage, ItemBackgroundAudio:
		settings = imageSettings{Src: i.Content, Duration: i.Duration}
	default:
		return nil, fmt.Errorf("playlist item: unknown kind %q", i.Kind)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(itemEnvelope{Type: i.Kind, Name: i.Name, Settings: raw})
}

// UnmarshalJSON decodes the tagged wire form.
func (i *PlaylistItem) UnmarshalJSON(data []byte) error {
	var env itemEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	switch env.Type {
	case ItemWebsite:
		var s websiteSettings
		if err := json.Unmarshal(env.Settings, &s); err != nil {
			return err
		}
		*i = PlaylistItem{Kind: env.Type, Name: env.Name, Content: s.URL, Duration: s.Duration}
	case ItemText:
		var s textSettings
		if err := json.Unmarshal(env.Settings, &s); err != nil {
			return err
		}
		*i = PlaylistItem{Kind: env.Type, Name: env.Name, Content: s.Text, Duration: s.Duration}
	case ItemImage, ItemBackgroundAudio:
		var s imageSettings
		if err := json.Unmarshal(env.Settings, &s); err != nil {
			return err
		}
		*i = PlaylistItem{Kind: env.Type, Name: env.Name, Content: s.Src, Duration: s.Duration}
	default:
		return fmt.Errorf("playlist item: unknown kind %q", env.Type)
	}
	return nil
}
