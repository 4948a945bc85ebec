// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package protocol

import (
	"bytes"
	"html/template"

	"github.com/vitrine-io/vitrine/internal/models"
)

// htmx fragments target the viewer page's #content element via an
// out-of-band swap, so one websocket frame replaces the whole display
// surface regardless of what was shown before.
var htmxTemplates = template.Must(template.New("fragments").Parse(`
{{- define "Website" -}}
<iframe id="content" hx-swap-oob="outerHTML" src="{{.}}" frameborder="0"></iframe>
{{- end -}}
{{- define "Text" -}}
<div id="content" hx-swap-oob="outerHTML"><p>{{.}}</p></div>
{{- end -}}
{{- define "Image" -}}
<img id="content" hx-swap-oob="outerHTML" src="{{.}}">
{{- end -}}
{{- define "Pending" -}}
<div id="content" hx-swap-oob="outerHTML"><p>Pending registration</p></div>
{{- end -}}
`))

type htmxEncoder struct {
	hash string
}

func (e *htmxEncoder) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmxTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *htmxEncoder) Display(item models.PlaylistItem) ([]byte, error) {
	kind, err := displayKind(item.Kind)
	if err != nil {
		return nil, err
	}
	return e.render(kind, item.Content)
}

// Welcome stays a JSON envelope even for htmx viewers; the page reads
// the advertised hash and reloads itself when its assets are stale.
func (e *htmxEncoder) Welcome(name string) ([]byte, error) {
	return marshalEnvelope("Welcome", welcomePayload{Name: name, HtmxHash: e.hash})
}

func (e *htmxEncoder) Pending() ([]byte, error) {
	return e.render("Pending", nil)
}
