// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package files

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *badger.DB, string) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	s, err := New(db, dir)
	require.NoError(t, err)
	return s, db, dir
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndList(t *testing.T) {
	s, _, _ := newService(t)

	body, contentType := multipartBody(t, map[string]string{"logo.png": "pngdata"})
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploaded []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.Equal(t, []string{"/files/logo.png"}, uploaded)

	rec = httptest.NewRecorder()
	s.List(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	var listed []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, []string{"/files/logo.png"}, listed)
}

func TestUploadSanitizesPathTraversal(t *testing.T) {
	s, _, dir := newService(t)

	body, contentType := multipartBody(t, map[string]string{"../../etc/passwd": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Upload(rec, req)

	// The traversal collapses to its base name; nothing escapes the
	// media directory.
	if rec.Code == http.StatusOK {
		var uploaded []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
		assert.Equal(t, []string{"/files/passwd"}, uploaded)
	}
	assert.NoFileExists(t, dir+"/../etc/passwd")
}

func TestIndexSurvivesReopen(t *testing.T) {
	s, db, dir := newService(t)

	body, contentType := multipartBody(t, map[string]string{"a.jpg": "x", "b.jpg": "y"})
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	s.Upload(httptest.NewRecorder(), req)

	reopened, err := New(db, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"/files/a.jpg", "/files/b.jpg"}, reopened.Paths())
}

func TestServesUploadedContent(t *testing.T) {
	s, _, _ := newService(t)

	body, contentType := multipartBody(t, map[string]string{"note.txt": "hello media"})
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	s.Upload(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/note.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello media", rec.Body.String())
}
