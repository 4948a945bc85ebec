// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package files

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vitrine-io/vitrine/internal/logging"
)

// indexKey holds the JSON array of serving paths in Badger.
var indexKey = []byte("files/paths")

// maxUploadSize bounds a single upload request.
const maxUploadSize = 512 << 20

// Service stores uploaded media and serves it back.
type Service struct {
	db  *badger.DB
	dir string
	log zerolog.Logger

	mu    sync.Mutex
	paths map[string]struct{}
}

// New loads the path index and makes sure the media directory exists.
func New(db *badger.DB, dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("files: creating media dir: %w", err)
	}

	s := &Service{
		db:    db,
		dir:   dir,
		log:   logging.WithComponent("files"),
		paths: make(map[string]struct{}),
	}

	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var paths []string
			if err := json.Unmarshal(val, &paths); err != nil {
				return err
			}
			for _, p := range paths {
				s.paths[p] = struct{}{}
			}
			return nil
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("files: loading path index: %w", err)
	default:
		s.log.Info().Int("files", len(s.paths)).Msg("Loaded media path index")
	}
	return s, nil
}

// Paths returns the indexed serving paths, sorted.
func (s *Service) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *Service) addPaths(paths []string) error {
	s.mu.Lock()
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	all := make([]string, 0, len(s.paths))
	for p := range s.paths {
		all = append(all, p)
	}
	s.mu.Unlock()

	sort.Strings(all)
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(indexKey, data)
	})
}

// sanitizeName flattens an uploaded filename to a single safe path
// element.
func sanitizeName(name string) (string, error) {
	name = filepath.Base(filepath.Clean(name))
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("files: unusable filename %q", name)
	}
	return name, nil
}

// List handles GET /api/files, returning the indexed serving paths.
func (s *Service) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Paths())
}

// Upload handles POST /api/files. Every file part of the multipart
// body is stored under its sanitized name; the response lists the new
// serving paths.
func (s *Service) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected multipart body", http.StatusBadRequest)
		return
	}

	var saved []string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			http.Error(w, "malformed multipart body", http.StatusBadRequest)
			return
		}
		if part.FileName() == "" {
			continue
		}

		name, err := sanitizeName(part.FileName())
		if err != nil {
			http.Error(w, "unusable filename", http.StatusBadRequest)
			return
		}

		dst, err := os.Create(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Err(err).Str("file", name).Msg("Creating media file failed")
			http.Error(w, "storing file failed", http.StatusInternalServerError)
			return
		}
		_, err = io.Copy(dst, part)
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			s.log.Err(err).Str("file", name).Msg("Writing media file failed")
			http.Error(w, "storing file failed", http.StatusInternalServerError)
			return
		}

		saved = append(saved, "/files/"+name)
		s.log.Info().Str("file", name).Msg("Stored uploaded media file")
	}

	if err := s.addPaths(saved); err != nil {
		s.log.Err(err).Msg("Persisting media path index failed")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(saved)
}

// Handler serves the media directory under /files/.
func (s *Service) Handler() http.Handler {
	return http.StripPrefix("/files/", http.FileServer(http.Dir(s.dir)))
}
