// Package docstore persists uploaded source documents. Files are kept
// after processing so an import can be inspected or replayed later; DOCX
// uploads additionally get their parsed JSON stored alongside the source.
package docstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store struct {
	dir string
}

// NewStore opens (and creates, if needed) the artifact directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating document store at %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveUpload writes an uploaded file under a fresh unique name, keeping the
// original extension. Returns the stored path.
func (s *Store) SaveUpload(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("storing upload %s: %w", originalName, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload %s: %w", originalName, err)
	}
	return path, nil
}

// SaveJSON writes the parsed representation next to a stored document,
// swapping its extension for .json.
func (s *Store) SaveJSON(docPath string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding parsed document: %w", err)
	}

	jsonPath := strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".json"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing parsed document: %w", err)
	}
	return jsonPath, nil
}
