package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	jsonExt     = ".json"
	markdownExt = ".md"
)

// FileStore keeps each report as <id>.json plus a rendered <id>.md ticket
// under a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at root. The directory is created
// on first save.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) path(id, ext string) string {
	return filepath.Join(s.root, id+ext)
}

func (s *FileStore) Save(_ context.Context, r Report) error {
	if err := validID(r.ID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}
	md, err := Markdown(r)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}
	if err := writeAtomic(s.root, s.path(r.ID, jsonExt), data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}
	if err := writeAtomic(s.root, s.path(r.ID, markdownExt), []byte(md)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, r.ID, err)
	}
	return nil
}

// writeAtomic writes through a temp file in dir and renames it into place.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) (Report, error) {
	if err := validID(id); err != nil {
		return Report{}, err
	}

	data, err := os.ReadFile(s.path(id, jsonExt))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Report{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	return r, nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != jsonExt {
			continue
		}
		id := strings.TrimSuffix(name, jsonExt)
		if validID(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Delete(_ context.Context, ids ...string) error {
	for _, id := range ids {
		if err := validID(id); err != nil {
			return err
		}
		for _, ext := range []string{jsonExt, markdownExt} {
			if err := os.Remove(s.path(id, ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("delete failed: %s: %w", id, err)
			}
		}
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// MarkdownPath returns where the ticket of a report is written.
func (s *FileStore) MarkdownPath(id string) string {
	return s.path(id, markdownExt)
}
