package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"rewardkit/core"
	"rewardkit/user"
)

// Store keeps one YAML file per user, nested by the dotted key paths the
// core writes (daily-rewards.day-num becomes a daily-rewards section).
// This is the original on-disk layout of reward user data.
type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id core.UserID) string {
	return filepath.Join(s.dir, string(id)+".yml")
}

// Load reads the user's file. A missing file means a never-seen user and
// yields an empty document, not an error.
func (s *Store) Load(_ context.Context, id core.UserID) (user.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return user.Document{}, nil
		}
		return nil, fmt.Errorf("read user file: %w", err)
	}
	var nested map[string]any
	if err := yaml.Unmarshal(b, &nested); err != nil {
		return nil, fmt.Errorf("parse user file: %w", err)
	}

	doc := user.Document{}
	flatten("", nested, doc)
	return doc, nil
}

// Save writes the document atomically via a temp file rename.
func (s *Store) Save(_ context.Context, id core.UserID, doc user.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := yaml.Marshal(expand(doc))
	if err != nil {
		return fmt.Errorf("encode user file: %w", err)
	}
	path := s.path(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write user file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace user file: %w", err)
	}
	return nil
}

// expand turns dotted key paths into nested maps for readable YAML.
func expand(doc user.Document) map[string]any {
	root := make(map[string]any)
	for key, value := range doc {
		parts := strings.Split(key, ".")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}

// flatten rebuilds dotted key paths from nested maps.
func flatten(prefix string, node map[string]any, doc user.Document) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			flatten(path, child, doc)
			continue
		}
		doc[path] = value
	}
}
